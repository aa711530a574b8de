package model

import "time"

// Donation statuses. Point-only donations complete immediately; donations
// with a cash amount stay pending until the external provider settles,
// which happens outside this system.
const (
	DonationCompleted = "completed"
	DonationPending   = "pending"
)

// Donation records a contribution paid in points, cash, or both.
// At least one of AmountPoints and AmountVND is positive.
type Donation struct {
	ID           int64     `json:"id"`
	ExternalID   string    `json:"external_id"`
	UserID       string    `json:"user_id"`
	Provider     string    `json:"provider"`
	AmountPoints int       `json:"amount_points"`
	AmountVND    int       `json:"amount_vnd"`
	Campaign     string    `json:"campaign,omitempty"`
	Note         string    `json:"note,omitempty"`
	Status       string    `json:"status"`
	PaymentURL   string    `json:"payment_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
