package model

import "time"

// LedgerReason identifies why points moved.
type LedgerReason string

const (
	ReasonMissionReward    LedgerReason = "mission_reward"
	ReasonRewardRedemption LedgerReason = "reward_redemption"
	ReasonDonation         LedgerReason = "donation"
)

// LedgerEntry is one immutable signed-amount record. A user's balance is
// always SUM(delta) over their entries; there is no stored balance field.
type LedgerEntry struct {
	ID          int64        `json:"id"`
	UserID      string       `json:"user_id"`
	Delta       int          `json:"delta"`
	Reason      LedgerReason `json:"reason"`
	ReferenceID int64        `json:"reference_id"`
	CreatedAt   time.Time    `json:"created_at"`
}

// PointBalance is the derived balance projection for a user.
type PointBalance struct {
	UserID      string `json:"user_id"`
	TotalEarned int    `json:"total_earned"`
	TotalSpent  int    `json:"total_spent"`
	Balance     int    `json:"balance"`
}
