package model

import "time"

// RewardItem is a catalog entry. Inventory is nil for unlimited items;
// otherwise it is decremented by the redemption engine and never goes
// below zero.
type RewardItem struct {
	ID        int64             `json:"id"`
	Title     string            `json:"title"`
	Subtitle  string            `json:"subtitle"`
	ItemType  string            `json:"item_type"`
	Cost      int               `json:"cost"`
	Inventory *int              `json:"inventory"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RewardItemView is the catalog projection for a specific user.
type RewardItemView struct {
	RewardItem
	CanRedeem bool `json:"can_redeem"`
}

// RewardRedemption is immutable after creation. There is no async
// fulfillment state, so status is always "completed".
type RewardRedemption struct {
	ID               int64     `json:"id"`
	ExternalID       string    `json:"external_id"`
	UserID           string    `json:"user_id"`
	ItemID           int64     `json:"item_id"`
	CostAtRedemption int       `json:"cost_at_redemption"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

const RedemptionCompleted = "completed"
