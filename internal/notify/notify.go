// Package notify delivers ledger-affecting events to the companion system.
// Delivery is best-effort and runs after the primary transaction commits;
// a failed delivery is logged and never surfaces to the caller.
package notify

import (
	"context"
	"time"
)

// Event types emitted by the engines.
const (
	EventMissionCompleted = "mission.completed"
	EventRewardRedeemed   = "reward.redeemed"
	EventDonationRecorded = "donation.recorded"
)

// Event describes one committed ledger mutation.
type Event struct {
	Type        string         `json:"type"`
	UserID      string         `json:"user_id"`
	ReferenceID int64          `json:"reference_id"`
	Points      int            `json:"points,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// Result reports what happened to an event.
type Result int

const (
	Delivered Result = iota
	Skipped
)

// Notifier emits an event. Implementations must never block the primary
// request path longer than their own timeout and must not return errors;
// failure is a Skipped result.
type Notifier interface {
	Notify(ctx context.Context, evt Event) Result
}

// Nop drops every event. Used when no webhook is configured and in tests.
type Nop struct{}

func (Nop) Notify(context.Context, Event) Result { return Skipped }
