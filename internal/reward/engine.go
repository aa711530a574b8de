// Package reward implements the catalog listing and redemption engine.
package reward

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vitapointapp/vitapoint/internal/apperr"
	"github.com/vitapointapp/vitapoint/internal/featuregate"
	"github.com/vitapointapp/vitapoint/internal/model"
	"github.com/vitapointapp/vitapoint/internal/store"
)

// FlagRewards gates every reward operation.
const FlagRewards = "rewards"

// Engine validates affordability and availability and performs redemptions.
type Engine struct {
	rewards *store.RewardStore
	ledger  *store.LedgerStore
	gate    featuregate.Gate
	logger  *slog.Logger
}

func NewEngine(rewards *store.RewardStore, ledger *store.LedgerStore, gate featuregate.Gate, logger *slog.Logger) *Engine {
	return &Engine{rewards: rewards, ledger: ledger, gate: gate, logger: logger}
}

// List projects can_redeem for the user over the whole catalog. This is a
// read-only projection and reserves nothing; the authoritative checks run
// inside Redeem's transaction.
func (e *Engine) List(ctx context.Context, userID string) ([]model.RewardItemView, error) {
	if !e.gate.Enabled(ctx, FlagRewards) {
		return nil, apperr.ErrFeatureDisabled
	}

	items, err := e.rewards.List()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}
	bal, err := e.ledger.Balance(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}

	views := make([]model.RewardItemView, 0, len(items))
	for _, item := range items {
		inStock := item.Inventory == nil || *item.Inventory > 0
		views = append(views, model.RewardItemView{
			RewardItem: item,
			CanRedeem:  bal >= item.Cost && inStock,
		})
	}
	return views, nil
}

// Redeem exchanges the user's points for the item. Out-of-stock and
// insufficient-points are business conflicts; the caller sees a stable
// code for each.
func (e *Engine) Redeem(ctx context.Context, userID string, itemID int64) (*model.RewardRedemption, error) {
	if !e.gate.Enabled(ctx, FlagRewards) {
		return nil, apperr.ErrFeatureDisabled
	}

	item, err := e.rewards.GetByID(itemID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}
	if item == nil {
		return nil, apperr.New(apperr.CodeNotFound, "reward not found")
	}

	redemption, err := e.rewards.Redeem(userID, itemID)
	if err != nil {
		var coded *apperr.Error
		if errors.As(err, &coded) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}

	e.logger.Info("reward redeemed",
		"user_id", userID,
		"item_id", itemID,
		"cost", redemption.CostAtRedemption,
	)
	return redemption, nil
}

// History returns the user's redemptions, newest first.
func (e *Engine) History(ctx context.Context, userID string) ([]model.RewardRedemption, error) {
	if !e.gate.Enabled(ctx, FlagRewards) {
		return nil, apperr.ErrFeatureDisabled
	}

	redemptions, err := e.rewards.ListRedemptionsByUser(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}
	return redemptions, nil
}
