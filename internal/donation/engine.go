// Package donation implements the donation engine: a donation is a ledger
// debit (when paid in points) and/or an external payment intent (when paid
// in cash). No inventory is involved.
package donation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/vitapointapp/vitapoint/internal/apperr"
	"github.com/vitapointapp/vitapoint/internal/featuregate"
	"github.com/vitapointapp/vitapoint/internal/model"
	"github.com/vitapointapp/vitapoint/internal/store"
)

// FlagDonations gates every donation operation.
const FlagDonations = "donations"

// Request carries the donate parameters.
type Request struct {
	Provider     string `json:"provider"`
	AmountPoints int    `json:"amount_points"`
	AmountVND    int    `json:"amount_vnd"`
	Campaign     string `json:"campaign"`
	Note         string `json:"note"`
}

// Engine records donations.
type Engine struct {
	donations *store.DonationStore
	gate      featuregate.Gate
	logger    *slog.Logger
}

func NewEngine(donations *store.DonationStore, gate featuregate.Gate, logger *slog.Logger) *Engine {
	return &Engine{donations: donations, gate: gate, logger: logger}
}

// Donate validates the request, debits points if any, and records the
// donation. When a cash amount is present the payment URL is built
// deterministically; settlement happens outside this system.
func (e *Engine) Donate(ctx context.Context, userID string, req Request) (*model.Donation, error) {
	if !e.gate.Enabled(ctx, FlagDonations) {
		return nil, apperr.ErrFeatureDisabled
	}

	req.Provider = strings.TrimSpace(req.Provider)
	if req.Provider == "" {
		return nil, apperr.New(apperr.CodeValidation, "provider is required")
	}
	if req.AmountPoints < 0 || req.AmountVND < 0 {
		return nil, apperr.New(apperr.CodeValidation, "amounts must not be negative")
	}
	if req.AmountPoints == 0 && req.AmountVND == 0 {
		return nil, apperr.New(apperr.CodeValidation, "donation must have a points or cash amount")
	}

	d := &model.Donation{
		UserID:       userID,
		Provider:     req.Provider,
		AmountPoints: req.AmountPoints,
		AmountVND:    req.AmountVND,
		Campaign:     strings.TrimSpace(req.Campaign),
		Note:         strings.TrimSpace(req.Note),
		Status:       model.DonationCompleted,
	}
	if req.AmountVND > 0 {
		d.Status = model.DonationPending
		d.PaymentURL = PaymentURL(req.Provider, req.AmountVND, d.Campaign)
	}

	created, err := e.donations.Create(d)
	if err != nil {
		var coded *apperr.Error
		if errors.As(err, &coded) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}

	e.logger.Info("donation recorded",
		"user_id", userID,
		"provider", created.Provider,
		"amount_points", created.AmountPoints,
		"amount_vnd", created.AmountVND,
	)
	return created, nil
}

// History returns the user's donations, newest first.
func (e *Engine) History(ctx context.Context, userID string) ([]model.Donation, error) {
	if !e.gate.Enabled(ctx, FlagDonations) {
		return nil, apperr.ErrFeatureDisabled
	}

	donations, err := e.donations.ListByUser(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}
	return donations, nil
}
