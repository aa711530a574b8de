package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/vitapointapp/vitapoint/internal/apperr"
	"github.com/vitapointapp/vitapoint/internal/auth"
	"github.com/vitapointapp/vitapoint/internal/donation"
	"github.com/vitapointapp/vitapoint/internal/model"
	"github.com/vitapointapp/vitapoint/internal/notify"
	"github.com/vitapointapp/vitapoint/internal/websocket"
)

type DonationHandler struct {
	engine   *donation.Engine
	hub      *websocket.Hub
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewDonationHandler(engine *donation.Engine, hub *websocket.Hub, notifier notify.Notifier, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{engine: engine, hub: hub, notifier: notifier, logger: logger}
}

func (h *DonationHandler) Donate(w http.ResponseWriter, r *http.Request) {
	var req donation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperr.New(apperr.CodeValidation, "invalid JSON"))
		return
	}

	userID := auth.UserID(r.Context())
	d, err := h.engine.Donate(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.hub.Publish(userID, websocket.NewEvent("donation", "recorded", d.ID, map[string]any{
		"provider":      d.Provider,
		"amount_points": d.AmountPoints,
		"amount_vnd":    d.AmountVND,
	}))
	emit(r, h.notifier, notify.Event{
		Type:        notify.EventDonationRecorded,
		UserID:      userID,
		ReferenceID: d.ID,
		Points:      -d.AmountPoints,
		OccurredAt:  time.Now().UTC(),
	})

	writeJSON(w, http.StatusCreated, d)
}

func (h *DonationHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	donations, err := h.engine.History(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if donations == nil {
		donations = []model.Donation{}
	}
	writeJSON(w, http.StatusOK, donations)
}
