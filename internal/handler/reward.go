package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/vitapointapp/vitapoint/internal/apperr"
	"github.com/vitapointapp/vitapoint/internal/auth"
	"github.com/vitapointapp/vitapoint/internal/model"
	"github.com/vitapointapp/vitapoint/internal/notify"
	"github.com/vitapointapp/vitapoint/internal/reward"
	"github.com/vitapointapp/vitapoint/internal/websocket"
)

type RewardHandler struct {
	engine   *reward.Engine
	hub      *websocket.Hub
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewRewardHandler(engine *reward.Engine, hub *websocket.Hub, notifier notify.Notifier, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{engine: engine, hub: hub, notifier: notifier, logger: logger}
}

func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	items, err := h.engine.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.RewardItemView{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID int64 `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperr.New(apperr.CodeValidation, "invalid JSON"))
		return
	}
	if req.ItemID <= 0 {
		writeError(w, r, apperr.New(apperr.CodeValidation, "item_id is required"))
		return
	}

	userID := auth.UserID(r.Context())
	redemption, err := h.engine.Redeem(r.Context(), userID, req.ItemID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.hub.Publish(userID, websocket.NewEvent("reward", "redeemed", redemption.ItemID, map[string]any{
		"cost": redemption.CostAtRedemption,
	}))
	emit(r, h.notifier, notify.Event{
		Type:        notify.EventRewardRedeemed,
		UserID:      userID,
		ReferenceID: redemption.ID,
		Points:      -redemption.CostAtRedemption,
		OccurredAt:  time.Now().UTC(),
	})

	writeJSON(w, http.StatusCreated, redemption)
}

func (h *RewardHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	redemptions, err := h.engine.History(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if redemptions == nil {
		redemptions = []model.RewardRedemption{}
	}
	writeJSON(w, http.StatusOK, redemptions)
}
