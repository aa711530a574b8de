package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/vitapointapp/vitapoint/internal/apperr"
	"github.com/vitapointapp/vitapoint/internal/auth"
	"github.com/vitapointapp/vitapoint/internal/mission"
	"github.com/vitapointapp/vitapoint/internal/notify"
	"github.com/vitapointapp/vitapoint/internal/websocket"
)

type MissionHandler struct {
	engine   *mission.Engine
	hub      *websocket.Hub
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewMissionHandler(engine *mission.Engine, hub *websocket.Hub, notifier notify.Notifier, logger *slog.Logger) *MissionHandler {
	return &MissionHandler{engine: engine, hub: hub, notifier: notifier, logger: logger}
}

func (h *MissionHandler) Checkin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MissionID int64 `json:"mission_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperr.New(apperr.CodeValidation, "invalid JSON"))
		return
	}
	if req.MissionID <= 0 {
		writeError(w, r, apperr.New(apperr.CodeValidation, "mission_id is required"))
		return
	}

	userID := auth.UserID(r.Context())
	result, err := h.engine.Checkin(r.Context(), userID, req.MissionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if result.Added > 0 {
		h.hub.Publish(userID, websocket.NewEvent("mission", "completed", result.MissionID, map[string]any{
			"status":        result.Status,
			"energy_earned": result.TodaySummary.EnergyEarned,
		}))
		emit(r, h.notifier, notify.Event{
			Type:        notify.EventMissionCompleted,
			UserID:      userID,
			ReferenceID: result.MissionID,
			Points:      result.TodaySummary.EnergyEarned,
			OccurredAt:  time.Now().UTC(),
		})
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *MissionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	statuses, summary, err := h.engine.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"missions":      statuses,
		"today_summary": summary,
	})
}
