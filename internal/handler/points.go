package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vitapointapp/vitapoint/internal/apperr"
	"github.com/vitapointapp/vitapoint/internal/auth"
	"github.com/vitapointapp/vitapoint/internal/model"
	"github.com/vitapointapp/vitapoint/internal/store"
)

type PointsHandler struct {
	ledger *store.LedgerStore
	logger *slog.Logger
}

func NewPointsHandler(ledger *store.LedgerStore, logger *slog.Logger) *PointsHandler {
	return &PointsHandler{ledger: ledger, logger: logger}
}

func (h *PointsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	bal, err := h.ledger.GetPointBalance(userID)
	if err != nil {
		h.logger.Error("get point balance", "user_id", userID, "error", err)
		writeError(w, r, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err))
		return
	}
	writeJSON(w, http.StatusOK, bal)
}

func (h *PointsHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, r, apperr.New(apperr.CodeValidation, "limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	userID := auth.UserID(r.Context())
	entries, err := h.ledger.ListByUser(userID, limit)
	if err != nil {
		h.logger.Error("list ledger entries", "user_id", userID, "error", err)
		writeError(w, r, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err))
		return
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
