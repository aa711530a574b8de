package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vitapointapp/vitapoint/internal/apperr"
	"github.com/vitapointapp/vitapoint/internal/middleware"
	"github.com/vitapointapp/vitapoint/internal/notify"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a coded error to its HTTP response. A disabled feature
// renders the router's plain 404 so gated-off endpoints are
// indistinguishable from absent ones.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperr.ErrFeatureDisabled) {
		http.NotFound(w, r)
		return
	}

	code := apperr.CodeOf(err)
	writeJSON(w, apperr.HTTPStatus(code), map[string]string{
		"code":       string(code),
		"message":    apperr.MessageOf(err),
		"request_id": middleware.RequestID(r.Context()),
	})
}

// emit fires the notifier off the request path. The primary transaction
// has already committed; delivery failure is the notifier's problem.
func emit(r *http.Request, notifier notify.Notifier, evt notify.Event) {
	ctx := context.WithoutCancel(r.Context())
	go notifier.Notify(ctx, evt)
}
