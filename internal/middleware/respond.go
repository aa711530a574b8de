package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError emits the standard error body from middleware, which runs
// before the handlers' own error mapping.
func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":       code,
		"message":    message,
		"request_id": RequestID(r.Context()),
	})
}
