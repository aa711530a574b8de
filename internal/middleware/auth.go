package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vitapointapp/vitapoint/internal/apperr"
	"github.com/vitapointapp/vitapoint/internal/auth"
)

// RequireAuth resolves the bearer token to a user id and populates the
// request context. Unauthenticated callers are rejected before any gate
// or engine logic runs.
func RequireAuth(resolver auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeJSONError(w, r, http.StatusUnauthorized, string(apperr.CodeUnauthorized), "missing or invalid credentials")
				return
			}

			userID, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrUnknownToken) {
					writeJSONError(w, r, http.StatusUnauthorized, string(apperr.CodeUnauthorized), "missing or invalid credentials")
					return
				}
				writeJSONError(w, r, http.StatusServiceUnavailable, string(apperr.CodeDBUnavailable), "identity service unavailable")
				return
			}

			ctx := auth.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
