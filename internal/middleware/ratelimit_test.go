package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vitapointapp/vitapoint/internal/auth"
)

func TestRateLimiterAllowPerKey(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	for i := 0; i < 2; i++ {
		if !rl.Allow("u1") {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if rl.Allow("u1") {
		t.Error("request beyond burst should be denied")
	}

	// Keys are independent.
	if !rl.Allow("u2") {
		t.Error("fresh key should be allowed")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Allow("u1")

	rl.Cleanup(time.Hour)
	if len(rl.limiters) != 1 {
		t.Errorf("recent key evicted, %d limiters left", len(rl.limiters))
	}

	rl.Cleanup(0)
	if len(rl.limiters) != 0 {
		t.Errorf("idle key kept, %d limiters left", len(rl.limiters))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	h := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/missions/checkin", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), "u1"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}

	// Another user is not throttled by u1's bucket.
	other := httptest.NewRequest(http.MethodPost, "/api/missions/checkin", nil)
	other = other.WithContext(auth.WithUserID(other.Context(), "u2"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("other user status = %d, want 200", rec.Code)
	}
}

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	if got := RealIP(r); got != "10.0.0.1" {
		t.Errorf("RealIP = %q, want 10.0.0.1", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := RealIP(r); got != "203.0.113.5" {
		t.Errorf("RealIP = %q, want first forwarded hop", got)
	}
}
