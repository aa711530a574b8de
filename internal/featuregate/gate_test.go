package featuregate

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestStaticGate(t *testing.T) {
	g := Static("missions", "rewards")

	ctx := context.Background()
	if !g.Enabled(ctx, "missions") {
		t.Error("missions should be enabled")
	}
	if !g.Enabled(ctx, "rewards") {
		t.Error("rewards should be enabled")
	}
	if g.Enabled(ctx, "donations") {
		t.Error("donations should be disabled")
	}
	if g.Enabled(ctx, "") {
		t.Error("empty flag should be disabled")
	}
}

func TestClientFetchesAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"flags":{"missions":true,"rewards":false}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{URL: srv.URL, TTL: time.Minute}, Static(), slog.New(slog.DiscardHandler))
	ctx := context.Background()

	if !c.Enabled(ctx, "missions") {
		t.Error("missions should be enabled from flag service")
	}
	if c.Enabled(ctx, "rewards") {
		t.Error("rewards should be disabled from flag service")
	}
	if c.Enabled(ctx, "donations") {
		t.Error("unknown flag should be disabled")
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("flag service hit %d times inside TTL, want 1", got)
	}
}

func TestClientRefreshesAfterTTL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Write([]byte(`{"flags":{"missions":true}}`))
			return
		}
		w.Write([]byte(`{"flags":{"missions":false}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{URL: srv.URL, TTL: time.Nanosecond}, Static(), slog.New(slog.DiscardHandler))
	ctx := context.Background()

	if !c.Enabled(ctx, "missions") {
		t.Error("missions should start enabled")
	}
	time.Sleep(time.Millisecond)
	if c.Enabled(ctx, "missions") {
		t.Error("missions should flip off after refresh")
	}
}

func TestClientServesLastKnownOnOutage(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"flags":{"missions":true}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{URL: srv.URL, TTL: time.Nanosecond}, Static(), slog.New(slog.DiscardHandler))
	ctx := context.Background()

	if !c.Enabled(ctx, "missions") {
		t.Fatal("missions should be enabled before the outage")
	}

	fail.Store(true)
	time.Sleep(time.Millisecond)
	if !c.Enabled(ctx, "missions") {
		t.Error("last known flag set should survive a flag service outage")
	}
}

func TestClientFallsBackWhenNeverFetched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{URL: srv.URL, TTL: time.Minute}, Static("missions"), slog.New(slog.DiscardHandler))
	ctx := context.Background()

	if !c.Enabled(ctx, "missions") {
		t.Error("static fallback should serve before any successful fetch")
	}
	if c.Enabled(ctx, "rewards") {
		t.Error("rewards is not in the fallback set")
	}
}
