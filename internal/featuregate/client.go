package featuregate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Config holds flag service configuration.
type Config struct {
	URL     string
	TTL     time.Duration
	Timeout time.Duration
}

// Client fetches the flag set from the flag service and caches it for the
// configured TTL. On fetch failure it keeps serving the last known set,
// so a flag service outage never takes the gated features down with it.
type Client struct {
	mu        sync.RWMutex
	cfg       Config
	flags     map[string]bool
	fetchedAt time.Time

	httpClient *http.Client
	fallback   StaticGate
	logger     *slog.Logger
}

// NewClient creates a flag client. The fallback is served until the first
// successful fetch.
func NewClient(cfg Config, fallback StaticGate, logger *slog.Logger) *Client {
	if cfg.TTL == 0 {
		cfg.TTL = time.Minute
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		fallback:   fallback,
		logger:     logger,
	}
}

// Enabled implements Gate. A stale cache triggers a synchronous refresh;
// refresh failure falls back to the cached set, then to the static
// fallback.
func (c *Client) Enabled(ctx context.Context, flag string) bool {
	c.mu.RLock()
	fresh := c.flags != nil && time.Since(c.fetchedAt) < c.cfg.TTL
	enabled, known := c.flags[flag]
	c.mu.RUnlock()

	if fresh {
		return enabled
	}

	if err := c.refresh(ctx); err != nil {
		c.logger.Warn("flag refresh failed", "flag", flag, "error", err)
		if known {
			return enabled
		}
		return c.fallback.Enabled(ctx, flag)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.flags[flag]
}

func (c *Client) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch flags: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("flag service returned %d", resp.StatusCode)
	}

	var payload struct {
		Flags map[string]bool `json:"flags"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode flags: %w", err)
	}

	c.mu.Lock()
	c.flags = payload.Flags
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return nil
}
