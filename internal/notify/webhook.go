package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const signatureHeader = "X-Vitapoint-Signature"

// WebhookConfig holds webhook delivery configuration.
type WebhookConfig struct {
	URL         string
	Secret      string
	Timeout     time.Duration
	MaxAttempts uint64
}

// Webhook POSTs events to the companion system with an HS256-signed token
// in the signature header. Attempts are bounded; after the last one the
// event is dropped (at-most-once, best effort).
type Webhook struct {
	cfg        WebhookConfig
	httpClient *http.Client
	logger     *slog.Logger
}

func NewWebhook(cfg WebhookConfig, logger *slog.Logger) *Webhook {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	return &Webhook{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (w *Webhook) Notify(ctx context.Context, evt Event) Result {
	body, err := json.Marshal(evt)
	if err != nil {
		w.logger.Error("marshal event", "type", evt.Type, "error", err)
		return Skipped
	}

	token, err := w.sign(evt)
	if err != nil {
		w.logger.Error("sign event", "type", evt.Type, "error", err)
		return Skipped
	}

	backoff := retry.WithMaxRetries(w.cfg.MaxAttempts-1, retry.NewFibonacci(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(signatureHeader, token)

		resp, err := w.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("webhook returned %d", resp.StatusCode))
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("webhook returned %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		w.logger.Warn("event delivery failed", "type", evt.Type, "user_id", evt.UserID, "error", err)
		return Skipped
	}
	return Delivered
}

// sign produces a short-lived token binding the event type and user so the
// receiver can verify origin without parsing the body first.
func (w *Webhook) sign(evt Event) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"event":   evt.Type,
		"user_id": evt.UserID,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(2 * time.Minute).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(w.cfg.Secret))
}
