// Package config loads service configuration from VITA_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

type Config struct {
	Port     string `env:"VITA_PORT,default=8080"`
	DBPath   string `env:"VITA_DB_PATH,default=vitapoint.db"`
	LogLevel string `env:"VITA_LOG_LEVEL,default=info"`

	// Timezone defines the calendar day missions reset on.
	Timezone    string        `env:"VITA_TIMEZONE,default=Asia/Ho_Chi_Minh"`
	DedupWindow time.Duration `env:"VITA_CHECKIN_DEDUP_WINDOW,default=30s"`

	// Flags is the static fallback flag list; FlagURL switches the gate
	// to the remote flag service with FlagTTL caching.
	Flags   []string      `env:"VITA_FLAGS,default=missions;rewards;donations"`
	FlagURL string        `env:"VITA_FLAG_URL"`
	FlagTTL time.Duration `env:"VITA_FLAG_TTL,default=1m"`

	WebhookURL    string `env:"VITA_WEBHOOK_URL"`
	WebhookSecret string `env:"VITA_WEBHOOK_SECRET"`

	// APITokens has the form "token:user,token:user". Production
	// deployments replace the static resolver in cmd with the identity
	// service client.
	APITokens string `env:"VITA_API_TOKENS"`

	RateLimitPerSecond float64 `env:"VITA_RATE_LIMIT_PER_SECOND,default=5"`
	RateLimitBurst     int     `env:"VITA_RATE_LIMIT_BURST,default=10"`
}

// Load decodes the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
