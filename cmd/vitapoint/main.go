package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vitapointapp/vitapoint/internal/auth"
	"github.com/vitapointapp/vitapoint/internal/config"
	"github.com/vitapointapp/vitapoint/internal/database"
	"github.com/vitapointapp/vitapoint/internal/featuregate"
	"github.com/vitapointapp/vitapoint/internal/logging"
	"github.com/vitapointapp/vitapoint/internal/notify"
	"github.com/vitapointapp/vitapoint/internal/server"
)

func main() {
	_ = godotenv.Load() // allow .env for local runs

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("invalid timezone %q: %v", cfg.Timezone, err)
	}

	fallback := featuregate.Static(cfg.Flags...)
	var gate featuregate.Gate = fallback
	if cfg.FlagURL != "" {
		gate = featuregate.NewClient(featuregate.Config{
			URL: cfg.FlagURL,
			TTL: cfg.FlagTTL,
		}, fallback, logger.With("component", "featuregate"))
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhook(notify.WebhookConfig{
			URL:    cfg.WebhookURL,
			Secret: cfg.WebhookSecret,
		}, logger.With("component", "notify"))
	}

	srv := server.New(db, server.Options{
		Gate:          gate,
		Notifier:      notifier,
		Resolver:      auth.ParseStaticTokens(cfg.APITokens),
		Location:      loc,
		DedupWindow:   cfg.DedupWindow,
		RatePerSecond: cfg.RateLimitPerSecond,
		RateBurst:     cfg.RateLimitBurst,
	}, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Sweep idle rate-limiter keys in the background.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			srv.RateLimiter().Cleanup(30 * time.Minute)
		}
	}()

	go func() {
		fmt.Printf("vitapoint running at http://localhost:%s\n", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
