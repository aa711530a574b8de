package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/vitapointapp/vitapoint/internal/auth"
	"github.com/vitapointapp/vitapoint/internal/donation"
	"github.com/vitapointapp/vitapoint/internal/featuregate"
	"github.com/vitapointapp/vitapoint/internal/handler"
	"github.com/vitapointapp/vitapoint/internal/middleware"
	"github.com/vitapointapp/vitapoint/internal/mission"
	"github.com/vitapointapp/vitapoint/internal/notify"
	"github.com/vitapointapp/vitapoint/internal/reward"
	"github.com/vitapointapp/vitapoint/internal/store"
	ws "github.com/vitapointapp/vitapoint/internal/websocket"
)

// Options carries the collaborators and tunables the server needs beyond
// the database handle.
type Options struct {
	Gate        featuregate.Gate
	Notifier    notify.Notifier
	Resolver    auth.Resolver
	Location    *time.Location
	DedupWindow time.Duration

	RatePerSecond float64
	RateBurst     int
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	missionH    *handler.MissionHandler
	rewardH     *handler.RewardHandler
	donationH   *handler.DonationHandler
	pointsH     *handler.PointsHandler
	resolver    auth.Resolver
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	ledgerStore := store.NewLedgerStore(db)
	missionStore := store.NewMissionStore(db, ledgerStore)
	rewardStore := store.NewRewardStore(db, ledgerStore)
	donationStore := store.NewDonationStore(db, ledgerStore)

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}

	missionEngine := mission.NewEngine(missionStore, opts.Gate, loc, opts.DedupWindow, logger.With("component", "mission"))
	rewardEngine := reward.NewEngine(rewardStore, ledgerStore, opts.Gate, logger.With("component", "reward"))
	donationEngine := donation.NewEngine(donationStore, opts.Gate, logger.With("component", "donation"))

	ratePerSecond := opts.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	rateBurst := opts.RateBurst
	if rateBurst <= 0 {
		rateBurst = 10
	}

	return &Server{
		db:          db,
		hub:         hub,
		missionH:    handler.NewMissionHandler(missionEngine, hub, notifier, logger.With("component", "mission_handler")),
		rewardH:     handler.NewRewardHandler(rewardEngine, hub, notifier, logger.With("component", "reward_handler")),
		donationH:   handler.NewDonationHandler(donationEngine, hub, notifier, logger.With("component", "donation_handler")),
		pointsH:     handler.NewPointsHandler(ledgerStore, logger.With("component", "points_handler")),
		resolver:    opts.Resolver,
		rateLimiter: middleware.NewRateLimiter(ratePerSecond, rateBurst),
		logger:      logger,
	}
}

// Hub returns the websocket hub, exposed for shutdown accounting.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.resolver)
	outerMux.Handle("/", authMiddleware(protectedMux))

	handlerChain := middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
	return middleware.WithRequestID(handlerChain)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	limited := middleware.RateLimit(s.rateLimiter)

	// Mission API routes
	mux.Handle("POST /api/missions/checkin", limited(http.HandlerFunc(s.missionH.Checkin)))
	mux.HandleFunc("GET /api/missions", s.missionH.List)

	// Reward API routes
	mux.Handle("POST /api/rewards/redeem", limited(http.HandlerFunc(s.rewardH.Redeem)))
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("GET /api/rewards/redemptions", s.rewardH.History)

	// Donation API routes
	mux.Handle("POST /api/donate", limited(http.HandlerFunc(s.donationH.Donate)))
	mux.HandleFunc("GET /api/donations", s.donationH.History)

	// Points API routes
	mux.HandleFunc("GET /api/points/balance", s.pointsH.Balance)
	mux.HandleFunc("GET /api/points/history", s.pointsH.History)

	// Live event stream
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "ws_handler")))
}
