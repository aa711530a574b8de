// Package mission implements the daily mission check-in engine.
package mission

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vitapointapp/vitapoint/internal/apperr"
	"github.com/vitapointapp/vitapoint/internal/featuregate"
	"github.com/vitapointapp/vitapoint/internal/model"
	"github.com/vitapointapp/vitapoint/internal/store"
)

// FlagMissions gates every mission operation.
const FlagMissions = "missions"

// DefaultDedupWindow is how close together two check-ins for the same
// mission must be to count as one tap. The window is a heuristic, not a
// lock: two connections racing inside it can still double-credit. If
// exactly-once is ever required, a client-supplied idempotency key stored
// with the log entry replaces this.
const DefaultDedupWindow = 30 * time.Second

// CheckinResult is returned from a check-in, including a repeated one.
type CheckinResult struct {
	MissionID    int64              `json:"mission_id"`
	Added        int                `json:"added"`
	Status       string             `json:"status"`
	TodaySummary model.TodaySummary `json:"today_summary"`
}

// Engine evaluates mission availability and records check-ins.
type Engine struct {
	missions    *store.MissionStore
	gate        featuregate.Gate
	loc         *time.Location
	dedupWindow time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// NewEngine creates the check-in engine. loc defines the user-local
// calendar day missions reset on; dedupWindow <= 0 falls back to the
// default.
func NewEngine(missions *store.MissionStore, gate featuregate.Gate, loc *time.Location, dedupWindow time.Duration, logger *slog.Logger) *Engine {
	if dedupWindow <= 0 {
		dedupWindow = DefaultDedupWindow
	}
	return &Engine{
		missions:    missions,
		gate:        gate,
		loc:         loc,
		dedupWindow: dedupWindow,
		now:         time.Now,
		logger:      logger,
	}
}

// SetNow overrides the clock. Tests only.
func (e *Engine) SetNow(now func() time.Time) { e.now = now }

func (e *Engine) dayBounds(now time.Time) (time.Time, time.Time) {
	local := now.In(e.loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, e.loc)
	return from, from.AddDate(0, 0, 1)
}

// Checkin records one completion of a mission for the user. A repeat tap
// inside the dedup window returns the day's state with Added = 0.
func (e *Engine) Checkin(ctx context.Context, userID string, missionID int64) (*CheckinResult, error) {
	if !e.gate.Enabled(ctx, FlagMissions) {
		return nil, apperr.ErrFeatureDisabled
	}

	m, err := e.missions.GetByID(missionID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}
	if m == nil || !m.Active {
		return nil, apperr.New(apperr.CodeNotFound, "mission not found")
	}

	now := e.now()
	from, to := e.dayBounds(now)

	_, created, err := e.missions.Complete(userID, m, now, from, to, e.dedupWindow, nil)
	if err != nil {
		var coded *apperr.Error
		if errors.As(err, &coded) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}

	added := 0
	if created {
		added = 1
	} else {
		e.logger.Debug("duplicate check-in merged", "user_id", userID, "mission_id", missionID)
	}

	count, err := e.missions.CountBetween(userID, missionID, from, to)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}

	summary, err := e.todaySummary(userID, from, to)
	if err != nil {
		return nil, err
	}

	return &CheckinResult{
		MissionID:    missionID,
		Added:        added,
		Status:       statusFor(count, m.MaxPerDay),
		TodaySummary: *summary,
	}, nil
}

// List returns today's per-mission state for the user.
func (e *Engine) List(ctx context.Context, userID string) ([]model.MissionStatus, *model.TodaySummary, error) {
	if !e.gate.Enabled(ctx, FlagMissions) {
		return nil, nil, apperr.ErrFeatureDisabled
	}

	from, to := e.dayBounds(e.now())

	missions, err := e.missions.ListActive()
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}
	counts, err := e.missions.CountsBetween(userID, from, to)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}

	statuses := make([]model.MissionStatus, 0, len(missions))
	for _, m := range missions {
		statuses = append(statuses, model.MissionStatus{
			Mission:        m,
			Status:         statusFor(counts[m.ID], m.MaxPerDay),
			CompletedCount: counts[m.ID],
		})
	}

	summary, err := e.todaySummary(userID, from, to)
	if err != nil {
		return nil, nil, err
	}
	return statuses, summary, nil
}

func (e *Engine) todaySummary(userID string, from, to time.Time) (*model.TodaySummary, error) {
	missions, err := e.missions.ListActive()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}
	counts, err := e.missions.CountsBetween(userID, from, to)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}
	earned, err := e.missions.EnergyBetween(userID, from, to)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBUnavailable, "system busy", err)
	}

	summary := model.TodaySummary{
		MissionsTotal: len(missions),
		EnergyEarned:  earned,
	}
	for _, m := range missions {
		summary.EnergyAvailable += m.Energy * m.MaxPerDay
		if counts[m.ID] >= m.MaxPerDay {
			summary.MissionsCompleted++
		}
	}
	return &summary, nil
}

func statusFor(count, maxPerDay int) string {
	if count >= maxPerDay {
		return "done"
	}
	return "pending"
}
