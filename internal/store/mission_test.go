package store

import (
	"errors"
	"testing"
	"time"

	"github.com/vitapointapp/vitapoint/internal/apperr"
)

func dayOf(t *testing.T) (time.Time, time.Time, time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	from := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	return now, from, from.Add(24 * time.Hour)
}

func TestGetMissionByCode(t *testing.T) {
	_, ms, _, _ := setupTestDB(t)

	m, err := ms.GetByCode("water")
	if err != nil {
		t.Fatalf("get mission: %v", err)
	}
	if m == nil {
		t.Fatal("expected seeded water mission")
	}
	if m.Energy != 4 {
		t.Errorf("energy = %d, want 4", m.Energy)
	}
	if m.MaxPerDay != 3 {
		t.Errorf("max_per_day = %d, want 3", m.MaxPerDay)
	}
	if m.Cluster != "hydration" {
		t.Errorf("cluster = %q, want %q", m.Cluster, "hydration")
	}

	missing, err := ms.GetByCode("nope")
	if err != nil {
		t.Fatalf("get missing mission: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown code, got %+v", missing)
	}
}

func TestListActiveMissions(t *testing.T) {
	_, ms, _, _ := setupTestDB(t)

	missions, err := ms.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(missions) == 0 {
		t.Fatal("expected seeded missions")
	}
	for _, m := range missions {
		if !m.Active {
			t.Errorf("mission %q listed but inactive", m.Code)
		}
	}
}

func TestCompleteCreditsLedger(t *testing.T) {
	ls, ms, _, _ := setupTestDB(t)

	m, err := ms.GetByCode("water")
	if err != nil || m == nil {
		t.Fatalf("get mission: %v", err)
	}

	now, from, to := dayOf(t)
	log, created, err := ms.Complete("u1", m, now, from, to, 0, map[string]string{"source": "app"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !created {
		t.Error("expected created = true")
	}
	if log.Points != 4 {
		t.Errorf("log points = %d, want 4", log.Points)
	}
	if log.Metadata["source"] != "app" {
		t.Errorf("metadata source = %q, want %q", log.Metadata["source"], "app")
	}

	bal, err := ls.Balance("u1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal != 4 {
		t.Errorf("balance = %d, want 4", bal)
	}
}

func TestCompleteEnforcesDailyCap(t *testing.T) {
	ls, ms, _, _ := setupTestDB(t)

	m, err := ms.GetByCode("water")
	if err != nil || m == nil {
		t.Fatalf("get mission: %v", err)
	}

	now, from, to := dayOf(t)
	for i := 0; i < 3; i++ {
		_, created, err := ms.Complete("u1", m, now.Add(time.Duration(i)*time.Hour), from, to, 0, nil)
		if err != nil {
			t.Fatalf("complete %d: %v", i+1, err)
		}
		if !created {
			t.Fatalf("complete %d: expected created = true", i+1)
		}
	}

	_, _, err = ms.Complete("u1", m, now.Add(4*time.Hour), from, to, 0, nil)
	if !errors.Is(err, apperr.ErrMissionLimit) {
		t.Fatalf("expected ErrMissionLimit on 4th check-in, got %v", err)
	}

	bal, err := ls.Balance("u1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal != 12 {
		t.Errorf("balance = %d, want 12 (3 x 4 energy)", bal)
	}

	// The cap is per user, not global.
	_, created, err := ms.Complete("u2", m, now, from, to, 0, nil)
	if err != nil {
		t.Fatalf("complete other user: %v", err)
	}
	if !created {
		t.Error("expected created = true for other user")
	}
}

func TestCompleteDedupWindow(t *testing.T) {
	ls, ms, _, _ := setupTestDB(t)

	m, err := ms.GetByCode("water")
	if err != nil || m == nil {
		t.Fatalf("get mission: %v", err)
	}

	now, from, to := dayOf(t)
	first, created, err := ms.Complete("u1", m, now, from, to, 30*time.Second, nil)
	if err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if !created {
		t.Fatal("expected first check-in to create a log")
	}

	// A second tap inside the window returns the prior log untouched.
	second, created, err := ms.Complete("u1", m, now.Add(5*time.Second), from, to, 30*time.Second, nil)
	if err != nil {
		t.Fatalf("duplicate complete: %v", err)
	}
	if created {
		t.Error("expected created = false inside dedup window")
	}
	if second.ID != first.ID {
		t.Errorf("dedup returned log %d, want prior log %d", second.ID, first.ID)
	}

	bal, err := ls.Balance("u1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal != 4 {
		t.Errorf("balance = %d, want 4 (no double credit)", bal)
	}

	// Past the window the same mission counts again.
	_, created, err = ms.Complete("u1", m, now.Add(time.Minute), from, to, 30*time.Second, nil)
	if err != nil {
		t.Fatalf("complete after window: %v", err)
	}
	if !created {
		t.Error("expected created = true after dedup window")
	}
}

func TestCountsAndEnergyBetween(t *testing.T) {
	_, ms, _, _ := setupTestDB(t)

	water, err := ms.GetByCode("water")
	if err != nil || water == nil {
		t.Fatalf("get water: %v", err)
	}
	steps, err := ms.GetByCode("steps_6000")
	if err != nil || steps == nil {
		t.Fatalf("get steps: %v", err)
	}

	now, from, to := dayOf(t)
	for i := 0; i < 2; i++ {
		if _, _, err := ms.Complete("u1", water, now.Add(time.Duration(i)*time.Hour), from, to, 0, nil); err != nil {
			t.Fatalf("complete water: %v", err)
		}
	}
	if _, _, err := ms.Complete("u1", steps, now, from, to, 0, nil); err != nil {
		t.Fatalf("complete steps: %v", err)
	}

	counts, err := ms.CountsBetween("u1", from, to)
	if err != nil {
		t.Fatalf("counts between: %v", err)
	}
	if counts[water.ID] != 2 {
		t.Errorf("water count = %d, want 2", counts[water.ID])
	}
	if counts[steps.ID] != 1 {
		t.Errorf("steps count = %d, want 1", counts[steps.ID])
	}

	energy, err := ms.EnergyBetween("u1", from, to)
	if err != nil {
		t.Fatalf("energy between: %v", err)
	}
	if want := 2*water.Energy + steps.Energy; energy != want {
		t.Errorf("energy = %d, want %d", energy, want)
	}

	// Logs outside the range do not count.
	count, err := ms.CountBetween("u1", water.ID, to, to.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("count between: %v", err)
	}
	if count != 0 {
		t.Errorf("next-day count = %d, want 0", count)
	}
}
