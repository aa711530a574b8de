package reward

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/vitapointapp/vitapoint/internal/apperr"
	"github.com/vitapointapp/vitapoint/internal/database"
	"github.com/vitapointapp/vitapoint/internal/featuregate"
	"github.com/vitapointapp/vitapoint/internal/model"
	"github.com/vitapointapp/vitapoint/internal/store"
)

func setupEngine(t *testing.T, gate featuregate.Gate) (*Engine, *store.LedgerStore, *store.MissionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ledger := store.NewLedgerStore(db)
	rewards := store.NewRewardStore(db, ledger)
	missions := store.NewMissionStore(db, ledger)
	logger := slog.New(slog.DiscardHandler)
	return NewEngine(rewards, ledger, gate, logger), ledger, missions
}

var (
	dayStart = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	dayEnd   = dayStart.Add(24 * time.Hour)
)

func nowAt(i int) time.Time { return dayStart.Add(time.Duration(9*60+i) * time.Minute) }

// earn runs check-ins until the user holds at least want points.
func earn(t *testing.T, missions *store.MissionStore, ledger *store.LedgerStore, userID string, want int) {
	t.Helper()
	all, err := missions.ListActive()
	if err != nil {
		t.Fatalf("list missions: %v", err)
	}
	for _, m := range all {
		for i := 0; i < m.MaxPerDay; i++ {
			bal, err := ledger.Balance(userID)
			if err != nil {
				t.Fatalf("balance: %v", err)
			}
			if bal >= want {
				return
			}
			if _, _, err := missions.Complete(userID, &m, nowAt(i), dayStart, dayEnd, 0, nil); err != nil {
				t.Fatalf("complete %s: %v", m.Code, err)
			}
		}
	}
	bal, _ := ledger.Balance(userID)
	if bal < want {
		t.Fatalf("could not earn %d points from seeded missions, got %d", want, bal)
	}
}

func TestListProjectsCanRedeem(t *testing.T) {
	engine, ledger, missions := setupEngine(t, featuregate.Static(FlagRewards))

	views, err := engine.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) == 0 {
		t.Fatal("expected seeded catalog")
	}
	for _, v := range views {
		if v.CanRedeem {
			t.Errorf("item %q redeemable at zero balance", v.Title)
		}
	}

	// Earn past the cheapest item and the projection flips for it only.
	cheapest := views[0]
	earn(t, missions, ledger, "u1", cheapest.Cost)

	views, err = engine.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list after earning: %v", err)
	}
	if !views[0].CanRedeem {
		t.Errorf("item %q should be redeemable at balance >= %d", views[0].Title, views[0].Cost)
	}
	last := views[len(views)-1]
	if last.CanRedeem {
		t.Errorf("item %q (cost %d) should not be redeemable yet", last.Title, last.Cost)
	}
}

func TestRedeemHappyPath(t *testing.T) {
	engine, ledger, missions := setupEngine(t, featuregate.Static(FlagRewards))

	views, err := engine.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	cheapest := views[0]
	earn(t, missions, ledger, "u1", cheapest.Cost)

	before, err := ledger.Balance("u1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}

	redemption, err := engine.Redeem(context.Background(), "u1", cheapest.ID)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if redemption.Status != model.RedemptionCompleted {
		t.Errorf("status = %q, want %q", redemption.Status, model.RedemptionCompleted)
	}

	after, err := ledger.Balance("u1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if after != before-cheapest.Cost {
		t.Errorf("balance = %d, want %d", after, before-cheapest.Cost)
	}

	history, err := engine.History(context.Background(), "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 redemption in history, got %d", len(history))
	}
	if history[0].ExternalID != redemption.ExternalID {
		t.Errorf("history external_id = %q, want %q", history[0].ExternalID, redemption.ExternalID)
	}
}

func TestRedeemInsufficientPoints(t *testing.T) {
	engine, _, _ := setupEngine(t, featuregate.Static(FlagRewards))

	views, err := engine.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	_, err = engine.Redeem(context.Background(), "u1", views[0].ID)
	if !errors.Is(err, apperr.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
}

func TestRedeemUnknownItem(t *testing.T) {
	engine, _, _ := setupEngine(t, featuregate.Static(FlagRewards))

	_, err := engine.Redeem(context.Background(), "u1", 9999)
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestGateDisabled(t *testing.T) {
	engine, _, _ := setupEngine(t, featuregate.Static())

	if _, err := engine.List(context.Background(), "u1"); !errors.Is(err, apperr.ErrFeatureDisabled) {
		t.Errorf("List: expected ErrFeatureDisabled, got %v", err)
	}
	if _, err := engine.Redeem(context.Background(), "u1", 1); !errors.Is(err, apperr.ErrFeatureDisabled) {
		t.Errorf("Redeem: expected ErrFeatureDisabled, got %v", err)
	}
	if _, err := engine.History(context.Background(), "u1"); !errors.Is(err, apperr.ErrFeatureDisabled) {
		t.Errorf("History: expected ErrFeatureDisabled, got %v", err)
	}
}
