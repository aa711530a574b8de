package store

import (
	"database/sql"
	"fmt"

	"github.com/vitapointapp/vitapoint/internal/apperr"
	"github.com/vitapointapp/vitapoint/internal/model"
)

// LedgerStore owns the append-only points_ledger table. Entries are never
// updated or deleted; a balance is always computed as SUM(delta).
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

const ledgerCols = `id, user_id, delta, reason, reference_id, created_at`

func scanLedgerEntry(scanner interface{ Scan(...any) error }) (*model.LedgerEntry, error) {
	var e model.LedgerEntry
	var reason string

	err := scanner.Scan(&e.ID, &e.UserID, &e.Delta, &reason, &e.ReferenceID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	e.Reason = model.LedgerReason(reason)
	return &e, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Balance returns the user's current balance.
func (s *LedgerStore) Balance(userID string) (int, error) {
	return balance(s.db, userID)
}

func balance(q querier, userID string) (int, error) {
	var sum int
	err := q.QueryRow(
		`SELECT COALESCE(SUM(delta), 0) FROM points_ledger WHERE user_id = ?`,
		userID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}
	return sum, nil
}

// CreditTx appends a positive entry inside the caller's transaction and
// returns the new entry id.
func (s *LedgerStore) CreditTx(tx *sql.Tx, userID string, amount int, reason model.LedgerReason, referenceID int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	result, err := tx.Exec(
		`INSERT INTO points_ledger (user_id, delta, reason, reference_id) VALUES (?, ?, ?, ?)`,
		userID, amount, string(reason), referenceID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert credit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// DebitTx appends a negative entry inside the caller's transaction. The
// debit row is inserted first and the sum re-read in the same transaction;
// if the balance would go negative it returns apperr.ErrInsufficientPoints
// and the caller must roll back. Two concurrent debits therefore cannot
// both pass the check against a stale balance.
func (s *LedgerStore) DebitTx(tx *sql.Tx, userID string, amount int, reason model.LedgerReason, referenceID int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	result, err := tx.Exec(
		`INSERT INTO points_ledger (user_id, delta, reason, reference_id) VALUES (?, ?, ?, ?)`,
		userID, -amount, string(reason), referenceID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert debit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	sum, err := balance(tx, userID)
	if err != nil {
		return 0, err
	}
	if sum < 0 {
		return 0, apperr.ErrInsufficientPoints
	}
	return id, nil
}

// ListByUser returns the user's entries, newest first.
func (s *LedgerStore) ListByUser(userID string, limit int) ([]model.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT `+ledgerCols+` FROM points_ledger WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// GetPointBalance computes the earned/spent/balance projection for a user.
func (s *LedgerStore) GetPointBalance(userID string) (*model.PointBalance, error) {
	var earned, spent sql.NullInt64
	err := s.db.QueryRow(
		`SELECT
			COALESCE(SUM(CASE WHEN delta > 0 THEN delta ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN delta < 0 THEN -delta ELSE 0 END), 0)
		FROM points_ledger WHERE user_id = ?`,
		userID,
	).Scan(&earned, &spent)
	if err != nil {
		return nil, fmt.Errorf("sum ledger totals: %w", err)
	}

	return &model.PointBalance{
		UserID:      userID,
		TotalEarned: int(earned.Int64),
		TotalSpent:  int(spent.Int64),
		Balance:     int(earned.Int64 - spent.Int64),
	}, nil
}
