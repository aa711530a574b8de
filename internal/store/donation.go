package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vitapointapp/vitapoint/internal/model"
)

type DonationStore struct {
	db     *sql.DB
	ledger *LedgerStore
}

func NewDonationStore(db *sql.DB, ledger *LedgerStore) *DonationStore {
	return &DonationStore{db: db, ledger: ledger}
}

func scanDonation(scanner interface{ Scan(...any) error }) (*model.Donation, error) {
	var d model.Donation
	err := scanner.Scan(
		&d.ID, &d.ExternalID, &d.UserID, &d.Provider,
		&d.AmountPoints, &d.AmountVND, &d.Campaign, &d.Note,
		&d.Status, &d.PaymentURL, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const donationCols = `id, external_id, user_id, provider, amount_points, amount_vnd, campaign, note, status, payment_url, created_at`

// Create inserts the donation record and, when points are involved,
// debits the ledger in the same transaction. Insufficient points roll the
// whole donation back.
func (s *DonationStore) Create(d *model.Donation) (*model.Donation, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO donations (external_id, user_id, provider, amount_points, amount_vnd, campaign, note, status, payment_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), d.UserID, d.Provider, d.AmountPoints, d.AmountVND,
		d.Campaign, d.Note, d.Status, d.PaymentURL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert donation: %w", err)
	}
	donationID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if d.AmountPoints > 0 {
		if _, err := s.ledger.DebitTx(tx, d.UserID, d.AmountPoints, model.ReasonDonation, donationID); err != nil {
			return nil, err
		}
	}

	row := tx.QueryRow(`SELECT `+donationCols+` FROM donations WHERE id = ?`, donationID)
	created, err := scanDonation(row)
	if err != nil {
		return nil, fmt.Errorf("get donation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

func (s *DonationStore) ListByUser(userID string) ([]model.Donation, error) {
	rows, err := s.db.Query(
		`SELECT `+donationCols+` FROM donations WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var donations []model.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		donations = append(donations, *d)
	}
	return donations, rows.Err()
}
