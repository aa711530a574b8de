package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/vitapointapp/vitapoint/internal/apperr"
	"github.com/vitapointapp/vitapoint/internal/model"
)

type RewardStore struct {
	db     *sql.DB
	ledger *LedgerStore
}

func NewRewardStore(db *sql.DB, ledger *LedgerStore) *RewardStore {
	return &RewardStore{db: db, ledger: ledger}
}

// --- Catalog methods ---

func scanRewardItem(scanner interface{ Scan(...any) error }) (*model.RewardItem, error) {
	var item model.RewardItem
	var inventory sql.NullInt64
	var metadataRaw string

	err := scanner.Scan(&item.ID, &item.Title, &item.Subtitle, &item.ItemType, &item.Cost, &inventory, &metadataRaw)
	if err != nil {
		return nil, err
	}

	if inventory.Valid {
		n := int(inventory.Int64)
		item.Inventory = &n
	}
	if metadataRaw != "" && metadataRaw != "{}" {
		_ = json.Unmarshal([]byte(metadataRaw), &item.Metadata)
	}
	return &item, nil
}

const rewardItemCols = `id, title, subtitle, item_type, cost, inventory, metadata`

func (s *RewardStore) GetByID(id int64) (*model.RewardItem, error) {
	row := s.db.QueryRow(`SELECT `+rewardItemCols+` FROM reward_items WHERE id = ?`, id)
	item, err := scanRewardItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward item: %w", err)
	}
	return item, nil
}

// List returns all catalog items, cheapest first.
func (s *RewardStore) List() ([]model.RewardItem, error) {
	rows, err := s.db.Query(`SELECT ` + rewardItemCols + ` FROM reward_items ORDER BY cost ASC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list reward items: %w", err)
	}
	defer rows.Close()

	var items []model.RewardItem
	for rows.Next() {
		item, err := scanRewardItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// --- Redemption methods ---

func scanRedemption(scanner interface{ Scan(...any) error }) (*model.RewardRedemption, error) {
	var r model.RewardRedemption
	err := scanner.Scan(&r.ID, &r.ExternalID, &r.UserID, &r.ItemID, &r.CostAtRedemption, &r.Status, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const redemptionCols = `id, external_id, user_id, item_id, cost_at_redemption, status, created_at`

// Redeem exchanges points for an item. The inventory re-check, the
// conditional decrement, the ledger debit, and the redemption row all
// happen in one transaction, so a stale catalog read is never acted on:
// two concurrent redemptions of the last unit cannot both succeed.
func (s *RewardStore) Redeem(userID string, itemID int64) (*model.RewardRedemption, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var cost int
	var inventory sql.NullInt64
	err = tx.QueryRow(`SELECT cost, inventory FROM reward_items WHERE id = ?`, itemID).Scan(&cost, &inventory)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.CodeNotFound, "reward not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get reward item: %w", err)
	}

	if inventory.Valid {
		result, err := tx.Exec(
			`UPDATE reward_items SET inventory = inventory - 1 WHERE id = ? AND inventory > 0`,
			itemID,
		)
		if err != nil {
			return nil, fmt.Errorf("decrement inventory: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return nil, apperr.ErrOutOfStock
		}
	}

	result, err := tx.Exec(
		`INSERT INTO reward_redemptions (external_id, user_id, item_id, cost_at_redemption, status) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, itemID, cost, model.RedemptionCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("insert redemption: %w", err)
	}
	redemptionID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := s.ledger.DebitTx(tx, userID, cost, model.ReasonRewardRedemption, redemptionID); err != nil {
		return nil, err
	}

	row := tx.QueryRow(`SELECT `+redemptionCols+` FROM reward_redemptions WHERE id = ?`, redemptionID)
	redemption, err := scanRedemption(row)
	if err != nil {
		return nil, fmt.Errorf("get redemption: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return redemption, nil
}

func (s *RewardStore) ListRedemptionsByUser(userID string) ([]model.RewardRedemption, error) {
	rows, err := s.db.Query(
		`SELECT `+redemptionCols+` FROM reward_redemptions WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []model.RewardRedemption
	for rows.Next() {
		r, err := scanRedemption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		redemptions = append(redemptions, *r)
	}
	return redemptions, rows.Err()
}
