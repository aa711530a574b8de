package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vitapointapp/vitapoint/internal/apperr"
	"github.com/vitapointapp/vitapoint/internal/model"
)

type MissionStore struct {
	db     *sql.DB
	ledger *LedgerStore
}

func NewMissionStore(db *sql.DB, ledger *LedgerStore) *MissionStore {
	return &MissionStore{db: db, ledger: ledger}
}

// --- Mission definition methods ---

func scanMission(scanner interface{ Scan(...any) error }) (*model.Mission, error) {
	var m model.Mission
	var active int

	err := scanner.Scan(&m.ID, &m.Code, &m.Title, &m.Cluster, &m.Energy, &m.MaxPerDay, &active)
	if err != nil {
		return nil, err
	}

	m.Active = active != 0
	return &m, nil
}

const missionCols = `id, code, title, cluster, energy, max_per_day, active`

func (s *MissionStore) GetByID(id int64) (*model.Mission, error) {
	row := s.db.QueryRow(`SELECT `+missionCols+` FROM missions WHERE id = ?`, id)
	m, err := scanMission(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mission: %w", err)
	}
	return m, nil
}

func (s *MissionStore) GetByCode(code string) (*model.Mission, error) {
	row := s.db.QueryRow(`SELECT `+missionCols+` FROM missions WHERE code = ?`, code)
	m, err := scanMission(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mission by code: %w", err)
	}
	return m, nil
}

// ListActive returns active missions grouped by cluster, then title.
func (s *MissionStore) ListActive() ([]model.Mission, error) {
	rows, err := s.db.Query(`SELECT ` + missionCols + ` FROM missions WHERE active = 1 ORDER BY cluster ASC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active missions: %w", err)
	}
	defer rows.Close()

	var missions []model.Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mission: %w", err)
		}
		missions = append(missions, *m)
	}
	return missions, rows.Err()
}

// SetActive toggles whether a mission is offered. Inactive missions stay
// in the table so old logs keep their foreign key.
func (s *MissionStore) SetActive(id int64, active bool) error {
	val := 0
	if active {
		val = 1
	}
	result, err := s.db.Exec(`UPDATE missions SET active = ? WHERE id = ?`, val, id)
	if err != nil {
		return fmt.Errorf("set mission active: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return apperr.New(apperr.CodeNotFound, "mission not found")
	}
	return nil
}

// --- Mission log methods ---

func scanMissionLog(scanner interface{ Scan(...any) error }) (*model.MissionLog, error) {
	var l model.MissionLog
	var metadataRaw string

	err := scanner.Scan(&l.ID, &l.UserID, &l.MissionID, &l.TS, &l.Points, &metadataRaw)
	if err != nil {
		return nil, err
	}

	if metadataRaw != "" && metadataRaw != "{}" {
		_ = json.Unmarshal([]byte(metadataRaw), &l.Metadata)
	}
	return &l, nil
}

const missionLogCols = `id, user_id, mission_id, ts, points, metadata`

// CountBetween counts a user's logs for one mission with ts in [from, to).
func (s *MissionStore) CountBetween(userID string, missionID int64, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM mission_logs WHERE user_id = ? AND mission_id = ? AND ts >= ? AND ts < ?`,
		userID, missionID, from.UTC(), to.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count mission logs: %w", err)
	}
	return count, nil
}

// CountsBetween returns per-mission log counts for a user with ts in [from, to).
func (s *MissionStore) CountsBetween(userID string, from, to time.Time) (map[int64]int, error) {
	rows, err := s.db.Query(
		`SELECT mission_id, COUNT(*) FROM mission_logs WHERE user_id = ? AND ts >= ? AND ts < ? GROUP BY mission_id`,
		userID, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("count mission logs: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var missionID int64
		var count int
		if err := rows.Scan(&missionID, &count); err != nil {
			return nil, fmt.Errorf("scan mission log count: %w", err)
		}
		counts[missionID] = count
	}
	return counts, rows.Err()
}

// EnergyBetween sums the points of a user's logs with ts in [from, to).
func (s *MissionStore) EnergyBetween(userID string, from, to time.Time) (int, error) {
	var sum sql.NullInt64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(points), 0) FROM mission_logs WHERE user_id = ? AND ts >= ? AND ts < ?`,
		userID, from.UTC(), to.UTC(),
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum mission log points: %w", err)
	}
	return int(sum.Int64), nil
}

// Complete records a check-in: it enforces the daily cap and the dedup
// window, inserts the log row, and credits the ledger, all in one
// transaction. The bool reports whether a new log was created; on a
// dedup hit the prior log is returned with created = false.
func (s *MissionStore) Complete(userID string, m *model.Mission, now, from, to time.Time, dedup time.Duration, metadata map[string]string) (*model.MissionLog, bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM mission_logs WHERE user_id = ? AND mission_id = ? AND ts >= ? AND ts < ?`,
		userID, m.ID, from.UTC(), to.UTC(),
	).Scan(&count)
	if err != nil {
		return nil, false, fmt.Errorf("count mission logs: %w", err)
	}
	if count >= m.MaxPerDay {
		return nil, false, apperr.ErrMissionLimit
	}

	row := tx.QueryRow(
		`SELECT `+missionLogCols+` FROM mission_logs WHERE user_id = ? AND mission_id = ? ORDER BY ts DESC, id DESC LIMIT 1`,
		userID, m.ID,
	)
	last, err := scanMissionLog(row)
	if err != nil && err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("get last mission log: %w", err)
	}
	if last != nil && dedup > 0 && now.Sub(last.TS) < dedup {
		// Same tap arriving twice; hand back the prior result.
		return last, false, nil
	}

	metadataJSON := []byte("{}")
	if len(metadata) > 0 {
		metadataJSON, err = json.Marshal(metadata)
		if err != nil {
			return nil, false, fmt.Errorf("marshal metadata: %w", err)
		}
	}

	result, err := tx.Exec(
		`INSERT INTO mission_logs (user_id, mission_id, ts, points, metadata) VALUES (?, ?, ?, ?, ?)`,
		userID, m.ID, now.UTC(), m.Energy, string(metadataJSON),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert mission log: %w", err)
	}
	logID, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := s.ledger.CreditTx(tx, userID, m.Energy, model.ReasonMissionReward, logID); err != nil {
		return nil, false, err
	}

	row = tx.QueryRow(`SELECT `+missionLogCols+` FROM mission_logs WHERE id = ?`, logID)
	log, err := scanMissionLog(row)
	if err != nil {
		return nil, false, fmt.Errorf("get mission log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit tx: %w", err)
	}
	return log, true, nil
}
