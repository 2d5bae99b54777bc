package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mfarouk/hunterhall/internal/model"
)

type BuffStore struct {
	db *sql.DB
}

func NewBuffStore(db *sql.DB) *BuffStore {
	return &BuffStore{db: db}
}

const buffCols = `id, player_id, kind, category, multiplier, expires_at, created_at`

func scanBuff(scanner interface{ Scan(...any) error }) (*model.Buff, error) {
	var b model.Buff
	var expires sql.NullTime
	err := scanner.Scan(&b.ID, &b.PlayerID, &b.Kind, &b.Category, &b.Multiplier, &expires, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if expires.Valid {
		b.ExpiresAt = &expires.Time
	}
	return &b, nil
}

func (s *BuffStore) Create(b *model.Buff) (*model.Buff, error) {
	if b.Category == "" {
		b.Category = model.BuffCategoryAll
	}
	if b.Multiplier == 0 {
		b.Multiplier = 1
	}
	res, err := s.db.Exec(
		`INSERT INTO buffs (player_id, kind, category, multiplier, expires_at) VALUES (?, ?, ?, ?, ?)`,
		b.PlayerID, b.Kind, b.Category, b.Multiplier, b.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert buff: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BuffStore) GetByID(id int64) (*model.Buff, error) {
	row := s.db.QueryRow(`SELECT `+buffCols+` FROM buffs WHERE id = ?`, id)
	b, err := scanBuff(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get buff: %w", err)
	}
	return b, nil
}

// ListActive returns a player's unexpired buffs. Expired rows are ignored
// here and swept separately; nothing depends on their prompt removal.
func (s *BuffStore) ListActive(playerID string, now time.Time) ([]model.Buff, error) {
	rows, err := s.db.Query(
		`SELECT `+buffCols+` FROM buffs WHERE player_id = ? AND (expires_at IS NULL OR expires_at > ?)`,
		playerID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("list buffs: %w", err)
	}
	defer rows.Close()

	var buffs []model.Buff
	for rows.Next() {
		b, err := scanBuff(rows)
		if err != nil {
			return nil, fmt.Errorf("scan buff: %w", err)
		}
		buffs = append(buffs, *b)
	}
	return buffs, rows.Err()
}

// Consume deletes a buff; reports whether it still existed. The judgment
// cycle uses this to spend streak protection exactly once.
func (s *BuffStore) Consume(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM buffs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("consume buff: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume buff rows: %w", err)
	}
	return n > 0, nil
}

// DeleteExpired sweeps buffs that have passed their expiry.
func (s *BuffStore) DeleteExpired(now time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM buffs WHERE expires_at IS NOT NULL AND expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired buffs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired rows: %w", err)
	}
	return n, nil
}
