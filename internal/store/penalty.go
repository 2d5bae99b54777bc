package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mfarouk/hunterhall/internal/model"
)

type PenaltyStore struct {
	db *sql.DB
}

func NewPenaltyStore(db *sql.DB) *PenaltyStore {
	return &PenaltyStore{db: db}
}

const penaltyCols = `id, player_id, amount, currency, reason, status, proof_url, created_at, resolved_at`

func scanPenalty(scanner interface{ Scan(...any) error }) (*model.Penalty, error) {
	var p model.Penalty
	var resolved sql.NullTime
	err := scanner.Scan(&p.ID, &p.PlayerID, &p.Amount, &p.Currency, &p.Reason, &p.Status, &p.ProofURL, &p.CreatedAt, &resolved)
	if err != nil {
		return nil, err
	}
	if resolved.Valid {
		p.ResolvedAt = &resolved.Time
	}
	return &p, nil
}

func (s *PenaltyStore) Create(p *model.Penalty) (*model.Penalty, error) {
	if p.Status == "" {
		p.Status = model.PenaltyPending
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	res, err := s.db.Exec(
		`INSERT INTO penalties (player_id, amount, currency, reason, status) VALUES (?, ?, ?, ?, ?)`,
		p.PlayerID, p.Amount, p.Currency, p.Reason, p.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("insert penalty: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PenaltyStore) GetByID(id int64) (*model.Penalty, error) {
	row := s.db.QueryRow(`SELECT `+penaltyCols+` FROM penalties WHERE id = ?`, id)
	p, err := scanPenalty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get penalty: %w", err)
	}
	return p, nil
}

// ListPending returns a player's unresolved penalties, oldest first.
func (s *PenaltyStore) ListPending(playerID string) ([]model.Penalty, error) {
	rows, err := s.db.Query(
		`SELECT `+penaltyCols+` FROM penalties WHERE player_id = ? AND status = ? ORDER BY created_at ASC`,
		playerID, model.PenaltyPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending penalties: %w", err)
	}
	defer rows.Close()

	var penalties []model.Penalty
	for rows.Next() {
		p, err := scanPenalty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan penalty: %w", err)
		}
		penalties = append(penalties, *p)
	}
	return penalties, rows.Err()
}

// Resolve settles a pending penalty with proof; reports false if it was
// not pending.
func (s *PenaltyStore) Resolve(id int64, proofURL string, at time.Time) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE penalties SET status = ?, proof_url = ?, resolved_at = ? WHERE id = ? AND status = ?`,
		model.PenaltyResolved, proofURL, at, id, model.PenaltyPending,
	)
	if err != nil {
		return false, fmt.Errorf("resolve penalty: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve penalty rows: %w", err)
	}
	return n > 0, nil
}
