package store

import (
	"database/sql"
	"fmt"

	"github.com/mfarouk/hunterhall/internal/model"
)

type SubmissionStore struct {
	db *sql.DB
}

func NewSubmissionStore(db *sql.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

const submissionCols = `id, player_id, task_id, log_date, value, xp_gained, completed, created_at, updated_at`

func scanSubmission(scanner interface{ Scan(...any) error }) (*model.Submission, error) {
	var sub model.Submission
	var value string
	err := scanner.Scan(
		&sub.ID, &sub.PlayerID, &sub.TaskID, &sub.LogDate, &value,
		&sub.XPGained, &sub.Completed, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sub.Value = []byte(value)
	return &sub, nil
}

// Upsert records a submission, overwriting any prior answer for the same
// (player, task, day) key.
func (s *SubmissionStore) Upsert(sub *model.Submission) (*model.Submission, error) {
	_, err := s.db.Exec(`INSERT INTO submissions (player_id, task_id, log_date, value, xp_gained, completed)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (player_id, task_id, log_date) DO UPDATE SET
			value = excluded.value,
			xp_gained = excluded.xp_gained,
			completed = excluded.completed,
			updated_at = CURRENT_TIMESTAMP`,
		sub.PlayerID, sub.TaskID, sub.LogDate, string(sub.Value), sub.XPGained, sub.Completed,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert submission: %w", err)
	}
	return s.Get(sub.PlayerID, sub.TaskID, sub.LogDate)
}

func (s *SubmissionStore) Get(playerID, taskID, logDate string) (*model.Submission, error) {
	row := s.db.QueryRow(
		`SELECT `+submissionCols+` FROM submissions WHERE player_id = ? AND task_id = ? AND log_date = ?`,
		playerID, taskID, logDate,
	)
	sub, err := scanSubmission(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// ListForDay returns all of a player's submissions for one quest day,
// keyed by task id.
func (s *SubmissionStore) ListForDay(playerID, logDate string) (map[string]model.Submission, error) {
	rows, err := s.db.Query(
		`SELECT `+submissionCols+` FROM submissions WHERE player_id = ? AND log_date = ?`,
		playerID, logDate,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	subs := make(map[string]model.Submission)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs[sub.TaskID] = *sub
	}
	return subs, rows.Err()
}

// History returns a player's most recent submissions, newest first.
func (s *SubmissionStore) History(playerID string, limit int) ([]model.Submission, error) {
	rows, err := s.db.Query(
		`SELECT `+submissionCols+` FROM submissions WHERE player_id = ?
		 ORDER BY log_date DESC, updated_at DESC LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("submission history: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}
