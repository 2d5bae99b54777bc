package model

import (
	"encoding/json"
	"time"
)

// Submission is a player's recorded answer for one task on one quest day.
// At most one row exists per (player, task, log date); re-submitting the
// same key overwrites the row, which lets a player correct an entry until
// the day is judged. XPGained and Completed are scored at record time from
// the raw value; aspect experience itself is only credited by the judgment
// cycle.
type Submission struct {
	ID       int64           `json:"id"`
	PlayerID string          `json:"player_id"`
	TaskID   string          `json:"task_id"`
	LogDate  string          `json:"log_date"` // YYYY-MM-DD
	Value    json.RawMessage `json:"value"`

	XPGained  int64 `json:"xp_gained"`
	Completed bool  `json:"completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
