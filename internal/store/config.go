package store

import (
	"database/sql"
	"fmt"
)

// ConfigStore is a small key/value table for engine state that must
// survive restarts: last launch day, last judgment day, spawn interval.
type ConfigStore struct {
	db *sql.DB
}

func NewConfigStore(db *sql.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// Keys used by the schedulers.
const (
	KeyLastQuestLaunch   = "last_quest_launch"
	KeyLastJudgmentRun   = "last_judgment_run"
	KeyLastFastingNotice = "last_fasting_notice"
	KeyPortalIntervalHrs = "portal_interval_hours"
)

// Get returns the value for key, or "" when unset.
func (s *ConfigStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM system_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get config %s: %w", key, err)
	}
	return value, nil
}

func (s *ConfigStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO system_config (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set config %s: %w", key, err)
	}
	return nil
}
