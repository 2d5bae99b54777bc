package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/progression"
)

type PlayerStore struct {
	db *sql.DB
}

func NewPlayerStore(db *sql.DB) *PlayerStore {
	return &PlayerStore{db: db}
}

const playerCols = `id, external_id, name, gender, faith_enabled, age_group, off_days, status,
	strength_xp, strength_level, strength_intensity,
	intelligence_xp, intelligence_level, intelligence_intensity,
	vitality_xp, vitality_level, vitality_intensity,
	agility_xp, agility_level, agility_intensity,
	perception_xp, perception_level, perception_intensity,
	freedom_xp, freedom_level, freedom_intensity,
	total_xp, total_level, rank, streak_days, last_streak_date,
	coins, gems, currency, currency_code, base_penalty, current_energy, max_energy,
	portals_cleared, portals_broken, notifications_enabled, assessment_done,
	created_at, updated_at`

// aspectCol maps an aspect to its xp column. Only values from this map are
// ever spliced into SQL.
var aspectCol = map[model.Aspect]string{
	model.AspectStrength:     "strength",
	model.AspectIntelligence: "intelligence",
	model.AspectVitality:     "vitality",
	model.AspectAgility:      "agility",
	model.AspectPerception:   "perception",
	model.AspectFreedom:      "freedom",
}

func scanPlayer(scanner interface{ Scan(...any) error }) (*model.Player, error) {
	var p model.Player
	var offDays string
	states := make(map[model.Aspect]*model.AspectState, len(model.Aspects))
	for _, a := range model.Aspects {
		states[a] = &model.AspectState{}
	}

	err := scanner.Scan(
		&p.ID, &p.ExternalID, &p.Name, &p.Gender, &p.FaithEnabled, &p.AgeGroup, &offDays, &p.Status,
		&states[model.AspectStrength].XP, &states[model.AspectStrength].Level, &states[model.AspectStrength].Intensity,
		&states[model.AspectIntelligence].XP, &states[model.AspectIntelligence].Level, &states[model.AspectIntelligence].Intensity,
		&states[model.AspectVitality].XP, &states[model.AspectVitality].Level, &states[model.AspectVitality].Intensity,
		&states[model.AspectAgility].XP, &states[model.AspectAgility].Level, &states[model.AspectAgility].Intensity,
		&states[model.AspectPerception].XP, &states[model.AspectPerception].Level, &states[model.AspectPerception].Intensity,
		&states[model.AspectFreedom].XP, &states[model.AspectFreedom].Level, &states[model.AspectFreedom].Intensity,
		&p.TotalXP, &p.TotalLevel, &p.Rank, &p.StreakDays, &p.LastStreakDate,
		&p.Coins, &p.Gems, &p.Currency, &p.CurrencyCode, &p.BasePenalty, &p.CurrentEnergy, &p.MaxEnergy,
		&p.PortalsCleared, &p.PortalsBroken, &p.NotificationsEnabled, &p.AssessmentDone,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.OffDays = decodeOffDays(offDays)
	p.Aspects = make(map[model.Aspect]model.AspectState, len(states))
	for a, st := range states {
		p.Aspects[a] = *st
	}
	return &p, nil
}

func encodeOffDays(days []time.Weekday) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return strings.Join(parts, ",")
}

func decodeOffDays(s string) []time.Weekday {
	if s == "" {
		return nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}

// Create inserts a new player. A fresh id is assigned when none is set;
// every aspect starts at zero experience with intensity taken from p.
func (s *PlayerStore) Create(p *model.Player) (*model.Player, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = model.StatusActive
	}
	if p.AgeGroup == "" {
		p.AgeGroup = model.AgeYoung
	}
	if p.Rank == "" {
		p.Rank = progression.RankE
	}

	_, err := s.db.Exec(`INSERT INTO players
		(id, external_id, name, gender, faith_enabled, age_group, off_days, status,
		 strength_intensity, intelligence_intensity, vitality_intensity,
		 agility_intensity, perception_intensity, freedom_intensity,
		 total_level, rank, currency_code, base_penalty, current_energy, max_energy, notifications_enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ExternalID, p.Name, p.Gender, p.FaithEnabled, p.AgeGroup, encodeOffDays(p.OffDays), p.Status,
		p.Aspects[model.AspectStrength].Intensity, p.Aspects[model.AspectIntelligence].Intensity,
		p.Aspects[model.AspectVitality].Intensity, p.Aspects[model.AspectAgility].Intensity,
		p.Aspects[model.AspectPerception].Intensity, p.Aspects[model.AspectFreedom].Intensity,
		p.Rank, currencyCodeOrDefault(p.CurrencyCode), basePenaltyOrDefault(p.BasePenalty), energyOrDefault(p.CurrentEnergy), energyOrDefault(p.MaxEnergy),
		p.NotificationsEnabled,
	)
	if err != nil {
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return s.GetByID(p.ID)
}

func currencyCodeOrDefault(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}

func basePenaltyOrDefault(v int64) int64 {
	if v <= 0 {
		return 50
	}
	return v
}

func energyOrDefault(v int) int {
	if v <= 0 {
		return 100
	}
	return v
}

func (s *PlayerStore) GetByID(id string) (*model.Player, error) {
	row := s.db.QueryRow(`SELECT `+playerCols+` FROM players WHERE id = ?`, id)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

func (s *PlayerStore) GetByExternalID(externalID string) (*model.Player, error) {
	row := s.db.QueryRow(`SELECT `+playerCols+` FROM players WHERE external_id = ?`, externalID)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player by external id: %w", err)
	}
	return p, nil
}

// List returns all players, oldest first.
func (s *PlayerStore) List() ([]model.Player, error) {
	rows, err := s.db.Query(`SELECT ` + playerCols + ` FROM players ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// Leaderboard returns the top n players by total experience.
func (s *PlayerStore) Leaderboard(n int) ([]model.Player, error) {
	rows, err := s.db.Query(`SELECT `+playerCols+` FROM players ORDER BY total_xp DESC, created_at ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var players []model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// CountEligibleForPortal counts active players whose total level meets the
// quest's entry requirement.
func (s *PlayerStore) CountEligibleForPortal(minLevel int) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM players WHERE status = ? AND total_level >= ?`,
		model.StatusActive, minLevel).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count eligible: %w", err)
	}
	return n, nil
}

// UpdateProfile saves the mutable profile fields.
func (s *PlayerStore) UpdateProfile(p *model.Player) error {
	_, err := s.db.Exec(`UPDATE players SET
		name = ?, gender = ?, faith_enabled = ?, age_group = ?, off_days = ?, status = ?,
		notifications_enabled = ?, currency_code = ?, base_penalty = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.Name, p.Gender, p.FaithEnabled, p.AgeGroup, encodeOffDays(p.OffDays), p.Status,
		p.NotificationsEnabled, currencyCodeOrDefault(p.CurrencyCode), p.BasePenalty, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// AddAspectXP applies a signed experience delta to one aspect, clamped at
// zero. Levels and totals are stale afterwards until SaveProgress runs.
func (s *PlayerStore) AddAspectXP(playerID string, aspect model.Aspect, delta int64) error {
	col, ok := aspectCol[aspect]
	if !ok {
		return fmt.Errorf("add aspect xp: unknown aspect %q", aspect)
	}
	_, err := s.db.Exec(
		`UPDATE players SET `+col+`_xp = MAX(0, `+col+`_xp + ?), updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		delta, playerID,
	)
	if err != nil {
		return fmt.Errorf("add aspect xp: %w", err)
	}
	return nil
}

// SetAspectState overwrites one aspect's experience, level and intensity.
// Used by the assessment, which places the player rather than increments.
func (s *PlayerStore) SetAspectState(playerID string, aspect model.Aspect, st model.AspectState) error {
	col, ok := aspectCol[aspect]
	if !ok {
		return fmt.Errorf("set aspect state: unknown aspect %q", aspect)
	}
	_, err := s.db.Exec(
		`UPDATE players SET `+col+`_xp = ?, `+col+`_level = ?, `+col+`_intensity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		st.XP, st.Level, st.Intensity, playerID,
	)
	if err != nil {
		return fmt.Errorf("set aspect state: %w", err)
	}
	return nil
}

// SaveProgress persists recomputed per-aspect levels and the aggregate
// totals in one statement.
func (s *PlayerStore) SaveProgress(p *model.Player) error {
	_, err := s.db.Exec(`UPDATE players SET
		strength_level = ?, intelligence_level = ?, vitality_level = ?,
		agility_level = ?, perception_level = ?, freedom_level = ?,
		total_xp = ?, total_level = ?, rank = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.Aspects[model.AspectStrength].Level, p.Aspects[model.AspectIntelligence].Level,
		p.Aspects[model.AspectVitality].Level, p.Aspects[model.AspectAgility].Level,
		p.Aspects[model.AspectPerception].Level, p.Aspects[model.AspectFreedom].Level,
		p.TotalXP, p.TotalLevel, p.Rank, p.ID,
	)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// UpdateStreak sets the streak counter and the day it last advanced.
func (s *PlayerStore) UpdateStreak(playerID string, days int, lastDate string) error {
	_, err := s.db.Exec(
		`UPDATE players SET streak_days = ?, last_streak_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		days, lastDate, playerID,
	)
	if err != nil {
		return fmt.Errorf("update streak: %w", err)
	}
	return nil
}

// AddCoins applies a signed coin delta, clamped at zero.
func (s *PlayerStore) AddCoins(playerID string, delta int64) error {
	_, err := s.db.Exec(
		`UPDATE players SET coins = MAX(0, coins + ?), updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		delta, playerID,
	)
	if err != nil {
		return fmt.Errorf("add coins: %w", err)
	}
	return nil
}

// SpendEnergy debits energy only if the player has enough; reports whether
// the debit happened.
func (s *PlayerStore) SpendEnergy(playerID string, cost int) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE players SET current_energy = current_energy - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND current_energy >= ?`,
		cost, playerID, cost,
	)
	if err != nil {
		return false, fmt.Errorf("spend energy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("spend energy rows: %w", err)
	}
	return n > 0, nil
}

// RestoreEnergy credits energy up to the player's maximum.
func (s *PlayerStore) RestoreEnergy(playerID string, amount int) error {
	_, err := s.db.Exec(
		`UPDATE players SET current_energy = MIN(max_energy, current_energy + ?), updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		amount, playerID,
	)
	if err != nil {
		return fmt.Errorf("restore energy: %w", err)
	}
	return nil
}

// IncrementPortalCounter bumps portals_cleared or portals_broken.
func (s *PlayerStore) IncrementPortalCounter(playerID string, cleared bool) error {
	col := "portals_broken"
	if cleared {
		col = "portals_cleared"
	}
	_, err := s.db.Exec(
		`UPDATE players SET `+col+` = `+col+` + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		playerID,
	)
	if err != nil {
		return fmt.Errorf("increment portal counter: %w", err)
	}
	return nil
}

// ApplyGroupPenalty deducts a flat experience amount from one aspect of
// every active player in a single statement, clamped at zero per player.
// Returns the number of players hit.
func (s *PlayerStore) ApplyGroupPenalty(aspect model.Aspect, amount int64) (int64, error) {
	col, ok := aspectCol[aspect]
	if !ok {
		return 0, fmt.Errorf("group penalty: unknown aspect %q", aspect)
	}
	res, err := s.db.Exec(
		`UPDATE players SET `+col+`_xp = MAX(0, `+col+`_xp - ?), updated_at = CURRENT_TIMESTAMP WHERE status = ?`,
		amount, model.StatusActive,
	)
	if err != nil {
		return 0, fmt.Errorf("group penalty: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("group penalty rows: %w", err)
	}
	return n, nil
}

// AddCurrency adds to the pending real-money ledger balance.
func (s *PlayerStore) AddCurrency(playerID string, delta int64) error {
	_, err := s.db.Exec(
		`UPDATE players SET currency = MAX(0, currency + ?), updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		delta, playerID,
	)
	if err != nil {
		return fmt.Errorf("add currency: %w", err)
	}
	return nil
}

// MarkAssessmentDone flips the one-shot assessment flag; reports false if
// it was already set.
func (s *PlayerStore) MarkAssessmentDone(playerID string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE players SET assessment_done = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND assessment_done = 0`,
		playerID,
	)
	if err != nil {
		return false, fmt.Errorf("mark assessment done: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark assessment rows: %w", err)
	}
	return n > 0, nil
}

func (s *PlayerStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return nil
}
