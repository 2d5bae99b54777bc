package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mfarouk/hunterhall/internal/model"
)

type PortalStore struct {
	db *sql.DB
}

func NewPortalStore(db *sql.DB) *PortalStore {
	return &PortalStore{db: db}
}

// --- Quest templates ---

const questCols = `id, name, description, category, rank, base_xp, party_size,
	min_aspect_level, min_duration_minutes, duration_minutes, seasonal, hijri_month, hijri_day`

func scanQuest(scanner interface{ Scan(...any) error }) (*model.PortalQuest, error) {
	var q model.PortalQuest
	err := scanner.Scan(
		&q.ID, &q.Name, &q.Description, &q.Category, &q.Rank, &q.BaseXP, &q.PartySize,
		&q.MinAspectLevel, &q.MinDurationMinutes, &q.DurationMinutes, &q.Seasonal, &q.HijriMonth, &q.HijriDay,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *PortalStore) GetQuest(id int64) (*model.PortalQuest, error) {
	row := s.db.QueryRow(`SELECT `+questCols+` FROM portal_quests WHERE id = ?`, id)
	q, err := scanQuest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quest: %w", err)
	}
	return q, nil
}

// ListQuests returns the regular (non-seasonal) templates.
func (s *PortalStore) ListQuests() ([]model.PortalQuest, error) {
	return s.queryQuests(`SELECT ` + questCols + ` FROM portal_quests WHERE seasonal = 0 ORDER BY id`)
}

// ListSeasonalQuests returns the Hijri-dated templates.
func (s *PortalStore) ListSeasonalQuests() ([]model.PortalQuest, error) {
	return s.queryQuests(`SELECT ` + questCols + ` FROM portal_quests WHERE seasonal = 1 ORDER BY id`)
}

func (s *PortalStore) queryQuests(query string) ([]model.PortalQuest, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}
	defer rows.Close()

	var quests []model.PortalQuest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quest: %w", err)
		}
		quests = append(quests, *q)
	}
	return quests, rows.Err()
}

// --- Portals ---

const portalCols = `id, quest_id, status, visibility, owner_id, created_at, started_at, closed_at`

func scanPortal(scanner interface{ Scan(...any) error }) (*model.Portal, error) {
	var p model.Portal
	var owner sql.NullString
	var started, closed sql.NullTime
	err := scanner.Scan(&p.ID, &p.QuestID, &p.Status, &p.Visibility, &owner, &p.CreatedAt, &started, &closed)
	if err != nil {
		return nil, err
	}
	if owner.Valid {
		p.OwnerID = &owner.String
	}
	if started.Valid {
		p.StartedAt = &started.Time
	}
	if closed.Valid {
		p.ClosedAt = &closed.Time
	}
	return &p, nil
}

// Create spawns a portal instance. A fresh id is assigned when none is set.
func (s *PortalStore) Create(p *model.Portal) (*model.Portal, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = model.PortalRecruiting
	}
	if p.Visibility == "" {
		p.Visibility = model.PortalPublic
	}
	_, err := s.db.Exec(
		`INSERT INTO portals (id, quest_id, status, visibility, owner_id) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.QuestID, p.Status, p.Visibility, p.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert portal: %w", err)
	}
	return s.Get(p.ID)
}

func (s *PortalStore) Get(id string) (*model.Portal, error) {
	row := s.db.QueryRow(`SELECT `+portalCols+` FROM portals WHERE id = ?`, id)
	p, err := scanPortal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get portal: %w", err)
	}
	return p, nil
}

func (s *PortalStore) ListByStatus(status model.PortalStatus) ([]model.Portal, error) {
	rows, err := s.db.Query(`SELECT `+portalCols+` FROM portals WHERE status = ? ORDER BY created_at ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("list portals: %w", err)
	}
	defer rows.Close()
	return collectPortals(rows)
}

// ListOpen returns portals still in play: recruiting or active.
func (s *PortalStore) ListOpen() ([]model.Portal, error) {
	rows, err := s.db.Query(
		`SELECT `+portalCols+` FROM portals WHERE status IN (?, ?) ORDER BY created_at ASC`,
		model.PortalRecruiting, model.PortalActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list open portals: %w", err)
	}
	defer rows.Close()
	return collectPortals(rows)
}

// LatestSpawn returns the creation time of the most recent system-spawned
// portal (skipped counts: a skipped tick still consumed the interval).
func (s *PortalStore) LatestSpawn() (*time.Time, error) {
	var created sql.NullTime
	err := s.db.QueryRow(
		`SELECT MAX(created_at) FROM portals WHERE visibility = ? AND owner_id IS NULL`,
		model.PortalPublic,
	).Scan(&created)
	if err != nil {
		return nil, fmt.Errorf("latest spawn: %w", err)
	}
	if !created.Valid {
		return nil, nil
	}
	return &created.Time, nil
}

// CountSpawnedToday counts system-spawned portals of the given quest since
// the start of the day, used to cap seasonal quests at one per day.
func (s *PortalStore) CountSpawnedToday(questID int64, dayStart time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM portals WHERE quest_id = ? AND created_at >= ?`,
		questID, dayStart,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count spawned today: %w", err)
	}
	return n, nil
}

func collectPortals(rows *sql.Rows) ([]model.Portal, error) {
	var portals []model.Portal
	for rows.Next() {
		p, err := scanPortal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan portal: %w", err)
		}
		portals = append(portals, *p)
	}
	return portals, rows.Err()
}

// Transition moves a portal from one status to another only if it is still
// in the expected state; reports whether this call won the transition.
// Terminal states set closed_at, activation sets started_at.
func (s *PortalStore) Transition(id string, from, to model.PortalStatus, at time.Time) (bool, error) {
	var res sql.Result
	var err error
	switch {
	case to == model.PortalActive:
		res, err = s.db.Exec(
			`UPDATE portals SET status = ?, started_at = ? WHERE id = ? AND status = ?`,
			to, at, id, from,
		)
	case to.Terminal():
		res, err = s.db.Exec(
			`UPDATE portals SET status = ?, closed_at = ? WHERE id = ? AND status = ?`,
			to, at, id, from,
		)
	default:
		res, err = s.db.Exec(
			`UPDATE portals SET status = ? WHERE id = ? AND status = ?`,
			to, id, from,
		)
	}
	if err != nil {
		return false, fmt.Errorf("transition portal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition rows: %w", err)
	}
	return n > 0, nil
}

// --- Participants ---

func scanParticipant(scanner interface{ Scan(...any) error }) (*model.PortalParticipant, error) {
	var pp model.PortalParticipant
	var completed sql.NullTime
	err := scanner.Scan(&pp.PortalID, &pp.PlayerID, &pp.JoinedAt, &completed)
	if err != nil {
		return nil, err
	}
	if completed.Valid {
		pp.CompletedAt = &completed.Time
	}
	return &pp, nil
}

// AddParticipant enrolls a player; reports false if already enrolled.
func (s *PortalStore) AddParticipant(portalID, playerID string, at time.Time) (bool, error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO portal_participants (portal_id, player_id, joined_at) VALUES (?, ?, ?)`,
		portalID, playerID, at,
	)
	if err != nil {
		return false, fmt.Errorf("add participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add participant rows: %w", err)
	}
	return n > 0, nil
}

func (s *PortalStore) ListParticipants(portalID string) ([]model.PortalParticipant, error) {
	rows, err := s.db.Query(
		`SELECT portal_id, player_id, joined_at, completed_at FROM portal_participants
		 WHERE portal_id = ? ORDER BY joined_at ASC`,
		portalID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var parts []model.PortalParticipant
	for rows.Next() {
		pp, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		parts = append(parts, *pp)
	}
	return parts, rows.Err()
}

func (s *PortalStore) GetParticipant(portalID, playerID string) (*model.PortalParticipant, error) {
	row := s.db.QueryRow(
		`SELECT portal_id, player_id, joined_at, completed_at FROM portal_participants
		 WHERE portal_id = ? AND player_id = ?`,
		portalID, playerID,
	)
	pp, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return pp, nil
}

func (s *PortalStore) CountParticipants(portalID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM portal_participants WHERE portal_id = ?`, portalID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

// MarkCompleted sets a participant's completion time once; reports false
// if already completed (or not enrolled).
func (s *PortalStore) MarkCompleted(portalID, playerID string, at time.Time) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE portal_participants SET completed_at = ?
		 WHERE portal_id = ? AND player_id = ? AND completed_at IS NULL`,
		at, portalID, playerID,
	)
	if err != nil {
		return false, fmt.Errorf("mark completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark completed rows: %w", err)
	}
	return n > 0, nil
}

// CountIncomplete counts enrolled players who have not completed yet.
func (s *PortalStore) CountIncomplete(portalID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM portal_participants WHERE portal_id = ? AND completed_at IS NULL`,
		portalID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count incomplete: %w", err)
	}
	return n, nil
}

// HistoryForPlayer returns the player's terminal portals, newest first.
func (s *PortalStore) HistoryForPlayer(playerID string, limit int) ([]model.Portal, error) {
	rows, err := s.db.Query(
		`SELECT `+portalColsPrefixed+` FROM portals p
		 JOIN portal_participants pp ON pp.portal_id = p.id
		 WHERE pp.player_id = ? AND p.status IN (?, ?)
		 ORDER BY p.closed_at DESC LIMIT ?`,
		playerID, model.PortalCleared, model.PortalBroken, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("portal history: %w", err)
	}
	defer rows.Close()
	return collectPortals(rows)
}

const portalColsPrefixed = `p.id, p.quest_id, p.status, p.visibility, p.owner_id, p.created_at, p.started_at, p.closed_at`
