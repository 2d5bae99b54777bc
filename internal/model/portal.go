package model

import (
	"time"

	"github.com/mfarouk/hunterhall/internal/progression"
)

// PortalStatus is the lifecycle state of a spawned portal.
type PortalStatus string

const (
	// PortalRecruiting is the initial state: the portal is open for joins.
	PortalRecruiting PortalStatus = "recruiting"
	// PortalActive means the challenge has started and the timer is running.
	PortalActive PortalStatus = "active"
	// PortalCleared is terminal: every participant completed in time.
	PortalCleared PortalStatus = "cleared"
	// PortalBroken is terminal: the portal timed out while recruiting or
	// expired before all participants completed.
	PortalBroken PortalStatus = "broken"
	// PortalSkipped records a spawn tick where too few eligible players
	// were online to form a party. Terminal from birth.
	PortalSkipped PortalStatus = "skipped"
)

// Terminal reports whether s admits no further transitions.
func (s PortalStatus) Terminal() bool {
	return s == PortalCleared || s == PortalBroken || s == PortalSkipped
}

// PortalVisibility controls who may join and who may start the portal.
type PortalVisibility string

const (
	// PortalPublic portals are joinable by anyone eligible and start
	// automatically when the party fills.
	PortalPublic PortalVisibility = "public"
	// PortalPrivate portals are created by a player and start only when
	// the owner says so.
	PortalPrivate PortalVisibility = "private"
)

// PortalQuest is a reusable challenge template portals are spawned from.
type PortalQuest struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    Aspect           `json:"category"`
	Rank        progression.Rank `json:"rank"`

	BaseXP         int64 `json:"base_xp"`
	PartySize      int   `json:"party_size"`
	MinAspectLevel int   `json:"min_aspect_level"`

	// MinDurationMinutes gates early completion; DurationMinutes is the
	// wall-clock budget once the portal goes active.
	MinDurationMinutes int `json:"min_duration_minutes"`
	DurationMinutes    int `json:"duration_minutes"`

	// Seasonal quests spawn with priority on their Hijri date. HijriDay
	// zero means any day of the month.
	Seasonal   bool `json:"seasonal"`
	HijriMonth int  `json:"hijri_month"`
	HijriDay   int  `json:"hijri_day"`
}

// Portal is one spawned instance of a quest template.
type Portal struct {
	ID         string           `json:"id"`
	QuestID    int64            `json:"quest_id"`
	Status     PortalStatus     `json:"status"`
	Visibility PortalVisibility `json:"visibility"`
	OwnerID    *string          `json:"owner_id"`

	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at"`
	ClosedAt  *time.Time `json:"closed_at"`
}

// PortalParticipant is one player's membership in a portal. CompletedAt is
// set once the player reports completion; it never unsets.
type PortalParticipant struct {
	PortalID    string     `json:"portal_id"`
	PlayerID    string     `json:"player_id"`
	JoinedAt    time.Time  `json:"joined_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// PortalEnergyCost is the energy debited when a player joins a portal.
const PortalEnergyCost = 20

// RecruitTimeout is how long a portal may sit in recruiting before it
// breaks.
const RecruitTimeout = 45 * time.Minute

// GroupPenalty is the flat experience deducted from every active player's
// quest-category aspect when a public portal of the given rank breaks.
func GroupPenalty(rank progression.Rank) int64 {
	switch rank {
	case progression.RankE:
		return 50
	case progression.RankD:
		return 100
	case progression.RankC:
		return 200
	case progression.RankB:
		return 400
	case progression.RankA:
		return 800
	case progression.RankS:
		return 1500
	case progression.RankSS:
		return 3000
	}
	// Unranked quests hurt like rank E.
	return 50
}
