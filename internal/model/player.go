package model

import (
	"time"

	"github.com/mfarouk/hunterhall/internal/progression"
)

// PlayerStatus is a player's operational status. It gates which tasks the
// eligibility filter surfaces and whether the player counts toward portal
// spawning.
type PlayerStatus string

const (
	StatusActive    PlayerStatus = "active"
	StatusSick      PlayerStatus = "sick"
	StatusTraveling PlayerStatus = "traveling"
	StatusExcused   PlayerStatus = "excused"
)

// Valid reports whether s is a defined operational status.
func (s PlayerStatus) Valid() bool {
	switch s {
	case StatusActive, StatusSick, StatusTraveling, StatusExcused:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// AgeGroup adapts task schedules and numeric targets.
type AgeGroup string

const (
	AgeYoung  AgeGroup = "young"
	AgeSenior AgeGroup = "senior"
)

// AspectState is a player's standing in one aspect. Intensity zero means
// the aspect is disabled and none of its tasks are surfaced.
type AspectState struct {
	XP        int64 `json:"xp"`
	Level     int   `json:"level"`
	Intensity int   `json:"intensity"`
}

// Player is a registered user of the hall.
type Player struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`

	Gender       Gender         `json:"gender"`
	FaithEnabled bool           `json:"faith_enabled"`
	AgeGroup     AgeGroup       `json:"age_group"`
	OffDays      []time.Weekday `json:"off_days"`
	Status       PlayerStatus   `json:"status"`

	Aspects map[Aspect]AspectState `json:"aspects"`

	TotalXP    int64            `json:"total_xp"`
	TotalLevel int              `json:"total_level"`
	Rank       progression.Rank `json:"rank"`

	StreakDays     int    `json:"streak_days"`
	LastStreakDate string `json:"last_streak_date"`

	Coins         int64  `json:"coins"`
	Gems          int64  `json:"gems"`
	Currency      int64  `json:"currency"`
	CurrencyCode  string `json:"currency_code"`
	BasePenalty   int64  `json:"base_penalty"`
	CurrentEnergy int    `json:"current_energy"`
	MaxEnergy     int    `json:"max_energy"`

	PortalsCleared int `json:"portals_cleared"`
	PortalsBroken  int `json:"portals_broken"`

	NotificationsEnabled bool `json:"notifications_enabled"`
	AssessmentDone       bool `json:"assessment_done"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AspectEnabled reports whether the player trains the given aspect.
func (p *Player) AspectEnabled(a Aspect) bool {
	return p.Aspects[a].Intensity > 0
}

// IsOffDay reports whether the given weekday is one of the player's
// declared weekly off-days.
func (p *Player) IsOffDay(day time.Weekday) bool {
	for _, d := range p.OffDays {
		if d == day {
			return true
		}
	}
	return false
}

// EnabledCategories returns the set of category names the player has
// enabled, in the form the assessment questionnaire filters on.
func (p *Player) EnabledCategories() map[string]bool {
	out := make(map[string]bool, len(Aspects))
	for _, a := range Aspects {
		if p.AspectEnabled(a) {
			out[string(a)] = true
		}
	}
	return out
}
