// Package catalog holds the static daily-task library and the eligibility
// filter that decides which tasks a player is assigned on a given day.
// The catalog is configuration: nothing here is player state.
package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/progression"
)

// Kind is a task's interaction shape.
type Kind string

const (
	// KindConfirm is a binary did-it confirmation, always full credit.
	KindConfirm Kind = "confirm"
	// KindSelect is a graded single choice with weighted partial credit.
	KindSelect Kind = "select"
	// KindButtons is a short either/or choice, also weighted.
	KindButtons Kind = "buttons"
	// KindNumeric is a quantity measured against a resolved target.
	KindNumeric Kind = "numeric"
	// KindDualNumeric is the coffee/tea composite.
	KindDualNumeric Kind = "dual_numeric"
)

// Exertion tiers gate tasks for sick or excused players.
type Exertion string

const (
	ExertionLow    Exertion = "low"
	ExertionMedium Exertion = "medium"
	ExertionHigh   Exertion = "high"
)

// Schedule values for fixed-date tasks.
const (
	ScheduleFriday       = "friday"
	ScheduleFirstOfMonth = "first_of_month"
)

// Option is one selectable answer for select/buttons tasks. Credit is the
// fraction of the task's reward it earns.
type Option struct {
	Label  string  `json:"label"`
	Value  string  `json:"value"`
	Credit float64 `json:"credit"`
}

// Task is one static catalog entry. The zero value of a predicate field
// means the predicate does not apply.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Category is one of the six aspect names, or "work" which folds
	// into freedom when experience is credited.
	Category string   `json:"category"`
	Kind     Kind     `json:"kind"`
	Exertion Exertion `json:"exertion"`
	XPReward int64    `json:"xp_reward"`

	Options []Option `json:"options,omitempty"`
	// Threshold is the minimum credit that counts as completed for
	// select/buttons tasks: 0.8 for graded observance scales, 1.0 for
	// plain either/or choices.
	Threshold float64 `json:"threshold,omitempty"`

	Unit string `json:"unit,omitempty"`
	// Targets is the numeric target per age group. TargetsByRank takes
	// precedence where present and is resolved by the filter.
	Targets       map[model.AgeGroup]float64       `json:"targets,omitempty"`
	TargetsByRank map[progression.Rank]float64     `json:"targets_by_rank,omitempty"`

	Gender     model.Gender `json:"gender,omitempty"`
	IsWork     bool         `json:"is_work,omitempty"`
	OffDayOnly bool         `json:"off_day_only,omitempty"`
	Schedule   string       `json:"schedule,omitempty"`

	// SeniorWeekly demotes a daily task to the senior sub-schedule.
	SeniorWeekly   bool   `json:"senior_weekly,omitempty"`
	SeniorSchedule string `json:"senior_schedule,omitempty"`

	Religious     bool             `json:"religious,omitempty"`
	HijriMonth    int              `json:"hijri_month,omitempty"`
	HijriDay      int              `json:"hijri_day,omitempty"`
	HijriDays     []int            `json:"hijri_days,omitempty"`
	ExcludeMonths []int            `json:"exclude_months,omitempty"`
	Weekdays      []time.Weekday   `json:"weekdays,omitempty"`
	MinRank       progression.Rank `json:"min_rank,omitempty"`

	// Target is the concrete numeric target resolved by the filter for
	// the current player. Zero for non-numeric tasks.
	Target float64 `json:"target,omitempty"`
}

// Aspect returns the aspect that stores this task's experience.
func (t Task) Aspect() model.Aspect {
	return model.NormalizeCategory(t.Category)
}

// Payload is a player's raw answer to a task. Which fields are meaningful
// depends on the task kind.
type Payload struct {
	Choice string  `json:"choice,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Coffee float64 `json:"coffee,omitempty"`
	Tea    float64 `json:"tea,omitempty"`
}

// ErrUnknownOption is returned when a select/buttons payload names a value
// the task does not offer.
var ErrUnknownOption = errors.New("catalog: unknown option")

// TagCaffeineInsomnia marks a blown caffeine budget. Nothing consumes it
// yet; the judgment cycle records it on the submission for later use.
const TagCaffeineInsomnia = "caffeine_insomnia"

// Score grades a payload against the task: the credit fraction earned, a
// completion flag, and an optional negative-outcome tag.
//
// Numeric targets of zero or below count as 1 so a misconfigured task can
// never divide by zero or hand out unearned full credit.
func (t Task) Score(p Payload) (credit float64, completed bool, tag string, err error) {
	switch t.Kind {
	case KindConfirm:
		return 1.0, true, "", nil

	case KindSelect, KindButtons:
		for _, opt := range t.Options {
			if opt.Value == p.Choice {
				threshold := t.Threshold
				if threshold == 0 {
					threshold = 0.8
				}
				return opt.Credit, opt.Credit >= threshold, "", nil
			}
		}
		return 0, false, "", fmt.Errorf("%w: %q for task %s", ErrUnknownOption, p.Choice, t.ID)

	case KindNumeric:
		target := t.Target
		if target <= 0 {
			target = 1
		}
		progress := p.Value / target
		if progress > 1 {
			progress = 1
		}
		if progress < 0 {
			progress = 0
		}
		return progress, progress >= 1, "", nil

	case KindDualNumeric:
		units := p.Coffee*2 + p.Tea
		switch {
		case units <= 4:
			return 1.0, true, "", nil
		case units <= 6:
			return 0.5, false, "", nil
		default:
			return 0, false, TagCaffeineInsomnia, nil
		}
	}

	return 0, false, "", fmt.Errorf("catalog: unscoreable kind %q for task %s", t.Kind, t.ID)
}
