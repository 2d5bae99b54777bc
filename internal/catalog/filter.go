package catalog

import (
	"strings"
	"time"

	"github.com/mfarouk/hunterhall/internal/hijri"
	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/progression"
)

// Day is the calendar context the filter evaluates against. Building it
// once per filter run keeps the Hijri conversion out of the per-task loop
// and lets tests pin an exact date.
type Day struct {
	Date       time.Time
	Weekday    time.Weekday
	DayOfMonth int
	Hijri      hijri.Date
}

// NewDay derives the filter context from a wall-clock instant.
func NewDay(t time.Time) Day {
	return Day{
		Date:       t,
		Weekday:    t.Weekday(),
		DayOfMonth: t.Day(),
		Hijri:      hijri.FromTime(t),
	}
}

// excusedAllowed are the religious task id fragments still surfaced while
// the player is excused: remembrance, forgiveness, charity and guarding
// the tongue.
var excusedAllowed = []string{"adhkar", "istighfar", "charity", "bad_words"}

// Eligible returns today's assigned tasks for the player, keyed by task
// id, with numeric targets already resolved for the player's rank and age
// group. Absence from the map means "not assigned today": the judgment
// cycle does not count such tasks against the player.
//
// Aspect enablement (intensity > 0) is the caller's concern; the filter
// evaluates only the per-task predicates.
func Eligible(p *model.Player, day Day) map[string]Task {
	assigned := make(map[string]Task)

	for id, task := range All {
		if task.Gender != "" && task.Gender != p.Gender {
			continue
		}
		if task.Religious && !p.FaithEnabled {
			continue
		}
		if task.IsWork && p.IsOffDay(day.Weekday) {
			continue
		}
		if task.Schedule == ScheduleFriday && day.Weekday != time.Friday {
			continue
		}
		if task.Schedule == ScheduleFirstOfMonth && day.DayOfMonth != 1 {
			continue
		}
		if task.OffDayOnly && !p.IsOffDay(day.Weekday) {
			continue
		}

		// Senior sub-schedule replaces the daily cadence.
		if p.AgeGroup == model.AgeSenior && task.SeniorWeekly {
			if task.SeniorSchedule == ScheduleFriday && day.Weekday != time.Friday {
				continue
			}
		}

		if p.Status == model.StatusSick {
			if task.Exertion == ExertionMedium || task.Exertion == ExertionHigh {
				continue
			}
		}
		if p.Status == model.StatusExcused {
			if task.Exertion == ExertionMedium || task.Exertion == ExertionHigh {
				continue
			}
			if task.Religious && !excusedException(id) {
				continue
			}
		}

		if task.HijriMonth != 0 && task.HijriMonth != day.Hijri.Month {
			continue
		}
		if task.HijriDay != 0 && task.HijriDay != day.Hijri.Day {
			continue
		}
		if len(task.HijriDays) > 0 && !containsInt(task.HijriDays, day.Hijri.Day) {
			continue
		}
		if containsInt(task.ExcludeMonths, day.Hijri.Month) {
			continue
		}
		if len(task.Weekdays) > 0 && !containsWeekday(task.Weekdays, day.Weekday) {
			continue
		}

		if task.MinRank != "" && !p.Rank.AtLeast(task.MinRank) {
			continue
		}

		// Bespoke strength rules. The gym rotates by rank: top ranks
		// train daily except Friday, mid ranks on Saturday, Monday and
		// Wednesday, low ranks not at all. The home workout is the low
		// ranks' substitute for men and always available to women.
		if id == "str_gym_session" {
			switch p.Rank {
			case progression.RankSS, progression.RankS, progression.RankA:
				if day.Weekday == time.Friday {
					continue
				}
			case progression.RankB, progression.RankC:
				if day.Weekday != time.Saturday && day.Weekday != time.Monday && day.Weekday != time.Wednesday {
					continue
				}
			default:
				continue
			}
		}
		if id == "str_home_workout" {
			if p.Gender == model.GenderMale && p.Rank != progression.RankE && p.Rank != progression.RankD {
				continue
			}
		}

		task.Target = resolveTarget(&task, p)
		assigned[id] = task
	}

	return assigned
}

// resolveTarget pins the concrete numeric target for this player so the
// recorder never has to re-derive it.
func resolveTarget(task *Task, p *model.Player) float64 {
	if task.Kind != KindNumeric {
		return 0
	}

	switch task.ID {
	case "int_reading":
		target, ok := task.TargetsByRank[p.Rank]
		if !ok {
			target = 15
		}
		if p.AgeGroup == model.AgeSenior {
			target = float64(int(target) / 2)
			if target < 10 {
				target = 10
			}
		}
		return target
	case "rel_quran":
		target, ok := task.TargetsByRank[p.Rank]
		if !ok {
			target = 2
		}
		return target
	}

	if len(task.Targets) > 0 {
		if target, ok := task.Targets[p.AgeGroup]; ok {
			return target
		}
		return task.Targets[model.AgeYoung]
	}
	return 0
}

func excusedException(taskID string) bool {
	for _, frag := range excusedAllowed {
		if strings.Contains(taskID, frag) {
			return true
		}
	}
	return false
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func containsWeekday(xs []time.Weekday, x time.Weekday) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
