package catalog

import (
	"testing"
	"time"

	"github.com/mfarouk/hunterhall/internal/hijri"
	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/progression"
)

// Fixed week in January 2026: the 5th is a Monday.
var (
	monday     = time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	tuesday    = time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC)
	friday     = time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC)
	saturday   = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	firstOfFeb = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
)

func testPlayer() *model.Player {
	p := &model.Player{
		Gender:       model.GenderMale,
		AgeGroup:     model.AgeYoung,
		Status:       model.StatusActive,
		FaithEnabled: true,
		Rank:         progression.RankE,
		Aspects:      make(map[model.Aspect]model.AspectState),
	}
	for _, a := range model.Aspects {
		p.Aspects[a] = model.AspectState{Intensity: 3, Level: 1}
	}
	return p
}

// dayAt pins the Hijri date so calendar predicates are deterministic.
func dayAt(t time.Time, h hijri.Date) Day {
	d := NewDay(t)
	d.Hijri = h
	return d
}

// plainDay is an unremarkable Hijri date that triggers no fasting task.
func plainDay(t time.Time) Day {
	return dayAt(t, hijri.Date{Year: 1447, Month: 7, Day: 20})
}

func TestEligibleGender(t *testing.T) {
	p := testPlayer()
	p.Gender = model.GenderFemale
	assigned := Eligible(p, plainDay(monday))

	if _, ok := assigned["health_haircut"]; ok {
		t.Error("haircut is a male task")
	}
	if _, ok := assigned["str_gym_session"]; ok {
		t.Error("gym is a male task")
	}
	// The home workout is always available to women, regardless of rank.
	p.Rank = progression.RankS
	assigned = Eligible(p, plainDay(monday))
	if _, ok := assigned["str_home_workout"]; !ok {
		t.Error("home workout should be assigned to women at any rank")
	}
}

func TestEligibleWorkRespectsOffDays(t *testing.T) {
	p := testPlayer()
	assigned := Eligible(p, plainDay(monday))
	if _, ok := assigned["work_attendance"]; !ok {
		t.Error("work attendance should be assigned on a workday")
	}

	p.OffDays = []time.Weekday{time.Monday}
	assigned = Eligible(p, plainDay(monday))
	if _, ok := assigned["work_attendance"]; ok {
		t.Error("work attendance should not be assigned on an off-day")
	}
	// The relatives task only appears on off-days.
	if _, ok := assigned["soc_relative_contact"]; !ok {
		t.Error("relatives task should be assigned on an off-day")
	}
}

func TestEligibleFixedSchedules(t *testing.T) {
	p := testPlayer()

	assigned := Eligible(p, plainDay(monday))
	if _, ok := assigned["health_nails"]; ok {
		t.Error("nail trimming is a Friday task")
	}
	if _, ok := assigned["fin_monthly_saving"]; ok {
		t.Error("monthly saving belongs to the first of the month")
	}

	assigned = Eligible(p, plainDay(friday))
	if _, ok := assigned["health_nails"]; !ok {
		t.Error("nail trimming should be assigned on Friday")
	}
	if _, ok := assigned["rel_charity"]; !ok {
		t.Error("charity should be assigned on Friday")
	}

	assigned = Eligible(p, plainDay(firstOfFeb))
	if _, ok := assigned["fin_monthly_saving"]; !ok {
		t.Error("monthly saving should be assigned on the first")
	}
	if _, ok := assigned["health_haircut"]; !ok {
		t.Error("haircut should be assigned on the first")
	}
}

func TestEligibleFaithGate(t *testing.T) {
	p := testPlayer()
	p.FaithEnabled = false
	assigned := Eligible(p, plainDay(monday))
	for id := range assigned {
		if All[id].Religious {
			t.Errorf("religious task %q assigned with faith disabled", id)
		}
	}
	if _, ok := assigned["health_water"]; !ok {
		t.Error("secular tasks should be unaffected by the faith setting")
	}
}

func TestEligibleSickSkipsExertion(t *testing.T) {
	p := testPlayer()
	p.Status = model.StatusSick
	assigned := Eligible(p, plainDay(monday))

	if _, ok := assigned["work_attendance"]; ok {
		t.Error("high exertion task assigned to a sick player")
	}
	if _, ok := assigned["str_home_workout"]; ok {
		t.Error("medium exertion task assigned to a sick player")
	}
	if _, ok := assigned["health_water"]; !ok {
		t.Error("low exertion tasks stay assigned while sick")
	}
	// Sick players keep their religious tasks.
	if _, ok := assigned["rel_fajr"]; !ok {
		t.Error("prayers stay assigned while sick")
	}
}

func TestEligibleExcusedKeepsOnlyExceptions(t *testing.T) {
	p := testPlayer()
	p.Status = model.StatusExcused
	assigned := Eligible(p, plainDay(friday))

	if _, ok := assigned["rel_fajr"]; ok {
		t.Error("prayers are suspended while excused")
	}
	if _, ok := assigned["rel_istighfar"]; !ok {
		t.Error("istighfar stays assigned while excused")
	}
	if _, ok := assigned["rel_adhkar_morning"]; !ok {
		t.Error("adhkar stay assigned while excused")
	}
	if _, ok := assigned["rel_charity"]; !ok {
		t.Error("charity stays assigned while excused")
	}
	if _, ok := assigned["rel_bad_words"]; !ok {
		t.Error("guarding the tongue stays assigned while excused")
	}
}

func TestEligibleHijriCalendar(t *testing.T) {
	p := testPlayer()

	// Ramadan: the fast appears, the white days and Mon/Thu fasts do not.
	ramadan := dayAt(monday, hijri.Date{Year: 1447, Month: 9, Day: 13})
	assigned := Eligible(p, ramadan)
	if _, ok := assigned["rel_ramadan"]; !ok {
		t.Error("Ramadan fast should be assigned in month 9")
	}
	if _, ok := assigned["rel_white_days"]; ok {
		t.Error("white days fast is excluded during Ramadan")
	}
	if _, ok := assigned["rel_mon_thu"]; ok {
		t.Error("Mon/Thu fast is excluded during Ramadan")
	}

	// A white day outside Ramadan.
	white := dayAt(tuesday, hijri.Date{Year: 1447, Month: 7, Day: 14})
	assigned = Eligible(p, white)
	if _, ok := assigned["rel_white_days"]; !ok {
		t.Error("white days fast should be assigned on the 14th")
	}

	// Ashura: month 1, day 10 only.
	ashura := dayAt(tuesday, hijri.Date{Year: 1447, Month: 1, Day: 10})
	assigned = Eligible(p, ashura)
	if _, ok := assigned["rel_ashura"]; !ok {
		t.Error("Ashura fast should be assigned on 1/10")
	}
	notAshura := dayAt(tuesday, hijri.Date{Year: 1447, Month: 1, Day: 9})
	assigned = Eligible(p, notAshura)
	if _, ok := assigned["rel_ashura"]; ok {
		t.Error("Ashura fast should not be assigned on 1/9")
	}

	// Weekly fast on Monday outside Ramadan.
	assigned = Eligible(p, plainDay(monday))
	if _, ok := assigned["rel_mon_thu"]; !ok {
		t.Error("Mon/Thu fast should be assigned on Monday")
	}
	assigned = Eligible(p, plainDay(tuesday))
	if _, ok := assigned["rel_mon_thu"]; ok {
		t.Error("Mon/Thu fast should not be assigned on Tuesday")
	}
}

func TestEligibleMinRank(t *testing.T) {
	p := testPlayer()
	assigned := Eligible(p, plainDay(monday))
	if _, ok := assigned["rel_qiyam"]; ok {
		t.Error("night vigil requires rank B")
	}

	p.Rank = progression.RankB
	assigned = Eligible(p, plainDay(monday))
	if _, ok := assigned["rel_qiyam"]; !ok {
		t.Error("night vigil should be assigned at rank B")
	}
}

func TestEligibleGymRotation(t *testing.T) {
	p := testPlayer()

	// Rank E never trains at the gym.
	if _, ok := Eligible(p, plainDay(monday))["str_gym_session"]; ok {
		t.Error("rank E should not get the gym")
	}
	if _, ok := Eligible(p, plainDay(monday))["str_home_workout"]; !ok {
		t.Error("rank E men get the home workout instead")
	}

	// Mid ranks train Saturday, Monday and Wednesday.
	p.Rank = progression.RankC
	if _, ok := Eligible(p, plainDay(saturday))["str_gym_session"]; !ok {
		t.Error("rank C should train on Saturday")
	}
	if _, ok := Eligible(p, plainDay(tuesday))["str_gym_session"]; ok {
		t.Error("rank C should not train on Tuesday")
	}
	if _, ok := Eligible(p, plainDay(monday))["str_home_workout"]; ok {
		t.Error("rank C men outgrow the home workout")
	}

	// Top ranks train daily except Friday.
	p.Rank = progression.RankS
	if _, ok := Eligible(p, plainDay(tuesday))["str_gym_session"]; !ok {
		t.Error("rank S should train on Tuesday")
	}
	if _, ok := Eligible(p, plainDay(friday))["str_gym_session"]; ok {
		t.Error("rank S rests on Friday")
	}
}

func TestEligibleSeniorSchedule(t *testing.T) {
	p := testPlayer()
	p.AgeGroup = model.AgeSenior

	if _, ok := Eligible(p, plainDay(monday))["health_shower"]; ok {
		t.Error("senior shower task is Friday only")
	}
	if _, ok := Eligible(p, plainDay(friday))["health_shower"]; !ok {
		t.Error("senior shower task should be assigned on Friday")
	}

	// Young players keep the daily cadence.
	p.AgeGroup = model.AgeYoung
	if _, ok := Eligible(p, plainDay(monday))["health_shower"]; !ok {
		t.Error("shower task should be daily for young players")
	}
}

func TestResolveTargets(t *testing.T) {
	p := testPlayer()

	assigned := Eligible(p, plainDay(monday))
	if got := assigned["int_reading"].Target; got != 15 {
		t.Errorf("rank E reading target = %f, want 15", got)
	}
	if got := assigned["rel_quran"].Target; got != 2 {
		t.Errorf("rank E quran target = %f, want 2", got)
	}
	if got := assigned["health_water"].Target; got != 3.0 {
		t.Errorf("young water target = %f, want 3.0", got)
	}

	p.Rank = progression.RankA
	assigned = Eligible(p, plainDay(monday))
	if got := assigned["int_reading"].Target; got != 60 {
		t.Errorf("rank A reading target = %f, want 60", got)
	}

	// Seniors read half, floored at ten minutes.
	p.AgeGroup = model.AgeSenior
	assigned = Eligible(p, plainDay(monday))
	if got := assigned["int_reading"].Target; got != 30 {
		t.Errorf("senior rank A reading target = %f, want 30", got)
	}
	if got := assigned["health_water"].Target; got != 2.0 {
		t.Errorf("senior water target = %f, want 2.0", got)
	}

	p.Rank = progression.RankE
	assigned = Eligible(p, plainDay(monday))
	if got := assigned["int_reading"].Target; got != 10 {
		t.Errorf("senior rank E reading target = %f, want 10", got)
	}

	// SS has no quran tier of its own; the default applies.
	p.Rank = progression.RankSS
	assigned = Eligible(p, plainDay(monday))
	if got := assigned["rel_quran"].Target; got != 2 {
		t.Errorf("rank SS quran target = %f, want 2", got)
	}
}
