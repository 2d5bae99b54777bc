package catalog

import (
	"time"

	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/progression"
)

// fullPrayerOptions is the graded observance scale shared by the prayers
// that carry a sunnah: congregation, sunnah and adhkar each add credit.
var fullPrayerOptions = []Option{
	{Label: "In congregation, with sunnah and adhkar", Value: "perfect", Credit: 1.0},
	{Label: "In congregation, with sunnah", Value: "sunnah", Credit: 0.9},
	{Label: "In congregation, with adhkar", Value: "fard+1", Credit: 0.8},
	{Label: "In congregation", Value: "fard", Credit: 0.7},
	{Label: "Alone, with sunnah and adhkar", Value: "perfect-1", Credit: 0.5},
	{Label: "Alone, with sunnah", Value: "sunnah-1", Credit: 0.4},
	{Label: "Alone, with adhkar", Value: "fard-1", Credit: 0.3},
	{Label: "Alone", Value: "fard-2", Credit: 0.2},
	{Label: "Made up late", Value: "late", Credit: 0.1},
}

// contactOptions grade how a social contact was made.
var contactOptions = []Option{
	{Label: "Visit in person", Value: "visit", Credit: 1.0},
	{Label: "Phone call", Value: "call", Credit: 0.7},
	{Label: "Text message", Value: "message", Credit: 0.4},
}

// All is the full task library keyed by task id.
var All = map[string]Task{
	// vitality
	"health_teeth": {
		ID: "health_teeth", Title: "Brush your teeth",
		Description: "Keep your mouth and teeth clean.",
		Category:    "vitality", Kind: KindButtons, Exertion: ExertionLow,
		XPReward: 40, Threshold: 1.0,
		Options: []Option{
			{Label: "Morning and evening", Value: "both", Credit: 1.0},
			{Label: "Once only", Value: "once", Credit: 0.5},
		},
	},
	"health_caffeine": {
		ID: "health_caffeine", Title: "Caffeine control",
		Description: "Balance tea and coffee (four units maximum).",
		Category:    "vitality", Kind: KindDualNumeric, Exertion: ExertionLow,
		XPReward: 50,
	},
	"health_water": {
		ID: "health_water", Title: "Drink water",
		Description: "Stay hydrated through the day.",
		Category:    "vitality", Kind: KindNumeric, Exertion: ExertionLow,
		XPReward: 60, Unit: "liters",
		Targets: map[model.AgeGroup]float64{model.AgeYoung: 3.0, model.AgeSenior: 2.0},
	},
	"health_sleep_duration": {
		ID: "health_sleep_duration", Title: "Hours of sleep",
		Description: "Sleep enough to recover your energy.",
		Category:    "vitality", Kind: KindNumeric, Exertion: ExertionLow,
		XPReward: 80, Unit: "hours",
		Targets: map[model.AgeGroup]float64{model.AgeYoung: 7.0, model.AgeSenior: 6.0},
	},
	"health_sun": {
		ID: "health_sun", Title: "Sun exposure",
		Description: "Fifteen minutes of daylight for vitamin D.",
		Category:    "vitality", Kind: KindConfirm, Exertion: ExertionLow,
		XPReward: 30,
	},
	"health_nails": {
		ID: "health_nails", Title: "Trim your nails",
		Description: "Weekly grooming, on Friday.",
		Category:    "vitality", Kind: KindConfirm, Exertion: ExertionLow,
		XPReward: 40, Schedule: ScheduleFriday,
	},
	"health_haircut": {
		ID: "health_haircut", Title: "Haircut",
		Description: "Keep up appearances at the start of the month.",
		Category:    "vitality", Kind: KindConfirm, Exertion: ExertionLow,
		XPReward: 50, Gender: model.GenderMale, Schedule: ScheduleFirstOfMonth,
	},
	"health_sleep_time": {
		ID: "health_sleep_time", Title: "Bedtime",
		Description: "Discipline about when you went to bed last night.",
		Category:    "vitality", Kind: KindSelect, Exertion: ExertionLow,
		XPReward: 70, Threshold: 0.8,
		Options: []Option{
			{Label: "Before midnight", Value: "early", Credit: 1.0},
			{Label: "At midnight", Value: "on_time", Credit: 0.8},
			{Label: "After midnight", Value: "late", Credit: 0.5},
			{Label: "Up until morning", Value: "too_late", Credit: 0.0},
		},
	},
	"health_shower": {
		ID: "health_shower", Title: "Shower",
		Description: "Daily personal hygiene.",
		Category:    "vitality", Kind: KindConfirm, Exertion: ExertionMedium,
		XPReward: 40, SeniorWeekly: true, SeniorSchedule: ScheduleFriday,
	},

	// freedom
	"fin_monthly_saving": {
		ID: "fin_monthly_saving", Title: "Monthly saving",
		Description: "Set aside part of your income at the start of the month.",
		Category:    "freedom", Kind: KindNumeric, Exertion: ExertionLow,
		XPReward: 200, Unit: "riyal", Schedule: ScheduleFirstOfMonth,
	},
	"fin_expense_logging": {
		ID: "fin_expense_logging", Title: "Log your expenses",
		Description: "Write down and categorize everything spent today.",
		Category:    "freedom", Kind: KindConfirm, Exertion: ExertionLow,
		XPReward: 50,
	},
	"fin_avoid_junk": {
		ID: "fin_avoid_junk", Title: "Skip the junk food",
		Description: "Save money and health by avoiding snacks and junk.",
		Category:    "freedom", Kind: KindConfirm, Exertion: ExertionLow,
		XPReward: 60,
	},
	"work_attendance": {
		ID: "work_attendance", Title: "Go to work or study",
		Description: "Show up and put in the official hours.",
		Category:    model.CategoryWork, Kind: KindConfirm, Exertion: ExertionHigh,
		XPReward: 100, IsWork: true,
	},

	// strength
	"str_gym_session": {
		ID: "str_gym_session", Title: "Gym session",
		Description: "Full resistance training at the gym.",
		Category:    "strength", Kind: KindConfirm, Exertion: ExertionHigh,
		XPReward: 150, Gender: model.GenderMale, MinRank: progression.RankC,
	},
	"str_home_workout": {
		ID: "str_home_workout", Title: "Home strength workout",
		Description: "Thirty minutes of bodyweight training.",
		Category:    "strength", Kind: KindConfirm, Exertion: ExertionMedium,
		XPReward: 80,
	},
	"str_walking": {
		ID: "str_walking", Title: "Brisk walk",
		Description: "A continuous walk to build endurance.",
		Category:    "strength", Kind: KindNumeric, Exertion: ExertionMedium,
		XPReward: 70, Unit: "minutes",
		Targets: map[model.AgeGroup]float64{model.AgeYoung: 60, model.AgeSenior: 30},
	},

	// intelligence
	"int_reading": {
		ID: "int_reading", Title: "Daily reading",
		Description: "Read non-fiction: self-development, science, history.",
		Category:    "intelligence", Kind: KindNumeric,
		XPReward: 80, Unit: "minutes",
		TargetsByRank: map[progression.Rank]float64{
			progression.RankE: 15, progression.RankD: 20, progression.RankC: 30,
			progression.RankB: 45, progression.RankA: 60, progression.RankS: 90,
			progression.RankSS: 120,
		},
	},
	"int_anki_summary": {
		ID: "int_anki_summary", Title: "Active summarizing",
		Description: "Turn what you learned today into flashcards.",
		Category:    "intelligence", Kind: KindConfirm,
		XPReward: 50,
	},
	"int_review": {
		ID: "int_review", Title: "Spaced review",
		Description: "Review earlier material so it sticks.",
		Category:    "intelligence", Kind: KindConfirm,
		XPReward: 40,
	},
	"int_teaching": {
		ID: "int_teaching", Title: "Teach a concept",
		Description: "Explain something you learned today to someone else.",
		Category:    "intelligence", Kind: KindConfirm,
		XPReward: 60,
	},

	// agility
	"soc_friend_contact": {
		ID: "soc_friend_contact", Title: "Keep up with a friend",
		Description: "Reach out to a friend and strengthen the tie.",
		Category:    "agility", Kind: KindButtons,
		XPReward: 50, Threshold: 0.8, Options: contactOptions,
	},
	"soc_relative_contact": {
		ID: "soc_relative_contact", Title: "Family ties",
		Description: "Contact your relatives on your day off.",
		Category:    "agility", Kind: KindButtons,
		XPReward: 100, Threshold: 0.8, OffDayOnly: true, Options: contactOptions,
	},
	"soc_stranger_help": {
		ID: "soc_stranger_help", Title: "Do a good turn",
		Description: "Help a stranger without expecting anything back.",
		Category:    "agility", Kind: KindConfirm,
		XPReward: 70,
	},
	"soc_problem_solver": {
		ID: "soc_problem_solver", Title: "Fix something",
		Description: "Solve a problem around you: home, work or friends.",
		Category:    "agility", Kind: KindConfirm,
		XPReward: 80,
	},

	// perception — fasting, tied to the Hijri calendar
	"rel_ramadan": {
		ID: "rel_ramadan", Title: "Ramadan fast",
		Description: "The obligatory fast.",
		Category:    "perception", Kind: KindConfirm, Exertion: ExertionMedium,
		XPReward: 300, Religious: true, HijriMonth: 9,
	},
	"rel_ashura": {
		ID: "rel_ashura", Title: "Ashura fast",
		Description: "Fast the tenth of Muharram.",
		Category:    "perception", Kind: KindConfirm, Exertion: ExertionMedium,
		XPReward: 200, Religious: true, HijriMonth: 1, HijriDay: 10,
	},
	"rel_white_days": {
		ID: "rel_white_days", Title: "White days fast",
		Description: "Fast the 13th, 14th and 15th of the Hijri month.",
		Category:    "perception", Kind: KindConfirm, Exertion: ExertionMedium,
		XPReward: 150, Religious: true, HijriDays: []int{13, 14, 15}, ExcludeMonths: []int{9},
	},
	"rel_mon_thu": {
		ID: "rel_mon_thu", Title: "Monday and Thursday fast",
		Description: "The weekly voluntary fast.",
		Category:    "perception", Kind: KindConfirm, Exertion: ExertionMedium,
		XPReward: 100, Religious: true,
		Weekdays: []time.Weekday{time.Monday, time.Thursday}, ExcludeMonths: []int{9},
	},

	// perception — the five prayers
	"rel_fajr": {
		ID: "rel_fajr", Title: "Fajr prayer",
		Description: "Record fajr with its sunnah and adhkar.",
		Category:    "perception", Kind: KindSelect,
		XPReward: 200, Threshold: 0.8, Religious: true, Options: fullPrayerOptions,
	},
	"rel_duha": {
		ID: "rel_duha", Title: "Duha prayer",
		Description: "At least two units mid-morning.",
		Category:    "perception", Kind: KindConfirm,
		XPReward: 40, Religious: true,
	},
	"rel_dhuhr": {
		ID: "rel_dhuhr", Title: "Dhuhr / Jumu'ah prayer",
		Description: "Record the noon prayer (Friday congregational on Friday).",
		Category:    "perception", Kind: KindSelect,
		XPReward: 80, Threshold: 0.8, Religious: true, Options: fullPrayerOptions,
	},
	"rel_asr": {
		ID: "rel_asr", Title: "Asr prayer",
		Description: "The middle prayer.",
		Category:    "perception", Kind: KindSelect,
		XPReward: 80, Threshold: 0.8, Religious: true,
		Options: []Option{
			{Label: "In congregation, with adhkar", Value: "perfect", Credit: 1.0},
			{Label: "In congregation", Value: "fard", Credit: 0.7},
			{Label: "Alone, with adhkar", Value: "fard-1", Credit: 0.5},
			{Label: "Alone", Value: "fard-2", Credit: 0.3},
			{Label: "Made up late", Value: "late", Credit: 0.2},
		},
	},
	"rel_maghrib": {
		ID: "rel_maghrib", Title: "Maghrib prayer",
		Description: "Record the sunset prayer.",
		Category:    "perception", Kind: KindSelect,
		XPReward: 80, Threshold: 0.8, Religious: true, Options: fullPrayerOptions,
	},
	"rel_isha": {
		ID: "rel_isha", Title: "Isha prayer",
		Description: "Record the night prayer.",
		Category:    "perception", Kind: KindSelect,
		XPReward: 80, Threshold: 0.8, Religious: true, Options: fullPrayerOptions,
	},

	// perception — voluntary worship and habits
	"rel_qiyam": {
		ID: "rel_qiyam", Title: "Night vigil",
		Description: "At least two units in the depth of the night.",
		Category:    "perception", Kind: KindConfirm,
		XPReward: 150, Religious: true, MinRank: progression.RankB,
	},
	"rel_witr": {
		ID: "rel_witr", Title: "Witr prayer",
		Description: "At least one unit before sleeping.",
		Category:    "perception", Kind: KindConfirm,
		XPReward: 50, Religious: true,
	},
	"rel_quran": {
		ID: "rel_quran", Title: "Quran portion",
		Description: "Recite your daily portion.",
		Category:    "perception", Kind: KindNumeric,
		XPReward: 90, Unit: "pages", Religious: true,
		TargetsByRank: map[progression.Rank]float64{
			progression.RankE: 2, progression.RankD: 4, progression.RankC: 10,
			progression.RankB: 20, progression.RankA: 30, progression.RankS: 60,
		},
	},
	"rel_istighfar": {
		ID: "rel_istighfar", Title: "Istighfar, 100 times",
		Description: "The daily portion of seeking forgiveness.",
		Category:    "perception", Kind: KindConfirm,
		XPReward: 40, Religious: true,
	},
	"rel_adhkar_morning": {
		ID: "rel_adhkar_morning", Title: "Morning adhkar",
		Description: "Start the day with remembrance.",
		Category:    "perception", Kind: KindConfirm,
		XPReward: 40, Religious: true,
	},
	"rel_adhkar_evening": {
		ID: "rel_adhkar_evening", Title: "Evening adhkar",
		Description: "The evening fortress of remembrance.",
		Category:    "perception", Kind: KindConfirm,
		XPReward: 40, Religious: true,
	},
	"rel_adhkar_sleep": {
		ID: "rel_adhkar_sleep", Title: "Bedtime adhkar",
		Description: "Close the day with remembrance.",
		Category:    "perception", Kind: KindConfirm,
		XPReward: 30, Religious: true,
	},
	"rel_charity": {
		ID: "rel_charity", Title: "Weekly charity",
		Description: "Give something, however small, on Friday.",
		Category:    "perception", Kind: KindConfirm,
		XPReward: 100, Religious: true, Schedule: ScheduleFriday,
	},
	"rel_bad_words": {
		ID: "rel_bad_words", Title: "A clean tongue",
		Description: "Did you hold back from foul talk and gossip today?",
		Category:    "perception", Kind: KindConfirm,
		XPReward: 60, Religious: true,
	},
}

// Get looks up a task by id.
func Get(id string) (Task, bool) {
	t, ok := All[id]
	return t, ok
}
