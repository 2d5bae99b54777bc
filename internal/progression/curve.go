// Package progression implements the experience-to-level curve and rank
// banding shared by the judgment engine and the portal system.
package progression

import "math"

const (
	// MaxLevel is the hard level ceiling.
	MaxLevel = 120

	// curveScale controls how quickly the exponential curve saturates.
	// Reaching MaxLevel takes about 500,000 XP, which at the daily target
	// spans roughly ten years of play.
	curveScale = 100000

	// xpForMaxLevel is the nominal total at the cap.
	xpForMaxLevel = 500000

	// horizonDays is the intended engagement horizon in days.
	horizonDays = 3650
)

// Progress describes where a total experience value sits on the curve.
type Progress struct {
	Level     int   `json:"level"`
	IntoLevel int64 `json:"xp_into_level"`
	ToNext    int64 `json:"xp_to_next"`
}

// Level maps accumulated experience to a level in [1, MaxLevel], the
// experience earned within that level, and the experience remaining to the
// next. The curve is level = 120·(1 − e^(−xp/100000)): fast early levels,
// asymptotically slower near the cap. Negative input is clamped to zero.
func Level(totalXP int64) Progress {
	if totalXP < 0 {
		totalXP = 0
	}

	raw := MaxLevel * (1 - math.Exp(-float64(totalXP)/curveScale))
	level := int(raw)
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}

	if level == MaxLevel {
		into := totalXP - xpForMaxLevel
		if into < 0 {
			into = 0
		}
		return Progress{Level: MaxLevel, IntoLevel: into, ToNext: 0}
	}

	floor := XPForLevel(level)
	next := XPForLevel(level + 1)

	into := totalXP - floor
	if into < 0 {
		// Level 1 starts at xp 0 even though the inverted curve places its
		// analytic floor slightly above it.
		into = 0
	}

	toNext := next - floor
	if toNext < 0 {
		toNext = 0
	}

	return Progress{Level: level, IntoLevel: into, ToNext: toNext}
}

// XPForLevel inverts the curve: the total experience at which the given
// level is reached. Levels at or above MaxLevel map to the nominal cap.
func XPForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	if level >= MaxLevel {
		return xpForMaxLevel
	}
	return int64(-curveScale * math.Log(1-float64(level)/MaxLevel))
}

// DailyTarget is the average daily experience needed to reach MaxLevel
// over the ten-year horizon (≈137 XP/day).
func DailyTarget() float64 {
	return float64(xpForMaxLevel) / horizonDays
}
