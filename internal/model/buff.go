package model

import "time"

// BuffKind identifies what a buff does when the judgment cycle runs.
type BuffKind string

const (
	// BuffStreakProtection absorbs one failed day: the streak survives,
	// earned experience is still credited, and the buff is consumed.
	BuffStreakProtection BuffKind = "streak_protection"

	// BuffXPMultiplier scales experience credited at judgment for its
	// category (or all categories) while unexpired.
	BuffXPMultiplier BuffKind = "xp_multiplier"
)

// BuffCategoryAll marks a buff that applies to every aspect.
const BuffCategoryAll = "all"

// Buff is a temporary effect attached to a player.
type Buff struct {
	ID         int64      `json:"id"`
	PlayerID   string     `json:"player_id"`
	Kind       BuffKind   `json:"kind"`
	Category   string     `json:"category"`
	Multiplier float64    `json:"multiplier"`
	ExpiresAt  *time.Time `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AppliesTo reports whether the buff covers the given aspect category at
// the given instant.
func (b *Buff) AppliesTo(category Aspect, now time.Time) bool {
	if b.ExpiresAt != nil && now.After(*b.ExpiresAt) {
		return false
	}
	return b.Category == BuffCategoryAll || b.Category == string(category)
}
