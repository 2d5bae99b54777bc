package model

// Aspect is one of the six self-improvement categories a player trains.
type Aspect string

const (
	AspectStrength     Aspect = "strength"     // physical
	AspectIntelligence Aspect = "intelligence" // intellectual
	AspectVitality     Aspect = "vitality"     // health
	AspectAgility      Aspect = "agility"      // social
	AspectPerception   Aspect = "perception"   // spiritual
	AspectFreedom      Aspect = "freedom"      // financial
)

// Aspects lists the six aspects in canonical order.
var Aspects = []Aspect{
	AspectStrength,
	AspectIntelligence,
	AspectVitality,
	AspectAgility,
	AspectPerception,
	AspectFreedom,
}

// CategoryWork is a task-only category for workplace tasks. It has no
// aspect column of its own; experience earned under it folds into freedom.
const CategoryWork = "work"

// NormalizeCategory maps a task category to the aspect that stores its
// experience. Work folds into freedom; anything else passes through.
func NormalizeCategory(category string) Aspect {
	if category == CategoryWork {
		return AspectFreedom
	}
	return Aspect(category)
}

// Valid reports whether a is one of the six defined aspects.
func (a Aspect) Valid() bool {
	for _, known := range Aspects {
		if a == known {
			return true
		}
	}
	return false
}
