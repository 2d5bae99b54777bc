package progression

// Rank is the coarse banding of total level, E (weakest) through SS.
type Rank string

const (
	RankE  Rank = "E"
	RankD  Rank = "D"
	RankC  Rank = "C"
	RankB  Rank = "B"
	RankA  Rank = "A"
	RankS  Rank = "S"
	RankSS Rank = "SS"
)

// Ranks lists all ranks in ascending order of strength.
var Ranks = []Rank{RankE, RankD, RankC, RankB, RankA, RankS, RankSS}

var rankOrder = map[Rank]int{
	RankE: 0, RankD: 1, RankC: 2, RankB: 3, RankA: 4, RankS: 5, RankSS: 6,
}

// RankForLevel maps a total level to its rank band.
func RankForLevel(level int) Rank {
	switch {
	case level >= 100:
		return RankSS
	case level >= 80:
		return RankS
	case level >= 60:
		return RankA
	case level >= 40:
		return RankB
	case level >= 20:
		return RankC
	case level >= 10:
		return RankD
	default:
		return RankE
	}
}

// AtLeast reports whether r is the same rank as other or stronger.
// Unknown ranks compare as E.
func (r Rank) AtLeast(other Rank) bool {
	return rankOrder[r] >= rankOrder[other]
}

// Valid reports whether r is one of the seven defined ranks.
func (r Rank) Valid() bool {
	_, ok := rankOrder[r]
	return ok
}
