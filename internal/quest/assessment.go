package quest

import (
	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/progression"
	"github.com/mfarouk/hunterhall/internal/store"
)

// ApplyAssessment scores the one-shot ability questionnaire and places the
// player on the curve: every aspect gets its starting experience and
// level, disabled aspects sit at the level-1 floor. The placement's total
// level is the questionnaire's own average-of-aspect-levels rule; the
// next experience mutation hands the aggregates over to the regular
// curve-from-total recalculation. A second attempt returns
// ErrAssessmentDone.
func ApplyAssessment(players *store.PlayerStore, playerID string, points map[string]int) (*model.Player, error) {
	p, err := players.GetByID(playerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	// The conditional flip is the real one-shot guard; the field check
	// just gives a cheap early answer.
	if p.AssessmentDone {
		return nil, ErrAssessmentDone
	}
	ok, err := players.MarkAssessmentDone(p.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAssessmentDone
	}

	categories := make([]string, 0, len(model.Aspects))
	for _, a := range model.Aspects {
		categories = append(categories, string(a))
	}

	results, totalXP, totalLevel, rank := progression.ScoreAssessment(points, categories)

	for _, a := range model.Aspects {
		res := results[string(a)]
		st := p.Aspects[a]
		st.XP = res.XP
		st.Level = res.Level
		if err := players.SetAspectState(p.ID, a, st); err != nil {
			return nil, err
		}
		p.Aspects[a] = st
	}

	p.TotalXP = totalXP
	p.TotalLevel = totalLevel
	p.Rank = rank
	if err := players.SaveProgress(p); err != nil {
		return nil, err
	}
	return players.GetByID(p.ID)
}
