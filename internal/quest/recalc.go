package quest

import (
	"fmt"

	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/progression"
	"github.com/mfarouk/hunterhall/internal/store"
)

// Recalculate reloads the player and recomputes per-aspect levels, total
// experience, total level and rank from the aspect experience columns,
// then persists the aggregates. Total experience is defined as the sum of
// the six aspects, and total level sits on the same curve as the aspects,
// fed the total; any drift is silently healed here rather than raised.
// Returns the refreshed player.
func Recalculate(players *store.PlayerStore, playerID string) (*model.Player, error) {
	p, err := players.GetByID(playerID)
	if err != nil {
		return nil, fmt.Errorf("recalculate: %w", err)
	}
	if p == nil {
		return nil, ErrPlayerNotFound
	}

	var totalXP int64
	for _, a := range model.Aspects {
		st := p.Aspects[a]
		st.Level = progression.Level(st.XP).Level
		p.Aspects[a] = st
		totalXP += st.XP
	}

	p.TotalXP = totalXP
	p.TotalLevel = progression.Level(totalXP).Level
	p.Rank = progression.RankForLevel(p.TotalLevel)

	if err := players.SaveProgress(p); err != nil {
		return nil, fmt.Errorf("recalculate: %w", err)
	}
	return p, nil
}
