package quest

import (
	"testing"

	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/progression"
)

func TestRecalculateTotalLevelOnCurve(t *testing.T) {
	players := newAssessmentEnv(t)
	p := createPlayer(t, players, "ext-1")

	if err := players.AddAspectXP(p.ID, model.AspectStrength, 600000); err != nil {
		t.Fatalf("seed xp: %v", err)
	}

	got, err := Recalculate(players, p.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if got.TotalXP != 600000 {
		t.Errorf("total xp = %d, want 600000", got.TotalXP)
	}
	// The total level rides the same curve as the aspects, fed the total
	// experience; it is not an average of the six aspect levels.
	if want := progression.Level(600000).Level; got.TotalLevel != want {
		t.Errorf("total level = %d, want curve level %d", got.TotalLevel, want)
	}
	if got.TotalLevel != 119 {
		t.Errorf("total level = %d, want 119 for 600000 xp", got.TotalLevel)
	}
	if got.Rank != progression.RankSS {
		t.Errorf("rank = %q, want SS", got.Rank)
	}
	if got.Aspects[model.AspectStrength].Level != progression.Level(600000).Level {
		t.Errorf("aspect level = %d, want the curve level", got.Aspects[model.AspectStrength].Level)
	}
}

func TestRecalculateFreshPlayerFloors(t *testing.T) {
	players := newAssessmentEnv(t)
	p := createPlayer(t, players, "ext-1")

	got, err := Recalculate(players, p.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if got.TotalXP != 0 || got.TotalLevel != 1 {
		t.Errorf("got %d xp / level %d, want 0 xp at the level-1 floor", got.TotalXP, got.TotalLevel)
	}
	if got.Rank != progression.RankE {
		t.Errorf("rank = %q, want E", got.Rank)
	}
}

func TestRecalculateUnknownPlayer(t *testing.T) {
	players := newAssessmentEnv(t)
	if _, err := Recalculate(players, "nobody"); err == nil {
		t.Error("expected an error for an unknown player")
	}
}
