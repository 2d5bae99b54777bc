package store

import (
	"database/sql"
	"testing"

	"github.com/mfarouk/hunterhall/internal/database"
	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/progression"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestPlayer(externalID string) *model.Player {
	p := &model.Player{
		ExternalID: externalID,
		Name:       "Hunter " + externalID,
		Gender:     model.GenderMale,
		Aspects:    make(map[model.Aspect]model.AspectState),
	}
	for _, a := range model.Aspects {
		p.Aspects[a] = model.AspectState{Intensity: 3}
	}
	return p
}

func TestCreatePlayerDefaults(t *testing.T) {
	ps := NewPlayerStore(openTestDB(t))

	p, err := ps.Create(newTestPlayer("ext-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Error("expected generated id")
	}
	if p.Status != model.StatusActive {
		t.Errorf("status = %q, want active", p.Status)
	}
	if p.Rank != progression.RankE {
		t.Errorf("rank = %q, want E", p.Rank)
	}
	if p.TotalLevel != 1 {
		t.Errorf("total level = %d, want 1", p.TotalLevel)
	}
	if p.BasePenalty != 50 {
		t.Errorf("base penalty = %d, want 50", p.BasePenalty)
	}
	if p.CurrencyCode != "USD" {
		t.Errorf("currency code = %q, want the USD default", p.CurrencyCode)
	}
	if p.CurrentEnergy != 100 || p.MaxEnergy != 100 {
		t.Errorf("energy = %d/%d, want 100/100", p.CurrentEnergy, p.MaxEnergy)
	}
	for _, a := range model.Aspects {
		if p.Aspects[a].Intensity != 3 {
			t.Errorf("aspect %s intensity = %d, want 3", a, p.Aspects[a].Intensity)
		}
		if p.Aspects[a].XP != 0 {
			t.Errorf("aspect %s xp = %d, want 0", a, p.Aspects[a].XP)
		}
	}
}

func TestGetByExternalID(t *testing.T) {
	ps := NewPlayerStore(openTestDB(t))
	created, err := ps.Create(newTestPlayer("discord-42"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p, err := ps.GetByExternalID("discord-42")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p == nil || p.ID != created.ID {
		t.Fatalf("got %+v, want id %s", p, created.ID)
	}

	missing, err := ps.GetByExternalID("nobody")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown external id, got %+v", missing)
	}
}

func TestAddAspectXPClampsAtZero(t *testing.T) {
	ps := NewPlayerStore(openTestDB(t))
	p, _ := ps.Create(newTestPlayer("ext-1"))

	if err := ps.AddAspectXP(p.ID, model.AspectStrength, 500); err != nil {
		t.Fatalf("add xp: %v", err)
	}
	if err := ps.AddAspectXP(p.ID, model.AspectStrength, -2000); err != nil {
		t.Fatalf("subtract xp: %v", err)
	}

	got, _ := ps.GetByID(p.ID)
	if got.Aspects[model.AspectStrength].XP != 0 {
		t.Errorf("strength xp = %d, want 0 after clamp", got.Aspects[model.AspectStrength].XP)
	}

	if err := ps.AddAspectXP(p.ID, "bogus", 10); err == nil {
		t.Error("expected error for unknown aspect")
	}
}

func TestSpendEnergyConditional(t *testing.T) {
	ps := NewPlayerStore(openTestDB(t))
	p, _ := ps.Create(newTestPlayer("ext-1"))

	ok, err := ps.SpendEnergy(p.ID, 80)
	if err != nil {
		t.Fatalf("spend: %v", err)
	}
	if !ok {
		t.Fatal("expected first spend to succeed")
	}

	ok, err = ps.SpendEnergy(p.ID, 30)
	if err != nil {
		t.Fatalf("spend: %v", err)
	}
	if ok {
		t.Error("expected spend beyond balance to fail")
	}

	got, _ := ps.GetByID(p.ID)
	if got.CurrentEnergy != 20 {
		t.Errorf("energy = %d, want 20", got.CurrentEnergy)
	}

	if err := ps.RestoreEnergy(p.ID, 500); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, _ = ps.GetByID(p.ID)
	if got.CurrentEnergy != 100 {
		t.Errorf("energy after restore = %d, want 100 (capped)", got.CurrentEnergy)
	}
}

func TestMarkAssessmentDoneOnce(t *testing.T) {
	ps := NewPlayerStore(openTestDB(t))
	p, _ := ps.Create(newTestPlayer("ext-1"))

	ok, err := ps.MarkAssessmentDone(p.ID)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !ok {
		t.Fatal("expected first mark to win")
	}

	ok, err = ps.MarkAssessmentDone(p.ID)
	if err != nil {
		t.Fatalf("mark again: %v", err)
	}
	if ok {
		t.Error("expected second mark to lose")
	}
}

func TestApplyGroupPenaltyHitsOnlyActive(t *testing.T) {
	ps := NewPlayerStore(openTestDB(t))
	a, _ := ps.Create(newTestPlayer("ext-a"))
	b, _ := ps.Create(newTestPlayer("ext-b"))
	sick := newTestPlayer("ext-c")
	c, _ := ps.Create(sick)

	for _, id := range []string{a.ID, b.ID, c.ID} {
		if err := ps.AddAspectXP(id, model.AspectStrength, 1000); err != nil {
			t.Fatalf("seed xp: %v", err)
		}
	}
	c2, _ := ps.GetByID(c.ID)
	c2.Status = model.StatusSick
	if err := ps.UpdateProfile(c2); err != nil {
		t.Fatalf("set sick: %v", err)
	}

	n, err := ps.ApplyGroupPenalty(model.AspectStrength, 400)
	if err != nil {
		t.Fatalf("group penalty: %v", err)
	}
	if n != 2 {
		t.Errorf("hit %d players, want 2", n)
	}

	gotA, _ := ps.GetByID(a.ID)
	if gotA.Aspects[model.AspectStrength].XP != 600 {
		t.Errorf("active player xp = %d, want 600", gotA.Aspects[model.AspectStrength].XP)
	}
	gotC, _ := ps.GetByID(c.ID)
	if gotC.Aspects[model.AspectStrength].XP != 1000 {
		t.Errorf("sick player xp = %d, want untouched 1000", gotC.Aspects[model.AspectStrength].XP)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	ps := NewPlayerStore(openTestDB(t))
	low, _ := ps.Create(newTestPlayer("ext-low"))
	high, _ := ps.Create(newTestPlayer("ext-high"))

	lowP, _ := ps.GetByID(low.ID)
	lowP.TotalXP = 100
	if err := ps.SaveProgress(lowP); err != nil {
		t.Fatalf("save: %v", err)
	}
	highP, _ := ps.GetByID(high.ID)
	highP.TotalXP = 9000
	if err := ps.SaveProgress(highP); err != nil {
		t.Fatalf("save: %v", err)
	}

	top, err := ps.Leaderboard(10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("got %d players, want 2", len(top))
	}
	if top[0].ID != high.ID {
		t.Errorf("leader = %s, want %s", top[0].ID, high.ID)
	}
}

func TestStreakAndCurrency(t *testing.T) {
	ps := NewPlayerStore(openTestDB(t))
	p, _ := ps.Create(newTestPlayer("ext-1"))

	if err := ps.UpdateStreak(p.ID, 7, "2026-08-27"); err != nil {
		t.Fatalf("streak: %v", err)
	}
	if err := ps.AddCoins(p.ID, 300); err != nil {
		t.Fatalf("coins: %v", err)
	}
	if err := ps.AddCoins(p.ID, -1000); err != nil {
		t.Fatalf("coins: %v", err)
	}
	if err := ps.AddCurrency(p.ID, 45); err != nil {
		t.Fatalf("currency: %v", err)
	}

	got, _ := ps.GetByID(p.ID)
	if got.StreakDays != 7 || got.LastStreakDate != "2026-08-27" {
		t.Errorf("streak = %d/%q, want 7/2026-08-27", got.StreakDays, got.LastStreakDate)
	}
	if got.Coins != 0 {
		t.Errorf("coins = %d, want 0 after clamp", got.Coins)
	}
	if got.Currency != 45 {
		t.Errorf("currency = %d, want 45", got.Currency)
	}
}

func TestCountEligibleForPortal(t *testing.T) {
	ps := NewPlayerStore(openTestDB(t))
	a, _ := ps.Create(newTestPlayer("ext-a"))
	ps.Create(newTestPlayer("ext-b"))

	aP, _ := ps.GetByID(a.ID)
	aP.TotalLevel = 30
	if err := ps.SaveProgress(aP); err != nil {
		t.Fatalf("save: %v", err)
	}

	n, err := ps.CountEligibleForPortal(10)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("eligible = %d, want 1", n)
	}

	n, _ = ps.CountEligibleForPortal(1)
	if n != 2 {
		t.Errorf("eligible at level 1 = %d, want 2", n)
	}
}
