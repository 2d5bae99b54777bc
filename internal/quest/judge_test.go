package quest

import (
	"context"
	"math/rand"
	"testing"

	"github.com/mfarouk/hunterhall/internal/database"
	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/notify"
	"github.com/mfarouk/hunterhall/internal/store"
	"github.com/mfarouk/hunterhall/internal/websocket"
)

type judgeEnv struct {
	players   *store.PlayerStore
	subs      *store.SubmissionStore
	buffs     *store.BuffStore
	penalties *store.PenaltyStore
	config    *store.ConfigStore
	notifier  *notify.Service
	recorder  *Recorder
	judge     *Judge
}

func newJudgeEnv(t *testing.T, seed int64) *judgeEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := discardLogger()
	players := store.NewPlayerStore(db)
	subs := store.NewSubmissionStore(db)
	buffs := store.NewBuffStore(db)
	penalties := store.NewPenaltyStore(db)
	config := store.NewConfigStore(db)
	notifier := notify.NewService(websocket.NewHub(logger), nil, store.NewPushStore(db), players, logger)

	return &judgeEnv{
		players:   players,
		subs:      subs,
		buffs:     buffs,
		penalties: penalties,
		config:    config,
		notifier:  notifier,
		recorder:  NewRecorder(players, subs),
		judge: NewJudge(players, subs, buffs, penalties, config, notifier, logger,
			rand.New(rand.NewSource(seed))),
	}
}

func sumAspectXP(p *model.Player) int64 {
	var total int64
	for _, st := range p.Aspects {
		total += st.XP
	}
	return total
}

func TestRunOncePerDay(t *testing.T) {
	env := newJudgeEnv(t, 1)
	ctx := context.Background()

	ran, err := env.judge.Run(ctx, testNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ran {
		t.Fatal("expected first run of the day to proceed")
	}

	ran, err = env.judge.Run(ctx, testNow)
	if err != nil {
		t.Fatalf("re-run: %v", err)
	}
	if ran {
		t.Error("expected second run on the same day to be skipped")
	}

	ran, err = env.judge.Run(ctx, testNow.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("next day: %v", err)
	}
	if !ran {
		t.Error("expected the next day to run again")
	}
}

func TestRunStampsDayBeforeSettling(t *testing.T) {
	env := newJudgeEnv(t, 1)
	ctx := context.Background()
	p := createPlayer(t, env.players, "ext-1")
	if err := env.players.AddAspectXP(p.ID, model.AspectStrength, 1000); err != nil {
		t.Fatalf("seed xp: %v", err)
	}

	// A judge whose player listing is broken dies right after the stamp.
	deadDB, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open dead db: %v", err)
	}
	deadDB.Close()
	broken := NewJudge(store.NewPlayerStore(deadDB), env.subs, env.buffs, env.penalties,
		env.config, env.notifier, discardLogger(), rand.New(rand.NewSource(1)))
	if _, err := broken.Run(ctx, testNow); err == nil {
		t.Fatal("expected the cycle to fail once player listing broke")
	}

	day, err := env.config.Get(store.KeyLastJudgmentRun)
	if err != nil {
		t.Fatalf("get stamp: %v", err)
	}
	if want := testNow.Format(DayFormat); day != want {
		t.Errorf("stamp = %q, want %q written before settling", day, want)
	}

	// A later run must not replay the stamped day: settlement credits are
	// deltas, so a replay would pay out twice.
	ran, err := env.judge.Run(ctx, testNow)
	if err != nil {
		t.Fatalf("re-run: %v", err)
	}
	if ran {
		t.Error("expected the stamped day to be skipped")
	}
	got, _ := env.players.GetByID(p.ID)
	if got.StreakDays != 0 || sumAspectXP(got) != 1000 {
		t.Errorf("player settled on a stamped day: streak %d, xp %d", got.StreakDays, sumAspectXP(got))
	}
}

func TestJudgeRewardsClearedDay(t *testing.T) {
	env := newJudgeEnv(t, 1)
	p := createPlayer(t, env.players, "ext-1")
	day := testNow.Format(DayFormat)

	assigned, err := env.recorder.AssignedToday(p.ID, testNow)
	if err != nil {
		t.Fatalf("assigned: %v", err)
	}
	if len(assigned) == 0 {
		t.Fatal("expected assigned tasks")
	}
	for id := range assigned {
		if _, err := env.subs.Upsert(&model.Submission{
			PlayerID: p.ID, TaskID: id, LogDate: day,
			Value: []byte(`{}`), XPGained: 10, Completed: true,
		}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	if _, err := env.judge.Run(context.Background(), testNow); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, _ := env.players.GetByID(p.ID)
	if got.StreakDays != 1 {
		t.Errorf("streak = %d, want 1", got.StreakDays)
	}
	if got.LastStreakDate != day {
		t.Errorf("last streak date = %q, want %q", got.LastStreakDate, day)
	}
	if want := int64(10 * len(assigned)); sumAspectXP(got) != want {
		t.Errorf("credited xp = %d, want %d", sumAspectXP(got), want)
	}
	if got.TotalXP == 0 {
		t.Error("aggregates should be recalculated after crediting")
	}
}

func TestJudgeProtectionAbsorbsFailure(t *testing.T) {
	env := newJudgeEnv(t, 1)
	p := createPlayer(t, env.players, "ext-1")
	if err := env.players.UpdateStreak(p.ID, 5, "2026-01-04"); err != nil {
		t.Fatalf("seed streak: %v", err)
	}
	if _, err := env.buffs.Create(&model.Buff{
		PlayerID: p.ID, Kind: model.BuffStreakProtection,
	}); err != nil {
		t.Fatalf("create buff: %v", err)
	}

	// No submissions at all: a total failure, but the buff takes the hit.
	if _, err := env.judge.Run(context.Background(), testNow); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, _ := env.players.GetByID(p.ID)
	if got.StreakDays != 5 {
		t.Errorf("streak = %d, want untouched 5", got.StreakDays)
	}
	remaining, _ := env.buffs.ListActive(p.ID, testNow)
	if len(remaining) != 0 {
		t.Errorf("buffs remaining = %d, want protection consumed", len(remaining))
	}
	pending, _ := env.penalties.ListPending(p.ID)
	if len(pending) != 0 {
		t.Errorf("pending penalties = %d, want 0", len(pending))
	}
}

func TestJudgePenaltyResetsStreak(t *testing.T) {
	// The penalty kind is drawn at random; run across several seeds and
	// check that each draw applies exactly one of the three.
	for seed := int64(0); seed < 6; seed++ {
		env := newJudgeEnv(t, seed)
		p := createPlayer(t, env.players, "ext-1")
		p.CurrencyCode = "EGP"
		if err := env.players.UpdateProfile(p); err != nil {
			t.Fatalf("set currency code: %v", err)
		}
		if err := env.players.UpdateStreak(p.ID, 5, "2026-01-04"); err != nil {
			t.Fatalf("seed streak: %v", err)
		}
		if err := env.players.AddCoins(p.ID, 100); err != nil {
			t.Fatalf("seed coins: %v", err)
		}
		if err := env.players.AddAspectXP(p.ID, model.AspectStrength, 1000); err != nil {
			t.Fatalf("seed xp: %v", err)
		}

		if _, err := env.judge.Run(context.Background(), testNow); err != nil {
			t.Fatalf("seed %d: run: %v", seed, err)
		}

		got, _ := env.players.GetByID(p.ID)
		if got.StreakDays != 0 {
			t.Errorf("seed %d: streak = %d, want reset to 0", seed, got.StreakDays)
		}

		pending, _ := env.penalties.ListPending(p.ID)
		effects := 0
		if len(pending) > 0 {
			effects++
			if pending[0].Amount != 50 {
				t.Errorf("seed %d: commitment amount = %d, want 50 at full severity", seed, pending[0].Amount)
			}
			if pending[0].Currency != "EGP" {
				t.Errorf("seed %d: commitment currency = %q, want the player's EGP", seed, pending[0].Currency)
			}
			if got.Currency != pending[0].Amount {
				t.Errorf("seed %d: currency = %d, want %d", seed, got.Currency, pending[0].Amount)
			}
		}
		if got.Coins != 100 {
			effects++
			if got.Coins != 50 {
				t.Errorf("seed %d: coins = %d, want 50 after the full base penalty", seed, got.Coins)
			}
		}
		if sumAspectXP(got) != 1000 {
			effects++
		}
		if effects != 1 {
			t.Errorf("seed %d: %d penalty effects applied, want exactly 1", seed, effects)
		}
	}
}

func TestJudgeSkipsPlayersWithNoTasks(t *testing.T) {
	env := newJudgeEnv(t, 1)
	p := createPlayer(t, env.players, "ext-1")
	for _, a := range model.Aspects {
		if err := env.players.SetAspectState(p.ID, a, model.AspectState{Intensity: 0}); err != nil {
			t.Fatalf("disable aspect: %v", err)
		}
	}
	if err := env.players.UpdateStreak(p.ID, 5, "2026-01-04"); err != nil {
		t.Fatalf("seed streak: %v", err)
	}

	if _, err := env.judge.Run(context.Background(), testNow); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, _ := env.players.GetByID(p.ID)
	if got.StreakDays != 5 {
		t.Errorf("streak = %d, want untouched 5 with nothing assigned", got.StreakDays)
	}
	pending, _ := env.penalties.ListPending(p.ID)
	if len(pending) != 0 {
		t.Errorf("pending penalties = %d, want 0", len(pending))
	}
}

func TestJudgeAppliesXPMultiplier(t *testing.T) {
	env := newJudgeEnv(t, 1)
	p := createPlayer(t, env.players, "ext-1")
	day := testNow.Format(DayFormat)

	if _, err := env.buffs.Create(&model.Buff{
		PlayerID: p.ID, Kind: model.BuffXPMultiplier, Multiplier: 2,
	}); err != nil {
		t.Fatalf("create buff: %v", err)
	}

	assigned, err := env.recorder.AssignedToday(p.ID, testNow)
	if err != nil {
		t.Fatalf("assigned: %v", err)
	}
	for id := range assigned {
		xp := int64(0)
		if id == "health_water" {
			xp = 100
		}
		if _, err := env.subs.Upsert(&model.Submission{
			PlayerID: p.ID, TaskID: id, LogDate: day,
			Value: []byte(`{}`), XPGained: xp, Completed: true,
		}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	if _, err := env.judge.Run(context.Background(), testNow); err != nil {
		t.Fatalf("run: %v", err)
	}

	aspect := assigned["health_water"].Aspect()
	got, _ := env.players.GetByID(p.ID)
	if got.Aspects[aspect].XP != 200 {
		t.Errorf("xp = %d, want 200 with the doubler active", got.Aspects[aspect].XP)
	}
}
