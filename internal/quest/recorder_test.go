package quest

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mfarouk/hunterhall/internal/catalog"
	"github.com/mfarouk/hunterhall/internal/database"
	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/store"
)

// A Monday evening in January 2026.
var testNow = time.Date(2026, 1, 5, 21, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recorderEnv struct {
	players  *store.PlayerStore
	subs     *store.SubmissionStore
	recorder *Recorder
}

func newRecorderEnv(t *testing.T) *recorderEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	players := store.NewPlayerStore(db)
	subs := store.NewSubmissionStore(db)
	return &recorderEnv{
		players:  players,
		subs:     subs,
		recorder: NewRecorder(players, subs),
	}
}

func createPlayer(t *testing.T, players *store.PlayerStore, externalID string) *model.Player {
	t.Helper()
	p := &model.Player{
		ExternalID:   externalID,
		Name:         "Hunter " + externalID,
		Gender:       model.GenderMale,
		AgeGroup:     model.AgeYoung,
		FaithEnabled: true,
		Aspects:      make(map[model.Aspect]model.AspectState),
	}
	for _, a := range model.Aspects {
		p.Aspects[a] = model.AspectState{Intensity: 3}
	}
	created, err := players.Create(p)
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	return created
}

func TestRecordUnknownPlayer(t *testing.T) {
	env := newRecorderEnv(t)
	_, err := env.recorder.Record("nobody", "health_water", catalog.Payload{Value: 2}, testNow)
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("err = %v, want ErrPlayerNotFound", err)
	}
}

func TestRecordUnknownTask(t *testing.T) {
	env := newRecorderEnv(t)
	p := createPlayer(t, env.players, "ext-1")
	_, err := env.recorder.Record(p.ID, "no_such_task", catalog.Payload{}, testNow)
	if !errors.Is(err, ErrUnknownTask) {
		t.Errorf("err = %v, want ErrUnknownTask", err)
	}
}

func TestRecordNotAssignedToday(t *testing.T) {
	env := newRecorderEnv(t)
	p := createPlayer(t, env.players, "ext-1")
	// Nail trimming only comes up on Fridays; testNow is a Monday.
	_, err := env.recorder.Record(p.ID, "health_nails", catalog.Payload{}, testNow)
	if !errors.Is(err, ErrTaskNotAssigned) {
		t.Errorf("err = %v, want ErrTaskNotAssigned", err)
	}
}

func TestRecordAspectDisabled(t *testing.T) {
	env := newRecorderEnv(t)
	p := createPlayer(t, env.players, "ext-1")

	aspect := catalog.All["health_water"].Aspect()
	if err := env.players.SetAspectState(p.ID, aspect, model.AspectState{Intensity: 0}); err != nil {
		t.Fatalf("disable aspect: %v", err)
	}

	_, err := env.recorder.Record(p.ID, "health_water", catalog.Payload{Value: 2}, testNow)
	if !errors.Is(err, ErrAspectDisabled) {
		t.Errorf("err = %v, want ErrAspectDisabled", err)
	}
}

func TestRecordScoresAndOverwrites(t *testing.T) {
	env := newRecorderEnv(t)
	p := createPlayer(t, env.players, "ext-1")
	reward := catalog.All["health_water"].XPReward

	// Half the three-litre target earns half credit, not completion.
	sub, err := env.recorder.Record(p.ID, "health_water", catalog.Payload{Value: 1.5}, testNow)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if sub.Completed {
		t.Error("half the target should not count as completed")
	}
	if want := int64(float64(reward) * 0.5); sub.XPGained != want {
		t.Errorf("xp = %d, want %d", sub.XPGained, want)
	}
	if sub.LogDate != testNow.Format(DayFormat) {
		t.Errorf("log date = %q, want %q", sub.LogDate, testNow.Format(DayFormat))
	}

	// Logging again later the same day replaces the earlier answer.
	sub, err = env.recorder.Record(p.ID, "health_water", catalog.Payload{Value: 3}, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("re-record: %v", err)
	}
	if !sub.Completed || sub.XPGained != reward {
		t.Errorf("got completed=%v xp=%d, want true %d", sub.Completed, sub.XPGained, reward)
	}

	stored, err := env.subs.Get(p.ID, "health_water", testNow.Format(DayFormat))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored == nil || stored.ID != sub.ID {
		t.Error("expected a single row per task per day")
	}
}

func TestAssignedTodayFiltersDisabledAspects(t *testing.T) {
	env := newRecorderEnv(t)
	p := createPlayer(t, env.players, "ext-1")

	aspect := catalog.All["health_water"].Aspect()
	if err := env.players.SetAspectState(p.ID, aspect, model.AspectState{Intensity: 0}); err != nil {
		t.Fatalf("disable aspect: %v", err)
	}

	assigned, err := env.recorder.AssignedToday(p.ID, testNow)
	if err != nil {
		t.Fatalf("assigned: %v", err)
	}
	if _, ok := assigned["health_water"]; ok {
		t.Error("task from a disabled aspect should not be assigned")
	}
	if _, ok := assigned["rel_fajr"]; !ok {
		t.Error("tasks from enabled aspects should remain assigned")
	}
}
