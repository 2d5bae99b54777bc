package quest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mfarouk/hunterhall/internal/catalog"
	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/store"
)

// DayFormat is the canonical quest-day key.
const DayFormat = "2006-01-02"

// Recorder scores and stores daily task submissions.
type Recorder struct {
	players *store.PlayerStore
	subs    *store.SubmissionStore
}

func NewRecorder(players *store.PlayerStore, subs *store.SubmissionStore) *Recorder {
	return &Recorder{players: players, subs: subs}
}

// Record scores the payload against the task as assigned to this player
// today and stores the submission, overwriting any earlier answer for the
// same day. Aggregates are recomputed immediately so in-session displays
// stay current; aspect experience itself is only credited at judgment.
func (r *Recorder) Record(playerID, taskID string, payload catalog.Payload, now time.Time) (*model.Submission, error) {
	p, err := r.players.GetByID(playerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlayerNotFound
	}

	task, ok := catalog.Get(taskID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
	}
	if !p.AspectEnabled(task.Aspect()) {
		return nil, fmt.Errorf("%w: %s", ErrAspectDisabled, task.Aspect())
	}

	assigned := catalog.Eligible(p, catalog.NewDay(now))
	resolved, ok := assigned[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotAssigned, taskID)
	}

	credit, completed, tag, err := resolved.Score(payload)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(struct {
		catalog.Payload
		Tag string `json:"tag,omitempty"`
	}{Payload: payload, Tag: tag})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	sub, err := r.subs.Upsert(&model.Submission{
		PlayerID:  playerID,
		TaskID:    taskID,
		LogDate:   now.Format(DayFormat),
		Value:     raw,
		XPGained:  int64(float64(resolved.XPReward) * credit),
		Completed: completed,
	})
	if err != nil {
		return nil, err
	}

	if _, err := Recalculate(r.players, playerID); err != nil {
		return nil, err
	}
	return sub, nil
}

// AssignedToday resolves the player's task set for the given instant, with
// aspect enablement applied on top of the filter.
func (r *Recorder) AssignedToday(playerID string, now time.Time) (map[string]catalog.Task, error) {
	p, err := r.players.GetByID(playerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	return assignedTasks(p, now), nil
}

// assignedTasks is the end-to-end assignment: eligibility filter plus the
// aspect-enablement gate.
func assignedTasks(p *model.Player, now time.Time) map[string]catalog.Task {
	assigned := catalog.Eligible(p, catalog.NewDay(now))
	for id, task := range assigned {
		if !p.AspectEnabled(task.Aspect()) {
			delete(assigned, id)
		}
	}
	return assigned
}
