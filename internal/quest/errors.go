package quest

import "errors"

var (
	// ErrPlayerNotFound means the player id resolved to no record.
	ErrPlayerNotFound = errors.New("quest: player not found")

	// ErrUnknownTask means the task id is not in the catalog at all.
	ErrUnknownTask = errors.New("quest: unknown task")

	// ErrTaskNotAssigned means the task exists but the eligibility filter
	// did not assign it to this player today.
	ErrTaskNotAssigned = errors.New("quest: task not assigned today")

	// ErrAspectDisabled means the task's aspect has intensity zero for
	// this player.
	ErrAspectDisabled = errors.New("quest: aspect disabled")

	// ErrAssessmentDone means the one-shot ability assessment was already
	// taken.
	ErrAssessmentDone = errors.New("quest: assessment already completed")
)
