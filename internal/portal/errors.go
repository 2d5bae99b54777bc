package portal

import "errors"

var (
	// ErrPortalNotFound means the portal id resolved to no record.
	ErrPortalNotFound = errors.New("portal: not found")

	// ErrQuestNotFound means the quest template does not exist.
	ErrQuestNotFound = errors.New("portal: quest not found")

	// ErrNotRecruiting means the portal has already started or closed.
	ErrNotRecruiting = errors.New("portal: not recruiting")

	// ErrNotActive means the portal is not in the active state.
	ErrNotActive = errors.New("portal: not active")

	// ErrAlreadyJoined means the player is already enrolled.
	ErrAlreadyJoined = errors.New("portal: already joined")

	// ErrInsufficientEnergy means the player cannot pay the join cost.
	ErrInsufficientEnergy = errors.New("portal: insufficient energy")

	// ErrNotParticipant means the player never joined this portal.
	ErrNotParticipant = errors.New("portal: not a participant")

	// ErrAlreadyCompleted means the player already reported completion.
	ErrAlreadyCompleted = errors.New("portal: already completed")

	// ErrTooSoon means the minimum clear time has not elapsed yet.
	ErrTooSoon = errors.New("portal: not yet, minimum duration not reached")

	// ErrNotOwner means only the portal's owner may perform this action.
	ErrNotOwner = errors.New("portal: owner only")
)
