package match

import "errors"

// Error kinds the turn engine raises. All are returned, never panicked;
// ApplyMove either completes the full state transition or makes no
// mutation at all.
var (
	// ErrInvalidMoveForState is returned when ApplyMove is called after
	// the game already has a Result. State is left unchanged.
	ErrInvalidMoveForState = errors.New("match: apply_move called with a result already set")

	// ErrScoresOutOfRange is returned when either State.Scores slice has
	// a capacity smaller than Setting.EndCount+1.
	ErrScoresOutOfRange = errors.New("match: scores slice too short for end_count")

	// ErrInvalidArgument covers non-finite shot velocity, an Invalid
	// hammer at turn entry with no result set, and similar misuse.
	ErrInvalidArgument = errors.New("match: invalid argument")
)
