package timer

import "errors"

var (
	// ErrPauseDisabled indicates pausing is turned off in settings.
	ErrPauseDisabled = errors.New("pausing is disabled")
	// ErrResetDisabled indicates resetting is turned off in settings.
	ErrResetDisabled = errors.New("resetting is disabled")
	// ErrNotLoaded indicates the timer has no turn loaded.
	ErrNotLoaded = errors.New("no turn loaded")
)
