package turn

import "errors"

var (
	// ErrNoActiveTurn indicates there is no loaded turn to act on.
	ErrNoActiveTurn = errors.New("no active turn")
)
