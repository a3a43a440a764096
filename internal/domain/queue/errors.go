package queue

import "errors"

var (
	// ErrEmptyRoster indicates a rotation was requested with nobody in it.
	ErrEmptyRoster = errors.New("no people to build a rotation from")
	// ErrEmptyQueue indicates an operation on a queue without entries.
	ErrEmptyQueue = errors.New("queue is empty")
	// ErrUnknownReshuffleMode indicates an unsupported reshuffle mode.
	ErrUnknownReshuffleMode = errors.New("unknown reshuffle mode")
)
