package roster

import "errors"

var (
	// ErrPersonNotFound indicates the person doesn't exist.
	ErrPersonNotFound = errors.New("person not found")
	// ErrDeviceNotFound indicates the device doesn't exist.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrInvalidInput indicates invalid roster or settings input.
	ErrInvalidInput = errors.New("invalid roster input")
)
