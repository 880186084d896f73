package core

import "errors"

// Domain errors.
var (
	// ErrStopped is returned by Push after the Run loop has exited.
	ErrStopped = errors.New("core: stopped")

	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("core: already running")
)
