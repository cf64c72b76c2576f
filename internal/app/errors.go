package app

import "errors"

// Application errors.
var (
	// ErrQuit signals that the user asked to exit.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates Run was called twice.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrUnknownBackend indicates a backend rule naming no known backend.
	ErrUnknownBackend = errors.New("unknown backend")
)

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}
