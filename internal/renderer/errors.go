package renderer

import "errors"

var (
	// ErrEngineNotFound indicates the engine executable was not detected on PATH.
	ErrEngineNotFound = errors.New("diagram engine not found")
	// ErrExecutionFailed indicates the engine returned a non-zero exit status.
	ErrExecutionFailed = errors.New("diagram engine execution failed")
	// ErrTimeout indicates a render exceeded its per-file deadline.
	ErrTimeout = errors.New("diagram engine timed out")
)
