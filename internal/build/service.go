package build

import "context"

// Service is the interface the CLI and watch mode depend on.
type Service interface {
	// Build runs one batch. The Result is non-nil even when an error is
	// returned, and describes everything that happened before the abort.
	Build(ctx context.Context, req *Request) (*Result, error)
}

var _ Service = (*Builder)(nil)
