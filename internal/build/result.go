package build

import (
	stderrors "errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/umlbuilder/internal/fileset"
	"git.home.luguber.info/inful/umlbuilder/internal/format"
	"git.home.luguber.info/inful/umlbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/umlbuilder/internal/renderer"
)

// Status represents the outcome of a build execution.
type Status string

const (
	// StatusSuccess means every stale input rendered, including the empty batch.
	StatusSuccess Status = "success"
	// StatusPartial means at least one input failed to render.
	StatusPartial Status = "partial"
	// StatusFailed means a configuration or filesystem error aborted the batch.
	StatusFailed Status = "failed"
	// StatusCancelled means the context ended before the batch completed.
	StatusCancelled Status = "cancelled"
)

// IsSuccess returns true if no input failed.
func (s Status) IsSuccess() bool { return s == StatusSuccess }

// Outcome is the result of rendering one input.
type Outcome struct {
	Input     string
	Rel       string
	OutputDir string
	Artifacts []renderer.Artifact
	Err       error
	Duration  time.Duration
}

// Succeeded reports whether the engine rendered the input.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// Result describes one batch. Outcomes are in sorted input order and only
// contain inputs handed to the engine; fresh inputs are listed in Skipped.
type Result struct {
	BuildID   string
	Status    Status
	Format    format.Format
	Outcomes  []Outcome
	Skipped   []fileset.ResolvedFile
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Failed returns the outcomes whose render failed.
func (r *Result) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Rendered returns the number of inputs rendered successfully.
func (r *Result) Rendered() int {
	return len(r.Outcomes) - len(r.Failed())
}

// Artifacts returns every artifact produced by the batch.
func (r *Result) Artifacts() []renderer.Artifact {
	var out []renderer.Artifact
	for _, o := range r.Outcomes {
		out = append(out, o.Artifacts...)
	}
	return out
}

// Err aggregates the per-file failures into a single render error, or returns
// nil when every render succeeded.
func (r *Result) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failed))
	for _, o := range failed {
		errs = append(errs, o.Err)
	}
	return errors.RenderError(fmt.Sprintf("%d of %d diagrams failed to render", len(failed), len(r.Outcomes))).
		WithCause(stderrors.Join(errs...)).
		WithContext("build_id", r.BuildID).
		Build()
}

func (r *Result) finish(status Status) {
	r.Status = status
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}
