package metrics

import "time"

// ResultLabel enumerates per-file result categories for counters.
type ResultLabel string

const (
	ResultRendered ResultLabel = "rendered"
	ResultSkipped  ResultLabel = "skipped"
	ResultFailed   ResultLabel = "failed"
)

// Recorder defines observability hooks for build and per-file metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string) // outcome: success|partial|failed|cancelled
	ObserveRenderDuration(d time.Duration, result ResultLabel)
	IncFileResult(result ResultLabel)
	SetConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)       {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)               {}
func (NoopRecorder) IncBuildOutcome(string)                           {}
func (NoopRecorder) ObserveRenderDuration(time.Duration, ResultLabel) {}
func (NoopRecorder) IncFileResult(ResultLabel)                        {}
func (NoopRecorder) SetConcurrency(int)                               {}
