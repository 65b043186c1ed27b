// Package observability carries per-build logging context through
// context.Context so that nested components log with the same identifiers.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/umlbuilder/internal/logfields"
)

// LogContext holds structured logging context information.
type LogContext struct {
	BuildID string
	Stage   string
	Input   string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithBuildID adds a build ID to the context.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	lc := extractLogContext(ctx)
	lc.BuildID = buildID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// WithInput records the diagram source currently being processed.
func WithInput(ctx context.Context, input string) context.Context {
	lc := extractLogContext(ctx)
	lc.Input = input
	return context.WithValue(ctx, logContextKey, lc)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}

// Attrs returns the non-empty context values as slog attributes.
func Attrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := make([]slog.Attr, 0, 3)
	if lc.BuildID != "" {
		attrs = append(attrs, logfields.BuildID(lc.BuildID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, logfields.Stage(lc.Stage))
	}
	if lc.Input != "" {
		attrs = append(attrs, logfields.Input(lc.Input))
	}
	return attrs
}

// Logger returns base enriched with the context values. A nil base means slog.Default().
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	attrs := Attrs(ctx)
	if len(attrs) == 0 {
		return base
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return base.With(args...)
}
