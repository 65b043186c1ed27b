package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID     = "build_id"
	KeyStage       = "stage"
	KeyInput       = "input"
	KeyOutputDir   = "output_dir"
	KeyArtifact    = "artifact"
	KeyFormat      = "format"
	KeyPath        = "path"
	KeyStatus      = "status"
	KeyCount       = "count"
	KeyDurationMS  = "duration_ms"
	KeyEngine      = "engine"
	KeyConcurrency = "concurrency"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Input(p string) slog.Attr        { return slog.String(KeyInput, p) }
func OutputDir(p string) slog.Attr    { return slog.String(KeyOutputDir, p) }
func Artifact(p string) slog.Attr     { return slog.String(KeyArtifact, p) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Engine(cmd string) slog.Attr     { return slog.String(KeyEngine, cmd) }
func Concurrency(n int) slog.Attr     { return slog.Int(KeyConcurrency, n) }

// Duration converts d to milliseconds under KeyDurationMS.
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
