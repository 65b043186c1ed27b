// Package incremental decides whether an input needs rendering by comparing
// its modification time with that of the artifact it is expected to produce.
package incremental

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/umlbuilder/internal/format"
	"git.home.luguber.info/inful/umlbuilder/internal/logfields"
)

// Checker evaluates freshness for a single output format.
type Checker struct {
	format    format.Format
	overwrite bool
	logger    *slog.Logger
}

// NewChecker creates a checker expecting artifacts of the given format.
// With overwrite set every input is stale.
func NewChecker(f format.Format, overwrite bool) *Checker {
	return &Checker{
		format:    f,
		overwrite: overwrite,
		logger:    slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (c *Checker) WithLogger(logger *slog.Logger) *Checker {
	c.logger = logger
	return c
}

// ExpectedArtifact returns the path the engine writes for input in outputDir.
func (c *Checker) ExpectedArtifact(input, outputDir string) string {
	return filepath.Join(outputDir, c.format.ArtifactName(input))
}

// IsStale reports whether input has to be rendered into outputDir.
// Equal modification times count as fresh.
func (c *Checker) IsStale(input, outputDir string) bool {
	if c.overwrite {
		return true
	}
	artifact := c.ExpectedArtifact(input, outputDir)
	out, err := os.Stat(artifact)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("Cannot stat artifact, treating input as stale",
				logfields.Artifact(artifact), logfields.Error(err))
		}
		return true
	}
	in, err := os.Stat(input)
	if err != nil {
		// Let the engine report the unreadable input.
		c.logger.Debug("Cannot stat input, treating as stale",
			logfields.Input(input), logfields.Error(err))
		return true
	}
	return in.ModTime().After(out.ModTime())
}
