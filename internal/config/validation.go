package config

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/umlbuilder/internal/format"
	"git.home.luguber.info/inful/umlbuilder/internal/foundation/errors"
)

// Validate checks the configuration without touching the filesystem.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if c.Output.Flatten && c.Output.InSourceDirectory {
		return errors.ValidationError("output.flatten and output.in_source_directory are mutually exclusive").Build()
	}
	if !c.Output.InSourceDirectory && strings.TrimSpace(c.Output.Directory) == "" {
		return errors.ValidationError("output.directory is required unless output.in_source_directory is set").Build()
	}
	if _, err := format.Parse(c.Render.Format); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "unsupported output format").
			Fatal().UserAction().
			WithContext("format", c.Render.Format).
			Build()
	}
	if c.Build.Concurrency < 0 {
		return errors.ValidationError("build.concurrency must not be negative").
			WithContext("concurrency", c.Build.Concurrency).
			Build()
	}
	if c.Engine.Timeout < 0 {
		return errors.ValidationError("engine.timeout must not be negative").Build()
	}
	if c.Watch.Debounce < 0 || c.Watch.PollInterval < 0 {
		return errors.ValidationError("watch intervals must not be negative").Build()
	}
	return nil
}

func (c *Config) validateSource() error {
	hasDir := strings.TrimSpace(c.Source.Directory) != ""
	hasBase := strings.TrimSpace(c.Source.Base) != ""
	switch {
	case hasDir && hasBase:
		return errors.ValidationError("source.directory and source.base are mutually exclusive").Build()
	case !hasDir && !hasBase:
		return errors.ConfigError("no source configured: set source.base or source.directory").Build()
	case hasDir && (len(c.Source.Includes) > 0 || len(c.Source.Excludes) > 0):
		return errors.ValidationError("source.includes and source.excludes require source.base").Build()
	}
	for _, p := range c.Source.Includes {
		if !doublestar.ValidatePattern(p) {
			return errors.ValidationError("invalid include pattern").WithContext("pattern", p).Build()
		}
	}
	for _, p := range c.Source.Excludes {
		if !doublestar.ValidatePattern(p) {
			return errors.ValidationError("invalid exclude pattern").WithContext("pattern", p).Build()
		}
	}
	return nil
}
