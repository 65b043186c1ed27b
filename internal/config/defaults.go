package config

import (
	"time"

	"git.home.luguber.info/inful/umlbuilder/internal/fileset"
	"git.home.luguber.info/inful/umlbuilder/internal/format"
	"git.home.luguber.info/inful/umlbuilder/internal/renderer"
)

// Default values applied to unset fields.
const (
	DefaultOutputDirectory = "target/plantuml"
	DefaultConcurrency     = 1
	DefaultDebounce        = 300 * time.Millisecond
)

// ApplyDefaults fills unset fields. Source paths are never defaulted.
func (c *Config) ApplyDefaults() {
	if c.Source.Base != "" && len(c.Source.Includes) == 0 {
		c.Source.Includes = []string{fileset.DefaultInclude}
	}
	if c.Output.Directory == "" && !c.Output.InSourceDirectory {
		c.Output.Directory = DefaultOutputDirectory
	}
	if c.Render.Format == "" {
		c.Render.Format = string(format.Default)
	}
	if c.Engine.Command == "" && c.Engine.Jar == "" {
		c.Engine.Command = renderer.DefaultCommand
	}
	if c.Engine.Jar != "" && c.Engine.Java == "" {
		c.Engine.Java = "java"
	}
	if c.Build.Concurrency == 0 {
		c.Build.Concurrency = DefaultConcurrency
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = DefaultDebounce
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
}
