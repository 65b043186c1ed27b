package config

import (
	"git.home.luguber.info/inful/umlbuilder/internal/build"
	"git.home.luguber.info/inful/umlbuilder/internal/fileset"
	"git.home.luguber.info/inful/umlbuilder/internal/renderer"
)

// InputSpec returns the source description of the configuration.
func (c *Config) InputSpec() fileset.InputSpec {
	if c.Source.Directory != "" {
		return fileset.SingleDirectory{Path: c.Source.Directory}
	}
	return fileset.FileSet{
		Dir:      c.Source.Base,
		Includes: append([]string(nil), c.Source.Includes...),
		Excludes: append([]string(nil), c.Source.Excludes...),
	}
}

// Placement returns the output placement of the configuration.
func (c *Config) Placement() (fileset.Placement, error) {
	mode, err := fileset.ModeFromFlags(c.Output.Flatten, c.Output.InSourceDirectory)
	if err != nil {
		return fileset.Placement{}, err
	}
	return fileset.Placement{Mode: mode, OutputDir: c.Output.Directory}, nil
}

// ToRequest validates the configuration and builds the request it describes.
func (c *Config) ToRequest() (*build.Request, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	placement, err := c.Placement()
	if err != nil {
		return nil, err
	}
	return build.NewRequest(build.RequestOptions{
		Input:        c.InputSpec(),
		Placement:    placement,
		Overwrite:    c.Build.Overwrite,
		Format:       c.Render.Format,
		Charset:      c.Render.Charset,
		ConfigFile:   c.Render.ConfigFile,
		GraphvizDot:  c.Render.GraphvizDot,
		KeepTmpFiles: c.Render.KeepTmpFiles,
		Verbose:      c.Render.Verbose,
		NoMetadata:   !c.Render.MetadataEnabled(),
		Concurrency:  c.Build.Concurrency,
	})
}

// NewEngine builds the engine described by the engine section.
func (c *Config) NewEngine() *renderer.BinaryEngine {
	var e *renderer.BinaryEngine
	if c.Engine.Jar != "" {
		e = renderer.NewJarEngine(c.Engine.Java, c.Engine.Jar)
	} else {
		e = renderer.NewBinaryEngine(c.Engine.Command)
	}
	return e.WithTimeout(c.Engine.Timeout)
}
