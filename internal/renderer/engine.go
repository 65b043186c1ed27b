// Package renderer abstracts the external diagram engine. Engine is the only
// collaborator the build driver talks to; BinaryEngine drives a PlantUML
// executable or jar, tests inject FuncEngine.
package renderer

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/umlbuilder/internal/format"
)

// Options are the rendering settings shared by every file of a build.
type Options struct {
	Format       format.Format
	Charset      string // empty lets the engine pick its default
	ConfigFile   string
	GraphvizDot  string
	Verbose      bool
	Metadata     bool // embed the diagram source in the artifact
	KeepTmpFiles bool
}

// Artifact is a file produced by the engine.
type Artifact struct {
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Engine renders one input into outputDir.
//
// Contract: on error no artifact of the failed render may be left in
// outputDir. The returned artifacts are in lexical path order.
type Engine interface {
	Render(ctx context.Context, input, outputDir string, opts Options) ([]Artifact, error)
}

// FuncEngine adapts a function to Engine.
type FuncEngine func(ctx context.Context, input, outputDir string, opts Options) ([]Artifact, error)

func (f FuncEngine) Render(ctx context.Context, input, outputDir string, opts Options) ([]Artifact, error) {
	return f(ctx, input, outputDir, opts)
}

// NoopEngine renders nothing; useful for dry runs.
type NoopEngine struct{}

func (NoopEngine) Render(_ context.Context, input, outputDir string, _ Options) ([]Artifact, error) {
	slog.Debug("NoopEngine skipping render", "input", input, "output_dir", outputDir)
	return nil, nil
}
