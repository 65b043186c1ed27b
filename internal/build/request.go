package build

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"git.home.luguber.info/inful/umlbuilder/internal/fileset"
	"git.home.luguber.info/inful/umlbuilder/internal/format"
	"git.home.luguber.info/inful/umlbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/umlbuilder/internal/renderer"
)

// RequestOptions is the unvalidated form of a Request.
type RequestOptions struct {
	Input     fileset.InputSpec
	Placement fileset.Placement

	// Overwrite renders every input regardless of artifact age.
	Overwrite bool

	// Format is parsed case-insensitively; empty selects format.Default.
	Format string

	// Charset is an IANA character set name passed to the engine.
	Charset string

	ConfigFile   string
	GraphvizDot  string
	KeepTmpFiles bool
	Verbose      bool

	// NoMetadata stops the engine from embedding the source in artifacts.
	NoMetadata bool

	// Concurrency is the number of parallel engine processes; 0 and 1 mean sequential.
	Concurrency int
}

// Request is a validated, immutable build description.
type Request struct {
	input        fileset.InputSpec
	placement    fileset.Placement
	overwrite    bool
	format       format.Format
	charset      string
	configFile   string
	graphvizDot  string
	keepTmpFiles bool
	verbose      bool
	metadata     bool
	concurrency  int
}

// NewRequest validates opts. Checks that need no filesystem access run first,
// so a bad format is reported even when the source directory is missing.
func NewRequest(opts RequestOptions) (*Request, error) {
	f, err := format.Parse(opts.Format)
	if err != nil {
		return nil, UnsupportedFormat(opts.Format, err)
	}

	charset := canonicalCharset(opts.Charset)

	if opts.Input == nil {
		return nil, errors.ConfigError("no source directory configured").Build()
	}
	if opts.Concurrency < 0 {
		return nil, errors.ValidationError("concurrency must not be negative").
			WithContext("concurrency", opts.Concurrency).
			Build()
	}

	placement := opts.Placement
	if placement.Mode == "" {
		placement.Mode = fileset.Mirror
	}
	switch placement.Mode {
	case fileset.Mirror, fileset.Flatten, fileset.CoLocate:
	default:
		return nil, errors.ConfigError("unknown placement mode").
			WithContext("mode", string(placement.Mode)).
			Build()
	}
	if placement.RequiresOutputDir() && strings.TrimSpace(placement.OutputDir) == "" {
		return nil, errors.ConfigError("output directory is required unless artifacts are written next to their sources").
			WithContext("mode", string(placement.Mode)).
			Build()
	}
	if placement.RequiresOutputDir() {
		placement.OutputDir = filepath.Clean(placement.OutputDir)
	}

	input := cloneInput(opts.Input)
	if _, err := input.Matcher(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid file pattern").
			Fatal().UserAction().
			Build()
	}
	if err := fileset.CheckBase(input.Base()); err != nil {
		return nil, err
	}

	return &Request{
		input:        input,
		placement:    placement,
		overwrite:    opts.Overwrite,
		format:       f,
		charset:      charset,
		configFile:   opts.ConfigFile,
		graphvizDot:  opts.GraphvizDot,
		keepTmpFiles: opts.KeepTmpFiles,
		verbose:      opts.Verbose,
		metadata:     !opts.NoMetadata,
		concurrency:  opts.Concurrency,
	}, nil
}

// UnsupportedFormat is the configuration error for an unknown format name.
func UnsupportedFormat(raw string, cause error) error {
	return errors.WrapError(cause, errors.CategoryConfig, "unsupported output format").
		Fatal().UserAction().
		WithContext("format", raw).
		WithContext("valid", strings.Join(format.Names(), ",")).
		Build()
}

// canonicalCharset maps names known to the IANA registry onto their MIME
// spelling. Other names, such as the Java aliases "UTF8" or "Cp1252", go to
// the engine unchanged and the engine rejects those it cannot decode.
func canonicalCharset(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	enc, err := ianaindex.IANA.Encoding(raw)
	if err != nil || enc == nil {
		return raw
	}
	if name, err := ianaindex.MIME.Name(enc); err == nil {
		return name
	}
	if name, err := ianaindex.IANA.Name(enc); err == nil {
		return name
	}
	return raw
}

func cloneInput(in fileset.InputSpec) fileset.InputSpec {
	if fs, ok := in.(fileset.FileSet); ok {
		return fs.Clone()
	}
	return in
}

// Input returns the source description.
func (r *Request) Input() fileset.InputSpec { return cloneInput(r.input) }

// Placement returns the output placement.
func (r *Request) Placement() fileset.Placement { return r.placement }

// Overwrite reports whether freshness checks are bypassed.
func (r *Request) Overwrite() bool { return r.overwrite }

// Format returns the output format.
func (r *Request) Format() format.Format { return r.format }

// Charset returns the charset handed to the engine, or empty for the engine default.
func (r *Request) Charset() string { return r.charset }

// Workers is the number of files rendered in parallel. Flatten mode always
// renders sequentially so that the last input in sorted order wins collisions.
func (r *Request) Workers() int {
	if r.placement.Sequential() || r.concurrency < 1 {
		return 1
	}
	return r.concurrency
}

// RenderOptions returns the engine settings shared by every file.
func (r *Request) RenderOptions() renderer.Options {
	return renderer.Options{
		Format:       r.format,
		Charset:      r.charset,
		ConfigFile:   r.configFile,
		GraphvizDot:  r.graphvizDot,
		Verbose:      r.verbose,
		Metadata:     r.metadata,
		KeepTmpFiles: r.keepTmpFiles,
	}
}
