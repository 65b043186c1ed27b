// Package commands implements the umlbuilder subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/umlbuilder/internal/config"
)

// Global carries state shared by all subcommands.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"umlbuilder.yaml" env:"UMLBUILDER_CONFIG"`
	Verbose   bool             `short:"v" help:"Enable verbose logging" env:"UMLBUILDER_VERBOSE"`
	LogFormat string           `name:"log-format" help:"Log output format (text or json)" enum:"text,json" default:"text" env:"UMLBUILDER_LOG_FORMAT"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" help:"Render stale diagrams once"`
	Watch    WatchCmd    `cmd:"" help:"Render, then re-render whenever sources change"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
	Formats  FormatsCmd  `cmd:"" help:"List supported output formats"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(os.Stderr, config.NormalizeLogFormat(c.LogFormat), level))
	return nil
}

// applyConfigLogging lets the configuration file raise or lower the level
// when the command line did not ask for verbose output.
func (c *CLI) applyConfigLogging(g *Global, cfg *config.Config) {
	if c.Verbose {
		return
	}
	logFormat := config.NormalizeLogFormat(c.LogFormat)
	if c.LogFormat == string(config.LogFormatText) && cfg.Logging.Format != "" {
		logFormat = cfg.Logging.Format
	}
	logger := newLogger(os.Stderr, logFormat, cfg.Logging.Level.SlogLevel())
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}
}

func newLogger(w io.Writer, f config.LogFormat, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if f == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// BuildFlags are shared by generate and watch. Every flag overrides the
// matching configuration key when set. Boolean flags are pointers so that an
// absent flag keeps the configured value and --no-<flag> can switch it off.
type BuildFlags struct {
	SourceDir string   `name:"source-dir" help:"Render every diagram directly inside this directory" env:"UMLBUILDER_SOURCE_DIR"`
	Base      string   `name:"base" help:"Base directory of a recursive file set" env:"UMLBUILDER_BASE"`
	Include   []string `name:"include" help:"Include glob relative to --base (repeatable)" sep:"none"`
	Exclude   []string `name:"exclude" help:"Exclude glob relative to --base (repeatable)" sep:"none"`

	Output   string `short:"o" name:"output" help:"Output directory" env:"UMLBUILDER_OUTPUT"`
	InSource *bool  `name:"in-source" negatable:"" help:"Write artifacts next to their sources" env:"UMLBUILDER_IN_SOURCE"`
	Flatten  *bool  `name:"flatten" negatable:"" help:"Write every artifact directly into the output directory" env:"UMLBUILDER_FLATTEN"`

	Format         string `short:"f" name:"format" help:"Output format (see 'umlbuilder formats')" env:"UMLBUILDER_FORMAT"`
	Charset        string `name:"charset" help:"Source charset" env:"UMLBUILDER_CHARSET"`
	PlantUMLConfig string `name:"plantuml-config" help:"PlantUML configuration file" env:"UMLBUILDER_PLANTUML_CONFIG"`
	GraphvizDot    string `name:"graphviz-dot" help:"Path of the Graphviz dot executable" env:"UMLBUILDER_GRAPHVIZ_DOT"`
	KeepTmpFiles   *bool  `name:"keep-tmp-files" negatable:"" help:"Keep the engine's temporary files" env:"UMLBUILDER_KEEP_TMP_FILES"`
	Metadata       *bool  `name:"metadata" negatable:"" help:"Embed diagram sources in artifacts (--no-metadata disables)" env:"UMLBUILDER_METADATA"`

	PlantUML string        `name:"plantuml" help:"PlantUML executable" env:"UMLBUILDER_PLANTUML"`
	Jar      string        `name:"plantuml-jar" help:"Run this PlantUML jar through java instead of the executable" env:"UMLBUILDER_PLANTUML_JAR"`
	Timeout  time.Duration `name:"timeout" help:"Per-diagram render timeout" env:"UMLBUILDER_TIMEOUT"`

	Overwrite       *bool  `name:"overwrite" negatable:"" help:"Render every diagram regardless of timestamps" env:"UMLBUILDER_OVERWRITE"`
	Concurrency     int    `name:"concurrency" help:"Parallel renders; 0 keeps the configured value" env:"UMLBUILDER_CONCURRENCY"`
	Report          string `name:"report" help:"Write a JSON build report to this path" env:"UMLBUILDER_REPORT"`
	MetricsTextfile string `name:"metrics-textfile" help:"Write Prometheus metrics to this textfile" env:"UMLBUILDER_METRICS_TEXTFILE"`
	ContinueOnError *bool  `name:"continue-on-error" negatable:"" help:"Exit successfully even when some diagrams fail" env:"UMLBUILDER_CONTINUE_ON_ERROR"`
}

// hasSource reports whether the command line alone selects the sources.
func (f *BuildFlags) hasSource() bool {
	return f.SourceDir != "" || f.Base != ""
}

// apply merges the flags into cfg.
func (f *BuildFlags) apply(cfg *config.Config) {
	switch {
	case f.SourceDir != "":
		cfg.Source = config.SourceConfig{Directory: f.SourceDir}
	case f.Base != "":
		cfg.Source.Directory = ""
		if cfg.Source.Base != f.Base {
			cfg.Source.Includes = nil
			cfg.Source.Excludes = nil
		}
		cfg.Source.Base = f.Base
	}
	if len(f.Include) > 0 {
		cfg.Source.Includes = trimAll(f.Include)
	}
	if len(f.Exclude) > 0 {
		cfg.Source.Excludes = trimAll(f.Exclude)
	}

	if f.Output != "" {
		cfg.Output.Directory = f.Output
	}
	// Selecting one placement on the command line replaces the other.
	if f.InSource != nil {
		cfg.Output.InSourceDirectory = *f.InSource
		if *f.InSource {
			cfg.Output.Flatten = false
		}
	}
	if f.Flatten != nil {
		cfg.Output.Flatten = *f.Flatten
		if *f.Flatten && (f.InSource == nil || !*f.InSource) {
			cfg.Output.InSourceDirectory = false
		}
	}

	setIfNotEmpty(&cfg.Render.Format, f.Format)
	setIfNotEmpty(&cfg.Render.Charset, f.Charset)
	setIfNotEmpty(&cfg.Render.ConfigFile, f.PlantUMLConfig)
	setIfNotEmpty(&cfg.Render.GraphvizDot, f.GraphvizDot)
	setIfSet(&cfg.Render.KeepTmpFiles, f.KeepTmpFiles)
	if f.Metadata != nil {
		on := *f.Metadata
		cfg.Render.Metadata = &on
	}

	if f.Jar != "" {
		cfg.Engine.Jar = f.Jar
	}
	if f.PlantUML != "" {
		cfg.Engine.Command = f.PlantUML
		cfg.Engine.Jar = ""
	}
	if f.Timeout > 0 {
		cfg.Engine.Timeout = f.Timeout
	}

	setIfSet(&cfg.Build.Overwrite, f.Overwrite)
	if f.Concurrency != 0 {
		cfg.Build.Concurrency = f.Concurrency
	}
	setIfNotEmpty(&cfg.Build.Report, f.Report)
	setIfNotEmpty(&cfg.Metrics.Textfile, f.MetricsTextfile)
	if f.ContinueOnError != nil {
		failOnError := !*f.ContinueOnError
		cfg.Build.FailOnError = &failOnError
	}
	cfg.ApplyDefaults()
}

// loadConfig reads the configuration file and merges the flags. A missing
// file is tolerated when the flags name the sources.
func (f *BuildFlags) loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		if !config.IsNotFound(err) || !f.hasSource() {
			return nil, err
		}
		slog.Debug("No configuration file, using defaults", "path", root.Config)
		cfg = config.Default()
	}
	f.apply(cfg)
	return cfg, nil
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setIfSet(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
