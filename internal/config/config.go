// Package config loads the umlbuilder YAML configuration file, applies
// defaults, validates it and translates it into a build.Request.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/umlbuilder/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "umlbuilder.yaml"

// Config represents the application configuration
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Render  RenderConfig  `yaml:"render"`
	Engine  EngineConfig  `yaml:"engine"`
	Build   BuildConfig   `yaml:"build"`
	Watch   WatchConfig   `yaml:"watch,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// SourceConfig selects the diagram sources. Directory and Base are mutually
// exclusive: Directory scans one folder for every extension the engine reads,
// Base walks a tree with include/exclude globs.
type SourceConfig struct {
	Directory string   `yaml:"directory,omitempty"`
	Base      string   `yaml:"base,omitempty"`
	Includes  []string `yaml:"includes,omitempty"`
	Excludes  []string `yaml:"excludes,omitempty"`
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	Directory         string `yaml:"directory"`
	Flatten           bool   `yaml:"flatten,omitempty"`
	InSourceDirectory bool   `yaml:"in_source_directory,omitempty"`
}

// RenderConfig holds the options forwarded to the engine.
type RenderConfig struct {
	Format       string `yaml:"format"`
	Charset      string `yaml:"charset,omitempty"`
	ConfigFile   string `yaml:"config_file,omitempty"`
	GraphvizDot  string `yaml:"graphviz_dot,omitempty"`
	KeepTmpFiles bool   `yaml:"keep_tmp_files,omitempty"`
	Verbose      bool   `yaml:"verbose,omitempty"`
	Metadata     *bool  `yaml:"metadata,omitempty"` // nil means true
}

// EngineConfig selects the engine executable. With Jar set the engine runs
// through Java instead of Command.
type EngineConfig struct {
	Command string        `yaml:"command,omitempty"`
	Jar     string        `yaml:"jar,omitempty"`
	Java    string        `yaml:"java,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// BuildConfig controls batching.
type BuildConfig struct {
	Overwrite   bool   `yaml:"overwrite,omitempty"`
	Concurrency int    `yaml:"concurrency"`
	FailOnError *bool  `yaml:"fail_on_error,omitempty"` // nil means true
	Report      string `yaml:"report,omitempty"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce     time.Duration `yaml:"debounce,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// LoggingConfig selects log level and handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// MetadataEnabled reports whether the engine embeds the source in artifacts.
func (r RenderConfig) MetadataEnabled() bool { return r.Metadata == nil || *r.Metadata }

// FailOnErrorEnabled reports whether a failed render fails the command.
func (b BuildConfig) FailOnErrorEnabled() bool { return b.FailOnError == nil || *b.FailOnError }

// Load reads, expands and validates the configuration at configPath.
// .env and .env.local are loaded into the environment first.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.NotFoundError("configuration file not found").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.WithContext("path", configPath)
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML after expanding ${VAR} references and applies defaults.
// Validation is left to the caller so command line overrides can be merged first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			Fatal().UserAction().
			Build()
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with only defaults applied. Source is empty
// and must be supplied before Validate passes.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// IsNotFound reports whether err came from a missing configuration file.
func IsNotFound(err error) bool {
	return errors.HasCategory(err, errors.CategoryNotFound)
}
