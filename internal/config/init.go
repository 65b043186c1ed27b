package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/umlbuilder/internal/format"
	"git.home.luguber.info/inful/umlbuilder/internal/foundation/errors"
)

const initHeader = `# umlbuilder configuration
#
# Values may reference environment variables as ${NAME}; .env and .env.local
# next to the working directory are loaded first. Every setting can also be
# given on the command line, which takes precedence.
`

// Example returns the configuration written by Init.
func Example() *Config {
	metadata := true
	return &Config{
		Source: SourceConfig{
			Base:     "src/main/plantuml",
			Includes: []string{"**/*.puml", "**/*.plantuml"},
			Excludes: []string{"**/drafts/**"},
		},
		Output: OutputConfig{
			Directory: DefaultOutputDirectory,
		},
		Render: RenderConfig{
			Format:   string(format.SVG),
			Charset:  "UTF-8",
			Metadata: &metadata,
		},
		Engine: EngineConfig{
			Command: "plantuml",
		},
		Build: BuildConfig{
			Concurrency: 2,
			Report:      "target/plantuml/report.json",
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}

// Init writes an example configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, append([]byte(initHeader), data...), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	return nil
}
