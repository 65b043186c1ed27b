package config

import (
	"log/slog"

	"git.home.luguber.info/inful/umlbuilder/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
})

// NormalizeLogLevel parses raw, falling back to info for unknown values.
func NormalizeLogLevel(raw string) LogLevel {
	if l, ok := logLevelNormalizer.Lookup(raw); ok {
		return l
	}
	return LogLevelInfo
}

// SlogLevel maps the level onto slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
})

// NormalizeLogFormat parses raw, falling back to text for unknown values.
func NormalizeLogFormat(raw string) LogFormat {
	if f, ok := logFormatNormalizer.Lookup(raw); ok {
		return f
	}
	return LogFormatText
}
