package config

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}

// NormalizeLogLevel maps raw (case and surrounding space insensitive) to a
// level. Empty input yields info.
func NormalizeLogLevel(raw string) (LogLevel, error) {
	return normalizeEnum("log level", raw, logLevels, LogLevelInfo)
}

// SlogLevel converts the level to a slog.Level.
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

var logFormats = map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}

// NormalizeLogFormat maps raw to a format. Empty input yields text.
func NormalizeLogFormat(raw string) (LogFormat, error) {
	return normalizeEnum("log format", raw, logFormats, LogFormatText)
}

// NewHandler builds the slog handler described by c. verbose forces debug.
func (c LoggingConfig) NewHandler(w io.Writer, verbose bool) slog.Handler {
	level := c.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func normalizeEnum[T ~string](name, raw string, values map[string]T, def T) (T, error) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return def, nil
	}
	if v, ok := values[cleaned]; ok {
		return v, nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return def, fmt.Errorf("invalid %s %q, valid options: %v", name, raw, keys)
}
