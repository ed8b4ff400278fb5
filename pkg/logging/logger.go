// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output instead of JSON lines.
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns the CLI logger configuration: info level, console
// output on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: true,
		Output: os.Stderr,
	}
}

// ConfigFromEnv applies LOG_LEVEL and LOG_PRETTY on top of DefaultConfig.
// getenv is usually os.Getenv.
func ConfigFromEnv(getenv func(string) string) Config {
	cfg := DefaultConfig()
	if level := strings.TrimSpace(getenv("LOG_LEVEL")); level != "" {
		cfg.Level = LogLevel(strings.ToLower(level))
	}
	if pretty := strings.TrimSpace(getenv("LOG_PRETTY")); pretty != "" {
		if v, err := strconv.ParseBool(pretty); err == nil {
			cfg.Pretty = v
		}
	}
	return cfg
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.TimeOnly}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()

	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: request flow
//   - Outgoing URLs and attempt numbers
//   - Courtesy pauses between pages
//
// Info: normal progress
//   - Fetch start/finish, "Fetched n/limit vacancies"
//   - Successful retry
//   - CSV written
//
// Warn: recoverable conditions
//   - Retry attempts
//   - Skipped vacancies (no id, removed before detail fetch)
//   - Search depth reached, large limits
//
// Error: the run is aborted
//   - Retries exhausted
//   - Malformed responses
//   - File write failures
//
// Context Fields:
//   - component: hh-client, pagination, fetcher, exporter, cli
//   - endpoint: API endpoint template (/vacancies, /vacancies/{id})
//   - error_class: client, server, rate_limit, network, malformed
//   - attempt, backoff: retry bookkeeping
//   - page, pages: pagination position
//   - vacancy_id: HH vacancy id
