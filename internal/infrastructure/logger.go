// Package infrastructure wires process-level concerns shared by the CLI
// tools, currently structured logging.
package infrastructure

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"tabledash/internal/config"
)

var (
	globalLogger     *slog.Logger
	globalLoggerOnce sync.Once
)

// InitializeLogger creates the global slog logger from configuration and
// installs it as the slog default. Safe to call more than once; only the
// first call takes effect.
func InitializeLogger(cfg config.LoggingConfig) *slog.Logger {
	globalLoggerOnce.Do(func() {
		globalLogger = NewLogger(cfg, os.Stderr)
		slog.SetDefault(globalLogger)
	})
	return globalLogger
}

// NewLogger builds a logger from configuration without touching global
// state. Tests use it to capture output.
func NewLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
