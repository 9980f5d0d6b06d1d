package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	level  = new(slog.LevelVar)
	logger *slog.Logger
)

func init() {
	SetOutput(os.Stdout)
}

// SetOutput redirects all log records to w.
func SetOutput(w io.Writer) {
	logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetLevel sets the minimum level that gets logged. Accepted values are debug, info, warn and error.
func SetLevel(name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "", "info":
		level.Set(slog.LevelInfo)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", name)
	}
	return nil
}

// Info logs the provided message at [InfoLevel].
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Debug logs the provided message at [DebugLevel].
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Warn logs the provided message at [WarnLevel].
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs the provided message at [ErrorLevel].
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}
