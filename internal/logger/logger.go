package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// EnvLevel names the environment variable consulted when no level flag is set.
const EnvLevel = "TABC_LOG_LEVEL"

// DefaultLevel keeps routine progress quiet.
const DefaultLevel = "warn"

var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}
}

// Resolve picks the level from flag, then environment, then DefaultLevel.
func Resolve(flag string, env string) string {
	if flag != "" {
		return flag
	}
	if env != "" {
		return env
	}
	return DefaultLevel
}

// New builds a text logger writing to w.
func New(level string, w io.Writer) (*slog.Logger, error) {
	slogLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel})
	return slog.New(handler), nil
}
