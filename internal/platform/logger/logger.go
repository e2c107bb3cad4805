package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Setup initializes the application's logging system: a structured JSON
// logger writing to stdout at the configured level, installed as the
// process-wide default.
//
// Returns the configured logger, or an error if the level string is not one
// of debug, info, warn, error.
func Setup(level string) (*slog.Logger, error) {
	parsed, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parsed})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", level)
	}
}
