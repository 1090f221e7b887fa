package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/avelis/trackwire/internal/config"
)

type Logger struct {
	*slog.Logger
}

func New(cfg *config.LogConfig) (*Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("log config is nil")
	}

	level := parseLevel(cfg.Level)

	writer, err := getWriter(cfg.Dir)
	if err != nil {
		return nil, err
	}

	handler := createHandler(writer, level, cfg.Format)

	logger := &Logger{
		Logger: slog.New(handler),
	}

	slog.SetDefault(logger.Logger)

	return logger, nil
}

// Discard returns a logger that drops everything. Used where no logger
// was supplied, mostly in tests.
func Discard() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getWriter(dir string) (*os.File, error) {
	if dir == "" {
		return os.Stderr, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	logPath := filepath.Join(dir, "trackwire.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	return f, nil
}

func createHandler(writer *os.File, level slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch strings.ToLower(format) {
	case "text":
		return slog.NewTextHandler(writer, opts)
	default:
		return slog.NewJSONHandler(writer, opts)
	}
}

func (l *Logger) Close() error {
	if h, ok := l.Handler().(interface{ Close() error }); ok {
		return h.Close()
	}

	return nil
}
