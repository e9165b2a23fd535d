package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger builds the process logger: JSON to the log file, text to
// stderr. When the TUI owns the terminal, pass interactive=true to keep
// stderr quiet. Returns the logger and a cleanup closing the file.
func SetupLogger(logFile string, level slog.Level, interactive bool) (*slog.Logger, func() error) {
	var stderr io.Writer = os.Stderr
	if interactive {
		stderr = io.Discard
	}
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})

	_ = os.MkdirAll(filepath.Dir(logFile), 0755)
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.Error("failed to open log file, using stderr only", "error", err, "file", logFile)
		return slog.New(stderrHandler), func() error { return nil }
	}
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})

	logger := slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
	return logger, file.Close
}

// ParseLogLevel maps a config string onto a slog level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
