// Package logging provides the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Logger is the shared logger. It discards everything until Initialize enables debug output.
var Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

var logFile *os.File

// Initialize configures Logger. With debug off and no file, logs are discarded. With a file
// path, logs are appended there; otherwise a uuid-named file is created in dir.
func Initialize(debug bool, file, dir string) (string, error) {
	if os.Getenv("TYPETEST_DEBUG") == "1" {
		debug = true
	}
	if env := os.Getenv("TYPETEST_DEBUG_FILE"); env != "" && file == "" {
		file = env
	}
	if !debug && file == "" {
		Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		return "", nil
	}

	path := file
	if path == "" {
		path = filepath.Join(dir, uuid.New().String()+".log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to open log file: %w", err)
	}
	Close()
	logFile = f
	Logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Logger.Info("logging initialized", "pid", os.Getpid())
	return path, nil
}

// Close flushes and closes the current log file, if any.
func Close() {
	if logFile == nil {
		return
	}
	if err := logFile.Close(); err != nil {
		// Best-effort close of the log file.
		_ = err
	}
	logFile = nil
	Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
}
