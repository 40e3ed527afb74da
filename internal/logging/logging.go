// Package logging builds the process logger. The TUI owns the terminal, so
// interactive runs log JSON to a file; plain commands log text to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath resolves the log file location:
// $XDG_STATE_HOME/ccnaprep/ccnaprep.log, else ~/.local/state/ccnaprep/ccnaprep.log.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "ccnaprep", "ccnaprep.log"), nil
}

// ParseLevel maps a level name to slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// OpenFile returns a JSON logger appending to path (DefaultPath if empty).
// Close the returned closer on exit.
func OpenFile(path, level string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, level, true), f, nil
}

// New returns a logger writing to w, as JSON or text.
func New(w io.Writer, level string, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Stderr returns a text logger for non-interactive commands.
func Stderr(level string) *slog.Logger {
	return New(os.Stderr, level, false)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
