// Package almlog provides the engine's structured logger (spec.md §2.1 of
// SPEC_FULL.md), a thin wrapper around log/slog modelled on
// jiangshenghai57-andy-warhol's logger/logger.go: a JSON handler when a log
// file is supplied, a text handler to stderr otherwise. The numeric core
// packages (curve, cashflow, eve, nii, shock, nmd, solver) never log
// themselves; logging lives at cmd/almcore and scenario's optional progress
// hook.
package almlog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Logger embeds *slog.Logger so callers can use the familiar slog API
// (logger.Info(...), logger.Error(...)) directly on the wrapper.
type Logger struct {
	*slog.Logger
}

// New returns a text-handler logger writing to w, for CLI/interactive use.
func New(w io.Writer) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	return &Logger{slog.New(handler)}
}

// NewFile returns a JSON-handler logger appending to a dated file under
// logDir, for unattended/batch runs where structured logs are collected.
func NewFile(logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	logFile := filepath.Join(logDir, time.Now().Format("2006-01-02")+".log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	})
	return &Logger{slog.New(handler)}, nil
}

// Nop returns a logger that discards everything, for callers (tests, the
// default scenario.Run caller) that don't want a progress hook.
func Nop() *Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return &Logger{slog.New(handler)}
}
