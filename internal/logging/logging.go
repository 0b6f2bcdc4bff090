// Package logging owns the process-wide slog logger of the CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings of the log file.
const (
	MaxFileSizeMB = 10
	MaxBackups    = 3
	MaxAgeDays    = 28
)

// Manager handles the logger lifecycle. It starts in bootstrap mode, writing
// text to the console writer only, and switches to console plus a rotating JSON
// log file on Upgrade. Loggers obtained from Logger stay valid across Upgrade.
type Manager struct {
	handler *SwappableHandler
	logger  *slog.Logger
	level   *slog.LevelVar
	console io.Writer
	file    *lumberjack.Logger
	mu      sync.Mutex
}

// NewManager creates a manager in bootstrap mode. A nil console discards
// console output.
func NewManager(console io.Writer) *Manager {
	if console == nil {
		console = io.Discard
	}

	level := new(slog.LevelVar)
	level.Set(DefaultLevel)

	handler := NewSwappableHandler(slog.NewTextHandler(console, &slog.HandlerOptions{Level: level}))
	return &Manager{
		handler: handler,
		logger:  slog.New(handler),
		level:   level,
		console: console,
	}
}

// Logger returns the managed logger.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Upgrade adds a rotating JSON log file at logFilePath and sets the level. An
// empty path only changes the level.
func (m *Manager) Upgrade(logFilePath string, level slog.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.level.Set(level)
	if logFilePath == "" {
		return nil
	}

	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", dir, err)
	}

	file := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    MaxFileSizeMB,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAgeDays,
	}
	// Open eagerly so a bad path fails here rather than on the first record.
	if _, err := file.Write(nil); err != nil {
		return fmt.Errorf("failed to open log file %q: %w", logFilePath, err)
	}

	if m.file != nil {
		_ = m.file.Close()
	}
	m.file = file

	opts := &slog.HandlerOptions{Level: m.level}
	m.handler.Swap(slogmulti.Fanout(
		slog.NewTextHandler(m.console, opts),
		slog.NewJSONHandler(file, opts),
	))
	return nil
}

// SetLevel changes the level of all handlers immediately.
func (m *Manager) SetLevel(level slog.Level) {
	m.level.Set(level)
}

// Close closes the log file, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file == nil {
		return nil
	}
	err := m.file.Close()
	m.file = nil
	return err
}
