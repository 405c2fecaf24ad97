// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

// Package logging provides structured logging for cyclegc components,
// layered on top of the standard library's log/slog.
//
// A Logger always writes to stderr (unless Quiet) and optionally to a
// daily JSON file under LogDir. A third, in-process destination —
// [RingTail] — is what makes this package more than a slog wrapper: it
// keeps the last N entries in memory so a long-running `cyclegcd serve`
// process can expose them over HTTP (internal/server's GET /logs)
// without shipping logs anywhere external. There is no cloud/export
// extension point here; a Context embedded as a library has no business
// dialing out on its own.
//
// # Basic Usage
//
//	logger := logging.Default()
//	logger.Info("context created", "auto_collect", true)
//	logger.WithNode(n.ID()).Debug("freed")
//
// # File + Tail Logging
//
//	tail := logging.NewRingTail(200)
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    LogDir: "~/.cyclegc/logs",
//	    Service: "cyclegcd",
//	    Tail:   tail,
//	})
//	defer logger.Close()
//	// tail.Entries() now backs internal/server's GET /logs.
//
// # Log Levels
//
// Four levels, matching slog conventions: Debug, Info, Warn, Error.
//
// # Thread Safety
//
// Logger and RingTail are both safe for concurrent use.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// Log Levels
// =============================================================================

// Level represents log severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns "DEBUG", "INFO", "WARN", "ERROR", or "UNKNOWN".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// =============================================================================
// Configuration
// =============================================================================

// Config configures a Logger. The zero value logs Debug+ to stderr as text.
type Config struct {
	// Level is the minimum level that reaches any destination.
	Level Level

	// LogDir, when set, additionally writes daily JSON files named
	// "{Service}_{YYYY-MM-DD}.log" under this directory (~-expanded,
	// created with 0750 permissions).
	LogDir string

	// Service tags every stderr and file record with a "service"
	// attribute and names the log file. RingTail entries do not carry
	// it: their Service field is left empty.
	Service string

	// JSON formats the stderr destination as JSON instead of text. File
	// output is always JSON regardless of this setting.
	JSON bool

	// Quiet disables the stderr destination, leaving only the file (if
	// LogDir is set) and Tail (if set). When no log file is open, output
	// still goes to stderr as text.
	Quiet bool

	// Tail, when set, also records every entry at or above Level into a
	// bounded ring buffer for later retrieval — see [RingTail].
	Tail *RingTail
}

// =============================================================================
// RingTail
// =============================================================================

// Entry is one log record, as kept by a RingTail.
type Entry struct {
	Time    time.Time      `json:"time"`
	Level   Level          `json:"level"`
	Message string         `json:"message"`
	Service string         `json:"service,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// RingTail retains the most recent N log entries in memory, overwriting
// the oldest once full. internal/server mounts one onto GET /logs so an
// operator can tail a running cyclegcd without attaching to its stderr.
// Unlike a growth-unbounded buffer, a RingTail's memory footprint is
// fixed for the life of the process.
type RingTail struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// NewRingTail creates a RingTail holding at most capacity entries.
// capacity <= 0 is treated as 1.
func NewRingTail(capacity int) *RingTail {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingTail{entries: make([]Entry, capacity)}
}

func (t *RingTail) record(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[t.next] = e
	t.next = (t.next + 1) % len(t.entries)
	if t.next == 0 {
		t.full = true
	}
}

// Entries returns the retained entries in chronological order.
func (t *RingTail) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.full {
		out := make([]Entry, t.next)
		copy(out, t.entries[:t.next])
		return out
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries[t.next:])
	copy(out[len(t.entries)-t.next:], t.entries[:t.next])
	return out
}

// =============================================================================
// Logger
// =============================================================================

// Logger wraps slog.Logger with file output and an optional RingTail.
type Logger struct {
	slog *slog.Logger

	level Level
	tail  *RingTail
	attrs map[string]any

	file *os.File
	mu   sync.Mutex
}

// New builds a Logger per config. The returned Logger should be closed
// with Close() if LogDir was set, to flush and release the file handle.
func New(config Config) *Logger {
	var handlers []slog.Handler

	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}

	if !config.Quiet {
		if config.JSON {
			handlers = append(handlers, slog.NewJSONHandler(os.Stderr, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
		}
	}

	logger := &Logger{level: config.Level, tail: config.Tail}

	if config.LogDir != "" {
		logDir := expandPath(config.LogDir)
		if err := os.MkdirAll(logDir, 0750); err == nil {
			service := config.Service
			if service == "" {
				service = "cyclegc"
			}
			filename := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
			file, err := os.OpenFile(filepath.Join(logDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
			if err == nil {
				logger.file = file
				handlers = append(handlers, slog.NewJSONHandler(file, opts))
			}
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(os.Stderr, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	logger.slog = slog.New(handler)
	return logger
}

// Default returns a Logger at Info level, stderr only, service "cyclegc".
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "cyclegc"})
}

func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// With returns a child Logger carrying additional attributes on every
// subsequent call, sharing the parent's file and tail.
func (l *Logger) With(args ...any) *Logger {
	merged := make(map[string]any, len(l.attrs)+len(args)/2)
	for k, v := range l.attrs {
		merged[k] = v
	}
	for k, v := range argsToMap(args) {
		merged[k] = v
	}
	return &Logger{
		slog:  l.slog.With(args...),
		level: l.level,
		tail:  l.tail,
		attrs: merged,
		file:  l.file,
	}
}

// WithNode scopes subsequent log calls to a single node id — the
// collector's only meaningful unit of identity, used by pkg/cyclegc's
// systemFree instead of the request/session ids a generic service
// would key logs by.
func (l *Logger) WithNode(id uint64) *Logger {
	return l.With("node_id", id)
}

// Slog returns the underlying slog.Logger for callers that need
// LogAttrs or custom Record handling.
func (l *Logger) Slog() *slog.Logger { return l.slog }

// Close syncs and closes the log file, if one is open.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync log file: %w", err)
	}
	return l.file.Close()
}

func (l *Logger) log(level Level, msg string, args ...any) {
	switch level {
	case LevelDebug:
		l.slog.Debug(msg, args...)
	case LevelInfo:
		l.slog.Info(msg, args...)
	case LevelWarn:
		l.slog.Warn(msg, args...)
	case LevelError:
		l.slog.Error(msg, args...)
	}

	if l.tail != nil && level >= l.level {
		attrs := argsToMap(args)
		for k, v := range l.attrs {
			if _, exists := attrs[k]; !exists {
				attrs[k] = v
			}
		}
		l.tail.record(Entry{
			Time:    time.Now(),
			Level:   level,
			Message: msg,
			Attrs:   attrs,
		})
	}
}

// =============================================================================
// Multi-Handler (Internal)
// =============================================================================

// multiHandler fans a record out to every handler enabled for its level,
// letting stderr and the log file use different formats.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// =============================================================================
// Helpers
// =============================================================================

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// argsToMap converts slog-style key-value args to a map, used to build
// RingTail entries.
func argsToMap(args []any) map[string]any {
	result := make(map[string]any)
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			result[key] = args[i+1]
		}
	}
	return result
}
