// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// =============================================================================
// Level
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestLevel_Ordering(t *testing.T) {
	if !(LevelDebug < LevelInfo && LevelInfo < LevelWarn && LevelWarn < LevelError) {
		t.Error("expected LevelDebug < LevelInfo < LevelWarn < LevelError")
	}
}

func TestLevel_toSlogLevel_UnknownDefaultsToInfo(t *testing.T) {
	if got := Level(99).toSlogLevel(); got != LevelInfo.toSlogLevel() {
		t.Errorf("unknown level mapped to %v, want the same as LevelInfo", got)
	}
}

// =============================================================================
// New / Default
// =============================================================================

func TestNew_ZeroValueConfigIsUsable(t *testing.T) {
	logger := New(Config{Quiet: true})
	if logger == nil || logger.slog == nil {
		t.Fatal("New(Config{}) produced an unusable Logger")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() on a file-less logger returned %v, want nil", err)
	}
}

func TestNew_LogDirCreatesDailyFile(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "test", Quiet: true})
	defer logger.Close()

	if logger.file == nil {
		t.Fatal("logger.file is nil with LogDir set")
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(files) != 1 || !strings.HasPrefix(files[0].Name(), "test_") {
		t.Errorf("expected one file named test_*, got %v", files)
	}
}

func TestNew_LogDirDefaultsServiceName(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Quiet: true})
	defer logger.Close()

	files, _ := os.ReadDir(dir)
	if len(files) != 1 || !strings.HasPrefix(files[0].Name(), "cyclegc_") {
		t.Errorf("expected default service name prefix, got %v", files)
	}
}

func TestNew_InvalidLogDirFallsBackSilently(t *testing.T) {
	// A directory cannot be created under a regular file, even by root.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0600); err != nil {
		t.Fatal(err)
	}
	logger := New(Config{LogDir: filepath.Join(blocker, "logs"), Quiet: true})
	defer logger.Close()

	if logger.file != nil {
		t.Error("expected no file handle for an uncreatable LogDir")
	}
}

func TestNew_StderrAndFileBothActive(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "both"})
	defer logger.Close()

	if _, ok := logger.slog.Handler().(*multiHandler); !ok {
		t.Error("expected a multiHandler when both stderr and file are active")
	}
}

func TestDefault_IsInfoLevel(t *testing.T) {
	logger := Default()
	defer logger.Close()

	if logger.level != LevelInfo {
		t.Errorf("Default() level = %v, want LevelInfo", logger.level)
	}
}

// =============================================================================
// RingTail
// =============================================================================

func TestRingTail_EntriesInChronologicalOrderBeforeWrap(t *testing.T) {
	tail := NewRingTail(3)
	logger := New(Config{Level: LevelInfo, Quiet: true, Tail: tail})
	defer logger.Close()

	logger.Info("first")
	logger.Info("second")

	got := tail.Entries()
	if len(got) != 2 {
		t.Fatalf("len(Entries()) = %d, want 2", len(got))
	}
	if got[0].Message != "first" || got[1].Message != "second" {
		t.Errorf("Entries() = %+v, want [first second]", got)
	}
}

func TestRingTail_EvictsOldestOnceFull(t *testing.T) {
	tail := NewRingTail(2)
	logger := New(Config{Level: LevelInfo, Quiet: true, Tail: tail})
	defer logger.Close()

	logger.Info("one")
	logger.Info("two")
	logger.Info("three")

	got := tail.Entries()
	if len(got) != 2 {
		t.Fatalf("len(Entries()) = %d, want 2 (capacity)", len(got))
	}
	if got[0].Message != "two" || got[1].Message != "three" {
		t.Errorf("Entries() = %+v, want [two three] after eviction", got)
	}
}

func TestRingTail_BelowConfiguredLevelIsNotRecorded(t *testing.T) {
	tail := NewRingTail(4)
	logger := New(Config{Level: LevelWarn, Quiet: true, Tail: tail})
	defer logger.Close()

	logger.Debug("too quiet to matter")
	logger.Warn("loud enough")

	got := tail.Entries()
	if len(got) != 1 || got[0].Message != "loud enough" {
		t.Errorf("Entries() = %+v, want only the Warn entry", got)
	}
}

func TestRingTail_NonPositiveCapacityClampsToOne(t *testing.T) {
	tail := NewRingTail(0)
	if len(tail.entries) != 1 {
		t.Errorf("NewRingTail(0) capacity = %d, want 1", len(tail.entries))
	}
}

func TestRingTail_ConcurrentRecordDoesNotRace(t *testing.T) {
	tail := NewRingTail(16)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tail.record(Entry{Message: "concurrent"})
		}(i)
	}
	wg.Wait()
	if len(tail.Entries()) != 16 {
		t.Errorf("len(Entries()) = %d, want 16 (capacity reached)", len(tail.Entries()))
	}
}

// =============================================================================
// Logger methods
// =============================================================================

func TestLogger_AttrsCarryIntoRingTail(t *testing.T) {
	tail := NewRingTail(4)
	logger := New(Config{Level: LevelInfo, Quiet: true, Tail: tail})
	defer logger.Close()

	logger.Info("allocated", "count", 42)

	entries := tail.Entries()
	if len(entries) != 1 {
		t.Fatalf("len(Entries()) = %d, want 1", len(entries))
	}
	if entries[0].Attrs["count"] != 42 {
		t.Errorf("Attrs[count] = %v, want 42", entries[0].Attrs["count"])
	}
}

func TestLogger_With_InheritsTailAndAddsAttrs(t *testing.T) {
	tail := NewRingTail(4)
	logger := New(Config{Level: LevelInfo, Quiet: true, Tail: tail})
	defer logger.Close()

	child := logger.With("session", "s1")
	child.Info("scoped")

	entries := tail.Entries()
	if len(entries) != 1 || entries[0].Attrs["session"] != "s1" {
		t.Errorf("Entries() = %+v, want session=s1 carried from With", entries)
	}
}

func TestLogger_WithNode_TagsNodeID(t *testing.T) {
	tail := NewRingTail(4)
	logger := New(Config{Level: LevelDebug, Quiet: true, Tail: tail})
	defer logger.Close()

	logger.WithNode(7).Debug("freed")

	entries := tail.Entries()
	if len(entries) != 1 || entries[0].Attrs["node_id"] != uint64(7) {
		t.Errorf("Entries() = %+v, want node_id=7", entries)
	}
}

func TestLogger_CloseWithoutFileIsNoop(t *testing.T) {
	logger := New(Config{Quiet: true})
	if err := logger.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

func TestLogger_Slog_ReturnsUnderlyingLogger(t *testing.T) {
	logger := Default()
	defer logger.Close()
	if logger.Slog() == nil {
		t.Error("Slog() returned nil")
	}
}

// =============================================================================
// multiHandler
// =============================================================================

func TestMultiHandler_HoldsStderrAndFileHandlers(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Level: LevelError})
	defer logger.Close()

	mh, ok := logger.slog.Handler().(*multiHandler)
	if !ok {
		t.Fatal("expected multiHandler")
	}
	if len(mh.handlers) != 2 {
		t.Errorf("len(handlers) = %d, want 2 (stderr + file)", len(mh.handlers))
	}
}

// =============================================================================
// Helpers
// =============================================================================

func TestExpandPath(t *testing.T) {
	if got := expandPath("/already/absolute"); got != "/already/absolute" {
		t.Errorf("expandPath(abs) = %v, want unchanged", got)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	if got := expandPath("~/logs"); !strings.HasPrefix(got, home) {
		t.Errorf("expandPath(~/logs) = %v, want prefix %v", got, home)
	}
}

func TestArgsToMap(t *testing.T) {
	got := argsToMap([]any{"a", 1, "b", "two"})
	if got["a"] != 1 || got["b"] != "two" {
		t.Errorf("argsToMap() = %v", got)
	}
}

func TestArgsToMap_OddArgsIgnoresTrailing(t *testing.T) {
	got := argsToMap([]any{"a", 1, "dangling"})
	if len(got) != 1 || got["a"] != 1 {
		t.Errorf("argsToMap() = %v, want only {a:1}", got)
	}
}
