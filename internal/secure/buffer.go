// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

// Package secure provides a memguard-backed helper for payloads that want
// their backing bytes best-effort zeroed when a Node is freed, grounded
// on the teacher's services/orchestrator/handlers/secure_accumulator.go
// (mlocked LockedBuffer, guard pages, wipe-on-destroy). It implements
// pkg/cyclegc.Sensitive; a payload embeds or holds a *Buffer and its
// Wipe() is called by the collector immediately before OnDestroy.
package secure

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/awnumar/memguard"
	"golang.org/x/sys/unix"
)

// MinMlockLimitKB is the minimum mlock resource limit, in kilobytes,
// required to back a Buffer with real locked memory.
const MinMlockLimitKB = 512

var (
	initOnce           sync.Once
	mlockSufficient    bool
	currentMlockLimitKB int64
)

func initMemguard() {
	initOnce.Do(func() {
		memguard.CatchInterrupt()
		mlockSufficient, currentMlockLimitKB = checkMlockLimit()
		if mlockSufficient {
			slog.Info("secure payload memory initialized",
				slog.Int64("mlock_limit_kb", currentMlockLimitKB),
				slog.Int64("required_kb", MinMlockLimitKB))
		} else {
			slog.Warn("mlock limit insufficient for secure payload memory",
				slog.Int64("current_limit_kb", currentMlockLimitKB),
				slog.Int64("required_kb", MinMlockLimitKB))
		}
	})
}

func checkMlockLimit() (bool, int64) {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_MEMLOCK, &rlimit); err != nil {
		slog.Warn("could not determine mlock limit", slog.String("error", err.Error()))
		return true, -1
	}
	if rlimit.Cur == unix.RLIM_INFINITY {
		return true, -1
	}
	limitKB := int64(rlimit.Cur / 1024)
	return limitKB >= MinMlockLimitKB, limitKB
}

// IsMlockAvailable reports whether the system's mlock limit is sufficient
// to back Buffers with real locked memory, and that limit in KB (-1 if
// unlimited).
func IsMlockAvailable() (bool, int64) {
	initMemguard()
	return mlockSufficient, currentMlockLimitKB
}

// Buffer holds sensitive bytes and implements pkg/cyclegc.Sensitive. When
// the system's mlock limit is insufficient, NewBuffer fails unless
// CYCLEGC_INSECURE_MEMORY=true is set; with it set, it falls back to a
// plain Go byte slice, matching the teacher's insecure-accumulator
// fallback, and logs a warning for each such allocation.
type Buffer struct {
	mu     sync.Mutex
	locked *memguard.LockedBuffer
	filled int // bytes written so far into locked's backing array
	plain  []byte
	wiped  bool
}

// NewBuffer allocates a Buffer of size bytes, preferring mlocked memory.
func NewBuffer(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secure: buffer size must be positive")
	}

	initMemguard()
	if !mlockSufficient {
		insecure := os.Getenv("CYCLEGC_INSECURE_MEMORY") == "true"
		if !insecure {
			return nil, fmt.Errorf(
				"mlock limit insufficient: have %d KB, need %d KB; "+
					"configure system limits or set CYCLEGC_INSECURE_MEMORY=true",
				currentMlockLimitKB, MinMlockLimitKB)
		}
		slog.Warn("allocating insecure (unlocked) payload buffer",
			slog.Int64("current_limit_kb", currentMlockLimitKB))
		return &Buffer{plain: make([]byte, 0, size)}, nil
	}

	lb := memguard.NewBuffer(size)
	if lb == nil {
		return nil, fmt.Errorf("secure: failed to allocate locked buffer of %d bytes", size)
	}
	lb.Melt()
	return &Buffer{locked: lb}, nil
}

// Write copies data into the buffer, returning an error if it would
// exceed capacity.
func (b *Buffer) Write(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.wiped {
		return fmt.Errorf("secure: buffer already wiped")
	}
	if b.locked != nil {
		// Bytes() exposes the full fixed-size backing array; filled
		// tracks how much of its leading portion holds real data. The
		// data itself never leaves locked memory.
		backing := b.locked.Bytes()
		if b.filled+len(data) > len(backing) {
			return fmt.Errorf("secure: buffer overflow: capacity %d exceeded", len(backing))
		}
		copy(backing[b.filled:], data)
		b.filled += len(data)
		return nil
	}
	if len(b.plain)+len(data) > cap(b.plain) {
		return fmt.Errorf("secure: buffer overflow: capacity %d exceeded", cap(b.plain))
	}
	b.plain = append(b.plain, data...)
	return nil
}

// Bytes returns the bytes written so far. The slice aliases the
// buffer's backing memory and must not be retained past Wipe.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.locked != nil {
		return b.locked.Bytes()[:b.filled]
	}
	return b.plain
}

// Wipe zeroes the buffer's backing memory. Safe to call more than once.
// Satisfies pkg/cyclegc.Sensitive.
func (b *Buffer) Wipe() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.wiped {
		return
	}
	if b.locked != nil {
		b.locked.Destroy()
		b.filled = 0
	} else {
		for i := range b.plain {
			b.plain[i] = 0
		}
		b.plain = nil
	}
	b.wiped = true
}

// PurgeAll wipes every memguard-allocated buffer process-wide. Intended
// for use during graceful shutdown.
func PurgeAll() {
	memguard.Purge()
	slog.Info("purged all secure payload memory")
}
