// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

// Package badger wraps dgraph-io/badger/v4 with the teacher's
// open/config/transaction-helper shape (services/trace/storage/badger),
// reconstructed from that package's test suite since its implementation
// file was not retrieved alongside the rest of the teacher's tree.
package badger

import (
	"context"
	"fmt"
	"os"
	"time"

	dgbadger "github.com/dgraph-io/badger/v4"
)

// Config configures a DB.
type Config struct {
	// InMemory opens an ephemeral, non-persistent database.
	InMemory bool

	// Path is the on-disk directory. Required unless InMemory.
	Path string

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// NumVersionsToKeep bounds how many versions badger retains per key.
	NumVersionsToKeep int

	// GCInterval is a value-log GC interval for callers to pass to
	// NewGCRunner. Open ignores it; no GC runs unless a GCRunner is started.
	GCInterval time.Duration

	// GCDiscardRatio is a badger value-log GC discard ratio for callers to
	// pass to NewGCRunner. Open ignores it.
	GCDiscardRatio float64
}

// DefaultConfig returns sensible defaults for persistent use.
func DefaultConfig() Config {
	return Config{
		SyncWrites:        true,
		NumVersionsToKeep: 1,
		GCInterval:        5 * time.Minute,
		GCDiscardRatio:    0.5,
	}
}

// InMemoryConfig returns defaults suited to tests: in-memory, no GC.
func InMemoryConfig() Config {
	return Config{
		InMemory:          true,
		SyncWrites:        false,
		NumVersionsToKeep: 1,
	}
}

// DB wraps a *badger.DB with context-aware transaction helpers.
type DB struct {
	db *dgbadger.DB
}

// Open opens a database per cfg.
func Open(cfg Config) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("path is required for persistent database")
	}

	opts := dgbadger.DefaultOptions(cfg.Path)
	opts = opts.WithInMemory(cfg.InMemory)
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithLogger(nil)
	if cfg.NumVersionsToKeep > 0 {
		opts = opts.WithNumVersionsToKeep(cfg.NumVersionsToKeep)
	}

	db, err := dgbadger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &DB{db: db}, nil
}

// OpenDB is an alias for Open, kept for parity with the teacher's naming.
func OpenDB(cfg Config) (*DB, error) {
	return Open(cfg)
}

// OpenInMemory opens an ephemeral database with InMemoryConfig.
func OpenInMemory() (*DB, error) {
	return Open(InMemoryConfig())
}

// OpenWithPath opens a persistent database at path with DefaultConfig.
func OpenWithPath(path string) (*DB, error) {
	cfg := DefaultConfig()
	cfg.Path = path
	return Open(cfg)
}

// Update runs fn in a read-write transaction, committing on success.
func (d *DB) Update(fn func(txn *dgbadger.Txn) error) error {
	return d.db.Update(fn)
}

// View runs fn in a read-only transaction.
func (d *DB) View(fn func(txn *dgbadger.Txn) error) error {
	return d.db.View(fn)
}

// WithTxn runs fn in a read-write transaction, aborting immediately if ctx
// is already cancelled.
func (d *DB) WithTxn(ctx context.Context, fn func(txn *dgbadger.Txn) error) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}
	return d.db.Update(fn)
}

// WithReadTxn runs fn in a read-only transaction, aborting immediately if
// ctx is already cancelled.
func (d *DB) WithReadTxn(ctx context.Context, fn func(txn *dgbadger.Txn) error) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}
	return d.db.View(fn)
}

// Close releases the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// GCRunner periodically runs badger's value-log garbage collection.
type GCRunner struct {
	db       *DB
	interval time.Duration
	ratio    float64
	logFn    func(error)
	stop     chan struct{}
	done     chan struct{}
}

// NewGCRunner builds a GCRunner. logFn may be nil.
func NewGCRunner(db *DB, interval time.Duration, ratio float64, logFn func(error)) (*GCRunner, error) {
	if db == nil {
		return nil, fmt.Errorf("db must not be nil")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	if ratio <= 0 || ratio > 1 {
		return nil, fmt.Errorf("ratio must be between 0 and 1")
	}
	return &GCRunner{db: db, interval: interval, ratio: ratio, logFn: logFn, stop: make(chan struct{}), done: make(chan struct{})}, nil
}

// Start runs GC on a ticker until Stop is called.
func (g *GCRunner) Start() {
	go func() {
		defer close(g.done)
		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()
		for {
			select {
			case <-g.stop:
				return
			case <-ticker.C:
				err := g.db.db.RunValueLogGC(g.ratio)
				if err != nil && err != dgbadger.ErrNoRewrite && g.logFn != nil {
					g.logFn(err)
				}
			}
		}
	}()
}

// Stop halts the GC loop and waits for it to exit.
func (g *GCRunner) Stop() {
	close(g.stop)
	<-g.done
}

// TempDir creates a temporary directory with the given prefix.
func TempDir(prefix string) (string, error) {
	return os.MkdirTemp("", prefix)
}

// CleanupDir removes dir, tolerating an empty path.
func CleanupDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.RemoveAll(dir)
}
