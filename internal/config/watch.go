// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/vireolabs/cyclegc/pkg/logging"
)

// Watcher hot-reloads a Config from disk on every write to its source
// file, notifying subscribers so a running Context's CollectPolicy (and
// the server/telemetry config it was built from) can be re-applied
// without a restart.
type Watcher struct {
	path      string
	log       *logging.Logger
	fsWatcher *fsnotify.Watcher

	mu        sync.Mutex
	current   Config
	callbacks []func(Config)

	done chan struct{}
}

// NewWatcher starts watching path for changes, seeding current with the
// config already loaded from it.
func NewWatcher(path string, current Config, log *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching config directory: %w", err)
	}
	if log == nil {
		log = logging.Default()
	}
	w := &Watcher{
		path:      path,
		log:       log,
		fsWatcher: fw,
		current:   current,
		done:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// OnChange registers a callback invoked with the newly loaded Config
// after every successful reload. Callbacks run on the watcher's own
// goroutine; they must not block.
func (w *Watcher) OnChange(fn func(Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Current returns the most recently loaded Config.
func (w *Watcher) Current() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := readFile(w.path)
	if err != nil {
		w.log.Warn("failed to reload config", "path", w.path, "error", err)
		return
	}
	if err := Validate(cfg); err != nil {
		w.log.Warn("reloaded config failed validation, keeping previous", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	w.current = cfg
	callbacks := append([]func(Config){}, w.callbacks...)
	w.mu.Unlock()

	w.log.Info("config reloaded", "path", w.path)
	for _, cb := range callbacks {
		cb(cfg)
	}
}
