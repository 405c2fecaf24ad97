// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cyclegc.yaml")

	initial := DefaultConfig()
	initial.Server.Addr = "127.0.0.1:1111"
	data, err := yaml.Marshal(initial)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0640))

	w, err := NewWatcher(path, initial, nil)
	require.NoError(t, err)
	defer w.Close()

	var seen Config
	w.OnChange(func(c Config) { seen = c })

	updated := DefaultConfig()
	updated.Server.Addr = "127.0.0.1:2222"
	data, err = yaml.Marshal(updated)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0640))

	waitFor(t, func() bool { return w.Current().Server.Addr == "127.0.0.1:2222" })
	assert.Equal(t, "127.0.0.1:2222", seen.Server.Addr)
}

func TestWatcher_InvalidReloadKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cyclegc.yaml")

	initial := DefaultConfig()
	data, err := yaml.Marshal(initial)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0640))

	w, err := NewWatcher(path, initial, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \"\"\n"), 0640))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, initial.Server.Addr, w.Current().Server.Addr)
}
