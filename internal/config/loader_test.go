// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCreateDefault_WritesReadableYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cyclegc.yaml")

	require.NoError(t, createDefault(path))

	cfg, err := readFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	assert.True(t, cfg.CollectPolicy.AutoCollect)
}

func TestReadFile_RejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cyclegc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid"), 0640))

	_, err := readFile(path)
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	tests := []struct {
		input string
		want  string
	}{
		{"~/.cyclegc/snapshots", filepath.Join(home, ".cyclegc/snapshots")},
		{"/var/lib/cyclegc", "/var/lib/cyclegc"},
		{"relative/path", "relative/path"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandPath(tt.input))
	}
}

func TestDefaultConfig_RoundTripsThroughYAML(t *testing.T) {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var reloaded Config
	require.NoError(t, yaml.Unmarshal(data, &reloaded))
	assert.Equal(t, cfg.Server.Addr, reloaded.Server.Addr)
	assert.Equal(t, cfg.History.RetainPasses, reloaded.History.RetainPasses)
}
