// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	require.NoError(t, w.Close())
	os.Stdout = old

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestColorEnabled_FalseWhenJSONRequested(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	assert.False(t, colorEnabled())
}

func TestOutputJSON_WritesIndentedJSON(t *testing.T) {
	out := captureStdout(t, func() {
		require.NoError(t, outputJSON(map[string]int{"a": 1}))
	})

	var decoded map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 1, decoded["a"])
}

func TestFail_ReturnsExitErrorCode(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	out := captureStdout(t, func() {
		code := fail("something broke", assert.AnError)
		assert.Equal(t, exitError, code)
	})

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded["error"], "something broke")
}

func TestRootCmd_HasAllSubcommands(t *testing.T) {
	var names bytes.Buffer
	for _, c := range rootCmd.Commands() {
		names.WriteString(c.Name() + " ")
	}
	got := names.String()

	for _, want := range []string{"demo", "serve", "graph", "snapshot", "inspect"} {
		assert.Contains(t, got, want)
	}
}
