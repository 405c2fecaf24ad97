// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package secure

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuffer_RejectsNonPositiveSize(t *testing.T) {
	_, err := NewBuffer(0)
	assert.ErrorContains(t, err, "must be positive")
}

func TestBuffer_WriteAndBytesRoundTrip(t *testing.T) {
	if ok, _ := IsMlockAvailable(); !ok {
		os.Setenv("CYCLEGC_INSECURE_MEMORY", "true")
		t.Cleanup(func() { os.Unsetenv("CYCLEGC_INSECURE_MEMORY") })
	}

	buf, err := NewBuffer(16)
	require.NoError(t, err)

	require.NoError(t, buf.Write([]byte("hello")))
	require.NoError(t, buf.Write([]byte(" world")))

	assert.Equal(t, []byte("hello world"), buf.Bytes())
}

func TestBuffer_WriteRejectsOverflow(t *testing.T) {
	if ok, _ := IsMlockAvailable(); !ok {
		os.Setenv("CYCLEGC_INSECURE_MEMORY", "true")
		t.Cleanup(func() { os.Unsetenv("CYCLEGC_INSECURE_MEMORY") })
	}

	buf, err := NewBuffer(4)
	require.NoError(t, err)

	err = buf.Write([]byte("too long"))
	assert.ErrorContains(t, err, "overflow")
}

func TestBuffer_WipeZeroesAndIsIdempotent(t *testing.T) {
	if ok, _ := IsMlockAvailable(); !ok {
		os.Setenv("CYCLEGC_INSECURE_MEMORY", "true")
		t.Cleanup(func() { os.Unsetenv("CYCLEGC_INSECURE_MEMORY") })
	}

	buf, err := NewBuffer(8)
	require.NoError(t, err)
	require.NoError(t, buf.Write([]byte("secret")))

	buf.Wipe()
	assert.Empty(t, buf.Bytes())

	assert.NotPanics(t, func() { buf.Wipe() })
}

func TestBuffer_WriteAfterWipeFails(t *testing.T) {
	if ok, _ := IsMlockAvailable(); !ok {
		os.Setenv("CYCLEGC_INSECURE_MEMORY", "true")
		t.Cleanup(func() { os.Unsetenv("CYCLEGC_INSECURE_MEMORY") })
	}

	buf, err := NewBuffer(8)
	require.NoError(t, err)
	buf.Wipe()

	err = buf.Write([]byte("x"))
	assert.ErrorContains(t, err, "already wiped")
}
