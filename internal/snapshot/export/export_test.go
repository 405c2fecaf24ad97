// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package export

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClient_MissingKeyFile(t *testing.T) {
	_, err := NewClient(context.Background(), "bucket", filepath.Join(t.TempDir(), "missing-key.json"))
	assert.ErrorContains(t, err, "service account key not found")
}
