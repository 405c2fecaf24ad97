// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

// Package export uploads heap snapshots to Google Cloud Storage, adapted
// from the teacher's cmd/aleutian/gcs/client.go: same storage.Client
// wrapper and service-account-key-path construction, repointed from
// arbitrary local-file upload to marshaled Snapshot upload.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/vireolabs/cyclegc/internal/snapshot"
)

// Client uploads snapshots to a single GCS bucket.
type Client struct {
	storageClient *storage.Client
	bucketName    string
}

// NewClient opens a GCS client authenticated with the service account key
// at saKeyPath.
func NewClient(ctx context.Context, bucketName, saKeyPath string) (*Client, error) {
	if _, err := os.Stat(saKeyPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("service account key not found at path: %s", saKeyPath)
	}

	storageClient, err := storage.NewClient(ctx, option.WithCredentialsFile(saKeyPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &Client{storageClient: storageClient, bucketName: bucketName}, nil
}

// Upload marshals snap as JSON and writes it to objectPath in the
// client's bucket.
func (c *Client) Upload(ctx context.Context, snap snapshot.Snapshot, objectPath string) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	obj := c.storageClient.Bucket(c.bucketName).Object(objectPath)
	writer := obj.NewWriter(ctx)
	writer.ContentType = "application/json"
	writer.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write snapshot object %s: %w", objectPath, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", objectPath, err)
	}
	return nil
}

// Close releases the underlying storage client.
func (c *Client) Close() error {
	return c.storageClient.Close()
}
