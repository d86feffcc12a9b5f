// ABOUTME: Blob storage abstraction for pipeline exports
// ABOUTME: One small interface with filesystem and S3-compatible implementations
package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var ErrBlobNotFound = errors.New("blob not found")

// Info describes a stored blob.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// BlobStore is the write-once key/value surface exports need.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (Info, error)
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns the blobs under prefix sorted by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	// Location names where blobs end up, for user-facing messages.
	Location() string
}

// sanitizeKey rejects keys that could escape the store root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key %q", key)
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return clean, nil
}
