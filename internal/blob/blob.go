// Package blob stores captured scan photographs and hands back stable URLs
// for the record's evidence list.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"hemascan/internal/config"
)

// Store uploads scan photographs. Implementations return a URL that stays
// valid for the lifetime of the record.
type Store interface {
	// Upload persists one photograph for a record slot and returns its URL.
	Upload(ctx context.Context, ownerID, recordID string, slotIndex int, data []byte) (string, error)
}

// FilesystemStore keeps photographs on local disk under a per-record
// directory, mirroring the scans/{owner}/{record}/{slotIndex}.jpg layout.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore builds a store rooted at the configured blob directory.
func NewFilesystemStore(cfg *config.Config) *FilesystemStore {
	return &FilesystemStore{root: cfg.Paths.BlobDir}
}

// NewFilesystemStoreAt builds a store rooted at an explicit directory.
func NewFilesystemStoreAt(root string) *FilesystemStore {
	return &FilesystemStore{root: root}
}

// Upload writes the photograph and returns a file URL to it.
func (s *FilesystemStore) Upload(ctx context.Context, ownerID, recordID string, slotIndex int, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ownerID == "" || recordID == "" {
		return "", fmt.Errorf("blob upload: owner and record ids required")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("blob upload: empty image data")
	}

	dir := filepath.Join(s.root, "scans", ownerID, recordID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("blob upload: create directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%d.jpg", slotIndex))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("blob upload: write file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("blob upload: resolve path: %w", err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
