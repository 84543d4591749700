package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored object. Key is what callers persist;
// Location is the public URL at upload time and may go stale if the CDN
// host changes, so it should not be stored.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores club crests, vehicle photos and event images.
type FileUploader interface {
	// Upload writes the object under key and returns where it landed.
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GetPublicURL resolves a stored key against the current public host.
	GetPublicURL(key string) string
}
