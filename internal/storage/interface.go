package storage

import (
	"context"
	"io"
	"os"
)

// ObjectStorage defines the interface for video storage operations
type ObjectStorage interface {
	// Upload stores an object under key
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download opens an object for reading
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the URL for accessing an object
	GetURL(key string) string

	// Delete removes an object from storage
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)
}

// FileOpener is implemented by backends whose objects are plain files, so
// they can be served with byte-range support.
type FileOpener interface {
	Open(key string) (*os.File, error)
}
