package storage

import (
	"context"
	"io"
)

// StorageInterface defines the interface for uploaded file backends.
// Keys are relative, slash-separated paths such as
// "documents/3f0c...e1.pdf" and are what the database rows reference.
type StorageInterface interface {
	// SaveFile stores the content under a freshly generated key inside
	// category, keeping the extension of filename.
	SaveFile(ctx context.Context, category, filename string, reader io.Reader) (string, error)

	// DeleteFile removes a file. Deleting a missing key is not an error.
	DeleteFile(ctx context.Context, key string) error

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// ReadFile opens a file for reading
	ReadFile(key string) (io.ReadCloser, error)
}

const (
	CategoryDocuments = "documents"
	CategoryPictures  = "pictures"
)
