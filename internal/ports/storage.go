// Package ports declares the interfaces reelcast's adapters implement.
package ports

import (
	"context"
	"io"
)

// PutObjectInput describes an artifact upload.
type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

// PutObjectOutput identifies the stored artifact.
type PutObjectOutput struct {
	// ObjectKey is what Get and Delete take afterwards. localfs echoes the
	// input key; gdrive returns the Drive file id.
	ObjectKey string
	Size      int64
}

// StorageProvider keeps rendered videos (localfs, gdrive).
type StorageProvider interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
	GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error)
	DeleteObject(ctx context.Context, objectKey string) error
}
