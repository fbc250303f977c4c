package domain

import (
	"context"
	"io"
)

// ObjectStore is the physical object storage boundary. Write returns the
// canonical stored path, which may differ from the requested key if the
// store renames. There is no retry inside the store; a failed Write is
// terminal for the request.
type ObjectStore interface {
	Write(ctx context.Context, bucket, key string, body io.Reader, sizeBytes int64, contentType string) (string, error)
	Read(ctx context.Context, bucket, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, bucket, path string) error
	Exists(ctx context.Context, bucket, path string) (bool, error)
}

// Buckets names the two logical destinations for uploaded objects.
type Buckets struct {
	Shared    string
	Workspace string
}
