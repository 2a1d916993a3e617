package interfaces

import (
	"context"
	"io"
	"time"
)

// BlobMetadata describes an object written to blob storage
type BlobMetadata struct {
	ContentType string
	Size        int64
	Attributes  map[string]string
}

// BlobStorage stores uploaded document content
type BlobStorage interface {
	// Put writes the content at path and returns its locator
	Put(ctx context.Context, path string, r io.Reader, meta BlobMetadata) (string, error)

	// Exists reports whether an object is stored at the locator
	Exists(ctx context.Context, locator string) (bool, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, locator string) error

	// SignedURL returns a time-limited download URL
	SignedURL(ctx context.Context, locator string, ttl time.Duration) (string, error)
}
