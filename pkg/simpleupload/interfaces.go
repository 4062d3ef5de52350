package simpleupload

import (
	"context"
	"io"
	"time"
)

// URLSigner is the narrow interface over a store's signing primitive. It
// produces a capability URL that the store will honor only for a PUT of the
// given content type within the expiration window.
type URLSigner interface {
	// SignUpload returns a presigned URL for uploading objectKey.
	SignUpload(ctx context.Context, objectKey, contentType string, expiresIn time.Duration) (string, error)
}

// ObjectStore defines the interface for storage backends. Beyond signing it
// covers the direct object operations used by the fs handlers, the status
// endpoint and admin deletion.
type ObjectStore interface {
	URLSigner

	// Upload writes content directly to the store
	Upload(ctx context.Context, objectKey, contentType string, reader io.Reader) error

	// Download reads content directly from the store
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes an object
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)

	// PublicURL returns the stable, query-free URL of an object
	PublicURL(objectKey string) string
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}
