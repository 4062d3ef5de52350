// Package memory provides an in-memory storage backend, primarily for tests.
// It signs upload URLs with the same HMAC scheme as the fs backend so the
// full grant-then-PUT flow can run against an httptest server.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload"
	"github.com/tendant/simple-upload/pkg/simpleupload/presigned"
)

// Backend is an in-memory implementation of the simpleupload.ObjectStore interface
type Backend struct {
	mu           sync.RWMutex
	objects      map[string][]byte
	contentTypes map[string]string
	baseURL      string
	signer       *presigned.Signer
}

// Config options for the in-memory backend
type Config struct {
	BaseURL   string // Base URL embedded in signed upload URLs
	SecretKey string // HMAC secret; a fixed test key is used when empty
}

// New creates a new in-memory storage backend
func New(config Config) *Backend {
	secret := config.SecretKey
	if secret == "" {
		secret = "memory-backend-test-key"
	}
	return &Backend{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
		baseURL:      strings.TrimSuffix(config.BaseURL, "/"),
		signer:       presigned.New(presigned.WithSecretKey(secret)),
	}
}

// SetBaseURL updates the base URL embedded in signed upload URLs. Tests use
// this once the httptest server address is known.
func (b *Backend) SetBaseURL(baseURL string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.baseURL = strings.TrimSuffix(baseURL, "/")
}

// Signer exposes the backend's HMAC signer for store-side validation
func (b *Backend) Signer() *presigned.Signer {
	return b.signer
}

// SignUpload returns an HMAC-presigned PUT URL for objectKey
func (b *Backend) SignUpload(ctx context.Context, objectKey, contentType string, expiresIn time.Duration) (string, error) {
	b.mu.RLock()
	baseURL := b.baseURL
	b.mu.RUnlock()
	return b.signer.SignURLWithBase(baseURL, http.MethodPut, "/upload/"+objectKey, contentType, expiresIn)
}

// Upload uploads content directly
func (b *Backend) Upload(ctx context.Context, objectKey, contentType string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = data
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	b.contentTypes[objectKey] = contentType
	return nil
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, simpleupload.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return simpleupload.ErrObjectNotFound
	}

	delete(b.objects, objectKey)
	delete(b.contentTypes, objectKey)
	return nil
}

// GetObjectMeta retrieves metadata for an object in memory
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*simpleupload.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, simpleupload.ErrObjectNotFound
	}

	return &simpleupload.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(data)),
		ContentType: b.contentTypes[objectKey],
		Metadata:    map[string]string{"content_type": b.contentTypes[objectKey]},
	}, nil
}

// PublicURL returns the query-free URL of an object
func (b *Backend) PublicURL(objectKey string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return fmt.Sprintf("%s/download/%s", b.baseURL, objectKey)
}
