// Package fs provides a filesystem storage backend whose presigned URLs are
// HMAC-signed and served by the backend's own HTTP handlers. It mimics S3
// presigned URL behavior for self-hosted deployments and tests: an upload URL
// is honored only for a PUT with the signed-for content type before the
// signed expiration.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload"
	"github.com/tendant/simple-upload/pkg/simpleupload/presigned"
)

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	BaseURL   string // Base URL where the backend's handlers are mounted (e.g. "http://localhost:8080")
	SecretKey string // HMAC secret for signing upload/download URLs
}

// Backend is a filesystem implementation of the simpleupload.ObjectStore
// interface. Mount its Handlers on the serving router so signed URLs resolve.
type Backend struct {
	mu      sync.RWMutex
	baseDir string
	baseURL string
	signer  *presigned.Signer
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if config.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir: config.BaseDir,
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		signer:  presigned.New(presigned.WithSecretKey(config.SecretKey)),
	}, nil
}

// SignUpload returns an HMAC-presigned PUT URL served by this backend's
// upload handler.
func (b *Backend) SignUpload(ctx context.Context, objectKey, contentType string, expiresIn time.Duration) (string, error) {
	return b.signer.SignURLWithBase(b.baseURL, http.MethodPut, "/upload/"+objectKey, contentType, expiresIn)
}

// Upload writes content directly to the filesystem
func (b *Backend) Upload(ctx context.Context, objectKey, contentType string, reader io.Reader) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	filePath, err := b.objectPath(objectKey)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Download reads content directly from the filesystem
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	filePath, err := b.objectPath(objectKey)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, simpleupload.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes an object from the filesystem
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	filePath, err := b.objectPath(objectKey)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return simpleupload.ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// GetObjectMeta retrieves metadata for an object in the filesystem. The
// content type is detected from the stored bytes, not recorded separately.
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*simpleupload.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	filePath, err := b.objectPath(objectKey)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, simpleupload.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}

	return &simpleupload.ObjectMeta{
		Key:         objectKey,
		Size:        info.Size(),
		ContentType: contentType,
		UpdatedAt:   info.ModTime(),
		Metadata:    map[string]string{"content_type": contentType},
	}, nil
}

// PublicURL returns the query-free download URL of an object
func (b *Backend) PublicURL(objectKey string) string {
	return fmt.Sprintf("%s/download/%s", b.baseURL, objectKey)
}

// objectPath resolves an object key to a path under the base directory,
// rejecting keys that would escape it.
func (b *Backend) objectPath(objectKey string) (string, error) {
	if objectKey == "" {
		return "", errors.New("object key is required")
	}
	filePath := filepath.Join(b.baseDir, filepath.FromSlash(objectKey))
	if !strings.HasPrefix(filePath, filepath.Clean(b.baseDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object key: %s", objectKey)
	}
	return filePath, nil
}
