package simpleupload

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrUnsupportedContentType indicates a requested content type other than
	// the one this deployment signs for
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrSigningFailed indicates the store's signing primitive failed
	ErrSigningFailed = errors.New("signing failed")

	// ErrUploadRejected indicates the store refused a PUT against a
	// capability URL (expired, method or content-type mismatch)
	ErrUploadRejected = errors.New("upload rejected by store")

	// ErrObjectNotFound indicates an object was not found
	ErrObjectNotFound = errors.New("object not found")

	// ErrStorageBackendNotFound indicates a storage backend was not found
	ErrStorageBackendNotFound = errors.New("storage backend not found")
)

// SigningError represents a failure to obtain a capability URL
type SigningError struct {
	Backend string
	Key     string
	Err     error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing failed for key %s on backend %s: %v", e.Key, e.Backend, e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to direct storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
