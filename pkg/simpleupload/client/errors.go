package client

import "errors"

// Validation and upload errors
var (
	// ErrWrongFileType is returned when the selected file's content does
	// not match the required MIME type. No network call is made.
	ErrWrongFileType = errors.New("client: wrong file type")

	// ErrTooLarge is returned when the selected file exceeds the
	// configured size ceiling. No network call is made.
	ErrTooLarge = errors.New("client: file too large")

	// ErrGrantFailed is returned when the signing service does not
	// produce an upload grant
	ErrGrantFailed = errors.New("client: failed to obtain upload grant")

	// ErrUploadRejected is returned when the store refuses the PUT
	// (expired signature, method or content-type mismatch, size policy)
	ErrUploadRejected = errors.New("client: upload rejected by store")
)
