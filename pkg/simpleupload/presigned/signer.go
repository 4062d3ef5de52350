// Package presigned implements HMAC-based presigned URLs for self-hosted
// storage backends. URLs carry signature and expires query parameters and
// mimic S3 presigned URL semantics: a URL is honored only for the exact
// method, path, content type and time window it was signed for.
package presigned

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Signer generates and validates HMAC-signed presigned URLs
type Signer struct {
	secretKey         []byte
	defaultExpiration time.Duration
}

// New creates a new Signer with the given options
func New(opts ...Option) *Signer {
	s := &Signer{
		defaultExpiration: 5 * time.Minute,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SignURL generates a presigned URL path for the given HTTP method, path and
// content type. The content type is part of the signed payload, so a PUT
// with a different Content-Type header fails signature validation.
//
// Example:
//
//	url, err := signer.SignURL("PUT", "/upload/abc.jpg", "image/jpeg", 5*time.Minute)
//	// Returns: /upload/abc.jpg?signature=9f2c...&expires=1696789012
func (s *Signer) SignURL(method, path, contentType string, expiresIn time.Duration) (string, error) {
	if len(s.secretKey) == 0 {
		return "", ErrNoSecretKey
	}

	if expiresIn == 0 {
		expiresIn = s.defaultExpiration
	}

	expiresAt := time.Now().Add(expiresIn).Unix()
	signature := s.generateSignature(payload(method, path, contentType, expiresAt))

	return fmt.Sprintf("%s?signature=%s&expires=%d", path, signature, expiresAt), nil
}

// SignURLWithBase generates a presigned URL with a base URL prefix
func (s *Signer) SignURLWithBase(baseURL, method, path, contentType string, expiresIn time.Duration) (string, error) {
	signedPath, err := s.SignURL(method, path, contentType, expiresIn)
	if err != nil {
		return "", err
	}
	return baseURL + signedPath, nil
}

// ValidateRequest validates the signature and expiration of an HTTP request.
// The request's method, path and Content-Type header must match what the URL
// was signed for.
func (s *Signer) ValidateRequest(r *http.Request) error {
	query := r.URL.Query()
	signature := query.Get("signature")
	expiresStr := query.Get("expires")

	if signature == "" {
		return ErrMissingSignature
	}
	if expiresStr == "" {
		return ErrMissingExpiration
	}

	expiresAt, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExpiration, err)
	}

	// Preserve any query params beyond signature and expires; they were
	// part of the signed path.
	path := r.URL.Path
	cleanQuery := url.Values{}
	for k, v := range query {
		if k != "signature" && k != "expires" {
			cleanQuery[k] = v
		}
	}
	if len(cleanQuery) > 0 {
		path = path + "?" + cleanQuery.Encode()
	}

	return s.Validate(r.Method, path, r.Header.Get("Content-Type"), signature, expiresAt)
}

// Validate validates a signature against the method, path, content type and
// expiration timestamp it claims to cover.
func (s *Signer) Validate(method, path, contentType, signature string, expiresAt int64) error {
	if len(s.secretKey) == 0 {
		return ErrNoSecretKey
	}

	if time.Now().Unix() > expiresAt {
		return ErrExpired
	}

	expected := s.generateSignature(payload(method, path, contentType, expiresAt))

	// Constant-time comparison to prevent timing attacks
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidSignature
	}

	return nil
}

// IsEnabled returns true if a secret key is configured
func (s *Signer) IsEnabled() bool {
	return len(s.secretKey) > 0
}

// payload format: METHOD|PATH|CONTENT_TYPE|EXPIRES
func payload(method, path, contentType string, expiresAt int64) string {
	return fmt.Sprintf("%s|%s|%s|%d", method, path, contentType, expiresAt)
}

func (s *Signer) generateSignature(payload string) string {
	h := hmac.New(sha256.New, s.secretKey)
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
