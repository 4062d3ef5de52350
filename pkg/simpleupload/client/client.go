// Package client implements the upload workflow against a simple-upload
// signing service: select and validate a file locally, request an upload
// grant, then PUT the bytes directly to the store, bypassing the service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload"
)

// Client uploads files via a simple-upload signing service
type Client struct {
	httpClient    *http.Client
	serviceURL    string
	token         string
	contentType   string
	maxBytes      int64
	retryAttempts int
	retryDelay    time.Duration
	progressFunc  ProgressFunc
}

// ProgressFunc is called during upload to report progress
// It receives the number of bytes uploaded so far
type ProgressFunc func(bytesUploaded int64)

// Option is a functional option for configuring a Client
type Option func(*Client)

// New creates a new upload client. serviceURL is the base URL of the signing
// API (e.g. "https://api.example.com/api/v1").
func New(serviceURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		serviceURL:  strings.TrimSuffix(serviceURL, "/"),
		contentType: simpleupload.DefaultContentType,
		maxBytes:    1_000_000,
		// No automatic retry: a failed upload is surfaced and retried by
		// the user, not the client.
		retryAttempts: 1,
		retryDelay:    1 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithBearerToken sets the bearer token sent on signing requests
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithContentType sets the MIME type files must match. Must agree with the
// deployment's configured content type or the store will reject the PUT.
func WithContentType(contentType string) Option {
	return func(c *Client) {
		c.contentType = contentType
	}
}

// WithMaxBytes sets the local file size ceiling
func WithMaxBytes(maxBytes int64) Option {
	return func(c *Client) {
		c.maxBytes = maxBytes
	}
}

// WithRetry enables retrying the PUT on server-side failures
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

// WithProgress sets a progress callback function
func WithProgress(fn ProgressFunc) Option {
	return func(c *Client) {
		c.progressFunc = fn
	}
}

// File is a validated file held in memory pending upload
type File struct {
	Name        string
	ContentType string
	data        []byte
}

// Size returns the file size in bytes
func (f *File) Size() int64 {
	return int64(len(f.data))
}

// SelectFile reads and validates the file at path. It fails with
// ErrWrongFileType when the content (not the extension) does not match the
// required MIME type, and with ErrTooLarge when the size exceeds the
// ceiling. Rejected files cause no network traffic.
func (c *Client) SelectFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return c.SelectReader(filepath.Base(path), f)
}

// SelectReader reads and validates file content from r
func (c *Client) SelectReader(name string, r io.Reader) (*File, error) {
	// Read one byte past the ceiling so oversized input is detected
	// without buffering it all.
	data, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, c.maxBytes)
	}

	detected := http.DetectContentType(data)
	if !matchesContentType(detected, c.contentType) {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrWrongFileType, detected, c.contentType)
	}

	return &File{
		Name:        name,
		ContentType: c.contentType,
		data:        data,
	}, nil
}

// Result describes a completed upload
type Result struct {
	Key       string
	UploadURL string
	PublicURL string
}

// Upload requests an upload grant from the signing service and PUTs the
// file's bytes to the returned capability URL. The PUT uses exactly the
// method and content type the URL was signed for; any mismatch is rejected
// by the store as an authorization error.
func (c *Client) Upload(ctx context.Context, file *File) (*Result, error) {
	grant, err := c.requestGrant(ctx)
	if err != nil {
		return nil, err
	}

	contentType := grant.ContentType
	if contentType == "" {
		contentType = file.ContentType
	}

	if err := c.put(ctx, grant.UploadURL, contentType, file); err != nil {
		return nil, err
	}

	publicURL, err := PublicURL(grant.UploadURL)
	if err != nil {
		return nil, err
	}

	return &Result{
		Key:       grant.Key,
		UploadURL: grant.UploadURL,
		PublicURL: publicURL,
	}, nil
}

func (c *Client) requestGrant(ctx context.Context) (*simpleupload.UploadGrant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serviceURL+"/uploads", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGrantFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: signing service returned %s", ErrGrantFailed, resp.Status)
	}

	var grant simpleupload.UploadGrant
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, fmt.Errorf("%w: malformed signing response: %v", ErrGrantFailed, err)
	}
	if grant.UploadURL == "" || grant.Key == "" {
		return nil, fmt.Errorf("%w: signing response missing uploadURL or Key", ErrGrantFailed)
	}

	return &grant, nil
}

func (c *Client) put(ctx context.Context, uploadURL, contentType string, file *File) error {
	// At least one attempt is always made; a non-positive retry setting
	// means "no retries", not "no upload".
	attempts := c.retryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}

		var body io.Reader = bytes.NewReader(file.data)
		if c.progressFunc != nil {
			body = &progressReader{reader: body, callback: c.progressFunc}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
		if err != nil {
			return fmt.Errorf("failed to create upload request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.ContentLength = file.Size()

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("upload failed: %w", err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		// 4xx means the store refused this capability; retrying the
		// same URL cannot succeed.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("%w: %s", ErrUploadRejected, resp.Status)
		}

		lastErr = fmt.Errorf("upload failed with status: %s", resp.Status)
	}

	return lastErr
}

// PublicURL derives the stable object URL from a capability URL by parsing
// it and retaining only scheme, host and path. The signing parameters live
// in the query string, whose format varies across store providers.
func PublicURL(uploadURL string) (string, error) {
	u, err := url.Parse(uploadURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse upload URL: %w", err)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// matchesContentType compares a sniffed content type against the required
// one, ignoring parameters (e.g. "text/plain; charset=utf-8").
func matchesContentType(detected, want string) bool {
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = strings.TrimSpace(detected[:i])
	}
	return strings.EqualFold(detected, want)
}

// progressReader wraps an io.Reader to track upload progress
type progressReader struct {
	reader    io.Reader
	bytesRead int64
	callback  ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.callback != nil && n > 0 {
		pr.callback(pr.bytesRead)
	}
	return n, err
}
