package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestS3Backend_BasicConfiguration tests configuration and creation of the
// S3 backend. Presigning is local computation, so SignUpload is exercised
// without any network access; only the direct object operations need a live
// endpoint.
func TestS3Backend_BasicConfiguration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("DefaultRegion", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		})
		require.NoError(t, err)
		assert.NotNil(t, backend)
	})

	t.Run("CustomEndpointPathStyle", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "test-bucket",
			Region:          "us-east-1",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			Endpoint:        "http://localhost:9000",
			UsePathStyle:    true,
		})
		require.NoError(t, err)
		assert.NotNil(t, backend)
	})
}

func TestSignUpload(t *testing.T) {
	backend, err := New(Config{
		Bucket:          "upload-bucket",
		Region:          "us-east-1",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	uploadURL, err := backend.SignUpload(context.Background(), "photo.jpg", "image/jpeg", 300*time.Second)
	require.NoError(t, err)

	u, err := url.Parse(uploadURL)
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/upload-bucket/photo.jpg", u.Path)

	q := u.Query()
	assert.Equal(t, "300", q.Get("X-Amz-Expires"))
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
	assert.Contains(t, q.Get("X-Amz-Credential"), "test-key")
	// The content type is part of the signed headers, so a PUT with a
	// different Content-Type fails the store's signature check.
	assert.Contains(t, strings.ToLower(q.Get("X-Amz-SignedHeaders")), "content-type")
}

func TestSignUpload_DistinctPerKey(t *testing.T) {
	backend, err := New(Config{
		Bucket:          "upload-bucket",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
	})
	require.NoError(t, err)

	a, err := backend.SignUpload(context.Background(), "a.jpg", "image/jpeg", time.Minute)
	require.NoError(t, err)
	b, err := backend.SignUpload(context.Background(), "b.jpg", "image/jpeg", time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestPublicURL(t *testing.T) {
	t.Run("VirtualHostedStyle", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "photos",
			Region:          "eu-west-1",
			AccessKeyID:     "k",
			SecretAccessKey: "s",
		})
		require.NoError(t, err)

		b := backend.(*Backend)
		assert.Equal(t, "https://photos.s3.eu-west-1.amazonaws.com/a.jpg", b.PublicURL("a.jpg"))
	})

	t.Run("CustomEndpoint", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "photos",
			AccessKeyID:     "k",
			SecretAccessKey: "s",
			Endpoint:        "http://localhost:9000/",
			UsePathStyle:    true,
		})
		require.NoError(t, err)

		b := backend.(*Backend)
		assert.Equal(t, "http://localhost:9000/photos/a.jpg", b.PublicURL("a.jpg"))
	})

	t.Run("PublicBaseURL", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "photos",
			AccessKeyID:     "k",
			SecretAccessKey: "s",
			PublicBaseURL:   "https://cdn.example.com/",
		})
		require.NoError(t, err)

		b := backend.(*Backend)
		assert.Equal(t, "https://cdn.example.com/a.jpg", b.PublicURL("a.jpg"))
	})
}
