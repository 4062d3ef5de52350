package memory

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-upload/pkg/simpleupload"
)

func TestUploadDownloadRoundTrip(t *testing.T) {
	backend := New(Config{BaseURL: "http://localhost:8080"})
	ctx := context.Background()

	content := []byte("test content")
	require.NoError(t, backend.Upload(ctx, "key.txt", "text/plain", bytes.NewReader(content)))

	rc, err := backend.Download(ctx, "key.txt")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestDownload_NotFound(t *testing.T) {
	backend := New(Config{})
	_, err := backend.Download(context.Background(), "missing")
	require.ErrorIs(t, err, simpleupload.ErrObjectNotFound)
}

func TestDelete(t *testing.T) {
	backend := New(Config{})
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "key", "text/plain", strings.NewReader("x")))
	require.NoError(t, backend.Delete(ctx, "key"))
	assert.ErrorIs(t, backend.Delete(ctx, "key"), simpleupload.ErrObjectNotFound)
}

func TestGetObjectMeta(t *testing.T) {
	backend := New(Config{})
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "key.jpg", "image/jpeg", strings.NewReader("abcdef")))

	meta, err := backend.GetObjectMeta(ctx, "key.jpg")
	require.NoError(t, err)
	assert.Equal(t, "key.jpg", meta.Key)
	assert.Equal(t, int64(6), meta.Size)
	assert.Equal(t, "image/jpeg", meta.ContentType)

	_, err = backend.GetObjectMeta(ctx, "missing")
	assert.ErrorIs(t, err, simpleupload.ErrObjectNotFound)
}

func TestUpload_DefaultContentType(t *testing.T) {
	backend := New(Config{})
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "key", "", strings.NewReader("x")))

	meta, err := backend.GetObjectMeta(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", meta.ContentType)
}

func TestSignUpload_URLShape(t *testing.T) {
	backend := New(Config{BaseURL: "http://store.local"})

	uploadURL, err := backend.SignUpload(context.Background(), "key.jpg", "image/jpeg", 5*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(uploadURL)
	require.NoError(t, err)
	assert.Equal(t, "store.local", u.Host)
	assert.Equal(t, "/upload/key.jpg", u.Path)
	assert.NotEmpty(t, u.Query().Get("signature"))
	assert.NotEmpty(t, u.Query().Get("expires"))
}

// TestSigner_StoreSideValidation runs the full grant-then-PUT flow against an
// httptest server that validates requests with the backend's signer before
// writing, the way the fs handlers do for the fs backend.
func TestSigner_StoreSideValidation(t *testing.T) {
	backend := New(Config{})
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := backend.Signer().ValidateRequest(r); err != nil {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		key := strings.TrimPrefix(r.URL.Path, "/upload/")
		if err := backend.Upload(r.Context(), key, r.Header.Get("Content-Type"), r.Body); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	backend.SetBaseURL(srv.URL)

	uploadURL, err := backend.SignUpload(ctx, "photo.jpg", "image/jpeg", time.Minute)
	require.NoError(t, err)

	put := func(contentType string) int {
		req, err := http.NewRequest(http.MethodPut, uploadURL, bytes.NewReader([]byte{0xFF, 0xD8, 0xFF}))
		require.NoError(t, err)
		req.Header.Set("Content-Type", contentType)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	t.Run("MismatchedContentTypeRejected", func(t *testing.T) {
		require.Equal(t, http.StatusForbidden, put("image/png"))
		_, err := backend.Download(ctx, "photo.jpg")
		assert.ErrorIs(t, err, simpleupload.ErrObjectNotFound, "rejected PUT must not write the object")
	})

	t.Run("SignedForContentTypeAccepted", func(t *testing.T) {
		require.Equal(t, http.StatusOK, put("image/jpeg"))

		meta, err := backend.GetObjectMeta(ctx, "photo.jpg")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", meta.ContentType)
	})
}

func TestSetBaseURL(t *testing.T) {
	backend := New(Config{})
	backend.SetBaseURL("http://moved.local/")

	assert.Equal(t, "http://moved.local/download/key", backend.PublicURL("key"))
}
