package fs

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-upload/pkg/simpleupload"
	"github.com/tendant/simple-upload/pkg/simpleupload/presigned"
)

// Handlers serves the store side of presigned URLs issued by the fs backend.
// This is the enforcement point the cloud provider supplies in an S3
// deployment: a PUT whose method, content type or expiry deviates from what
// the URL was signed for is rejected here with an authorization error.
type Handlers struct {
	backend *Backend
}

// NewHandlers creates handlers backed by the given fs backend
func NewHandlers(backend *Backend) *Handlers {
	return &Handlers{backend: backend}
}

// Mount mounts the presigned handlers on a chi router
func (h *Handlers) Mount(r chi.Router) {
	r.Put("/upload/*", h.HandleUpload)
	r.Get("/download/*", h.HandleDownload)
}

// HandleUpload handles PUT requests to presigned upload URLs.
// URL format: PUT /upload/{objectKey...}?signature={hmac}&expires={timestamp}
// The objectKey can contain slashes.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	objectKey := chi.URLParam(r, "*")
	if objectKey == "" {
		writeError(w, http.StatusBadRequest, "missing_object_key", "object key is required in URL path")
		return
	}

	if err := h.backend.signer.ValidateRequest(r); err != nil {
		slog.Warn("presigned upload rejected", "key", objectKey, "err", err)
		writeError(w, statusForAuthError(err), "invalid_signature", err.Error())
		return
	}

	if err := h.backend.Upload(r.Context(), objectKey, r.Header.Get("Content-Type"), r.Body); err != nil {
		slog.Error("presigned upload failed", "key", objectKey, "err", err)
		writeError(w, http.StatusInternalServerError, "upload_failed",
			fmt.Sprintf("failed to upload file: %v", err))
		return
	}

	slog.Info("presigned upload succeeded", "key", objectKey)

	// Mimic the S3 presigned URL response: 200 OK with empty body
	w.WriteHeader(http.StatusOK)
}

// HandleDownload handles GET requests to stored objects.
// URL format: GET /download/{objectKey...}
// Downloads are served without signature validation; objects uploaded here
// are publicly readable, matching a public-read bucket.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	objectKey := chi.URLParam(r, "*")
	if objectKey == "" {
		writeError(w, http.StatusBadRequest, "missing_object_key", "object key is required in URL path")
		return
	}

	rc, err := h.backend.Download(r.Context(), objectKey)
	if err != nil {
		if errors.Is(err, simpleupload.ErrObjectNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "object not found")
			return
		}
		slog.Error("presigned download failed", "key", objectKey, "err", err)
		writeError(w, http.StatusInternalServerError, "download_failed", "failed to read object")
		return
	}
	defer rc.Close()

	if meta, err := h.backend.GetObjectMeta(r.Context(), objectKey); err == nil {
		w.Header().Set("Content-Type", meta.ContentType)
	}

	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("presigned download copy error", "key", objectKey, "err", err)
	}
}

func statusForAuthError(err error) int {
	switch {
	case errors.Is(err, presigned.ErrMissingSignature), errors.Is(err, presigned.ErrMissingExpiration):
		return http.StatusUnauthorized
	case errors.Is(err, presigned.ErrInvalidExpiration):
		return http.StatusBadRequest
	default:
		return http.StatusForbidden
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":{"code":%q,"message":%q}}`, code, message)
}
