// Package api exposes the signing service over HTTP: a grant endpoint that
// returns presigned upload URLs, a status endpoint for uploaded objects, an
// admin deletion endpoint and the embedded browser uploader page.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/tendant/simple-upload/pkg/simpleupload"
)

// HandlerConfig carries the deployment constraints the handler exposes to
// clients and the optional bearer-token secret.
type HandlerConfig struct {
	// ContentType is the one MIME type this deployment signs for
	ContentType string

	// MaxUploadBytes is the client-side size ceiling, advertised via /config
	MaxUploadBytes int64

	// JWTSecret enables HS256 bearer-token verification on the signing and
	// admin endpoints. Empty means verification is left to a gateway.
	JWTSecret string

	// AllowedOrigins configures CORS for browser clients
	AllowedOrigins []string
}

// UploadHandler handles the signing and upload-management endpoints
type UploadHandler struct {
	service simpleupload.Service
	config  HandlerConfig
	jwtAuth *jwtauth.JWTAuth
}

// NewUploadHandler creates a new set of upload API handlers
func NewUploadHandler(service simpleupload.Service, config HandlerConfig) *UploadHandler {
	h := &UploadHandler{
		service: service,
		config:  config,
	}
	if config.JWTSecret != "" {
		h.jwtAuth = jwtauth.New("HS256", []byte(config.JWTSecret), nil)
	}
	return h
}

// Routes returns the router for the upload endpoints
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()

	if len(h.config.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.config.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/config", h.GetConfig)

	r.Group(func(r chi.Router) {
		if h.jwtAuth != nil {
			r.Use(jwtauth.Verifier(h.jwtAuth))
			r.Use(jwtauth.Authenticator)
		}
		r.Get("/uploads", h.IssueUpload)
		r.Get("/uploads/{key}", h.GetUploadStatus)
		r.Delete("/uploads/{key}", h.DeleteUpload)
	})

	return r
}

// ConfigResponse advertises the deployment's upload constraints to clients
type ConfigResponse struct {
	ContentType    string `json:"contentType"`
	MaxUploadBytes int64  `json:"maxUploadBytes"`
}

// GetConfig reports the content type and size ceiling clients must satisfy
func (h *UploadHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, ConfigResponse{
		ContentType:    h.config.ContentType,
		MaxUploadBytes: h.config.MaxUploadBytes,
	})
}

// IssueUpload handles GET /uploads. It returns a fresh upload grant:
// {"uploadURL": "<capability url>", "Key": "<object key>"}. Each call is
// independent; no state is recorded and nothing is written to storage.
func (h *UploadHandler) IssueUpload(w http.ResponseWriter, r *http.Request) {
	req := simpleupload.IssueUploadRequest{
		ContentType: r.URL.Query().Get("contentType"),
	}

	grant, err := h.service.IssueUploadURL(r.Context(), req)
	if err != nil {
		if errors.Is(err, simpleupload.ErrUnsupportedContentType) {
			writeError(w, r, http.StatusBadRequest, "unsupported_content_type",
				"this deployment signs uploads for "+h.config.ContentType+" only")
			return
		}
		// Signing-primitive failure surfaces as a server error; retry
		// policy belongs to the caller.
		var sigErr *simpleupload.SigningError
		if errors.As(err, &sigErr) {
			slog.Error("signing failed", "backend", sigErr.Backend, "key", sigErr.Key, "err", sigErr.Err)
			writeError(w, r, http.StatusBadGateway, "signing_failed", "could not obtain an upload URL from the store")
			return
		}
		slog.Error("issue upload failed", "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to issue upload URL")
		return
	}

	render.JSON(w, r, grant)
}

// UploadStatusResponse describes an uploaded object
type UploadStatusResponse struct {
	Key         string    `json:"Key"`
	Status      string    `json:"status"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	ETag        string    `json:"etag,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
	URL         string    `json:"url"`
}

// GetUploadStatus handles GET /uploads/{key}. It reads the object's metadata
// from the store; a 404 means the client has not completed (or never
// performed) the PUT for this key.
func (h *UploadHandler) GetUploadStatus(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	store, err := h.service.Store("")
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "storage_backend_not_found", err.Error())
		return
	}

	meta, err := store.GetObjectMeta(r.Context(), key)
	if err != nil {
		if errors.Is(err, simpleupload.ErrObjectNotFound) {
			writeError(w, r, http.StatusNotFound, "not_found", "no uploaded object with this key")
			return
		}
		slog.Error("failed to read object metadata", "key", key, "err", err)
		writeError(w, r, http.StatusInternalServerError, "metadata_failed", "failed to read object metadata")
		return
	}

	render.JSON(w, r, UploadStatusResponse{
		Key:         meta.Key,
		Status:      "uploaded",
		Size:        meta.Size,
		ContentType: meta.ContentType,
		ETag:        meta.ETag,
		UpdatedAt:   meta.UpdatedAt,
		URL:         store.PublicURL(meta.Key),
	})
}

// DeleteUpload handles DELETE /uploads/{key}. When token verification is
// enabled, deletion additionally requires the admin role; any authenticated
// client may request grants, but only admins may destroy objects.
func (h *UploadHandler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if h.jwtAuth != nil {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || claims["role"] != "admin" {
			writeError(w, r, http.StatusForbidden, "forbidden", "deletion requires the admin role")
			return
		}
	}

	store, err := h.service.Store("")
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "storage_backend_not_found", err.Error())
		return
	}

	if err := store.Delete(r.Context(), key); err != nil {
		if errors.Is(err, simpleupload.ErrObjectNotFound) {
			writeError(w, r, http.StatusNotFound, "not_found", "no uploaded object with this key")
			return
		}
		slog.Error("failed to delete object", "key", key, "err", err)
		writeError(w, r, http.StatusInternalServerError, "delete_failed", "failed to delete object")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the machine-readable code and human-readable message
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}
