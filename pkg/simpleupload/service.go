package simpleupload

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload/objectkey"
)

// Default constraints applied when no option overrides them.
const (
	DefaultContentType = "image/jpeg"
	DefaultExpiry      = 300 * time.Second
)

// Service issues upload grants. Implementations are stateless: every call
// produces a fresh, independent capability and no state is recorded.
type Service interface {
	// IssueUploadURL generates an object key and returns a presigned PUT
	// URL for it, valid for the configured content type and window.
	IssueUploadURL(ctx context.Context, req IssueUploadRequest) (*UploadGrant, error)

	// Store returns the named storage backend, or the default backend
	// when name is empty.
	Store(name string) (ObjectStore, error)
}

// Option configures the service
type Option func(*service)

// WithStore registers a storage backend under the given name. The first
// registered backend becomes the default.
func WithStore(name string, store ObjectStore) Option {
	return func(s *service) {
		if s.defaultStore == "" {
			s.defaultStore = name
		}
		s.stores[name] = store
	}
}

// WithDefaultStore selects which registered backend grants are signed against
func WithDefaultStore(name string) Option {
	return func(s *service) {
		s.defaultStore = name
	}
}

// WithKeyGenerator sets the object key generation strategy
func WithKeyGenerator(gen objectkey.Generator) Option {
	return func(s *service) {
		s.keyGen = gen
	}
}

// WithContentType sets the single MIME type this deployment signs for
func WithContentType(contentType string) Option {
	return func(s *service) {
		s.contentType = contentType
	}
}

// WithExpiry sets the capability lifetime
func WithExpiry(expiry time.Duration) Option {
	return func(s *service) {
		s.expiry = expiry
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

type service struct {
	stores       map[string]ObjectStore
	defaultStore string
	keyGen       objectkey.Generator
	contentType  string
	expiry       time.Duration
	logger       *slog.Logger
}

// New creates a Service from the given options. At least one storage backend
// must be registered.
func New(opts ...Option) (Service, error) {
	s := &service{
		stores:      make(map[string]ObjectStore),
		keyGen:      objectkey.NewRecommendedGenerator(),
		contentType: DefaultContentType,
		expiry:      DefaultExpiry,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if len(s.stores) == 0 {
		return nil, errors.New("at least one storage backend is required")
	}
	if _, ok := s.stores[s.defaultStore]; !ok {
		return nil, ErrStorageBackendNotFound
	}

	return s, nil
}

func (s *service) IssueUploadURL(ctx context.Context, req IssueUploadRequest) (*UploadGrant, error) {
	contentType := s.contentType
	if req.ContentType != "" && req.ContentType != s.contentType {
		return nil, ErrUnsupportedContentType
	}

	store := s.stores[s.defaultStore]
	key := s.keyGen.GenerateKey(contentType)

	uploadURL, err := store.SignUpload(ctx, key, contentType, s.expiry)
	if err != nil {
		s.logger.Error("failed to sign upload URL", "backend", s.defaultStore, "key", key, "err", err)
		return nil, &SigningError{Backend: s.defaultStore, Key: key, Err: err}
	}

	s.logger.Debug("issued upload grant", "backend", s.defaultStore, "key", key, "expires_in", s.expiry)

	return &UploadGrant{
		UploadURL:   uploadURL,
		Key:         key,
		Method:      http.MethodPut,
		ContentType: contentType,
		ExpiresIn:   int(s.expiry.Seconds()),
	}, nil
}

func (s *service) Store(name string) (ObjectStore, error) {
	if name == "" {
		name = s.defaultStore
	}
	store, ok := s.stores[name]
	if !ok {
		return nil, ErrStorageBackendNotFound
	}
	return store, nil
}
