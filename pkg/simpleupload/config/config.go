// Package config assembles server configuration for the simple-upload
// service. Configuration is an explicit structure built at process start;
// nothing reads the environment after Load returns.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload"
	fsstorage "github.com/tendant/simple-upload/pkg/simpleupload/storage/fs"
	memorystorage "github.com/tendant/simple-upload/pkg/simpleupload/storage/memory"
	s3storage "github.com/tendant/simple-upload/pkg/simpleupload/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:                "8080",
		Environment:         "development",
		StorageBackend:      "memory",
		UploadExpirySeconds: 300,
		UploadContentType:   "image/jpeg",
		MaxUploadBytes:      1_000_000,
		CORSAllowedOrigins:  []string{"*"},
	}
}

// ServerConfig represents server configuration for the simple-upload service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Upload constraints
	StorageBackend      string // "memory", "fs", "s3"
	UploadExpirySeconds int    // capability lifetime
	UploadContentType   string // the one MIME type this deployment signs for
	MaxUploadBytes      int64  // client-side size ceiling, reported to the upload page

	// S3 backend
	S3 S3Config

	// Filesystem backend
	FS FSConfig

	// Optional bearer-token verification. Normally a gateway concern;
	// when set the server verifies HS256 tokens itself.
	JWTSecret string

	CORSAllowedOrigins []string
}

// S3Config holds S3/MinIO backend settings
type S3Config struct {
	Bucket                 string
	Region                 string
	AccessKeyID            string
	SecretAccessKey        string
	Endpoint               string
	UsePathStyle           bool
	PublicBaseURL          string
	CreateBucketIfNotExist bool
}

// FSConfig holds filesystem backend settings
type FSConfig struct {
	BaseDir   string
	BaseURL   string
	SecretKey string
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.UploadExpirySeconds <= 0 {
		return errors.New("upload expiry must be positive")
	}
	if c.UploadContentType == "" {
		return errors.New("upload content type is required")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}

	switch c.StorageBackend {
	case "memory":
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required when using the s3 backend")
		}
	case "fs":
		if c.FS.BaseDir == "" {
			return errors.New("fs base dir is required when using the fs backend")
		}
		if c.FS.SecretKey == "" {
			return errors.New("fs signature secret key is required when using the fs backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.StorageBackend)
	}

	return nil
}

// UploadExpiry returns the capability lifetime as a duration
func (c *ServerConfig) UploadExpiry() time.Duration {
	return time.Duration(c.UploadExpirySeconds) * time.Second
}

// BuildStore creates the configured storage backend
func (c *ServerConfig) BuildStore() (simpleupload.ObjectStore, error) {
	switch c.StorageBackend {
	case "memory":
		return memorystorage.New(memorystorage.Config{BaseURL: c.FS.BaseURL}), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.FS.BaseDir,
			BaseURL:   c.FS.BaseURL,
			SecretKey: c.FS.SecretKey,
		})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PublicBaseURL:          c.S3.PublicBaseURL,
			CreateBucketIfNotExist: c.S3.CreateBucketIfNotExist,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", c.StorageBackend)
	}
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (simpleupload.Service, error) {
	store, err := c.BuildStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.StorageBackend, err)
	}

	return simpleupload.New(
		simpleupload.WithStore(c.StorageBackend, store),
		simpleupload.WithContentType(c.UploadContentType),
		simpleupload.WithExpiry(c.UploadExpiry()),
	)
}
