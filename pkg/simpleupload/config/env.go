package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig is the environment surface of the server, parsed by cleanenv.
type envConfig struct {
	Port        string `env:"PORT" env-default:""`
	Environment string `env:"ENVIRONMENT" env-default:""`

	StorageBackend      string `env:"STORAGE_BACKEND" env-default:""`
	UploadExpirySeconds int    `env:"UPLOAD_EXPIRY_SECONDS" env-default:"0"`
	UploadContentType   string `env:"UPLOAD_CONTENT_TYPE" env-default:""`
	MaxUploadBytes      int64  `env:"MAX_UPLOAD_BYTES" env-default:"0"`

	S3Bucket          string `env:"S3_BUCKET" env-default:""`
	S3Region          string `env:"S3_REGION" env-default:""`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	S3Endpoint        string `env:"S3_ENDPOINT" env-default:""`
	S3UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	S3PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL" env-default:""`
	S3CreateBucket    bool   `env:"S3_CREATE_BUCKET_IF_NOT_EXIST" env-default:"false"`

	FSBaseDir   string `env:"FS_BASE_DIR" env-default:""`
	FSBaseURL   string `env:"FS_BASE_URL" env-default:""`
	FSSecretKey string `env:"FS_SIGNATURE_SECRET_KEY" env-default:""`

	JWTSecret          string `env:"JWT_SECRET" env-default:""`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" env-default:""`
}

// WithEnv applies environment variable overrides.
//
// When STORAGE_BACKEND is unset the backend is inferred: S3_BUCKET selects
// s3, otherwise FS_BASE_DIR selects fs, otherwise the in-memory backend is
// kept. AWS credentials fall back to the SDK's default chain when the
// AWS_* variables are unset.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		if env.Port != "" {
			c.Port = env.Port
		}
		if env.Environment != "" {
			c.Environment = env.Environment
		}

		if env.UploadExpirySeconds > 0 {
			c.UploadExpirySeconds = env.UploadExpirySeconds
		}
		if env.UploadContentType != "" {
			c.UploadContentType = env.UploadContentType
		}
		if env.MaxUploadBytes > 0 {
			c.MaxUploadBytes = env.MaxUploadBytes
		}

		if env.S3Bucket != "" {
			c.S3.Bucket = env.S3Bucket
		}
		if env.S3Region != "" {
			c.S3.Region = env.S3Region
		}
		if env.S3AccessKeyID != "" {
			c.S3.AccessKeyID = env.S3AccessKeyID
		}
		if env.S3SecretAccessKey != "" {
			c.S3.SecretAccessKey = env.S3SecretAccessKey
		}
		if env.S3Endpoint != "" {
			c.S3.Endpoint = env.S3Endpoint
		}
		c.S3.UsePathStyle = c.S3.UsePathStyle || env.S3UsePathStyle
		if env.S3PublicBaseURL != "" {
			c.S3.PublicBaseURL = env.S3PublicBaseURL
		}
		c.S3.CreateBucketIfNotExist = c.S3.CreateBucketIfNotExist || env.S3CreateBucket

		if env.FSBaseDir != "" {
			c.FS.BaseDir = env.FSBaseDir
		}
		if env.FSBaseURL != "" {
			c.FS.BaseURL = env.FSBaseURL
		}
		if env.FSSecretKey != "" {
			c.FS.SecretKey = env.FSSecretKey
		}

		if env.JWTSecret != "" {
			c.JWTSecret = env.JWTSecret
		}
		if env.CORSAllowedOrigins != "" {
			c.CORSAllowedOrigins = splitOrigins(env.CORSAllowedOrigins)
		}

		switch {
		case env.StorageBackend != "":
			c.StorageBackend = env.StorageBackend
		case env.S3Bucket != "":
			c.StorageBackend = "s3"
		case env.FSBaseDir != "":
			c.StorageBackend = "fs"
		}

		if c.FS.BaseURL == "" {
			c.FS.BaseURL = "http://localhost:" + c.Port
		}

		return nil
	}
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
