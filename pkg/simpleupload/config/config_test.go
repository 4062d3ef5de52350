package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-upload/pkg/simpleupload"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, 300, cfg.UploadExpirySeconds)
	assert.Equal(t, "image/jpeg", cfg.UploadContentType)
	assert.Equal(t, int64(1_000_000), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 300*time.Second, cfg.UploadExpiry())
}

func TestLoad_OptionError(t *testing.T) {
	_, err := Load(func(c *ServerConfig) error {
		c.Port = ""
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port is required")
}

func TestValidate(t *testing.T) {
	valid := func() ServerConfig {
		cfg := defaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"Valid", func(c *ServerConfig) {}, ""},
		{"MissingPort", func(c *ServerConfig) { c.Port = "" }, "port is required"},
		{"ZeroExpiry", func(c *ServerConfig) { c.UploadExpirySeconds = 0 }, "expiry must be positive"},
		{"MissingContentType", func(c *ServerConfig) { c.UploadContentType = "" }, "content type is required"},
		{"ZeroMaxBytes", func(c *ServerConfig) { c.MaxUploadBytes = 0 }, "max upload bytes"},
		{"UnknownBackend", func(c *ServerConfig) { c.StorageBackend = "tape" }, "unsupported storage backend"},
		{"S3WithoutBucket", func(c *ServerConfig) { c.StorageBackend = "s3" }, "s3 bucket is required"},
		{"FSWithoutBaseDir", func(c *ServerConfig) {
			c.StorageBackend = "fs"
			c.FS.SecretKey = "secret"
		}, "fs base dir is required"},
		{"FSWithoutSecret", func(c *ServerConfig) {
			c.StorageBackend = "fs"
			c.FS.BaseDir = t.TempDir()
		}, "secret key is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestBuildStore_Memory(t *testing.T) {
	cfg := defaults()
	store, err := cfg.BuildStore()
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestBuildStore_FS(t *testing.T) {
	cfg := defaults()
	cfg.StorageBackend = "fs"
	cfg.FS = FSConfig{
		BaseDir:   t.TempDir(),
		BaseURL:   "http://localhost:8080",
		SecretKey: "fs-secret-key-at-least-32-bytes!!!!",
	}

	store, err := cfg.BuildStore()
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestBuildService(t *testing.T) {
	cfg := defaults()
	cfg.UploadContentType = "image/png"

	svc, err := cfg.BuildService()
	require.NoError(t, err)

	grant, err := svc.IssueUploadURL(context.Background(), simpleupload.IssueUploadRequest{})
	require.NoError(t, err)
	assert.Equal(t, "image/png", grant.ContentType)
	assert.Equal(t, 300, grant.ExpiresIn)
}
