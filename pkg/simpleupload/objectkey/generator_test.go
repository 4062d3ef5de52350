package objectkey

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		contentType string
		expected    string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"application/pdf", ".pdf"},
		{"application/x-does-not-exist", ""},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.expected, Extension(tt.contentType))
		})
	}
}

func TestUUIDGenerator_KeyShape(t *testing.T) {
	gen := NewUUIDGenerator()
	key := gen.GenerateKey("image/jpeg")

	assert.True(t, strings.HasSuffix(key, ".jpg"), "key %q should end in .jpg", key)
	assert.Len(t, key, 32+len(".jpg"))
	assert.NotContains(t, key, "-")
}

func TestUUIDGenerator_Prefix(t *testing.T) {
	gen := &UUIDGenerator{Prefix: "uploads/"}
	key := gen.GenerateKey("image/png")
	assert.True(t, strings.HasPrefix(key, "uploads/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
}

func TestUUIDGenerator_NoCollisions(t *testing.T) {
	gen := NewUUIDGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		key := gen.GenerateKey("image/jpeg")
		require.False(t, seen[key], "collision on key %q after %d keys", key, i)
		seen[key] = true
	}
}

func TestLegacyRandGenerator_KeyShape(t *testing.T) {
	gen := NewLegacyRandGenerator()

	for i := 0; i < 100; i++ {
		key := gen.GenerateKey("image/jpeg")
		require.True(t, strings.HasSuffix(key, ".jpg"), "key %q should end in .jpg", key)

		n, err := strconv.ParseInt(strings.TrimSuffix(key, ".jpg"), 10, 64)
		require.NoError(t, err, "key %q should be an integer", key)
		assert.GreaterOrEqual(t, n, int64(0))
		assert.Less(t, n, int64(10_000_000))
	}
}

func TestLegacyRandGenerator_ZeroMaxFallsBack(t *testing.T) {
	gen := &LegacyRandGenerator{}
	key := gen.GenerateKey("image/jpeg")
	assert.NotEmpty(t, key)
}

func TestNewRecommendedGenerator(t *testing.T) {
	_, ok := NewRecommendedGenerator().(*UUIDGenerator)
	assert.True(t, ok, "recommended generator should be collision-resistant")
}
