// Package objectkey provides object key generation strategies for upload
// grants. Keys must be unguessable enough that unrelated uploads cannot
// collide within the bucket namespace.
package objectkey

import (
	"fmt"
	"math/rand"
	"mime"
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates a fresh object key, suffixed with a file
	// extension matching the given content type.
	GenerateKey(contentType string) string
}

// extByContentType maps the content types this service commonly signs for to
// their canonical extension. mime.ExtensionsByType is platform-dependent
// (it consults the system mime tables), so the common cases are pinned here.
var extByContentType = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// Extension returns the file extension for a content type, including the
// leading dot. Unknown types fall back to the system mime tables, then to
// no extension.
func Extension(contentType string) string {
	if ext, ok := extByContentType[contentType]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}

// UUIDGenerator produces collision-resistant keys from random UUIDs.
// This is the recommended generator.
type UUIDGenerator struct {
	// Prefix, when set, is prepended to every key (e.g. "uploads/").
	Prefix string
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) GenerateKey(contentType string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return g.Prefix + id + Extension(contentType)
}

// LegacyRandGenerator reproduces the original key scheme: a scaled random
// fractional value truncated to an integer. Kept only for compatibility with
// buckets already populated under this scheme. The keyspace is small enough
// that collisions are plausible and keys are guessable; use UUIDGenerator
// for new deployments.
type LegacyRandGenerator struct {
	// Max bounds the random integer (exclusive). Zero means 10_000_000,
	// matching the original scheme.
	Max int64
}

func NewLegacyRandGenerator() *LegacyRandGenerator {
	return &LegacyRandGenerator{Max: 10_000_000}
}

func (g *LegacyRandGenerator) GenerateKey(contentType string) string {
	max := g.Max
	if max <= 0 {
		max = 10_000_000
	}
	return fmt.Sprintf("%d%s", rand.Int63n(max), Extension(contentType))
}

// NewRecommendedGenerator returns the generator new installations should use
func NewRecommendedGenerator() Generator {
	return NewUUIDGenerator()
}
