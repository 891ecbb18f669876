// Package corpus holds the immutable retrieval snapshot shared by request
// handlers: chunk metadata, the fitted vector space, and the built index.
package corpus

import (
	"time"

	"github.com/kailas-cloud/medrag/internal/domain"
	"github.com/kailas-cloud/medrag/internal/index"
	"github.com/kailas-cloud/medrag/internal/vectorizer"
)

// Manifest describes a published corpus build.
type Manifest struct {
	BuiltAt   time.Time `json:"built_at"`
	Documents int       `json:"documents"`
	Chunks    int       `json:"chunks"`
	Dimension int       `json:"dimension"`
}

// Snapshot is a fully built retrieval state. Read-only after construction,
// safe to share across concurrent requests without locking.
type Snapshot struct {
	chunks   map[string]domain.Chunk
	space    *vectorizer.Space
	index    index.Index
	manifest Manifest
}

// NewSnapshot assembles a snapshot from loaded artifacts.
func NewSnapshot(
	chunks map[string]domain.Chunk, space *vectorizer.Space, idx index.Index, manifest Manifest,
) *Snapshot {
	return &Snapshot{chunks: chunks, space: space, index: idx, manifest: manifest}
}

// Chunk returns a chunk by identifier.
func (s *Snapshot) Chunk(id string) (domain.Chunk, bool) {
	c, ok := s.chunks[id]
	return c, ok
}

// Space returns the fitted vector space.
func (s *Snapshot) Space() *vectorizer.Space { return s.space }

// Index returns the built vector index.
func (s *Snapshot) Index() index.Index { return s.index }

// Manifest returns the build metadata.
func (s *Snapshot) Manifest() Manifest { return s.manifest }
