// Package corpus persists and restores corpus build artifacts: chunk
// records, the fitted vector space, and the index vector table, all keyed
// by chunk identifier.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/medrag/internal/db"
	"github.com/kailas-cloud/medrag/internal/domain"
	"github.com/kailas-cloud/medrag/internal/index"

	corpussnap "github.com/kailas-cloud/medrag/internal/corpus"
	"github.com/kailas-cloud/medrag/internal/vectorizer"
)

// store is the consumer interface for artifact persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo reads and writes corpus artifacts in the store.
type Repo struct {
	store  store
	prefix string
}

// New creates a corpus artifact repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

func (r *Repo) chunkKey(id string) string { return r.prefix + "chunk:" + id }
func (r *Repo) spaceKey() string          { return r.prefix + "space" }
func (r *Repo) vectorsKey() string        { return r.prefix + "vectors" }
func (r *Repo) manifestKey() string       { return r.prefix + "manifest" }

// Save writes a complete build. The manifest is written last so a load
// against a partially written build fails on the missing manifest rather
// than returning stale joins.
func (r *Repo) Save(
	ctx context.Context,
	documents int,
	chunks []domain.Chunk,
	space *vectorizer.Space,
	vectors []index.Entry,
) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks vs %d vectors",
			domain.ErrInvalidConfiguration, len(chunks), len(vectors))
	}

	// Drop artifacts of the previous build first.
	if err := r.deleteExisting(ctx); err != nil {
		return err
	}

	items := make([]db.HashSetItem, len(chunks))
	for i, c := range chunks {
		items[i] = db.HashSetItem{Key: r.chunkKey(c.ID), Fields: chunkToFields(c)}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	spaceData, err := json.Marshal(space)
	if err != nil {
		return fmt.Errorf("marshal space: %w", err)
	}
	if err := r.store.Set(ctx, r.spaceKey(), spaceData); err != nil {
		return fmt.Errorf("save space: %w", err)
	}

	vectorData, err := json.Marshal(vectorsToDTO(vectors))
	if err != nil {
		return fmt.Errorf("marshal vectors: %w", err)
	}
	if err := r.store.Set(ctx, r.vectorsKey(), vectorData); err != nil {
		return fmt.Errorf("save vectors: %w", err)
	}

	manifest := corpussnap.Manifest{
		BuiltAt:   time.Now().UTC(),
		Documents: documents,
		Chunks:    len(chunks),
		Dimension: space.Dimension(),
	}
	manifestData, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := r.store.Set(ctx, r.manifestKey(), manifestData); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}

	return nil
}

// Load restores a snapshot from stored artifacts. The vector table drives
// the join: every indexed vector must have its chunk record.
func (r *Repo) Load(ctx context.Context) (*corpussnap.Snapshot, error) {
	manifestData, err := r.store.Get(ctx, r.manifestKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("no corpus build published: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	var manifest corpussnap.Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	spaceData, err := r.store.Get(ctx, r.spaceKey())
	if err != nil {
		return nil, fmt.Errorf("load space: %w", err)
	}
	space := &vectorizer.Space{}
	if err := json.Unmarshal(spaceData, space); err != nil {
		return nil, fmt.Errorf("unmarshal space: %w", err)
	}

	vectorData, err := r.store.Get(ctx, r.vectorsKey())
	if err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}
	var dto []vectorEntry
	if err := json.Unmarshal(vectorData, &dto); err != nil {
		return nil, fmt.Errorf("unmarshal vectors: %w", err)
	}
	entries := vectorsFromDTO(dto)

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = r.chunkKey(e.ID)
	}
	records, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	chunks := make(map[string]domain.Chunk, len(entries))
	for i, fields := range records {
		if len(fields) == 0 {
			return nil, fmt.Errorf("chunk record %s missing for indexed vector", entries[i].ID)
		}
		c, err := chunkFromFields(entries[i].ID, fields)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", entries[i].ID, err)
		}
		chunks[c.ID] = c
	}

	return corpussnap.NewSnapshot(chunks, space, index.NewFlat(entries), manifest), nil
}

// deleteExisting removes all artifacts under the key prefix.
func (r *Repo) deleteExisting(ctx context.Context) error {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return fmt.Errorf("scan artifacts: %w", err)
	}
	for _, key := range keys {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}
