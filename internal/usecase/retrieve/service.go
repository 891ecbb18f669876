// Package retrieve orchestrates query vectorization and index search into
// ranked, threshold-filtered passages.
package retrieve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/medrag/internal/domain"
	"github.com/kailas-cloud/medrag/internal/metrics"
)

// Service answers retrieval requests against the published snapshot.
type Service struct {
	snapshots SnapshotProvider
}

// New creates a retrieval service.
func New(snapshots SnapshotProvider) *Service {
	return &Service{snapshots: snapshots}
}

// Retrieve encodes the query, searches the index for the top k entries, and
// returns passages scoring at least minScore in descending score order.
// An empty result is a normal outcome, not an error.
func (s *Service) Retrieve(
	ctx context.Context, query string, k int, minScore float64,
) ([]domain.Passage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidArgument)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}

	snap, err := s.snapshots.Current()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	start := time.Now()

	hits, err := snap.Index().Search(snap.Space().Encode(query), k)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	metrics.RetrievalSearchDuration.Observe(time.Since(start).Seconds())

	var passages []domain.Passage
	for _, hit := range hits {
		if hit.Score < minScore {
			continue
		}
		chunk, ok := snap.Chunk(hit.ID)
		if !ok {
			// Snapshot construction enforces the chunk/vector join,
			// so a miss here means a corrupted snapshot.
			return nil, fmt.Errorf("chunk %s missing from snapshot", hit.ID)
		}
		passages = append(passages, domain.Passage{Chunk: chunk, Score: hit.Score})
	}

	outcome := "hit"
	if len(passages) == 0 {
		outcome = "empty"
	}
	metrics.RetrievalSearchesTotal.WithLabelValues(outcome).Inc()

	return passages, nil
}
