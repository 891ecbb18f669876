// Package ingest builds the corpus artifacts from raw documents: cleaning,
// chunking, fitting the vector space, encoding, and persisting the build.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/medrag/internal/chunker"
	"github.com/kailas-cloud/medrag/internal/domain"
	"github.com/kailas-cloud/medrag/internal/index"
	"github.com/kailas-cloud/medrag/internal/vectorizer"
)

// Repository persists a complete corpus build.
type Repository interface {
	Save(ctx context.Context, documents int, chunks []domain.Chunk,
		space *vectorizer.Space, vectors []index.Entry) error
}

// Summary reports what a build produced.
type Summary struct {
	Documents int
	Chunks    int
	Dimension int
}

// Service runs the offline corpus build.
type Service struct {
	chunker *chunker.Chunker
	repo    Repository
	log     *zap.Logger
}

// New creates an ingest service.
func New(c *chunker.Chunker, repo Repository, log *zap.Logger) *Service {
	return &Service{chunker: c, repo: repo, log: log}
}

// LoadDocuments reads every .txt file in dir as one document. The filename
// stem becomes the document source; files are ordered by name so builds
// are reproducible.
func LoadDocuments(dir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no .txt documents in %s", domain.ErrInvalidConfiguration, dir)
	}

	docs := make([]domain.Document, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", name, err)
		}
		docs = append(docs, domain.Document{
			Source: strings.TrimSuffix(name, ".txt"),
			Text:   chunker.Clean(string(raw)),
		})
	}
	return docs, nil
}

// Build chunks the documents, fits the vector space, encodes every chunk,
// and persists the artifacts as one build.
func (s *Service) Build(ctx context.Context, docs []domain.Document) (Summary, error) {
	if len(docs) == 0 {
		return Summary{}, fmt.Errorf("%w: no documents to ingest", domain.ErrInvalidConfiguration)
	}

	var chunks []domain.Chunk
	for _, doc := range docs {
		split := s.chunker.Split(doc)
		if len(split) == 0 {
			s.log.Warn("document produced no chunks", zap.String("source", doc.Source))
			continue
		}
		chunks = append(chunks, split...)
	}
	if len(chunks) == 0 {
		return Summary{}, fmt.Errorf("%w: corpus produced no chunks", domain.ErrInvalidConfiguration)
	}

	space, err := vectorizer.Fit(chunks)
	if err != nil {
		return Summary{}, fmt.Errorf("fit vector space: %w", err)
	}

	vectors := make([]index.Entry, len(chunks))
	for i, c := range chunks {
		vectors[i] = index.Entry{ID: c.ID, Vector: space.Encode(c.Text)}
	}

	if err := s.repo.Save(ctx, len(docs), chunks, space, vectors); err != nil {
		return Summary{}, fmt.Errorf("persist build: %w", err)
	}

	s.log.Info("corpus build complete",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)),
		zap.Int("dimension", space.Dimension()),
	)
	return Summary{Documents: len(docs), Chunks: len(chunks), Dimension: space.Dimension()}, nil
}
