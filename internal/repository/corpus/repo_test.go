package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/medrag/internal/domain"
	"github.com/kailas-cloud/medrag/internal/index"
	"github.com/kailas-cloud/medrag/internal/vectorizer"
)

func buildArtifacts(t *testing.T) ([]domain.Chunk, *vectorizer.Space, []index.Entry) {
	t.Helper()
	chunks := []domain.Chunk{
		{ID: "fever_guide:0", Source: "fever_guide", Ordinal: 0,
			Text: "fever treatment rest hydration", Tokens: 4},
		{ID: "fever_guide:1", Source: "fever_guide", Ordinal: 1,
			Text: "hydration cool compresses monitor temperature", Tokens: 5, Overlap: 1},
	}
	space, err := vectorizer.Fit(chunks)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	entries := make([]index.Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = index.Entry{ID: c.ID, Vector: space.Encode(c.Text)}
	}
	return chunks, space, entries
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	chunks, space, entries := buildArtifacts(t)

	if err := repo.Save(ctx, 1, chunks, space, entries); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	m := snap.Manifest()
	if m.Documents != 1 || m.Chunks != 2 || m.Dimension != space.Dimension() {
		t.Fatalf("manifest = %+v", m)
	}
	if snap.Index().Len() != 2 {
		t.Fatalf("index size = %d, want 2", snap.Index().Len())
	}

	for _, want := range chunks {
		got, ok := snap.Chunk(want.ID)
		if !ok {
			t.Fatalf("chunk %s missing after reload", want.ID)
		}
		if got != want {
			t.Fatalf("chunk %s = %+v, want %+v", want.ID, got, want)
		}
	}

	// Reloaded space and index answer queries identically to the build.
	query := space.Encode("fever hydration")
	wantHits, err := index.NewFlat(entries).Search(query, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	gotHits, err := snap.Index().Search(snap.Space().Encode("fever hydration"), 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i := range wantHits {
		if gotHits[i].ID != wantHits[i].ID || gotHits[i].Score != wantHits[i].Score {
			t.Fatalf("reloaded hits %v, want %v", gotHits, wantHits)
		}
	}
}

func TestSave_LengthMismatch(t *testing.T) {
	repo, _ := newTestRepo(t)
	chunks, space, entries := buildArtifacts(t)

	err := repo.Save(context.Background(), 1, chunks, space, entries[:1])
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestSave_ReplacesPreviousBuild(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	chunks, space, entries := buildArtifacts(t)

	if err := repo.Save(ctx, 1, chunks, space, entries); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Second build with a single chunk replaces the first entirely.
	if err := repo.Save(ctx, 1, chunks[:1], space, entries[:1]); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, ok := ms.hashes["medrag:chunk:fever_guide:1"]; ok {
		t.Fatal("stale chunk record survived rebuild")
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Index().Len() != 1 {
		t.Fatalf("index size = %d, want 1", snap.Index().Len())
	}
}

func TestLoad_NoBuild(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Load(context.Background())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoad_MissingChunkRecord(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	chunks, space, entries := buildArtifacts(t)

	if err := repo.Save(ctx, 1, chunks, space, entries); err != nil {
		t.Fatalf("Save: %v", err)
	}
	delete(ms.hashes, "medrag:chunk:fever_guide:1")

	if _, err := repo.Load(ctx); err == nil {
		t.Fatal("expected error for broken chunk/vector join")
	}
}
