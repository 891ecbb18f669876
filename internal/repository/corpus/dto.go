package corpus

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/medrag/internal/domain"
	"github.com/kailas-cloud/medrag/internal/index"
)

// vectorEntry is the persisted form of one index entry.
type vectorEntry struct {
	ID     string    `json:"id"`
	Vector []float32 `json:"vector"`
}

func vectorsToDTO(entries []index.Entry) []vectorEntry {
	dto := make([]vectorEntry, len(entries))
	for i, e := range entries {
		dto[i] = vectorEntry{ID: e.ID, Vector: e.Vector}
	}
	return dto
}

func vectorsFromDTO(dto []vectorEntry) []index.Entry {
	entries := make([]index.Entry, len(dto))
	for i, d := range dto {
		entries[i] = index.Entry{ID: d.ID, Vector: d.Vector}
	}
	return entries
}

func chunkToFields(c domain.Chunk) map[string]string {
	return map[string]string{
		"source":  c.Source,
		"ordinal": strconv.Itoa(c.Ordinal),
		"text":    c.Text,
		"tokens":  strconv.Itoa(c.Tokens),
		"overlap": strconv.Itoa(c.Overlap),
	}
}

func chunkFromFields(id string, fields map[string]string) (domain.Chunk, error) {
	ordinal, err := strconv.Atoi(fields["ordinal"])
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("bad ordinal %q: %w", fields["ordinal"], err)
	}
	tokens, err := strconv.Atoi(fields["tokens"])
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("bad tokens %q: %w", fields["tokens"], err)
	}
	overlap, err := strconv.Atoi(fields["overlap"])
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("bad overlap %q: %w", fields["overlap"], err)
	}
	return domain.Chunk{
		ID:      id,
		Source:  fields["source"],
		Ordinal: ordinal,
		Text:    fields["text"],
		Tokens:  tokens,
		Overlap: overlap,
	}, nil
}
