// Package chunker splits cleaned document text into overlapping
// fixed-size token windows.
package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kailas-cloud/medrag/internal/domain"
)

// Config holds the chunking band. OverlapTokens < MinTokens < MaxTokens.
type Config struct {
	MinTokens     int
	MaxTokens     int
	OverlapTokens int
}

// Chunker produces token-window chunks from documents.
type Chunker struct {
	cfg Config
}

// New validates the chunking band and creates a chunker.
func New(cfg Config) (*Chunker, error) {
	if cfg.OverlapTokens < 0 || cfg.MinTokens <= 0 || cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("%w: chunking band must be positive", domain.ErrInvalidConfiguration)
	}
	if cfg.OverlapTokens >= cfg.MinTokens {
		return nil, fmt.Errorf("%w: overlap %d must be less than min tokens %d",
			domain.ErrInvalidConfiguration, cfg.OverlapTokens, cfg.MinTokens)
	}
	if cfg.MinTokens >= cfg.MaxTokens {
		return nil, fmt.Errorf("%w: min tokens %d must be less than max tokens %d",
			domain.ErrInvalidConfiguration, cfg.MinTokens, cfg.MaxTokens)
	}
	return &Chunker{cfg: cfg}, nil
}

// Split chunks a document into windows of MaxTokens whitespace tokens,
// advancing by MaxTokens-OverlapTokens per step. The tail window may be
// shorter than MinTokens but is always emitted, so every token of the
// document appears in the chunk sequence. A document with no tokens
// yields no chunks.
func (c *Chunker) Split(doc domain.Document) []domain.Chunk {
	tokens := strings.Fields(doc.Text)
	n := len(tokens)
	if n == 0 {
		return nil
	}

	step := c.cfg.MaxTokens - c.cfg.OverlapTokens
	var chunks []domain.Chunk

	for start, ordinal := 0, 0; start < n; start, ordinal = start+step, ordinal+1 {
		end := start + c.cfg.MaxTokens
		if end > n {
			end = n
		}

		overlap := 0
		if ordinal > 0 {
			overlap = c.cfg.OverlapTokens
			if end-start < overlap {
				overlap = end - start
			}
		}

		chunks = append(chunks, domain.Chunk{
			ID:      domain.ChunkID(doc.Source, ordinal),
			Source:  doc.Source,
			Ordinal: ordinal,
			Text:    strings.Join(tokens[start:end], " "),
			Tokens:  end - start,
			Overlap: overlap,
		})

		if end == n {
			break
		}
	}

	return chunks
}

// Clean normalizes whitespace and strips control characters from raw
// document text.
func Clean(text string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)
	return strings.Join(strings.Fields(mapped), " ")
}
