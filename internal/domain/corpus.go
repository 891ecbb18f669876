// Package domain holds the core types shared across the retrieval pipeline.
package domain

import "fmt"

// Document is a raw corpus document. Immutable once ingested.
type Document struct {
	Source string // stable identifier: filename stem or title
	Text   string // cleaned plain text
}

// Chunk is a bounded contiguous span of a source document used as the
// retrieval unit. Derived from exactly one Document, immutable.
type Chunk struct {
	ID      string // "<source>:<ordinal>"
	Source  string
	Ordinal int // position within the source document, from 0
	Text    string
	Tokens  int // whitespace token count of Text
	Overlap int // tokens shared with the previous chunk of the same document
}

// ChunkID builds the canonical chunk identifier used as the join key between
// chunk metadata and index vectors.
func ChunkID(source string, ordinal int) string {
	return fmt.Sprintf("%s:%d", source, ordinal)
}

// Passage is a retrieved chunk with its relevance score. Ephemeral,
// constructed per query.
type Passage struct {
	Chunk Chunk
	Score float64 // cosine similarity in [-1, 1]
}

// Answer is the final response for a query.
type Answer struct {
	Text    string
	Sources []string // source documents of the passages fed to the model
	Refused bool     // true when the scope gate short-circuited
}
