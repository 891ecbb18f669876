package scope

import (
	"context"
	"strings"

	"github.com/kailas-cloud/medrag/internal/domain"
)

// KeywordSignal matches queries containing any of a fixed set of medical
// terms, as a case-insensitive substring test.
type KeywordSignal struct {
	terms []string
}

// NewKeywordSignal creates the signal; terms are lowercased once here.
func NewKeywordSignal(terms []string) *KeywordSignal {
	lowered := make([]string, len(terms))
	for i, t := range terms {
		lowered[i] = strings.ToLower(t)
	}
	return &KeywordSignal{terms: lowered}
}

func (s *KeywordSignal) Name() string { return "keyword" }

func (s *KeywordSignal) Matches(_ context.Context, query string) (bool, error) {
	q := strings.ToLower(query)
	for _, term := range s.terms {
		if strings.Contains(q, term) {
			return true, nil
		}
	}
	return false, nil
}

// Retriever is the slice of the retrieval service the signal needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int, minScore float64) ([]domain.Passage, error)
}

// RetrievalSignal matches queries whose best corpus hit scores at or above
// a similarity threshold. Catches in-scope queries that use none of the
// keyword list's wording.
type RetrievalSignal struct {
	retriever Retriever
	threshold float64
}

// NewRetrievalSignal creates the signal with the given score threshold.
func NewRetrievalSignal(retriever Retriever, threshold float64) *RetrievalSignal {
	return &RetrievalSignal{retriever: retriever, threshold: threshold}
}

func (s *RetrievalSignal) Name() string { return "retrieval" }

func (s *RetrievalSignal) Matches(ctx context.Context, query string) (bool, error) {
	passages, err := s.retriever.Retrieve(ctx, query, 1, s.threshold)
	if err != nil {
		return false, err
	}
	return len(passages) > 0, nil
}
