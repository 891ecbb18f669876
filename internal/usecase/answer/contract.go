package answer

import (
	"context"

	"github.com/kailas-cloud/medrag/internal/domain"
	"github.com/kailas-cloud/medrag/internal/prompt"
	"github.com/kailas-cloud/medrag/internal/usecase/scope"
)

// ScopeClassifier decides whether a query belongs to the knowledge base.
type ScopeClassifier interface {
	Classify(ctx context.Context, query string) (scope.Decision, error)
}

// Retriever returns ranked passages for an in-scope query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int, minScore float64) ([]domain.Passage, error)
}

// Composer assembles the generation prompt from the query and passages.
type Composer interface {
	Compose(query string, passages []domain.Passage) prompt.Prompt
}

// Generator produces the answer text from a composed prompt.
type Generator interface {
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}
