// Package answer runs the full question pipeline: scope gate, retrieval,
// prompt composition, and generation.
package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/medrag/internal/domain"
	"github.com/kailas-cloud/medrag/internal/logger"
	"github.com/kailas-cloud/medrag/internal/prompt"
	"github.com/kailas-cloud/medrag/internal/usecase/scope"
)

// Service answers user questions.
type Service struct {
	gate      ScopeClassifier
	retriever Retriever
	composer  Composer
	llm       Generator
	topK      int
	minScore  float64
}

// New creates an answer service. topK and minScore bound retrieval for
// every question.
func New(
	gate ScopeClassifier,
	retriever Retriever,
	composer Composer,
	llm Generator,
	topK int,
	minScore float64,
) *Service {
	return &Service{
		gate:      gate,
		retriever: retriever,
		composer:  composer,
		llm:       llm,
		topK:      topK,
		minScore:  minScore,
	}
}

// Ask answers a single question. Out-of-scope questions get the fixed
// refusal without touching retrieval or the model. Every generated answer
// carries the safety disclaimer.
func (s *Service) Ask(ctx context.Context, query string) (domain.Answer, error) {
	log := logger.FromContext(ctx)

	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Answer{}, fmt.Errorf("%w: empty query", domain.ErrInvalidArgument)
	}

	decision, err := s.gate.Classify(ctx, query)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("scope gate: %w", err)
	}
	if decision == scope.OutOfScope {
		log.Info("query refused as out of scope")
		return domain.Answer{Text: prompt.Refusal, Refused: true}, nil
	}

	passages, err := s.retriever.Retrieve(ctx, query, s.topK, s.minScore)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve: %w", err)
	}
	log.Debug("retrieved context", zap.Int("passages", len(passages)))

	text, err := s.llm.Generate(ctx, s.composer.Compose(query, passages))
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate: %w", err)
	}
	if !strings.Contains(text, prompt.Disclaimer) {
		text = prompt.Disclaimer + "\n\n" + text
	}

	return domain.Answer{Text: text, Sources: sources(passages)}, nil
}

// sources lists the distinct source documents in passage order.
func sources(passages []domain.Passage) []string {
	seen := make(map[string]struct{}, len(passages))
	var out []string
	for _, p := range passages {
		if _, ok := seen[p.Chunk.Source]; ok {
			continue
		}
		seen[p.Chunk.Source] = struct{}{}
		out = append(out, p.Chunk.Source)
	}
	return out
}
