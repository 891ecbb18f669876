package vectorizer

import (
	"encoding/json"
	"fmt"
)

// spaceJSON is the persisted form of a fitted Space.
type spaceJSON struct {
	Vocabulary map[string]int `json:"vocabulary"`
	Weights    []float64      `json:"weights"`
}

// MarshalJSON serializes the fitted space for persistence.
func (s *Space) MarshalJSON() ([]byte, error) {
	return json.Marshal(spaceJSON{ //nolint:wrapcheck // stdlib marshal of a plain DTO
		Vocabulary: s.vocabulary,
		Weights:    s.weights,
	})
}

// UnmarshalJSON restores a fitted space. Reloaded spaces encode identically to
// the original; re-fitting is never required at query time.
func (s *Space) UnmarshalJSON(data []byte) error {
	var dto spaceJSON
	if err := json.Unmarshal(data, &dto); err != nil {
		return fmt.Errorf("unmarshal vector space: %w", err)
	}
	if len(dto.Vocabulary) != len(dto.Weights) {
		return fmt.Errorf("vector space corrupt: %d terms vs %d weights",
			len(dto.Vocabulary), len(dto.Weights))
	}
	for term, idx := range dto.Vocabulary {
		if idx < 0 || idx >= len(dto.Weights) {
			return fmt.Errorf("vector space corrupt: term %q has component %d out of range", term, idx)
		}
	}
	s.vocabulary = dto.Vocabulary
	s.weights = dto.Weights
	return nil
}
