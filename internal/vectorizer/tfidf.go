// Package vectorizer fits a TF-IDF model over the chunk corpus and encodes
// text into L2-normalized vectors.
package vectorizer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/medrag/internal/domain"
)

// Space is a fitted TF-IDF model: a vocabulary mapping terms to component
// indices plus smoothed inverse-document-frequency weights. Immutable after
// Fit; shared across concurrent encoders without locking.
type Space struct {
	vocabulary map[string]int
	weights    []float64
}

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Fit builds the vocabulary and IDF weights from the chunk corpus.
// Weights use the smoothed form log((1+N)/(1+df)) + 1, strictly positive and
// monotonically decreasing in document frequency. Component indices follow
// sorted term order for reproducibility.
func Fit(corpus []domain.Chunk) (*Space, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("%w: empty chunk corpus", domain.ErrInvalidConfiguration)
	}

	df := make(map[string]int)
	for _, chunk := range corpus {
		seen := make(map[string]struct{})
		for _, term := range Tokenize(chunk.Text) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	if len(df) == 0 {
		return nil, fmt.Errorf("%w: corpus contains no indexable terms", domain.ErrInvalidConfiguration)
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	s := &Space{
		vocabulary: make(map[string]int, len(terms)),
		weights:    make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		s.vocabulary[term] = i
		s.weights[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return s, nil
}

// Dimension returns the vector dimensionality of the space.
func (s *Space) Dimension() int { return len(s.weights) }

// Encode maps text to an L2-normalized TF-IDF vector. Terms outside the
// fitted vocabulary contribute zero weight; text with no in-vocabulary terms
// encodes to the zero vector. Pure function of the text and the fitted space.
func (s *Space) Encode(text string) []float32 {
	acc := make([]float64, len(s.weights))

	var norm float64
	counts := make(map[int]int)
	for _, term := range Tokenize(text) {
		if idx, ok := s.vocabulary[term]; ok {
			counts[idx]++
		}
	}
	for idx, tf := range counts {
		v := float64(tf) * s.weights[idx]
		acc[idx] = v
		norm += v * v
	}

	vec := make([]float32, len(acc))
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

// Tokenize lowercases text and extracts letter runs, dropping stop words.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further",
		"than", "so", "such", "into", "about", "between", "through", "during",
		"before", "after", "above", "below", "out", "off", "own", "same",
		"too", "very", "can", "will", "just", "should", "now", "what", "how",
		"when", "where", "which", "who", "whom", "why", "do", "does", "did",
		"have", "has", "had", "i", "you", "he", "she", "we", "they", "my",
		"your", "their", "not", "no",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
