package vectorizer

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/medrag/internal/domain"
)

func corpus(texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{ID: domain.ChunkID("doc", i), Source: "doc", Ordinal: i, Text: text}
	}
	return chunks
}

func fitTestSpace(t *testing.T) *Space {
	t.Helper()
	s, err := Fit(corpus(
		"fever treatment rest hydration cool compresses",
		"headache relief rest dark room cold compress",
		"dehydration prevention drink water hydration",
	))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return s
}

func norm(vec []float32) float64 {
	var n float64
	for _, v := range vec {
		n += float64(v) * float64(v)
	}
	return math.Sqrt(n)
}

func TestFit_EmptyCorpus(t *testing.T) {
	if _, err := Fit(nil); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestFit_WeightsDecreaseWithDocumentFrequency(t *testing.T) {
	s := fitTestSpace(t)

	// "hydration" appears in 2 documents, "fever" in 1.
	rare := s.weights[s.vocabulary["fever"]]
	common := s.weights[s.vocabulary["hydration"]]
	if rare <= common {
		t.Fatalf("rare term weight %g should exceed common term weight %g", rare, common)
	}
	for term, idx := range s.vocabulary {
		if s.weights[idx] <= 0 {
			t.Errorf("weight for %q = %g, want strictly positive", term, s.weights[idx])
		}
	}
}

func TestFit_ComponentAssignmentIsSorted(t *testing.T) {
	s := fitTestSpace(t)

	// Sorted assignment keeps fits reproducible run to run.
	s2, err := Fit(corpus(
		"fever treatment rest hydration cool compresses",
		"headache relief rest dark room cold compress",
		"dehydration prevention drink water hydration",
	))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	for term, idx := range s.vocabulary {
		if s2.vocabulary[term] != idx {
			t.Fatalf("component for %q differs across fits: %d vs %d", term, idx, s2.vocabulary[term])
		}
	}
}

func TestEncode_Deterministic(t *testing.T) {
	s := fitTestSpace(t)

	a := s.Encode("fever treatment and hydration")
	b := s.Encode("fever treatment and hydration")
	if len(a) != s.Dimension() {
		t.Fatalf("vector length %d, want %d", len(a), s.Dimension())
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("component %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestEncode_Normalized(t *testing.T) {
	s := fitTestSpace(t)

	got := norm(s.Encode("fever treatment rest"))
	if math.Abs(got-1) > 1e-6 {
		t.Fatalf("norm = %g, want 1", got)
	}
}

func TestEncode_OutOfVocabularyIsZeroVector(t *testing.T) {
	s := fitTestSpace(t)

	for _, text := range []string{"", "   ", "quantum blockchain tokens", "the and of"} {
		vec := s.Encode(text)
		if len(vec) != s.Dimension() {
			t.Fatalf("vector length %d, want %d", len(vec), s.Dimension())
		}
		if n := norm(vec); n != 0 {
			t.Fatalf("Encode(%q) norm = %g, want zero vector", text, n)
		}
	}
}

func TestSpace_RoundTrip(t *testing.T) {
	s := fitTestSpace(t)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var loaded Space
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if loaded.Dimension() != s.Dimension() {
		t.Fatalf("dimension %d, want %d", loaded.Dimension(), s.Dimension())
	}
	orig := s.Encode("fever hydration compress")
	restored := loaded.Encode("fever hydration compress")
	for i := range orig {
		if orig[i] != restored[i] {
			t.Fatalf("component %d differs after reload: %v vs %v", i, orig[i], restored[i])
		}
	}
}

func TestSpace_UnmarshalCorrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"length mismatch", `{"vocabulary":{"a":0,"b":1},"weights":[1.0]}`},
		{"index out of range", `{"vocabulary":{"a":5},"weights":[1.0]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Space
			if err := json.Unmarshal([]byte(tt.data), &s); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("How to treat a Fever, quickly?")
	want := []string{"treat", "fever", "quickly"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", got, want)
		}
	}
}
