package index

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/medrag/internal/domain"
)

// Flat is an exact inner-product index: every query scans every stored
// vector. Read-only after construction, safe for concurrent searches.
type Flat struct {
	ids     []string
	vectors [][]float32
}

var _ Index = (*Flat)(nil)

// NewFlat builds a flat index from entries. Insertion order is preserved
// and breaks score ties during search.
func NewFlat(entries []Entry) *Flat {
	f := &Flat{
		ids:     make([]string, len(entries)),
		vectors: make([][]float32, len(entries)),
	}
	for i, e := range entries {
		f.ids[i] = e.ID
		f.vectors[i] = e.Vector
	}
	return f
}

// Len reports the number of stored vectors.
func (f *Flat) Len() int { return len(f.ids) }

// Search scans all stored vectors and returns the k highest inner products
// in descending order. Equal scores rank by insertion order.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}
	if len(f.ids) == 0 {
		return nil, nil
	}

	hits := make([]Hit, len(f.ids))
	for i, vec := range f.vectors {
		hits[i] = Hit{ID: f.ids[i], Score: dot(query, vec)}
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// dot accumulates in float64 to keep scores stable across rebuilds.
func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
