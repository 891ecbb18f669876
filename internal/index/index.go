// Package index stores chunk vectors and serves nearest-neighbor search.
package index

// Hit is a single search result.
type Hit struct {
	ID    string
	Score float64
}

// Entry is a chunk vector added at build time. Vectors must be
// L2-normalized by the vectorizer so that inner product equals cosine
// similarity; the index does not re-check.
type Entry struct {
	ID     string
	Vector []float32
}

// Index serves top-k similarity search over a fixed vector set. The
// interface does not assume a particular backing structure, so a
// partitioned or approximate implementation can replace the flat scan
// without changing callers.
type Index interface {
	// Search returns up to k hits in descending score order.
	// k <= 0 is ErrInvalidArgument; an empty index yields an empty result.
	Search(query []float32, k int) ([]Hit, error)
	// Len reports the number of stored vectors.
	Len() int
}
