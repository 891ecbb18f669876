package retrieve

import "github.com/kailas-cloud/medrag/internal/corpus"

// SnapshotProvider yields the currently published corpus snapshot.
type SnapshotProvider interface {
	Current() (*corpus.Snapshot, error)
}
