package corpus

import (
	"sync/atomic"

	"github.com/kailas-cloud/medrag/internal/domain"
)

// Provider publishes snapshots atomically. Readers either see the previous
// complete snapshot or the new one, never a partial build.
type Provider struct {
	current atomic.Pointer[Snapshot]
}

// NewProvider creates an empty provider; Current fails until the first Publish.
func NewProvider() *Provider { return &Provider{} }

// Publish swaps in a fully built snapshot.
func (p *Provider) Publish(s *Snapshot) {
	p.current.Store(s)
}

// Current returns the published snapshot, or ErrSnapshotNotReady before the
// first publish.
func (p *Provider) Current() (*Snapshot, error) {
	if s := p.current.Load(); s != nil {
		return s, nil
	}
	return nil, domain.ErrSnapshotNotReady
}
