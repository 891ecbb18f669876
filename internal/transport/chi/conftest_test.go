package chi

import (
	"context"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medrag/internal/corpus"
	"github.com/kailas-cloud/medrag/internal/domain"
	"github.com/kailas-cloud/medrag/internal/index"
)

type mockAsker struct {
	answer domain.Answer
	err    error

	gotQuery string
}

func (m *mockAsker) Ask(_ context.Context, query string) (domain.Answer, error) {
	m.gotQuery = query
	return m.answer, m.err
}

type mockLoader struct {
	snapshot *corpus.Snapshot
	err      error
}

func (m *mockLoader) Load(context.Context) (*corpus.Snapshot, error) {
	return m.snapshot, m.err
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

func testSnapshot(chunks int) *corpus.Snapshot {
	return corpus.NewSnapshot(
		map[string]domain.Chunk{},
		nil,
		index.NewFlat(nil),
		corpus.Manifest{Documents: 1, Chunks: chunks, Dimension: 8},
	)
}

// newTestRouter wires a server with the given collaborators into a router.
func newTestRouter(
	asker *mockAsker, loader *mockLoader, provider *corpus.Provider, pinger *mockPinger,
) http.Handler {
	s := NewServer(asker, loader, provider, pinger, zap.NewNop())
	r := chirouter.NewRouter()
	s.Routes(r)
	return r
}
