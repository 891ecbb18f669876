// Package chi implements the HTTP API: question answering, corpus reload,
// health, and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medrag/internal/corpus"
	"github.com/kailas-cloud/medrag/internal/domain"
	"github.com/kailas-cloud/medrag/internal/metrics"
)

// Asker answers a user question end to end.
type Asker interface {
	Ask(ctx context.Context, query string) (domain.Answer, error)
}

// CorpusLoader restores a snapshot from the artifact store.
type CorpusLoader interface {
	Load(ctx context.Context) (*corpus.Snapshot, error)
}

// Publisher swaps the served snapshot.
type Publisher interface {
	Publish(s *corpus.Snapshot)
	Current() (*corpus.Snapshot, error)
}

// Pinger checks artifact store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Error response codes returned to clients.
const (
	codeBadRequest          = "bad_request"
	codeValidationFailed    = "validation_failed"
	codeNotFound            = "not_found"
	codeSnapshotNotReady    = "snapshot_not_ready"
	codeUpstreamUnavailable = "upstream_unavailable"
	codeUnauthorized        = "unauthorized"
	codeInternalError       = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements the HTTP API handlers.
type Server struct {
	answers       Asker
	loader        CorpusLoader
	snapshots     Publisher
	store         Pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	answers Asker,
	loader CorpusLoader,
	snapshots Publisher,
	store Pinger,
	logger *zap.Logger,
) *Server {
	s := &Server{
		answers:   answers,
		loader:    loader,
		snapshots: snapshots,
		store:     store,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrSnapshotNotReady, http.StatusServiceUnavailable, codeSnapshotNotReady),
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusBadGateway, codeUpstreamUnavailable),
	}
	return s
}

// Routes registers all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/ask", s.AskQuestion)
	r.Post("/admin/reload", s.ReloadCorpus)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
	Refused bool     `json:"refused"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AskQuestion handles POST /ask.
func (s *Server) AskQuestion(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Question is required")
		return
	}

	ans, err := s.answers.Ask(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Answer:  ans.Text,
		Sources: ans.Sources,
		Refused: ans.Refused,
	})
}

type reloadResponse struct {
	Manifest corpus.Manifest `json:"manifest"`
}

// ReloadCorpus handles POST /admin/reload: loads the latest persisted build
// and publishes it atomically.
func (s *Server) ReloadCorpus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loader.Load(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.snapshots.Publish(snap)
	metrics.SnapshotChunks.Set(float64(snap.Manifest().Chunks))

	s.logger.Info("corpus snapshot reloaded",
		zap.Int("chunks", snap.Manifest().Chunks),
		zap.Int("documents", snap.Manifest().Documents),
	)
	writeJSON(w, http.StatusOK, reloadResponse{Manifest: snap.Manifest()})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health. Degraded when the store is unreachable
// or no snapshot is published.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "ok", "snapshot": "ok"}
	healthy := true

	if err := s.store.Ping(r.Context()); err != nil {
		checks["store"] = "error"
		healthy = false
	}
	if _, err := s.snapshots.Current(); err != nil {
		checks["snapshot"] = "not_ready"
		healthy = false
	}

	status, httpStatus := "healthy", http.StatusOK
	if !healthy {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: status, Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrNotFound,
		domain.ErrSnapshotNotReady,
		domain.ErrUpstreamUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
