package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medrag/internal/config"
	"github.com/kailas-cloud/medrag/internal/corpus"
	dbRedis "github.com/kailas-cloud/medrag/internal/db/redis"
	"github.com/kailas-cloud/medrag/internal/domain"
	logpkg "github.com/kailas-cloud/medrag/internal/logger"
	"github.com/kailas-cloud/medrag/internal/metrics"
	"github.com/kailas-cloud/medrag/internal/prompt"
	corpusrepo "github.com/kailas-cloud/medrag/internal/repository/corpus"
	chiTransport "github.com/kailas-cloud/medrag/internal/transport/chi"
	openaiGen "github.com/kailas-cloud/medrag/internal/transport/openai"
	"github.com/kailas-cloud/medrag/internal/usecase/answer"
	"github.com/kailas-cloud/medrag/internal/usecase/retrieve"
	"github.com/kailas-cloud/medrag/internal/usecase/scope"
	"github.com/kailas-cloud/medrag/internal/version"
)

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting medrag API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("llm_model", cfg.LLM.Model),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create artifact store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Artifact store not ready", zap.Error(err))
	}
	logger.Info("Connected to artifact store")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	repo := corpusrepo.New(store, cfg.Storage.KeyPrefix)
	provider := corpus.NewProvider()

	// Load the latest persisted corpus build. Starting without one is fine:
	// /ask returns 503 until an operator runs the index build and reloads.
	switch snap, err := repo.Load(ctx); {
	case err == nil:
		provider.Publish(snap)
		metrics.SnapshotChunks.Set(float64(snap.Manifest().Chunks))
		logger.Info("Corpus snapshot loaded",
			zap.Int("documents", snap.Manifest().Documents),
			zap.Int("chunks", snap.Manifest().Chunks),
			zap.Int("dimension", snap.Manifest().Dimension),
			zap.Time("built_at", snap.Manifest().BuiltAt),
		)
	case errors.Is(err, domain.ErrNotFound):
		logger.Warn("No corpus build published yet; serving degraded until reload")
	default:
		logger.Fatal("Failed to load corpus snapshot", zap.Error(err))
	}

	// Build the question pipeline — composition root
	retriever := retrieve.New(provider)
	gate := scope.NewGate(
		scope.NewKeywordSignal(cfg.Scope.Keywords),
		scope.NewRetrievalSignal(retriever, cfg.Scope.ScoreThreshold),
	)
	composer := prompt.NewComposer(cfg.Retrieval.MaxContextChars)
	generator := openaiGen.NewGenerator(&openaiGen.Config{
		APIKey:              cfg.LLM.APIKey,
		BaseURL:             cfg.LLM.BaseURL,
		Model:               cfg.LLM.Model,
		Temperature:         cfg.LLM.Temperature,
		MaxOutputTokens:     cfg.LLM.MaxOutputTokens,
		Timeout:             time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		MaxRetries:          cfg.LLM.MaxRetries,
		RequestsPerMin:      cfg.LLM.RequestsPerMin,
		BreakerFailureRatio: cfg.LLM.BreakerThreshold,
		Logger:              logger,
	})
	answers := answer.New(gate, retriever, composer, generator,
		cfg.Retrieval.TopK, cfg.Retrieval.MinScore)

	server := chiTransport.NewServer(answers, repo, provider, store, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
