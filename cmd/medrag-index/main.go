// Command medrag-index builds the corpus artifacts offline: it chunks the
// document directory, fits the vector space, and persists the build to the
// artifact store. The API server picks it up on startup or via /admin/reload.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medrag/internal/chunker"
	"github.com/kailas-cloud/medrag/internal/config"
	dbRedis "github.com/kailas-cloud/medrag/internal/db/redis"
	logpkg "github.com/kailas-cloud/medrag/internal/logger"
	corpusrepo "github.com/kailas-cloud/medrag/internal/repository/corpus"
	"github.com/kailas-cloud/medrag/internal/usecase/ingest"
	"github.com/kailas-cloud/medrag/internal/version"
)

func main() {
	docsDir := flag.String("docs", "", "document directory (overrides corpus.docs_dir)")
	flag.Parse()

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

	dir := cfg.Corpus.DocsDir
	if *docsDir != "" {
		dir = *docsDir
	}

	logger.Info("Starting corpus build",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("docs_dir", dir),
		zap.Int("max_tokens", cfg.Corpus.MaxTokens),
		zap.Int("overlap_tokens", cfg.Corpus.OverlapTokens),
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

	c, err := chunker.New(chunker.Config{
		MinTokens:     cfg.Corpus.MinTokens,
		MaxTokens:     cfg.Corpus.MaxTokens,
		OverlapTokens: cfg.Corpus.OverlapTokens,
	})
	if err != nil {
		logger.Fatal("Invalid chunking configuration", zap.Error(err))
	}

	docs, err := ingest.LoadDocuments(dir)
	if err != nil {
		logger.Fatal("Failed to load documents", zap.Error(err))
	}

	svc := ingest.New(c, corpusrepo.New(store, cfg.Storage.KeyPrefix), logger)
	summary, err := svc.Build(ctx, docs)
	if err != nil {
		logger.Fatal("Corpus build failed", zap.Error(err))
	}

	logger.Info("Corpus build published",
		zap.Int("documents", summary.Documents),
		zap.Int("chunks", summary.Chunks),
		zap.Int("dimension", summary.Dimension),
	)
}
