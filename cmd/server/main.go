// Package main provides the Botverse HTTP API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/botverse-dev/botverse/internal/answer"
	"github.com/botverse-dev/botverse/internal/chunker"
	"github.com/botverse-dev/botverse/internal/config"
	"github.com/botverse-dev/botverse/internal/embedding"
	"github.com/botverse-dev/botverse/internal/generation"
	"github.com/botverse-dev/botverse/internal/ingest"
	"github.com/botverse-dev/botverse/internal/scrape"
	"github.com/botverse-dev/botverse/internal/server"
	"github.com/botverse-dev/botverse/internal/store"
	"github.com/botverse-dev/botverse/internal/vectorstore"
)

func main() {
	// Load .env if present (local development), ignore if missing.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	vectors, closeVectors, err := buildVectorStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeVectors()

	provider, err := buildProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if cfg.GeminiKey == "" {
		return errors.New("GEMINI_API_KEY is required for answer generation")
	}
	generator, err := generation.NewGemini(ctx, cfg.GeminiKey)
	if err != nil {
		return fmt.Errorf("create generator: %w", err)
	}
	defer generator.Close()

	ch, err := chunker.New(cfg.Chunker.Size, cfg.Chunker.Overlap)
	if err != nil {
		return fmt.Errorf("create chunker: %w", err)
	}

	ingestPipeline := ingest.NewPipeline(ch, provider, vectors, db, logger)
	answerPipeline := answer.NewPipeline(provider, vectors, generator, db, logger)
	scraper := scrape.New(logger)

	srv := server.New(db, vectors, ingestPipeline, answerPipeline, scraper, logger)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildVectorStore connects to Qdrant when configured, otherwise falls
// back to the in-memory store for development runs.
func buildVectorStore(cfg *config.Config, logger *slog.Logger) (vectorstore.Store, func(), error) {
	if cfg.Qdrant.Host == "" {
		logger.Warn("no qdrant host configured, using in-memory vector store")
		return vectorstore.NewMemory(), func() {}, nil
	}

	qdrant, err := vectorstore.NewQdrant(cfg.Qdrant.Host, cfg.Qdrant.Port, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to qdrant: %w", err)
	}
	return qdrant, func() { qdrant.Close() }, nil
}

// buildProvider assembles the embedding fallback chain from whichever
// backends have API keys, in preference order.
func buildProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*embedding.Provider, error) {
	var backends []embedding.Backend

	if key := cfg.Embedding.HuggingFaceKey; key != "" {
		backends = append(backends, embedding.NewHuggingFace(key))
	}
	if key := cfg.Embedding.OpenAIKey; key != "" {
		backends = append(backends, embedding.NewOpenAI(key))
	}
	if key := cfg.Embedding.GeminiKey; key != "" {
		gemini, err := embedding.NewGemini(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("create gemini backend: %w", err)
		}
		backends = append(backends, gemini)
	}

	if len(backends) == 0 {
		return nil, errors.New("no embedding backend configured: set HUGGINGFACE_API_KEY, OPENAI_API_KEY or GEMINI_API_KEY")
	}

	return embedding.NewProvider(logger, backends...)
}
