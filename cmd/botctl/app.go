package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/botverse-dev/botverse/internal/answer"
	"github.com/botverse-dev/botverse/internal/chunker"
	"github.com/botverse-dev/botverse/internal/config"
	"github.com/botverse-dev/botverse/internal/embedding"
	"github.com/botverse-dev/botverse/internal/generation"
	"github.com/botverse-dev/botverse/internal/ingest"
	"github.com/botverse-dev/botverse/internal/scrape"
	"github.com/botverse-dev/botverse/internal/store"
	"github.com/botverse-dev/botverse/internal/vectorstore"
)

// app bundles the assembled components a command needs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *store.Store
	vectors  vectorstore.Store
	provider *embedding.Provider
	ingest   *ingest.Pipeline
	answer   *answer.Pipeline
	scraper  *scrape.Scraper

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp builds the full stack from configuration. Commands that only
// touch the relational store still get the whole thing; assembly is cheap
// compared to any remote call.
func newApp(ctx context.Context) (*app, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	a.db, err = store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, func() { a.db.Close() })

	if cfg.Qdrant.Host == "" {
		logger.Warn("no qdrant host configured, using in-memory vector store")
		a.vectors = vectorstore.NewMemory()
	} else {
		qdrant, err := vectorstore.NewQdrant(cfg.Qdrant.Host, cfg.Qdrant.Port, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to qdrant: %w", err)
		}
		a.vectors = qdrant
		a.closers = append(a.closers, func() { qdrant.Close() })
	}

	a.provider, err = buildProvider(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	var generator generation.Generator
	if cfg.GeminiKey != "" {
		gemini, err := generation.NewGemini(ctx, cfg.GeminiKey)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create generator: %w", err)
		}
		generator = gemini
		a.closers = append(a.closers, func() { gemini.Close() })
	}

	ch, err := chunker.New(cfg.Chunker.Size, cfg.Chunker.Overlap)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create chunker: %w", err)
	}

	a.ingest = ingest.NewPipeline(ch, a.provider, a.vectors, a.db, logger)
	a.answer = answer.NewPipeline(a.provider, a.vectors, generator, a.db, logger)
	a.scraper = scrape.New(logger)

	return a, nil
}

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
