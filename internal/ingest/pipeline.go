// Package ingest turns raw document text into stored chunk vectors.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/botverse-dev/botverse/internal/chunker"
	"github.com/botverse-dev/botverse/internal/embedding"
	"github.com/botverse-dev/botverse/internal/store"
	"github.com/botverse-dev/botverse/internal/vectorstore"
)

// ErrEmptyContent is returned when a document has no usable text.
var ErrEmptyContent = errors.New("document has no content")

// ErrNoChunksStored is returned when every chunk of a document failed.
// The document's partial state has already been rolled back.
var ErrNoChunksStored = errors.New("no chunks could be stored")

// DefaultChunkDelay is the pause between consecutive embedding calls, to
// stay under free-tier rate limits.
const DefaultChunkDelay = 200 * time.Millisecond

// Summary contains statistics about one ingestion run.
type Summary struct {
	DocumentID    string
	ChunksCreated int
	ChunksStored  int
	ChunksSkipped int
	Backend       string
	Duration      time.Duration
}

// Pipeline orchestrates chunking, embedding and storage for one document
// at a time. Progress is tracked as document status in the relational store.
type Pipeline struct {
	chunker    *chunker.Chunker
	provider   *embedding.Provider
	vectors    vectorstore.Store
	db         *store.Store
	logger     *slog.Logger
	chunkDelay time.Duration
}

// NewPipeline creates an ingestion pipeline with the given components.
func NewPipeline(
	ch *chunker.Chunker,
	provider *embedding.Provider,
	vectors vectorstore.Store,
	db *store.Store,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		chunker:    ch,
		provider:   provider,
		vectors:    vectors,
		db:         db,
		logger:     logger,
		chunkDelay: DefaultChunkDelay,
	}
}

// WithChunkDelay overrides the pause between embedding calls. Mainly for
// tests.
func (p *Pipeline) WithChunkDelay(d time.Duration) *Pipeline {
	p.chunkDelay = d
	return p
}

// Ingest runs the full pipeline for one document. All chunks of the
// document are embedded by the same backend: the first chunk goes through
// the fallback chain and pins the backend for the rest. Chunks that fail
// to embed or store are skipped. If no chunk survives, everything written
// so far is rolled back and ErrNoChunksStored is returned.
func (p *Pipeline) Ingest(ctx context.Context, botID, name, source, text string) (*Summary, error) {
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}

	doc := &store.Document{
		ID:     uuid.New().String(),
		BotID:  botID,
		Name:   name,
		Source: source,
	}
	if err := p.db.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		p.setStatus(ctx, doc.ID, store.StatusFailed, 0, "")
		return nil, ErrEmptyContent
	}
	p.setStatus(ctx, doc.ID, store.StatusChunked, len(chunks), "")
	p.logger.Debug("chunked document", "document_id", doc.ID, "chunks", len(chunks))

	p.setStatus(ctx, doc.ID, store.StatusEmbedding, len(chunks), "")

	summary := &Summary{
		DocumentID:    doc.ID,
		ChunksCreated: len(chunks),
	}

	backend := ""
	for i, chunk := range chunks {
		if i > 0 && p.chunkDelay > 0 {
			select {
			case <-time.After(p.chunkDelay):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			break
		}

		vector, usedBackend, err := p.embedChunk(ctx, backend, chunk)
		if err != nil {
			p.logger.Warn("skipping chunk, embedding failed",
				"document_id", doc.ID, "chunk_index", i, "error", err)
			summary.ChunksSkipped++
			continue
		}
		backend = usedBackend

		rec := vectorstore.Record{
			BotID:      botID,
			DocumentID: doc.ID,
			ChunkIndex: i,
			Text:       chunk,
			Vector:     vector,
		}
		if err := p.vectors.Append(ctx, rec); err != nil {
			p.logger.Warn("skipping chunk, store failed",
				"document_id", doc.ID, "chunk_index", i, "error", err)
			summary.ChunksSkipped++
			continue
		}

		summary.ChunksStored++
	}
	summary.Backend = backend

	if summary.ChunksStored == 0 {
		// Roll back: remove any partial vectors and mark the document failed.
		if err := p.vectors.DeleteDocument(ctx, botID, doc.ID); err != nil {
			p.logger.Warn("rollback failed", "document_id", doc.ID, "error", err)
		}
		p.setStatus(ctx, doc.ID, store.StatusFailed, 0, "")
		return nil, fmt.Errorf("%w: document %s", ErrNoChunksStored, doc.ID)
	}

	p.setStatus(ctx, doc.ID, store.StatusStored, summary.ChunksStored, backend)
	p.setStatus(ctx, doc.ID, store.StatusReady, summary.ChunksStored, backend)

	summary.Duration = time.Since(start)
	p.logger.Info("ingested document",
		"document_id", doc.ID,
		"bot_id", botID,
		"chunks_stored", summary.ChunksStored,
		"chunks_skipped", summary.ChunksSkipped,
		"backend", backend,
		"duration", summary.Duration,
	)

	return summary, nil
}

// embedChunk embeds one chunk. The first chunk picks a backend through the
// fallback chain; later chunks stay pinned to it.
func (p *Pipeline) embedChunk(ctx context.Context, backend, chunk string) ([]float32, string, error) {
	if backend == "" {
		result, err := p.provider.Embed(ctx, []string{chunk})
		if err != nil {
			return nil, "", err
		}
		return result.Vectors[0], result.Backend, nil
	}

	vectors, err := p.provider.EmbedWith(ctx, backend, []string{chunk})
	if err != nil {
		return nil, backend, err
	}
	return vectors[0], backend, nil
}

// setStatus records document progress; failures are logged, not fatal.
func (p *Pipeline) setStatus(ctx context.Context, docID string, status store.DocumentStatus, chunkCount int, backend string) {
	if err := p.db.UpdateDocumentStatus(ctx, docID, status, chunkCount, backend); err != nil {
		p.logger.Warn("failed to update document status",
			"document_id", docID, "status", status, "error", err)
	}
}
