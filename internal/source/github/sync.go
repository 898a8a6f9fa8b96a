package github

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/botverse-dev/botverse/internal/ingest"
)

// FailedDoc records one file that could not be ingested during a sync.
type FailedDoc struct {
	Path   string
	Reason string
}

// SyncResult contains statistics about one repository sync.
type SyncResult struct {
	CommitSHA   string
	TotalDocs   int
	Ingested    int
	TotalChunks int
	Failed      []FailedDoc
	Duration    time.Duration
}

// Sync ingests every documentation file of the source into the bot's
// knowledge base. Files that fail are skipped and reported, not fatal.
func Sync(ctx context.Context, src *Source, pipeline *ingest.Pipeline, botID string, logger *slog.Logger) (*SyncResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	result := &SyncResult{}

	commitSHA, err := src.LatestCommitSHA(ctx)
	if err != nil {
		return nil, fmt.Errorf("get commit SHA: %w", err)
	}
	result.CommitSHA = commitSHA
	logger.Info("starting repository sync", "bot_id", botID, "commit", commitSHA)

	paths, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list docs: %w", err)
	}
	result.TotalDocs = len(paths)
	logger.Info("found documents", "count", len(paths))

	for _, path := range paths {
		doc, err := src.Fetch(ctx, path)
		if err != nil {
			logger.Warn("failed to fetch document", "path", path, "error", err)
			result.Failed = append(result.Failed, FailedDoc{Path: path, Reason: err.Error()})
			continue
		}

		summary, err := pipeline.Ingest(ctx, botID, doc.Path, "github", doc.Content)
		if err != nil {
			logger.Warn("failed to ingest document", "path", path, "error", err)
			result.Failed = append(result.Failed, FailedDoc{Path: path, Reason: err.Error()})
			continue
		}

		result.Ingested++
		result.TotalChunks += summary.ChunksStored
	}

	result.Duration = time.Since(start)
	logger.Info("repository sync complete",
		"ingested", result.Ingested,
		"failed", len(result.Failed),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)

	return result, nil
}
