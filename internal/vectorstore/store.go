// Package vectorstore persists chunk vectors per bot and hands them back in
// bulk for exact similarity search.
package vectorstore

import (
	"context"
	"errors"
)

var (
	// ErrUnreachable reports that the backing vector database cannot be reached.
	ErrUnreachable = errors.New("vectorstore: server unreachable")

	// ErrDimensionMismatch reports a vector whose dimension disagrees with the
	// collection the store was initialized with.
	ErrDimensionMismatch = errors.New("vectorstore: vector dimension mismatch")
)

// Record is one stored chunk vector scoped to a bot and its source document.
type Record struct {
	BotID      string
	DocumentID string
	ChunkIndex int
	Text       string
	Vector     []float32
}

// Store is the durable mapping from (bot, chunk) to (text, vector).
// Implementations must return FetchAll results ordered by document id and
// chunk index so downstream tie-breaking stays reproducible.
type Store interface {
	// Append stores one chunk vector. Writes are append-only per
	// (bot, document); chunk indexes are scoped to the document.
	Append(ctx context.Context, rec Record) error

	// FetchAll returns every stored record for the bot.
	FetchAll(ctx context.Context, botID string) ([]Record, error)

	// DeleteDocument removes all records of one document. This is the
	// compensation path for ingestions that fail after partial writes.
	DeleteDocument(ctx context.Context, botID, documentID string) error

	// DeleteBot removes all records for the bot.
	DeleteBot(ctx context.Context, botID string) error
}
