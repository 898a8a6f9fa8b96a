// Package store persists bots, documents, chat history and embed tokens
// in SQLite. Chunk vectors live in the vector store, not here.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS bots (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	system_prompt TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	bot_id      TEXT NOT NULL REFERENCES bots(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	source      TEXT NOT NULL,
	status      TEXT NOT NULL,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	backend     TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_bot_id ON documents(bot_id);

CREATE TABLE IF NOT EXISTS chat_history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	bot_id     TEXT NOT NULL REFERENCES bots(id) ON DELETE CASCADE,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_history_bot_id ON chat_history(bot_id);

CREATE TABLE IF NOT EXISTS embed_tokens (
	token      TEXT PRIMARY KEY,
	bot_id     TEXT NOT NULL REFERENCES bots(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_embed_tokens_bot_id ON embed_tokens(bot_id);
`

// Store wraps the SQLite database holding all relational state.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at dbPath in WAL mode and applies
// the schema. The parent directory is created if missing.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ==================== Bots ====================

// CreateBot inserts a new bot. Timestamps are set here.
func (s *Store) CreateBot(ctx context.Context, bot *Bot) error {
	now := time.Now().UTC()
	bot.CreatedAt = now
	bot.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bots (id, name, description, system_prompt, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, bot.ID, bot.Name, bot.Description, bot.SystemPrompt, bot.CreatedAt, bot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating bot: %w", err)
	}
	return nil
}

// GetBot retrieves a bot by ID.
func (s *Store) GetBot(ctx context.Context, id string) (*Bot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, system_prompt, created_at, updated_at
		FROM bots WHERE id = ?
	`, id)

	var bot Bot
	err := row.Scan(&bot.ID, &bot.Name, &bot.Description, &bot.SystemPrompt,
		&bot.CreatedAt, &bot.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning bot: %w", err)
	}
	return &bot, nil
}

// ListBots returns all bots ordered by creation time.
func (s *Store) ListBots(ctx context.Context) ([]Bot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, system_prompt, created_at, updated_at
		FROM bots ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying bots: %w", err)
	}
	defer rows.Close()

	var bots []Bot
	for rows.Next() {
		var bot Bot
		if err := rows.Scan(&bot.ID, &bot.Name, &bot.Description, &bot.SystemPrompt,
			&bot.CreatedAt, &bot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning bot: %w", err)
		}
		bots = append(bots, bot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bots: %w", err)
	}
	return bots, nil
}

// UpdateBot updates a bot's name, description and system prompt.
func (s *Store) UpdateBot(ctx context.Context, bot *Bot) error {
	bot.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE bots SET name = ?, description = ?, system_prompt = ?, updated_at = ?
		WHERE id = ?
	`, bot.Name, bot.Description, bot.SystemPrompt, bot.UpdatedAt, bot.ID)
	if err != nil {
		return fmt.Errorf("updating bot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBot removes a bot. Documents, history and tokens cascade.
func (s *Store) DeleteBot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting bot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== Documents ====================

// CreateDocument inserts a new document record.
func (s *Store) CreateDocument(ctx context.Context, doc *Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Status == "" {
		doc.Status = StatusReceived
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, bot_id, name, source, status, chunk_count, backend, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.BotID, doc.Name, doc.Source, doc.Status, doc.ChunkCount,
		doc.Backend, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	return nil
}

// UpdateDocumentStatus advances a document through the ingestion states.
func (s *Store) UpdateDocumentStatus(ctx context.Context, id string, status DocumentStatus, chunkCount int, backend string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET status = ?, chunk_count = ?, backend = ?, updated_at = ?
		WHERE id = ?
	`, status, chunkCount, backend, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, bot_id, name, source, status, chunk_count, backend, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	var doc Document
	err := row.Scan(&doc.ID, &doc.BotID, &doc.Name, &doc.Source, &doc.Status,
		&doc.ChunkCount, &doc.Backend, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns a bot's documents ordered by creation time.
func (s *Store) ListDocuments(ctx context.Context, botID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bot_id, name, source, status, chunk_count, backend, created_at, updated_at
		FROM documents WHERE bot_id = ? ORDER BY created_at
	`, botID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.BotID, &doc.Name, &doc.Source, &doc.Status,
			&doc.ChunkCount, &doc.Backend, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document record.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// DeleteBotDocuments removes all document records of a bot.
func (s *Store) DeleteBotDocuments(ctx context.Context, botID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE bot_id = ?", botID)
	if err != nil {
		return fmt.Errorf("deleting bot documents: %w", err)
	}
	return nil
}

// ==================== Chat history ====================

// AppendMessage records one chat turn.
func (s *Store) AppendMessage(ctx context.Context, botID, role, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_history (bot_id, role, content, created_at)
		VALUES (?, ?, ?, ?)
	`, botID, role, content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// History returns the most recent messages of a bot in chronological order.
// A limit of 0 or less returns everything.
func (s *Store) History(ctx context.Context, botID string, limit int) ([]Message, error) {
	query := `
		SELECT id, bot_id, role, content, created_at
		FROM chat_history WHERE bot_id = ? ORDER BY id DESC
	`
	args := []any{botID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.BotID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}

	// Query returned newest first; flip to chronological.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// ClearHistory deletes all chat turns of a bot.
func (s *Store) ClearHistory(ctx context.Context, botID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM chat_history WHERE bot_id = ?", botID)
	if err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// ==================== Embed tokens ====================

// CreateEmbedToken stores a widget access token for a bot.
func (s *Store) CreateEmbedToken(ctx context.Context, token, botID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embed_tokens (token, bot_id, created_at)
		VALUES (?, ?, ?)
	`, token, botID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("creating embed token: %w", err)
	}
	return nil
}

// ResolveEmbedToken returns the bot ID a token grants access to.
func (s *Store) ResolveEmbedToken(ctx context.Context, token string) (string, error) {
	var botID string
	err := s.db.QueryRowContext(ctx,
		"SELECT bot_id FROM embed_tokens WHERE token = ?", token).Scan(&botID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolving embed token: %w", err)
	}
	return botID, nil
}

// ListEmbedTokens returns all tokens issued for a bot.
func (s *Store) ListEmbedTokens(ctx context.Context, botID string) ([]EmbedToken, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, bot_id, created_at
		FROM embed_tokens WHERE bot_id = ? ORDER BY created_at
	`, botID)
	if err != nil {
		return nil, fmt.Errorf("querying embed tokens: %w", err)
	}
	defer rows.Close()

	var tokens []EmbedToken
	for rows.Next() {
		var t EmbedToken
		if err := rows.Scan(&t.Token, &t.BotID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning embed token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embed tokens: %w", err)
	}
	return tokens, nil
}

// DeleteEmbedToken revokes a token.
func (s *Store) DeleteEmbedToken(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM embed_tokens WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("deleting embed token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
