package store

import "time"

// DocumentStatus tracks a document through the ingestion saga.
type DocumentStatus string

const (
	StatusReceived  DocumentStatus = "received"
	StatusChunked   DocumentStatus = "chunked"
	StatusEmbedding DocumentStatus = "embedding"
	StatusStored    DocumentStatus = "stored"
	StatusReady     DocumentStatus = "ready"
	StatusFailed    DocumentStatus = "failed"
)

// Bot is a configured assistant with its own knowledge base.
type Bot struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	SystemPrompt string    `json:"system_prompt"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Document is one ingested piece of content belonging to a bot.
type Document struct {
	ID         string         `json:"id"`
	BotID      string         `json:"bot_id"`
	Name       string         `json:"name"`
	Source     string         `json:"source"` // "upload", "scrape" or "github"
	Status     DocumentStatus `json:"status"`
	ChunkCount int            `json:"chunk_count"`
	Backend    string         `json:"backend"` // embedding backend that produced the vectors
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Message is one turn of a bot's chat history.
type Message struct {
	ID        int64     `json:"id"`
	BotID     string    `json:"bot_id"`
	Role      string    `json:"role"` // "user" or "bot"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// EmbedToken grants widget access to a single bot.
type EmbedToken struct {
	Token     string    `json:"token"`
	BotID     string    `json:"bot_id"`
	CreatedAt time.Time `json:"created_at"`
}
