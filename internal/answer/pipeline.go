// Package answer implements retrieval-augmented question answering over a
// bot's ingested content.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/botverse-dev/botverse/internal/embedding"
	"github.com/botverse-dev/botverse/internal/generation"
	"github.com/botverse-dev/botverse/internal/similarity"
	"github.com/botverse-dev/botverse/internal/store"
	"github.com/botverse-dev/botverse/internal/vectorstore"
)

// ErrNoContent is returned when a bot has nothing ingested to answer from.
var ErrNoContent = errors.New("bot has no ingested content")

// ErrEmptyQuery is returned for blank questions.
var ErrEmptyQuery = errors.New("empty query")

// ErrNoGenerator is returned when answering is attempted without a
// configured generation backend.
var ErrNoGenerator = errors.New("no generation backend configured, set GEMINI_API_KEY")

// DefaultTopK is how many chunks ground the answer when the caller does
// not ask for a specific number.
const DefaultTopK = 3

// Source is one retrieved chunk that grounded the answer.
type Source struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Response is the generated answer plus the chunks it was grounded on.
type Response struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Backend string   `json:"backend"`
}

// Pipeline answers questions by embedding the query, ranking the bot's
// chunks by cosine similarity and prompting the generator with the best
// matches.
type Pipeline struct {
	provider  *embedding.Provider
	vectors   vectorstore.Store
	generator generation.Generator
	db        *store.Store
	logger    *slog.Logger
}

// NewPipeline creates an answer pipeline.
func NewPipeline(
	provider *embedding.Provider,
	vectors vectorstore.Store,
	generator generation.Generator,
	db *store.Store,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		provider:  provider,
		vectors:   vectors,
		generator: generator,
		db:        db,
		logger:    logger,
	}
}

// Answer runs retrieval and generation for one question. A topK of 0 or
// less uses DefaultTopK. Both sides of the exchange are appended to the
// bot's chat history on a best-effort basis.
func (p *Pipeline) Answer(ctx context.Context, botID, query string, topK int) (*Response, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if p.generator == nil {
		return nil, ErrNoGenerator
	}

	bot, err := p.db.GetBot(ctx, botID)
	if err != nil {
		return nil, fmt.Errorf("load bot: %w", err)
	}

	result, err := p.provider.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	records, err := p.vectors.FetchAll(ctx, botID)
	if err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoContent
	}

	candidates := make([]similarity.Candidate, len(records))
	for i, rec := range records {
		candidates[i] = similarity.Candidate{Text: rec.Text, Vector: rec.Vector}
	}

	matches, err := similarity.TopK(result.Vectors[0], candidates, topK)
	if err != nil {
		return nil, fmt.Errorf("rank chunks: %w", err)
	}

	contextTexts := make([]string, len(matches))
	sources := make([]Source, len(matches))
	for i, m := range matches {
		contextTexts[i] = m.Text
		sources[i] = Source{Text: m.Text, Score: m.Score}
	}

	prompt := fmt.Sprintf("Context:\n%s\n\nUser question: %s\nAnswer:",
		strings.Join(contextTexts, "\n"), query)

	answer, err := p.generator.Generate(ctx, bot.SystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	p.logTurn(ctx, botID, "user", query)
	p.logTurn(ctx, botID, "bot", answer)

	p.logger.Debug("answered question",
		"bot_id", botID,
		"matches", len(matches),
		"backend", result.Backend)

	return &Response{
		Answer:  answer,
		Sources: sources,
		Backend: result.Backend,
	}, nil
}

// logTurn appends a chat turn; history is best-effort and never fails the
// answer.
func (p *Pipeline) logTurn(ctx context.Context, botID, role, content string) {
	if err := p.db.AppendMessage(ctx, botID, role, content); err != nil {
		p.logger.Warn("failed to record chat turn", "bot_id", botID, "role", role, "error", err)
	}
}
