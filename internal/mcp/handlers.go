package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/botverse-dev/botverse/internal/answer"
	"github.com/botverse-dev/botverse/internal/embedding"
	"github.com/botverse-dev/botverse/internal/similarity"
	"github.com/botverse-dev/botverse/internal/store"
	"github.com/botverse-dev/botverse/internal/vectorstore"
)

// makeAskHandler creates the ask_bot tool handler. It runs the full
// retrieval and generation pipeline for one question.
func makeAskHandler(pipeline *answer.Pipeline) func(
	context.Context, *mcp.CallToolRequest, AskBotInput,
) (*mcp.CallToolResult, AskBotOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskBotInput) (
		*mcp.CallToolResult, AskBotOutput, error,
	) {
		resp, err := pipeline.Answer(ctx, input.BotID, input.Question, input.TopK)
		if err != nil {
			return nil, AskBotOutput{}, fmt.Errorf("ask failed: %w", err)
		}

		sources := make([]SourceResult, len(resp.Sources))
		for i, src := range resp.Sources {
			sources[i] = SourceResult{Text: src.Text, Score: src.Score}
		}

		return nil, AskBotOutput{
			Answer:  resp.Answer,
			Sources: sources,
			Backend: resp.Backend,
		}, nil
	}
}

// makeSearchHandler creates the search_chunks tool handler. Search flow:
// 1. Embed the query through the fallback chain
// 2. Fetch the bot's chunks and rank by cosine similarity
// 3. Filter by minimum score and cap at MaxResults
func makeSearchHandler(provider *embedding.Provider, vectors vectorstore.Store) func(
	context.Context, *mcp.CallToolRequest, SearchChunksInput,
) (*mcp.CallToolResult, SearchChunksOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchChunksInput) (
		*mcp.CallToolResult, SearchChunksOutput, error,
	) {
		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = 5
		}

		result, err := provider.Embed(ctx, []string{input.Query})
		if err != nil {
			return nil, SearchChunksOutput{}, fmt.Errorf("failed to embed query: %w", err)
		}

		records, err := vectors.FetchAll(ctx, input.BotID)
		if err != nil {
			return nil, SearchChunksOutput{}, fmt.Errorf("failed to fetch chunks: %w", err)
		}

		candidates := make([]similarity.Candidate, len(records))
		for i, rec := range records {
			candidates[i] = similarity.Candidate{Text: rec.Text, Vector: rec.Vector}
		}

		matches, err := similarity.TopK(result.Vectors[0], candidates, maxResults)
		if err != nil {
			return nil, SearchChunksOutput{}, fmt.Errorf("search failed: %w", err)
		}

		results := make([]SourceResult, 0, len(matches))
		for _, m := range matches {
			if m.Score < input.MinScore {
				continue
			}
			results = append(results, SourceResult{Text: m.Text, Score: m.Score})
		}

		if len(results) == 0 {
			return nil, SearchChunksOutput{
				Results: []SourceResult{},
				Message: "No matching chunks found. Try broader search terms.",
			}, nil
		}

		return nil, SearchChunksOutput{Results: results}, nil
	}
}

// makeListBotsHandler creates the list_bots tool handler.
func makeListBotsHandler(db *store.Store) func(
	context.Context, *mcp.CallToolRequest, ListBotsInput,
) (*mcp.CallToolResult, ListBotsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListBotsInput) (
		*mcp.CallToolResult, ListBotsOutput, error,
	) {
		bots, err := db.ListBots(ctx)
		if err != nil {
			return nil, ListBotsOutput{}, fmt.Errorf("failed to list bots: %w", err)
		}

		infos := make([]BotInfo, len(bots))
		for i, bot := range bots {
			infos[i] = BotInfo{ID: bot.ID, Name: bot.Name, Description: bot.Description}
		}

		return nil, ListBotsOutput{Bots: infos, Count: len(infos)}, nil
	}
}
