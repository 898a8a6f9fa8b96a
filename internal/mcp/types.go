// Package mcp exposes bots to MCP clients as tools.
package mcp

// AskBotInput defines the input parameters for the ask_bot tool.
type AskBotInput struct {
	// BotID selects which bot answers.
	BotID string `json:"bot_id" jsonschema:"required,description=The id of the bot to ask"`
	// Question is the user's question.
	Question string `json:"question" jsonschema:"required,description=The question to answer from the bot's knowledge base"`
	// TopK is how many chunks ground the answer.
	TopK int `json:"top_k,omitempty" jsonschema:"minimum=1,maximum=20,default=3,description=Number of chunks to ground the answer on"`
}

// AskBotOutput contains the generated answer and its grounding.
type AskBotOutput struct {
	Answer string `json:"answer"`
	// Sources are the retrieved chunks the answer was grounded on.
	Sources []SourceResult `json:"sources"`
	// Backend is the embedding backend that served the query.
	Backend string `json:"backend"`
}

// SourceResult is one chunk that grounded an answer.
type SourceResult struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// SearchChunksInput defines the input parameters for the search_chunks tool.
type SearchChunksInput struct {
	// BotID selects whose knowledge base to search.
	BotID string `json:"bot_id" jsonschema:"required,description=The id of the bot whose knowledge base to search"`
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=The semantic search query"`
	// MaxResults is the maximum number of chunks to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=50,default=5,description=Maximum number of chunks to return"`
	// MinScore is the minimum cosine similarity (0-1).
	MinScore float64 `json:"min_score,omitempty" jsonschema:"minimum=0,maximum=1,default=0,description=Minimum similarity score threshold"`
}

// SearchChunksOutput contains the raw retrieval results.
type SearchChunksOutput struct {
	Results []SourceResult `json:"results"`
	// Message provides context when nothing matched.
	Message string `json:"message,omitempty"`
}

// ListBotsInput defines the input for the list_bots tool. No parameters.
type ListBotsInput struct{}

// BotInfo summarises one bot for tool output.
type BotInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListBotsOutput contains all configured bots.
type ListBotsOutput struct {
	Bots  []BotInfo `json:"bots"`
	Count int       `json:"count"`
}
