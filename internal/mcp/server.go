package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/botverse-dev/botverse/internal/answer"
	"github.com/botverse-dev/botverse/internal/embedding"
	"github.com/botverse-dev/botverse/internal/store"
	"github.com/botverse-dev/botverse/internal/vectorstore"
)

// Server wraps the MCP server with its dependencies.
type Server struct {
	server *mcp.Server
}

// Config holds server dependencies.
type Config struct {
	Answer   *answer.Pipeline
	Provider *embedding.Provider
	Vectors  vectorstore.Store
	DB       *store.Store
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "botverse-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_bot",
		Description: "Ask a bot a question. The answer is grounded in the bot's ingested documents.",
	}, makeAskHandler(cfg.Answer))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_chunks",
		Description: "Semantically search a bot's knowledge base. Returns raw chunks with similarity scores, without generating an answer.",
	}, makeSearchHandler(cfg.Provider, cfg.Vectors))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_bots",
		Description: "List all configured bots with their ids and descriptions.",
	}, makeListBotsHandler(cfg.DB))

	return &Server{server: server}
}

// Run starts the server on stdio transport, blocking until the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance for transport
// handlers that need to wrap it.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
