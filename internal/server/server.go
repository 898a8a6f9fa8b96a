// Package server exposes the REST API for managing bots, ingesting
// content and chatting.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/botverse-dev/botverse/internal/answer"
	"github.com/botverse-dev/botverse/internal/ingest"
	"github.com/botverse-dev/botverse/internal/scrape"
	"github.com/botverse-dev/botverse/internal/store"
	"github.com/botverse-dev/botverse/internal/vectorstore"
)

// Server wires the pipelines into HTTP handlers.
type Server struct {
	db      *store.Store
	vectors vectorstore.Store
	ingest  *ingest.Pipeline
	answer  *answer.Pipeline
	scraper *scrape.Scraper
	logger  *slog.Logger
}

// New creates the HTTP server.
func New(
	db *store.Store,
	vectors vectorstore.Store,
	ingestPipeline *ingest.Pipeline,
	answerPipeline *answer.Pipeline,
	scraper *scrape.Scraper,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		db:      db,
		vectors: vectors,
		ingest:  ingestPipeline,
		answer:  answerPipeline,
		scraper: scraper,
		logger:  logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware)

	router.GET("/health", s.handleHealth)

	api := router.Group("/api/v1")
	{
		api.POST("/bots", s.handleCreateBot)
		api.GET("/bots", s.handleListBots)
		api.GET("/bots/:id", s.handleGetBot)
		api.PUT("/bots/:id", s.handleUpdateBot)
		api.DELETE("/bots/:id", s.handleDeleteBot)

		api.GET("/bots/:id/documents", s.handleListDocuments)
		api.POST("/bots/:id/upload", s.handleUpload)
		api.POST("/bots/:id/scrape", s.handleScrape)
		api.DELETE("/bots/:id/content", s.handleClearContent)

		api.POST("/bots/:id/chat", s.handleChat)
		api.GET("/bots/:id/history", s.handleHistory)
		api.DELETE("/bots/:id/history", s.handleClearHistory)

		api.POST("/bots/:id/embed/tokens", s.handleCreateEmbedToken)
		api.GET("/bots/:id/embed/tokens", s.handleListEmbedTokens)
		api.DELETE("/embed/tokens/:token", s.handleDeleteEmbedToken)
	}

	router.POST("/embed/chat", s.handleEmbedChat)
	router.GET("/embed/widget/:token", s.handleWidget)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
