package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/botverse-dev/botverse/internal/extract"
	"github.com/botverse-dev/botverse/internal/ingest"
	"github.com/botverse-dev/botverse/internal/store"
)

// maxUploadSize caps uploaded files at 20 MiB.
const maxUploadSize = 20 << 20

func (s *Server) handleListDocuments(c *gin.Context) {
	docs, err := s.db.ListDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, "list documents", err)
		return
	}
	if docs == nil {
		docs = []store.Document{}
	}
	c.JSON(http.StatusOK, docs)
}

// handleUpload accepts a multipart file, extracts its text and runs the
// ingestion pipeline.
func (s *Server) handleUpload(c *gin.Context) {
	ctx := c.Request.Context()
	botID := c.Param("id")

	if _, err := s.db.GetBot(ctx, botID); err != nil {
		s.fail(c, "upload", err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.fail(c, "upload", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(c, "upload", err)
		return
	}

	content, err := extract.Extract(ctx, fileHeader.Filename, data)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
			return
		}
		s.fail(c, "extract upload", err)
		return
	}

	summary, err := s.ingest.Ingest(ctx, botID, fileHeader.Filename, "upload", content.Text)
	if err != nil {
		s.ingestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, summary)
}

type scrapeRequest struct {
	URL string `json:"url" binding:"required"`
}

// handleScrape fetches a web page and ingests its visible text.
func (s *Server) handleScrape(c *gin.Context) {
	ctx := c.Request.Context()
	botID := c.Param("id")

	if _, err := s.db.GetBot(ctx, botID); err != nil {
		s.fail(c, "scrape", err)
		return
	}

	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := s.scraper.Fetch(ctx, req.URL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	summary, err := s.ingest.Ingest(ctx, botID, content.Title, "scrape", content.Text)
	if err != nil {
		s.ingestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, summary)
}

// handleClearContent deletes all of a bot's documents and vectors while
// keeping the bot itself.
func (s *Server) handleClearContent(c *gin.Context) {
	ctx := c.Request.Context()
	botID := c.Param("id")

	if _, err := s.db.GetBot(ctx, botID); err != nil {
		s.fail(c, "clear content", err)
		return
	}

	if err := s.vectors.DeleteBot(ctx, botID); err != nil {
		s.fail(c, "clear content", err)
		return
	}
	if err := s.db.DeleteBotDocuments(ctx, botID); err != nil {
		s.fail(c, "clear content", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ingestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ingest.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ingest.ErrNoChunksStored):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		s.fail(c, "ingest", err)
	}
}
