package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/botverse-dev/botverse/internal/store"
)

type botRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
}

func (s *Server) handleCreateBot(c *gin.Context) {
	var req botRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bot := &store.Bot{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
	}
	if err := s.db.CreateBot(c.Request.Context(), bot); err != nil {
		s.fail(c, "create bot", err)
		return
	}

	c.JSON(http.StatusCreated, bot)
}

func (s *Server) handleListBots(c *gin.Context) {
	bots, err := s.db.ListBots(c.Request.Context())
	if err != nil {
		s.fail(c, "list bots", err)
		return
	}
	if bots == nil {
		bots = []store.Bot{}
	}
	c.JSON(http.StatusOK, bots)
}

func (s *Server) handleGetBot(c *gin.Context) {
	bot, err := s.db.GetBot(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, "get bot", err)
		return
	}
	c.JSON(http.StatusOK, bot)
}

func (s *Server) handleUpdateBot(c *gin.Context) {
	var req botRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bot := &store.Bot{
		ID:           c.Param("id"),
		Name:         req.Name,
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
	}
	if err := s.db.UpdateBot(c.Request.Context(), bot); err != nil {
		s.fail(c, "update bot", err)
		return
	}
	c.JSON(http.StatusOK, bot)
}

// handleDeleteBot removes the bot, its vectors and all relational state.
func (s *Server) handleDeleteBot(c *gin.Context) {
	ctx := c.Request.Context()
	botID := c.Param("id")

	if err := s.db.DeleteBot(ctx, botID); err != nil {
		s.fail(c, "delete bot", err)
		return
	}
	if err := s.vectors.DeleteBot(ctx, botID); err != nil {
		// Relational state is already gone; report but don't undo.
		s.logger.Warn("failed to delete bot vectors", "bot_id", botID, "error", err)
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleHistory(c *gin.Context) {
	msgs, err := s.db.History(c.Request.Context(), c.Param("id"), 0)
	if err != nil {
		s.fail(c, "load history", err)
		return
	}
	if msgs == nil {
		msgs = []store.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

func (s *Server) handleClearHistory(c *gin.Context) {
	if err := s.db.ClearHistory(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, "clear history", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps domain errors to HTTP status codes.
func (s *Server) fail(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, store.ErrNotFound) {
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "op", op, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
