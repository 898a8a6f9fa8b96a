package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/botverse-dev/botverse/internal/answer"
	"github.com/botverse-dev/botverse/internal/embedding"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
	TopK    int    `json:"top_k"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := s.answer.Answer(c.Request.Context(), c.Param("id"), req.Message, req.TopK)
	if err != nil {
		s.chatError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) chatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, answer.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, answer.ErrNoContent):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, embedding.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.fail(c, "chat", err)
	}
}
