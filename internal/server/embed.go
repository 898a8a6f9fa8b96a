package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/botverse-dev/botverse/internal/store"
)

// newEmbedToken generates a 32-byte random token, hex encoded.
func newEmbedToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *Server) handleCreateEmbedToken(c *gin.Context) {
	ctx := c.Request.Context()
	botID := c.Param("id")

	if _, err := s.db.GetBot(ctx, botID); err != nil {
		s.fail(c, "create embed token", err)
		return
	}

	token, err := newEmbedToken()
	if err != nil {
		s.fail(c, "create embed token", err)
		return
	}
	if err := s.db.CreateEmbedToken(ctx, token, botID); err != nil {
		s.fail(c, "create embed token", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "bot_id": botID})
}

func (s *Server) handleListEmbedTokens(c *gin.Context) {
	tokens, err := s.db.ListEmbedTokens(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, "list embed tokens", err)
		return
	}
	if tokens == nil {
		tokens = []store.EmbedToken{}
	}
	c.JSON(http.StatusOK, tokens)
}

func (s *Server) handleDeleteEmbedToken(c *gin.Context) {
	if err := s.db.DeleteEmbedToken(c.Request.Context(), c.Param("token")); err != nil {
		s.fail(c, "delete embed token", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type embedChatRequest struct {
	Token   string `json:"token" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// handleEmbedChat is the widget-facing chat endpoint; the token stands in
// for authentication and selects the bot.
func (s *Server) handleEmbedChat(c *gin.Context) {
	var req embedChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	botID, err := s.db.ResolveEmbedToken(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		s.fail(c, "embed chat", err)
		return
	}

	resp, err := s.answer.Answer(c.Request.Context(), botID, req.Message, 0)
	if err != nil {
		s.chatError(c, err)
		return
	}

	// Widgets only need the answer text.
	c.JSON(http.StatusOK, gin.H{"answer": resp.Answer})
}

var widgetTemplate = template.Must(template.New("widget").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.BotName}}</title>
<style>
  body { font-family: sans-serif; margin: 0; display: flex; flex-direction: column; height: 100vh; }
  #log { flex: 1; overflow-y: auto; padding: 12px; }
  .turn { margin: 6px 0; }
  .user { text-align: right; color: #333; }
  .bot { text-align: left; color: #06c; }
  form { display: flex; border-top: 1px solid #ddd; }
  input { flex: 1; border: 0; padding: 12px; font-size: 14px; }
  button { border: 0; background: #06c; color: #fff; padding: 0 16px; }
</style>
</head>
<body>
<div id="log"></div>
<form id="form">
  <input id="msg" placeholder="Ask {{.BotName}}..." autocomplete="off">
  <button type="submit">Send</button>
</form>
<script>
const token = {{.Token}};
const log = document.getElementById("log");
function add(cls, text) {
  const div = document.createElement("div");
  div.className = "turn " + cls;
  div.textContent = text;
  log.appendChild(div);
  log.scrollTop = log.scrollHeight;
}
document.getElementById("form").addEventListener("submit", async (e) => {
  e.preventDefault();
  const input = document.getElementById("msg");
  const message = input.value.trim();
  if (!message) return;
  add("user", message);
  input.value = "";
  try {
    const res = await fetch("/embed/chat", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({token: token, message: message}),
    });
    const data = await res.json();
    add("bot", res.ok ? data.answer : (data.error || "something went wrong"));
  } catch (err) {
    add("bot", "connection error");
  }
});
</script>
</body>
</html>
`))

// handleWidget serves a self-contained chat page for embedding in an
// iframe.
func (s *Server) handleWidget(c *gin.Context) {
	ctx := c.Request.Context()
	token := c.Param("token")

	botID, err := s.db.ResolveEmbedToken(ctx, token)
	if err != nil {
		c.String(http.StatusNotFound, "unknown widget")
		return
	}
	bot, err := s.db.GetBot(ctx, botID)
	if err != nil {
		s.fail(c, "widget", err)
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := widgetTemplate.Execute(c.Writer, gin.H{
		"BotName": bot.Name,
		"Token":   token,
	}); err != nil {
		s.logger.Error("widget render failed", "error", err)
	}
}
