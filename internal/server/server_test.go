package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botverse-dev/botverse/internal/answer"
	"github.com/botverse-dev/botverse/internal/chunker"
	"github.com/botverse-dev/botverse/internal/embedding"
	"github.com/botverse-dev/botverse/internal/ingest"
	"github.com/botverse-dev/botverse/internal/scrape"
	"github.com/botverse-dev/botverse/internal/store"
	"github.com/botverse-dev/botverse/internal/vectorstore"
)

type stubBackend struct{}

func (stubBackend) Name() string   { return "stub" }
func (stubBackend) Dimension() int { return 4 }
func (stubBackend) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0, 0}
	}
	return out, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return "stub answer", nil
}

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.DiscardHandler)
	provider, err := embedding.NewProvider(logger, stubBackend{})
	require.NoError(t, err)

	ch, err := chunker.New(500, 50)
	require.NoError(t, err)

	vectors := vectorstore.NewMemory()
	ingestPipeline := ingest.NewPipeline(ch, provider, vectors, db, logger).WithChunkDelay(0)
	answerPipeline := answer.NewPipeline(provider, vectors, stubGenerator{}, db, logger)

	return New(db, vectors, ingestPipeline, answerPipeline, scrape.New(logger), logger), db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createBot(t *testing.T, router *gin.Engine) store.Bot {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/bots", gin.H{
		"name":          "support",
		"system_prompt": "be nice",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var bot store.Bot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bot))
	return bot
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBotCRUD(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	bot := createBot(t, router)
	assert.NotEmpty(t, bot.ID)
	assert.Equal(t, "support", bot.Name)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/bots/"+bot.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/bots/"+bot.ID, gin.H{"name": "helpdesk"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/bots/"+bot.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/bots/"+bot.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBot_MissingName(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/bots", gin.H{"description": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func uploadFile(t *testing.T, router *gin.Engine, botID, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bots/"+botID+"/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUpload_IngestsDocument(t *testing.T) {
	srv, db := newTestServer(t)
	router := srv.Router()
	bot := createBot(t, router)

	rec := uploadFile(t, router, bot.ID, "notes.txt", "the product ships on tuesdays")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var summary ingest.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.ChunksStored)
	assert.Equal(t, "stub", summary.Backend)

	docs, err := db.ListDocuments(context.Background(), bot.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, store.StatusReady, docs[0].Status)
}

func TestUpload_UnsupportedFormat(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()
	bot := createBot(t, router)

	rec := uploadFile(t, router, bot.ID, "image.png", "binary junk")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUpload_UnknownBot(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := uploadFile(t, srv.Router(), "missing", "notes.txt", "text")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScrape_IngestsPage(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()
	bot := createBot(t, router)

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><head><title>Docs</title></head><body><p>returns accepted within 30 days</p></body></html>"))
	}))
	defer page.Close()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/bots/"+bot.ID+"/scrape", gin.H{"url": page.URL})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var summary ingest.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.ChunksStored)
}

func TestChat(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()
	bot := createBot(t, router)

	// Chatting before any ingestion is rejected.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/bots/"+bot.ID+"/chat", gin.H{"message": "hi"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = uploadFile(t, router, bot.ID, "notes.txt", "we are open 9 to 5")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/bots/"+bot.ID+"/chat", gin.H{"message": "when are you open?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp answer.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "stub answer", resp.Answer)
	require.Len(t, resp.Sources, 1)

	// Both turns recorded.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/bots/"+bot.ID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []store.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "bot", msgs[1].Role)
}

func TestClearContent(t *testing.T) {
	srv, db := newTestServer(t)
	router := srv.Router()
	bot := createBot(t, router)

	rec := uploadFile(t, router, bot.ID, "notes.txt", "something to forget")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/bots/"+bot.ID+"/content", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	docs, err := db.ListDocuments(context.Background(), bot.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/bots/"+bot.ID+"/chat", gin.H{"message": "hi"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEmbedTokenFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()
	bot := createBot(t, router)

	rec := uploadFile(t, router, bot.ID, "notes.txt", "widget knowledge")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/bots/"+bot.ID+"/embed/tokens", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Len(t, created.Token, 64) // 32 random bytes, hex encoded

	rec = doJSON(t, router, http.MethodPost, "/embed/chat", gin.H{
		"token":   created.Token,
		"message": "hello widget",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "stub answer")

	// Widget page renders for a valid token.
	rec = doJSON(t, router, http.MethodGet, "/embed/widget/"+created.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "support")

	// Revoked tokens stop working.
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/embed/tokens/"+created.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/embed/chat", gin.H{
		"token":   created.Token,
		"message": "still there?",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
