package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "botverse.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBotCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bot := &Bot{ID: "bot-1", Name: "Support", Description: "helpdesk", SystemPrompt: "be brief"}
	if err := s.CreateBot(ctx, bot); err != nil {
		t.Fatalf("CreateBot() error = %v", err)
	}
	if bot.CreatedAt.IsZero() {
		t.Error("CreateBot() did not set CreatedAt")
	}

	got, err := s.GetBot(ctx, "bot-1")
	if err != nil {
		t.Fatalf("GetBot() error = %v", err)
	}
	if got.Name != "Support" || got.SystemPrompt != "be brief" {
		t.Errorf("GetBot() = %+v", got)
	}

	got.Name = "Helpdesk"
	if err := s.UpdateBot(ctx, got); err != nil {
		t.Fatalf("UpdateBot() error = %v", err)
	}
	got, _ = s.GetBot(ctx, "bot-1")
	if got.Name != "Helpdesk" {
		t.Errorf("after update, Name = %q, want Helpdesk", got.Name)
	}

	bots, err := s.ListBots(ctx)
	if err != nil {
		t.Fatalf("ListBots() error = %v", err)
	}
	if len(bots) != 1 {
		t.Fatalf("ListBots() returned %d bots, want 1", len(bots))
	}

	if err := s.DeleteBot(ctx, "bot-1"); err != nil {
		t.Fatalf("DeleteBot() error = %v", err)
	}
	if _, err := s.GetBot(ctx, "bot-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBot() after delete error = %v, want ErrNotFound", err)
	}
}

func TestUpdateBot_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateBot(context.Background(), &Bot{ID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateBot() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateBot(ctx, &Bot{ID: "bot-1", Name: "b"}); err != nil {
		t.Fatalf("CreateBot() error = %v", err)
	}

	doc := &Document{ID: "doc-1", BotID: "bot-1", Name: "manual.pdf", Source: "upload"}
	if err := s.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if doc.Status != StatusReceived {
		t.Errorf("CreateDocument() status = %q, want received", doc.Status)
	}

	if err := s.UpdateDocumentStatus(ctx, "doc-1", StatusReady, 12, "huggingface"); err != nil {
		t.Fatalf("UpdateDocumentStatus() error = %v", err)
	}

	got, err := s.GetDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got.Status != StatusReady || got.ChunkCount != 12 || got.Backend != "huggingface" {
		t.Errorf("GetDocument() = %+v", got)
	}

	docs, err := s.ListDocuments(ctx, "bot-1")
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("ListDocuments() returned %d docs, want 1", len(docs))
	}
}

func TestDeleteBot_CascadesDocuments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateBot(ctx, &Bot{ID: "bot-1", Name: "b"}); err != nil {
		t.Fatalf("CreateBot() error = %v", err)
	}
	if err := s.CreateDocument(ctx, &Document{ID: "doc-1", BotID: "bot-1", Name: "n", Source: "upload"}); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	if err := s.DeleteBot(ctx, "bot-1"); err != nil {
		t.Fatalf("DeleteBot() error = %v", err)
	}
	if _, err := s.GetDocument(ctx, "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDocument() after bot delete error = %v, want ErrNotFound", err)
	}
}

func TestChatHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateBot(ctx, &Bot{ID: "bot-1", Name: "b"}); err != nil {
		t.Fatalf("CreateBot() error = %v", err)
	}

	turns := []struct{ role, content string }{
		{"user", "hello"},
		{"bot", "hi there"},
		{"user", "what are your hours?"},
		{"bot", "9 to 5"},
	}
	for _, turn := range turns {
		if err := s.AppendMessage(ctx, "bot-1", turn.role, turn.content); err != nil {
			t.Fatalf("AppendMessage() error = %v", err)
		}
	}

	msgs, err := s.History(ctx, "bot-1", 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("History() returned %d messages, want 4", len(msgs))
	}
	if msgs[0].Content != "hello" || msgs[3].Content != "9 to 5" {
		t.Errorf("History() not chronological: first=%q last=%q", msgs[0].Content, msgs[3].Content)
	}

	// Limit keeps the newest turns, still chronological.
	msgs, err = s.History(ctx, "bot-1", 2)
	if err != nil {
		t.Fatalf("History(limit=2) error = %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "what are your hours?" {
		t.Errorf("History(limit=2) = %+v", msgs)
	}

	if err := s.ClearHistory(ctx, "bot-1"); err != nil {
		t.Fatalf("ClearHistory() error = %v", err)
	}
	msgs, _ = s.History(ctx, "bot-1", 0)
	if len(msgs) != 0 {
		t.Errorf("History() after clear returned %d messages", len(msgs))
	}
}

func TestEmbedTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateBot(ctx, &Bot{ID: "bot-1", Name: "b"}); err != nil {
		t.Fatalf("CreateBot() error = %v", err)
	}

	if err := s.CreateEmbedToken(ctx, "tok-abc", "bot-1"); err != nil {
		t.Fatalf("CreateEmbedToken() error = %v", err)
	}

	botID, err := s.ResolveEmbedToken(ctx, "tok-abc")
	if err != nil {
		t.Fatalf("ResolveEmbedToken() error = %v", err)
	}
	if botID != "bot-1" {
		t.Errorf("ResolveEmbedToken() = %q, want bot-1", botID)
	}

	if _, err := s.ResolveEmbedToken(ctx, "unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolveEmbedToken(unknown) error = %v, want ErrNotFound", err)
	}

	tokens, err := s.ListEmbedTokens(ctx, "bot-1")
	if err != nil {
		t.Fatalf("ListEmbedTokens() error = %v", err)
	}
	if len(tokens) != 1 || tokens[0].Token != "tok-abc" {
		t.Errorf("ListEmbedTokens() = %+v", tokens)
	}

	if err := s.DeleteEmbedToken(ctx, "tok-abc"); err != nil {
		t.Fatalf("DeleteEmbedToken() error = %v", err)
	}
	if err := s.DeleteEmbedToken(ctx, "tok-abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteEmbedToken() second call error = %v, want ErrNotFound", err)
	}
}
