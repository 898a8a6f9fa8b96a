package vectorstore

import (
	"context"
	"errors"
	"testing"
)

func rec(botID, docID string, idx int, vec ...float32) Record {
	return Record{
		BotID:      botID,
		DocumentID: docID,
		ChunkIndex: idx,
		Text:       "chunk",
		Vector:     vec,
	}
}

func TestMemory_AppendAndFetchAll(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	// Appended out of order on purpose.
	for _, r := range []Record{
		rec("bot-1", "doc-b", 1, 0.1, 0.2),
		rec("bot-1", "doc-a", 0, 0.3, 0.4),
		rec("bot-1", "doc-b", 0, 0.5, 0.6),
		rec("bot-2", "doc-x", 0, 0.7, 0.8),
	} {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := store.FetchAll(ctx, "bot-1")
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("FetchAll() returned %d records, want 3", len(got))
	}

	wantOrder := []struct {
		doc string
		idx int
	}{
		{"doc-a", 0},
		{"doc-b", 0},
		{"doc-b", 1},
	}
	for i, want := range wantOrder {
		if got[i].DocumentID != want.doc || got[i].ChunkIndex != want.idx {
			t.Errorf("record %d = (%s, %d), want (%s, %d)",
				i, got[i].DocumentID, got[i].ChunkIndex, want.doc, want.idx)
		}
	}
}

func TestMemory_FetchAllUnknownBot(t *testing.T) {
	store := NewMemory()

	got, err := store.FetchAll(context.Background(), "missing")
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("FetchAll() returned %d records, want 0", len(got))
	}
}

func TestMemory_DimensionMismatch(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := store.Append(ctx, rec("bot-1", "doc-a", 0, 0.1, 0.2, 0.3)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	err := store.Append(ctx, rec("bot-1", "doc-a", 1, 0.1, 0.2))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Append() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestMemory_DeleteDocument(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	for _, r := range []Record{
		rec("bot-1", "doc-a", 0, 0.1),
		rec("bot-1", "doc-a", 1, 0.2),
		rec("bot-1", "doc-b", 0, 0.3),
	} {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	if err := store.DeleteDocument(ctx, "bot-1", "doc-a"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}

	got, err := store.FetchAll(ctx, "bot-1")
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(got) != 1 || got[0].DocumentID != "doc-b" {
		t.Errorf("FetchAll() after delete = %+v, want only doc-b", got)
	}
}

func TestMemory_DeleteBot(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := store.Append(ctx, rec("bot-1", "doc-a", 0, 0.1)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(ctx, rec("bot-2", "doc-b", 0, 0.2)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := store.DeleteBot(ctx, "bot-1"); err != nil {
		t.Fatalf("DeleteBot() error = %v", err)
	}

	got, _ := store.FetchAll(ctx, "bot-1")
	if len(got) != 0 {
		t.Errorf("bot-1 still has %d records after DeleteBot", len(got))
	}
	got, _ = store.FetchAll(ctx, "bot-2")
	if len(got) != 1 {
		t.Errorf("bot-2 has %d records, want 1", len(got))
	}
}
