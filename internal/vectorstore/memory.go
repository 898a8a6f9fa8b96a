package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Store used in tests and single-node development
// runs. Records are kept per bot in append order.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]Record
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]Record)}
}

// Append stores the record. The first record fixes the dimension for the
// whole store; later appends with a different dimension fail.
func (m *Memory) Append(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.records {
		if len(existing) == 0 {
			continue
		}
		if len(existing[0].Vector) != len(rec.Vector) {
			return fmt.Errorf("%w: have %d, got %d",
				ErrDimensionMismatch, len(existing[0].Vector), len(rec.Vector))
		}
		break
	}

	m.records[rec.BotID] = append(m.records[rec.BotID], rec)
	return nil
}

// FetchAll returns a copy of the bot's records ordered by document id and
// chunk index.
func (m *Memory) FetchAll(_ context.Context, botID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.records[botID]
	out := make([]Record, len(src))
	copy(out, src)
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].DocumentID != out[b].DocumentID {
			return out[a].DocumentID < out[b].DocumentID
		}
		return out[a].ChunkIndex < out[b].ChunkIndex
	})
	return out, nil
}

// DeleteDocument removes all records of one document.
func (m *Memory) DeleteDocument(_ context.Context, botID, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[botID][:0]
	for _, rec := range m.records[botID] {
		if rec.DocumentID != documentID {
			kept = append(kept, rec)
		}
	}
	m.records[botID] = kept
	return nil
}

// DeleteBot removes every record for the bot.
func (m *Memory) DeleteBot(_ context.Context, botID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, botID)
	return nil
}
