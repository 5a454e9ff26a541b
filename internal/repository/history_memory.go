package repository

import (
	"context"
	"sync"
	"time"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/google/uuid"
)

// HistoryMemory keeps the history for the lifetime of the process
type HistoryMemory struct {
	mu      sync.RWMutex
	entries []*entity.HistoryEntry
	now     func() time.Time
}

func NewHistoryMemory() *HistoryMemory {
	return &HistoryMemory{now: time.Now}
}

func (r *HistoryMemory) Add(_ context.Context, entry entity.HistoryEntry) (*entity.HistoryEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, &entry)
	return &entry, nil
}

func (r *HistoryMemory) List(_ context.Context, limit int) ([]*entity.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if limit > 0 && limit < len(r.entries) {
		start = len(r.entries) - limit
	}

	out := make([]*entity.HistoryEntry, len(r.entries)-start)
	copy(out, r.entries[start:])
	return out, nil
}
