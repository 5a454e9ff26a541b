package repository

import (
	"context"

	"github.com/futig/bms-rag/internal/entity"
)

// HistoryRepository defines the interface for answered-query persistence
type HistoryRepository interface {
	Add(ctx context.Context, entry entity.HistoryEntry) (*entity.HistoryEntry, error)
	// List returns entries oldest first; limit <= 0 means all, otherwise the latest limit.
	List(ctx context.Context, limit int) ([]*entity.HistoryEntry, error)
}

var (
	_ HistoryRepository = &HistoryMemory{}
	_ HistoryRepository = &HistoryPostgres{}
)
