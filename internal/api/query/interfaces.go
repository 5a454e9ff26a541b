package query

import (
	"context"

	"github.com/futig/bms-rag/internal/entity"
)

type RagUsecase interface {
	Ask(ctx context.Context, query string) (*entity.Answer, error)
	History(ctx context.Context, limit int) ([]*entity.HistoryEntry, error)
	DocumentCount() int
}
