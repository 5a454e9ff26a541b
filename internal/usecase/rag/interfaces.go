package rag

import (
	"context"

	"github.com/futig/bms-rag/internal/entity"
)

type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Retriever interface {
	Query(ctx context.Context, embedding []float32, topK int) ([]entity.ScoredDocument, error)
	Count() int
}

type Generator interface {
	Generate(ctx context.Context, prompt string) ([]string, error)
}

type HistoryRepository interface {
	Add(ctx context.Context, entry entity.HistoryEntry) (*entity.HistoryEntry, error)
	List(ctx context.Context, limit int) ([]*entity.HistoryEntry, error)
}
