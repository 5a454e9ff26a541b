package ingest

import (
	"context"

	"github.com/futig/bms-rag/internal/entity"
)

type DocumentWriter interface {
	Write(ctx context.Context, docs []entity.Document) error
}
