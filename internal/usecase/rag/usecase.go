package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/futig/bms-rag/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// RagUsecase runs a query through embedder, retriever, prompt builder and generator
type RagUsecase struct {
	embedder  QueryEmbedder
	retriever Retriever
	generator Generator
	history   HistoryRepository
	topK      int
	logger    *zap.Logger
}

// NewUsecase creates a new pipeline. history may be nil, in which case answers
// are not recorded.
func NewUsecase(
	embedder QueryEmbedder,
	retriever Retriever,
	generator Generator,
	history HistoryRepository,
	topK int,
	logger *zap.Logger,
) *RagUsecase {
	return &RagUsecase{
		embedder:  embedder,
		retriever: retriever,
		generator: generator,
		history:   history,
		topK:      topK,
		logger:    logger,
	}
}

// Ask answers one query. A reply that is not valid JSON is not an error: the
// answer comes back with JSON unset and ParseError describing the failure.
func (uc *RagUsecase) Ask(ctx context.Context, query string) (*entity.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, entity.ErrEmptyQuery
	}

	ctx = logger.WithAction(ctx, "ask")
	ctx = logger.AddFields(ctx, zap.Int("query_length", len(query)))

	embedding, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	docs, err := uc.retriever.Query(ctx, embedding, uc.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve documents: %w", err)
	}

	ctxzap.Info(ctx, "documents retrieved", zap.Int("count", len(docs)), zap.Int("top_k", uc.topK))

	prompt, err := BuildPrompt(docs, query)
	if err != nil {
		return nil, err
	}

	replies, err := uc.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	if len(replies) == 0 {
		return nil, entity.ErrEmptyReply
	}

	answer := &entity.Answer{
		Query:     query,
		Raw:       replies[0],
		Intent:    entity.UnknownIntent,
		Sections:  []entity.SectionCount{},
		Retrieved: len(docs),
	}

	parsed, err := parseReply(answer.Raw)
	if err != nil {
		answer.ParseError = err.Error()
		ctxzap.Warn(ctx, "model reply is not valid JSON",
			zap.Error(err),
			zap.String("raw_reply", answer.Raw),
		)
		return answer, nil
	}

	answer.JSON = parsed.JSON
	answer.Intent = parsed.Intent
	answer.Sections = parsed.Sections

	ctxzap.Info(ctx, "answer parsed",
		zap.String("intent", answer.Intent),
		zap.Any("sections", answer.Sections),
	)

	uc.record(ctx, answer)

	return answer, nil
}

func (uc *RagUsecase) record(ctx context.Context, answer *entity.Answer) {
	if uc.history == nil {
		return
	}

	_, err := uc.history.Add(ctx, entity.HistoryEntry{
		Query:  answer.Query,
		Intent: answer.Intent,
		Result: answer.JSON,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to record history", zap.Error(err))
	}
}

// History returns answered queries oldest first; limit <= 0 returns all of them.
func (uc *RagUsecase) History(ctx context.Context, limit int) ([]*entity.HistoryEntry, error) {
	if uc.history == nil {
		return []*entity.HistoryEntry{}, nil
	}

	entries, err := uc.history.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// DocumentCount is the number of indexed documents.
func (uc *RagUsecase) DocumentCount() int {
	return uc.retriever.Count()
}
