package embedding

import (
	"context"
	"fmt"

	"github.com/futig/bms-rag/internal/config"
	"github.com/futig/bms-rag/internal/entity"
	pkgRetry "github.com/futig/bms-rag/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultGenAIModel = "gemini-embedding-001"

	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"

	// batchEmbedContents accepts at most 100 contents per call
	maxGenAIBatch = 100
)

type embedContentAPI interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GenAIConnector embeds text with the Gemini embedding API. Documents and queries
// use different task types, so one connector is built per side.
type GenAIConnector struct {
	models   embedContentAPI
	model    string
	taskType string
	retry    pkgRetry.RetryConfig
	logger   *zap.Logger
}

func NewGenAIConnector(client *genai.Client, cfg config.EmbeddingConfig, taskType string, logger *zap.Logger) *GenAIConnector {
	return newGenAIConnector(client.Models, cfg, taskType, logger)
}

func newGenAIConnector(models embedContentAPI, cfg config.EmbeddingConfig, taskType string, logger *zap.Logger) *GenAIConnector {
	model := cfg.Model
	if model == "" {
		model = DefaultGenAIModel
	}

	return &GenAIConnector{
		models:   models,
		model:    model,
		taskType: taskType,
		retry:    cfg.Retry,
		logger:   logger,
	}
}

func (c *GenAIConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *GenAIConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxGenAIBatch {
		end := min(start+maxGenAIBatch, len(texts))

		batch, err := c.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func (c *GenAIConnector) embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	resp, err := pkgRetry.DoWithData(ctx, c.retry, func() (*genai.EmbedContentResponse, error) {
		resp, err := c.models.EmbedContent(ctx, c.model, contents, &genai.EmbedContentConfig{
			TaskType: c.taskType,
		})
		if err != nil {
			ctxzap.Warn(ctx, "genai embed request failed", zap.Error(err))
		}
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("genai embed: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d texts, got %d vectors",
			entity.ErrEmbeddingMismatch, len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

func (c *GenAIConnector) Name() string {
	return fmt.Sprintf("genai:%s:%s", c.model, c.taskType)
}
