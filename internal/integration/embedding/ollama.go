package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/bms-rag/internal/config"
	"github.com/futig/bms-rag/internal/entity"
	pkgRetry "github.com/futig/bms-rag/internal/pkg/retry"
	pkghttp "github.com/futig/bms-rag/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// DefaultOllamaModel is all-MiniLM-L6-v2 as published in the Ollama library
const DefaultOllamaModel = "all-minilm"

const (
	ollamaEmbedEndpoint = "/api/embed"
	userAgent           = "bms-rag"
)

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

// OllamaConnector embeds text with a sentence-embedding model served by Ollama
type OllamaConnector struct {
	model     string
	retry     pkgRetry.RetryConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewOllamaConnector(cfg config.EmbeddingConfig, logger *zap.Logger) *OllamaConnector {
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}

	return &OllamaConnector{
		model:     model,
		retry:     cfg.Retry,
		connector: newOllamaHTTP(cfg.HTTPClientConfig, logger),
		logger:    logger,
	}
}

func newOllamaHTTP(cfg config.HTTPClientConfig, logger *zap.Logger) *pkghttp.Connector {
	return pkghttp.NewConnector(
		&pkghttp.ConnectorConfig{BaseURL: strings.TrimRight(cfg.Url, "/"), Logger: logger},
		pkghttp.WithRequestTimeout(cfg.RequestTimeout),
		pkghttp.WithConnClientTimeout(cfg.ConnTimeout),
		pkghttp.WithClientKeepAlive(cfg.KeepAlive),
		pkghttp.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkghttp.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkghttp.WithUserAgent(userAgent),
		pkghttp.WithAuthToken(cfg.Token),
		pkghttp.WithRequestLogging(),
	)
}

func (c *OllamaConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch sends all texts in one /api/embed call
func (c *OllamaConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := ollamaEmbedRequest{Model: c.model, Input: texts}

	resp, err := pkgRetry.DoWithData(ctx, c.retry, func() (*ollamaEmbedResponse, error) {
		var resp ollamaEmbedResponse
		if err := c.connector.PostJSON(ctx, ollamaEmbedEndpoint, req, &resp); err != nil {
			ctxzap.Warn(ctx, "ollama embed request failed", zap.Error(err))
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d texts, got %d vectors",
			entity.ErrEmbeddingMismatch, len(texts), len(resp.Embeddings))
	}

	ctxzap.Debug(ctx, "texts embedded",
		zap.String("model", c.model),
		zap.Int("count", len(texts)),
	)

	return resp.Embeddings, nil
}

func (c *OllamaConnector) Name() string {
	return "ollama:" + c.model
}
