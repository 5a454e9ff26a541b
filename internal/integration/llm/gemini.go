package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/bms-rag/internal/config"
	"github.com/futig/bms-rag/internal/entity"
	pkgRetry "github.com/futig/bms-rag/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const jsonMIMEType = "application/json"

type generateContentAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Connector calls the Gemini generation API
type Connector struct {
	models generateContentAPI
	config config.LLMConfig
	logger *zap.Logger
}

func NewConnector(client *genai.Client, cfg config.LLMConfig, logger *zap.Logger) *Connector {
	return newConnector(client.Models, cfg, logger)
}

func newConnector(models generateContentAPI, cfg config.LLMConfig, logger *zap.Logger) *Connector {
	return &Connector{
		models: models,
		config: cfg,
		logger: logger,
	}
}

// NewClient builds a Gemini API client for both generation and embedding.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, entity.ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return client, nil
}

// Generate returns one reply per candidate
func (c *Connector) Generate(ctx context.Context, prompt string) ([]string, error) {
	ctxzap.Info(ctx, "generating answer via Gemini",
		zap.String("model", c.config.Model),
		zap.Int("prompt_length", len(prompt)),
	)

	genCfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.config.Temperature),
		ResponseMIMEType: jsonMIMEType,
	}

	resp, err := pkgRetry.DoWithData(ctx, c.config.Retry, func() (*genai.GenerateContentResponse, error) {
		resp, err := c.models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), genCfg)
		if err != nil {
			ctxzap.Warn(ctx, "gemini request failed", zap.Error(err))
		}
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	replies := candidateTexts(resp)
	if len(replies) == 0 {
		return nil, entity.ErrEmptyReply
	}

	ctxzap.Info(ctx, "answer generated", zap.Int("reply_length", len(replies[0])))

	return replies, nil
}

func candidateTexts(resp *genai.GenerateContentResponse) []string {
	if resp == nil {
		return nil
	}

	var replies []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}

		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if part != nil && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
		if sb.Len() > 0 {
			replies = append(replies, sb.String())
		}
	}
	return replies
}
