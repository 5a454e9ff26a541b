package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/futig/bms-rag/internal/config"
	"github.com/futig/bms-rag/internal/entity"
	pkgRetry "github.com/futig/bms-rag/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeGenerateAPI struct {
	calls  int
	failN  int
	err    error
	resp   *genai.GenerateContentResponse
	model  string
	config *genai.GenerateContentConfig
	prompt string
}

func (f *fakeGenerateAPI) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.config = cfg
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.calls <= f.failN {
		return nil, f.err
	}
	return f.resp, nil
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	resp := &genai.GenerateContentResponse{}
	for _, text := range texts {
		resp.Candidates = append(resp.Candidates, &genai.Candidate{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		})
	}
	return resp
}

func llmConfig() config.LLMConfig {
	return config.LLMConfig{
		Model:       "gemini-2.0-flash",
		Temperature: 0,
		Retry:       pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}
}

func TestConnector_Generate(t *testing.T) {
	api := &fakeGenerateAPI{resp: textResponse(`{"result":{}}`, `{"result":{"assets":[]}}`)}
	c := newConnector(api, llmConfig(), zap.NewNop())

	replies, err := c.Generate(context.Background(), "prompt body")
	require.NoError(t, err)

	assert.Equal(t, []string{`{"result":{}}`, `{"result":{"assets":[]}}`}, replies)
	assert.Equal(t, "gemini-2.0-flash", api.model)
	assert.Equal(t, "prompt body", api.prompt)
	assert.Equal(t, jsonMIMEType, api.config.ResponseMIMEType)
	require.NotNil(t, api.config.Temperature)
	assert.Equal(t, float32(0), *api.config.Temperature)
}

func TestConnector_GenerateRetries(t *testing.T) {
	api := &fakeGenerateAPI{failN: 2, err: errors.New("unavailable"), resp: textResponse("ok")}
	c := newConnector(api, llmConfig(), zap.NewNop())

	replies, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, replies)
	assert.Equal(t, 3, api.calls)
}

func TestConnector_GenerateEmptyReply(t *testing.T) {
	api := &fakeGenerateAPI{resp: &genai.GenerateContentResponse{}}
	c := newConnector(api, llmConfig(), zap.NewNop())

	_, err := c.Generate(context.Background(), "p")
	require.ErrorIs(t, err, entity.ErrEmptyReply)
}

func TestConnector_GenerateSkipsThoughtParts(t *testing.T) {
	api := &fakeGenerateAPI{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: `{"result":`},
				{Text: `{}}`},
			}},
		}},
	}}
	c := newConnector(api, llmConfig(), zap.NewNop())

	replies, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, []string{`{"result":{}}`}, replies)
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(context.Background(), "")
	require.ErrorIs(t, err, entity.ErrMissingAPIKey)
}
