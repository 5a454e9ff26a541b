package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Markers the mock uses to find the documents in a rendered prompt.
const (
	ContextMarker = "CONTEXT DOCUMENTS:"
	QueryMarker   = "USER QUERY:"
)

// MockConnector answers without a model: every context document is copied
// into the section matching its shape.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Generate(ctx context.Context, prompt string) ([]string, error) {
	ctxzap.Info(ctx, "[MOCK] generating answer")

	sections := map[string][]json.RawMessage{
		entity.SectionAssets:          {},
		entity.SectionEdges:           {},
		entity.SectionDamageScenarios: {},
		entity.SectionDamageDetails:   {},
	}

	for _, doc := range contextDocuments(prompt) {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(doc), &fields); err != nil {
			continue
		}
		name := classify(fields)
		sections[name] = append(sections[name], json.RawMessage(doc))
	}

	reply := map[string]any{
		entity.ResultRootKey: map[string]any{
			"query_intent":                "mock answer for: " + mockQuery(prompt),
			entity.SectionAssets:          sections[entity.SectionAssets],
			entity.SectionEdges:           sections[entity.SectionEdges],
			entity.SectionDamageScenarios: sections[entity.SectionDamageScenarios],
			entity.SectionDamageDetails:   sections[entity.SectionDamageDetails],
		},
	}

	out, err := json.Marshal(reply)
	if err != nil {
		return nil, err
	}
	return []string{string(out)}, nil
}

// contextDocuments returns the non-empty lines between the two markers.
func contextDocuments(prompt string) []string {
	_, rest, ok := strings.Cut(prompt, ContextMarker)
	if !ok {
		return nil
	}
	body, _, _ := strings.Cut(rest, QueryMarker)

	var docs []string
	for line := range strings.SplitSeq(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			docs = append(docs, line)
		}
	}
	return docs
}

func mockQuery(prompt string) string {
	_, rest, ok := strings.Cut(prompt, QueryMarker)
	if !ok {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimLeft(rest, "\r\n"), "\n")
	return strings.TrimSpace(line)
}

func classify(fields map[string]json.RawMessage) string {
	has := func(key string) bool {
		_, ok := fields[key]
		return ok
	}

	switch {
	case has("source") && has("target"):
		return entity.SectionEdges
	case has("position") || (has("data") && has("type")):
		return entity.SectionAssets
	case has("Name") || has("name"):
		return entity.SectionDamageDetails
	default:
		return entity.SectionDamageScenarios
	}
}
