package rag

import (
	"strings"
	"testing"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	docs := []entity.ScoredDocument{
		{Document: entity.Document{Content: `{"id":"n1","data":{"label":"<BMS & ECU>"}}`}},
		{Document: entity.Document{Content: `{"id":"e1","source":"n1","target":"n2"}`}},
	}

	out, err := BuildPrompt(docs, "show the BMS ECU")
	require.NoError(t, err)

	assert.Contains(t, out, "The root key must always be \"result\"")
	assert.Contains(t, out, `{"id":"n1","data":{"label":"<BMS & ECU>"}}`)

	first := strings.Index(out, `{"id":"n1"`)
	second := strings.Index(out, `{"id":"e1"`)
	ctxAt := strings.Index(out, "CONTEXT DOCUMENTS:")
	queryAt := strings.Index(out, "USER QUERY:\nshow the BMS ECU\n")
	assert.True(t, ctxAt < first && first < second && second < queryAt)
	assert.True(t, strings.HasSuffix(out, "Return ONLY valid JSON starting with {\"result\":. No markdown. No explanation.\n"))
}

func TestBuildPrompt_NoDocuments(t *testing.T) {
	out, err := BuildPrompt(nil, "anything")
	require.NoError(t, err)
	assert.Contains(t, out, "CONTEXT DOCUMENTS:\n\n\nUSER QUERY:\nanything")
}

func TestBuildPrompt_EmptyQuestion(t *testing.T) {
	_, err := BuildPrompt(nil, "  \t")
	require.ErrorIs(t, err, entity.ErrEmptyQuery)
}
