package llm

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMockConnector_SortsDocumentsIntoSections(t *testing.T) {
	prompt := strings.Join([]string{
		"preamble",
		ContextMarker,
		`{"id":"n1","type":"default","data":{"label":"BMS ECU"},"position":{"x":1,"y":2}}`,
		"",
		`{"id":"e1","source":"n1","target":"n2"}`,
		`{"id":"d1","nodeId":"n1","task":"derive"}`,
		`{"nodeId":"n1","Name":"Loss of control"}`,
		"not json",
		"",
		QueryMarker,
		"show everything",
		"",
		"closing instruction",
	}, "\n")

	replies, err := NewMockConnector(zap.NewNop()).Generate(context.Background(), prompt)
	require.NoError(t, err)
	require.Len(t, replies, 1)

	var parsed struct {
		Result struct {
			QueryIntent     string            `json:"query_intent"`
			Assets          []json.RawMessage `json:"assets"`
			Edges           []json.RawMessage `json:"edges"`
			DamageScenarios []json.RawMessage `json:"damage_scenarios"`
			DamageDetails   []json.RawMessage `json:"damage_details"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(replies[0]), &parsed))

	assert.Equal(t, "mock answer for: show everything", parsed.Result.QueryIntent)
	assert.Len(t, parsed.Result.Assets, 1)
	assert.Len(t, parsed.Result.Edges, 1)
	assert.Len(t, parsed.Result.DamageScenarios, 1)
	assert.Len(t, parsed.Result.DamageDetails, 1)
	assert.JSONEq(t, `{"id":"e1","source":"n1","target":"n2"}`, string(parsed.Result.Edges[0]))
}

func TestMockConnector_NoContext(t *testing.T) {
	replies, err := NewMockConnector(zap.NewNop()).Generate(context.Background(), "no markers")
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"result":{"query_intent":"mock answer for: ","assets":[],"edges":[],"damage_scenarios":[],"damage_details":[]}}`,
		replies[0])
}
