package ingest

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nodeStrip = []string{"dragging", "resizing", "selected"}
	edgeStrip = []string{"selected"}
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestItemDocuments(t *testing.T) {
	docs, err := ItemDocuments(readTestdata(t, "item_defination.json"), nodeStrip, edgeStrip, 0)
	require.NoError(t, err)
	require.Len(t, docs, 4)

	ecu := docs[0]
	assert.Equal(t, "item_definition/node/0", ecu.ID)
	assert.Equal(t,
		`{"id":"n1","type":"default","data":{"label":"BMS ECU","nodeCount":2,"style":{"color":"#fff"}},`+
			`"position":{"x":120.5,"y":40},"positionAbsolute":{"x":120.5,"y":40},"width":150,"height":40,`+
			`"isAsset":true,"style":{"borderRadius":"6px"}}`,
		ecu.Content)
	assert.Equal(t, map[string]string{
		entity.MetaSource:    entity.SourceItemDefinition,
		entity.MetaType:      entity.TypeNode,
		entity.MetaModelName: "BMS Reference Model",
		entity.MetaModelID:   "m-001",
		entity.MetaAssetID:   "a-001",
		entity.MetaNodeID:    "n1",
		entity.MetaNodeLabel: "BMS ECU",
	}, ecu.Metadata)

	group := docs[1]
	assert.Equal(t, `{"id":"n2","type":"group","data":{"label":"Zellüberwachung"},"position":{"x":0,"y":0},"isAsset":false,"parentId":"n1"}`, group.Content)
	assert.Equal(t, "Zellüberwachung", group.Metadata[entity.MetaNodeLabel])

	edge := docs[2]
	assert.Equal(t, "item_definition/edge/2", edge.ID)
	assert.Equal(t, `{"id":"e1","source":"n1","target":"n2","type":"step","data":{"label":"CAN"}}`, edge.Content)
	assert.Equal(t, map[string]string{
		entity.MetaSource:     entity.SourceItemDefinition,
		entity.MetaType:       entity.TypeEdge,
		entity.MetaModelID:    "m-001",
		entity.MetaAssetID:    "a-001",
		entity.MetaEdgeID:     "e1",
		entity.MetaSourceNode: "n1",
		entity.MetaTargetNode: "n2",
	}, edge.Metadata)

	numeric := docs[3]
	assert.Equal(t, "a-003", numeric.Metadata[entity.MetaAssetID])
	assert.Equal(t, "7", numeric.Metadata[entity.MetaNodeID])
	assert.Equal(t, "", numeric.Metadata[entity.MetaNodeLabel])
}

func TestItemDocuments_NoModels(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing", data: `{"Assets":[{"_id":"a","template":{"nodes":[{"id":"n"}]}}]}`},
		{name: "empty", data: `{"Models":[],"Assets":[{"_id":"a","template":{"nodes":[{"id":"n"}]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := ItemDocuments([]byte(tt.data), nodeStrip, edgeStrip, 0)
			require.NoError(t, err)
			require.Len(t, docs, 1)
			assert.Equal(t, "unknown", docs[0].Metadata[entity.MetaModelName])
			assert.Equal(t, "", docs[0].Metadata[entity.MetaModelID])
		})
	}
}

func TestItemDocuments_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "syntax", data: `{"Assets": [`},
		{name: "root array", data: `[]`},
		{name: "node not object", data: `{"Assets":[{"template":{"nodes":["n1"]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ItemDocuments([]byte(tt.data), nodeStrip, edgeStrip, 0)
			require.ErrorIs(t, err, entity.ErrDatasetInvalid)
		})
	}
}

func TestDamageDocuments(t *testing.T) {
	docs, err := DamageDocuments(readTestdata(t, "Damage_scenarios.json"), 4)
	require.NoError(t, err)
	require.Len(t, docs, 4)

	deriv := docs[0]
	assert.Equal(t, "damage_scenarios/derivation/4", deriv.ID)
	assert.Equal(t, `{"id":"DS001","nodeId":"n1","task":"Loss of Integrity","isChecked":true,"asset":false}`, deriv.Content)
	assert.Equal(t, map[string]string{
		entity.MetaSource:  entity.SourceDamageScenarios,
		entity.MetaType:    entity.TypeDerivation,
		entity.MetaDsType:  "Derived",
		entity.MetaDsID:    "ds-001",
		entity.MetaModelID: "m-001",
		entity.MetaDsIDRef: "DS001",
		entity.MetaNodeID:  "n1",
	}, deriv.Metadata)

	detail := docs[2]
	assert.Equal(t, "damage_scenarios/detail/6", detail.ID)
	assert.Equal(t, `{"nodeId":"n1","Name":"Overcharge","cyberLosses":[{"name":"Integrity","isSelected":true}]}`, detail.Content)
	assert.Equal(t, "Overcharge", detail.Metadata[entity.MetaName])
	assert.Equal(t, entity.TypeDetail, detail.Type())

	assert.Equal(t, "Thermal runaway", docs[3].Metadata[entity.MetaName])
}

func TestDamageDocuments_Invalid(t *testing.T) {
	_, err := DamageDocuments([]byte(`{"Damage_scenarios":[{"Details":[1]}]}`), 0)
	require.ErrorIs(t, err, entity.ErrDatasetInvalid)

	_, err = DamageDocuments([]byte(`not json`), 0)
	require.ErrorIs(t, err, entity.ErrDatasetInvalid)
}

func TestDocumentsContentIsValidJSON(t *testing.T) {
	item := `{"Models":[{"name":"M","_id":"m"}],"Assets":[{"_id":"a","template":{` +
		`"nodes":[{"id":"n1","selected":true,"data":{"label":"Pack \"B\" \u007f\u0002"},"note":"a\\b\nc"}],` +
		`"edges":[{"id":"e\"1\u0002","source":"n1","target":"n1","tags":["x\ty"]}]}}]}`
	damage := `{"Damage_scenarios":[{"type":"Derived","_id":"ds","model_id":"m",` +
		`"Derivations":[{"id":"D\"1","nodeId":"n1"}],` +
		`"Details":[{"nodeId":"n1","Name":"Over\"charge\u0007","k\"ey":"\u00fcber"}]}]}`

	itemDocs, err := ItemDocuments([]byte(item), nodeStrip, edgeStrip, 0)
	require.NoError(t, err)
	damageDocs, err := DamageDocuments([]byte(damage), len(itemDocs))
	require.NoError(t, err)

	docs := append(itemDocs, damageDocs...)
	require.Len(t, docs, 4)
	for _, doc := range docs {
		assert.True(t, json.Valid([]byte(doc.Content)), "%s: %s", doc.ID, doc.Content)
	}

	var node map[string]any
	require.NoError(t, json.Unmarshal([]byte(docs[0].Content), &node))
	assert.Equal(t, "Pack \"B\" \u007f\u0002", node["data"].(map[string]any)["label"])
	assert.Equal(t, "a\\b\nc", node["note"])
	assert.NotContains(t, node, "selected")
	assert.Equal(t, "Pack \"B\" \u007f\u0002", docs[0].Metadata[entity.MetaNodeLabel])

	assert.Equal(t, "e\"1\u0002", docs[1].Metadata[entity.MetaEdgeID])
	assert.Equal(t, `{"id":"D\"1","nodeId":"n1"}`, docs[2].Content)
	assert.Equal(t, `{"nodeId":"n1","Name":"Over\"charge\u0007","k\"ey":"über"}`, docs[3].Content)
	assert.Equal(t, "Over\"charge\a", docs[3].Metadata[entity.MetaName])
}
