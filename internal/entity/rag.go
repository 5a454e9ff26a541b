package entity

// Dataset sources attached to every document's metadata
const (
	SourceItemDefinition  = "item_definition"
	SourceDamageScenarios = "damage_scenarios"
)

// Document types, one per flattened fact
const (
	TypeNode       = "node"
	TypeEdge       = "edge"
	TypeDerivation = "derivation"
	TypeDetail     = "detail"
)

// Metadata keys
const (
	MetaSource     = "source"
	MetaType       = "type"
	MetaModelName  = "model_name"
	MetaModelID    = "model_id"
	MetaAssetID    = "asset_id"
	MetaNodeID     = "node_id"
	MetaNodeLabel  = "node_label"
	MetaEdgeID     = "edge_id"
	MetaSourceNode = "source_node"
	MetaTargetNode = "target_node"
	MetaDsType     = "ds_type"
	MetaDsID       = "ds_id"
	MetaDsIDRef    = "ds_id_ref"
	MetaName       = "name"
)

// Document is one independently embeddable fact: a node, edge, derivation or detail
// serialized as JSON, plus where it came from.
type Document struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

func (d Document) Type() string {
	return d.Metadata[MetaType]
}

// ScoredDocument is a retrieved document with its cosine similarity to the query.
type ScoredDocument struct {
	Document
	Similarity float32 `json:"similarity"`
}

// IngestStats counts the documents produced per dataset
type IngestStats struct {
	ItemDefinition  int `json:"item_definition"`
	DamageScenarios int `json:"damage_scenarios"`
}

func (s IngestStats) Total() int {
	return s.ItemDefinition + s.DamageScenarios
}
