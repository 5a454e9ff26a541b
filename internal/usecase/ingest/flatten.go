package ingest

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/valyala/fastjson"
)

const unknownModelName = "unknown"

// ItemDocuments flattens an item definition into one document per template node and edge.
// Node and edge keys listed in the strip sets are removed; everything else is kept in
// source order.
func ItemDocuments(data []byte, nodeStrip, edgeStrip []string, seq int) ([]entity.Document, error) {
	var p fastjson.Parser
	root, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrDatasetInvalid, err)
	}
	if root.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("%w: root must be an object, got %s", entity.ErrDatasetInvalid, root.Type())
	}

	modelName, modelID := unknownModelName, ""
	if models := root.GetArray("Models"); len(models) > 0 {
		modelName = scalar(models[0], "name")
		modelID = scalar(models[0], "_id")
	}

	var docs []entity.Document
	for i, asset := range root.GetArray("Assets") {
		assetID := scalar(asset, "_id")

		for j, node := range asset.GetArray("template", "nodes") {
			content, err := marshalContent(node, nodeStrip)
			if err != nil {
				return nil, fmt.Errorf("asset %d node %d: %w", i, j, err)
			}

			meta := map[string]string{
				entity.MetaSource:    entity.SourceItemDefinition,
				entity.MetaType:      entity.TypeNode,
				entity.MetaModelName: modelName,
				entity.MetaModelID:   modelID,
				entity.MetaAssetID:   assetID,
				entity.MetaNodeID:    scalar(node, "id"),
				entity.MetaNodeLabel: scalar(node, "data", "label"),
			}
			docs = append(docs, newDocument(entity.SourceItemDefinition, entity.TypeNode, seq+len(docs), content, meta))
		}

		for j, edge := range asset.GetArray("template", "edges") {
			content, err := marshalContent(edge, edgeStrip)
			if err != nil {
				return nil, fmt.Errorf("asset %d edge %d: %w", i, j, err)
			}

			meta := map[string]string{
				entity.MetaSource:     entity.SourceItemDefinition,
				entity.MetaType:       entity.TypeEdge,
				entity.MetaModelID:    modelID,
				entity.MetaAssetID:    assetID,
				entity.MetaEdgeID:     scalar(edge, "id"),
				entity.MetaSourceNode: scalar(edge, "source"),
				entity.MetaTargetNode: scalar(edge, "target"),
			}
			docs = append(docs, newDocument(entity.SourceItemDefinition, entity.TypeEdge, seq+len(docs), content, meta))
		}
	}

	return docs, nil
}

// DamageDocuments flattens a damage scenario tree into one document per derivation
// and detail, copied verbatim.
func DamageDocuments(data []byte, seq int) ([]entity.Document, error) {
	var p fastjson.Parser
	root, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrDatasetInvalid, err)
	}
	if root.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("%w: root must be an object, got %s", entity.ErrDatasetInvalid, root.Type())
	}

	var docs []entity.Document
	for i, ds := range root.GetArray("Damage_scenarios") {
		dsType := scalar(ds, "type")
		dsID := scalar(ds, "_id")
		dsModel := scalar(ds, "model_id")

		for j, deriv := range ds.GetArray("Derivations") {
			content, err := marshalContent(deriv, nil)
			if err != nil {
				return nil, fmt.Errorf("damage scenario %d derivation %d: %w", i, j, err)
			}

			meta := map[string]string{
				entity.MetaSource:  entity.SourceDamageScenarios,
				entity.MetaType:    entity.TypeDerivation,
				entity.MetaDsType:  dsType,
				entity.MetaDsID:    dsID,
				entity.MetaModelID: dsModel,
				entity.MetaDsIDRef: scalar(deriv, "id"),
				entity.MetaNodeID:  scalar(deriv, "nodeId"),
			}
			docs = append(docs, newDocument(entity.SourceDamageScenarios, entity.TypeDerivation, seq+len(docs), content, meta))
		}

		// null Details is the same as none
		for j, detail := range ds.GetArray("Details") {
			content, err := marshalContent(detail, nil)
			if err != nil {
				return nil, fmt.Errorf("damage scenario %d detail %d: %w", i, j, err)
			}

			name := scalar(detail, "Name")
			if name == "" {
				name = scalar(detail, "name")
			}

			meta := map[string]string{
				entity.MetaSource:  entity.SourceDamageScenarios,
				entity.MetaType:    entity.TypeDetail,
				entity.MetaDsType:  dsType,
				entity.MetaDsID:    dsID,
				entity.MetaModelID: dsModel,
				entity.MetaNodeID:  scalar(detail, "nodeId"),
				entity.MetaName:    name,
			}
			docs = append(docs, newDocument(entity.SourceDamageScenarios, entity.TypeDetail, seq+len(docs), content, meta))
		}
	}

	return docs, nil
}

func newDocument(source, typ string, seq int, content string, meta map[string]string) entity.Document {
	return entity.Document{
		ID:       source + "/" + typ + "/" + strconv.Itoa(seq),
		Content:  content,
		Metadata: meta,
	}
}

// marshalContent serializes an object in source key order without the top-level
// keys in strip. Strings are re-escaped here because fastjson quotes unescaped
// strings with strconv, which is not always valid JSON.
func marshalContent(v *fastjson.Value, strip []string) (string, error) {
	obj, err := v.Object()
	if err != nil {
		return "", fmt.Errorf("%w: expected object, got %s", entity.ErrDatasetInvalid, v.Type())
	}
	return string(appendObject(nil, obj, strip)), nil
}

func appendObject(dst []byte, obj *fastjson.Object, strip []string) []byte {
	dst = append(dst, '{')
	first := true
	obj.Visit(func(key []byte, v *fastjson.Value) {
		if slices.Contains(strip, string(key)) {
			return
		}
		if !first {
			dst = append(dst, ',')
		}
		first = false
		dst = appendString(dst, key)
		dst = append(dst, ':')
		dst = appendValue(dst, v)
	})
	return append(dst, '}')
}

func appendValue(dst []byte, v *fastjson.Value) []byte {
	switch v.Type() {
	case fastjson.TypeObject:
		obj, _ := v.Object()
		return appendObject(dst, obj, nil)
	case fastjson.TypeArray:
		dst = append(dst, '[')
		for i, item := range v.GetArray() {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendValue(dst, item)
		}
		return append(dst, ']')
	case fastjson.TypeString:
		return appendString(dst, v.GetStringBytes())
	default:
		// numbers keep their source text
		return v.MarshalTo(dst)
	}
}

// appendString quotes s as a JSON string. Non-ASCII is written as UTF-8.
func appendString(dst, s []byte) []byte {
	dst = append(dst, '"')
	for _, c := range s {
		switch {
		case c == '"' || c == '\\':
			dst = append(dst, '\\', c)
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c < 0x20:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}

const hexDigits = "0123456789abcdef"

// scalar renders the value at keys as metadata: strings unquoted, null and missing
// as empty, anything else as its JSON text.
func scalar(v *fastjson.Value, keys ...string) string {
	x := v.Get(keys...)
	if x == nil {
		return ""
	}

	switch x.Type() {
	case fastjson.TypeString:
		return string(x.GetStringBytes())
	case fastjson.TypeNull:
		return ""
	default:
		return string(appendValue(nil, x))
	}
}
