package rag

import (
	"fmt"
	"strings"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/valyala/fastjson"
)

type parsedReply struct {
	JSON     []byte
	Intent   string
	Sections []entity.SectionCount
}

// parseReply makes a single parse attempt on a model reply. A surrounding markdown
// code fence is tolerated.
func parseReply(raw string) (*parsedReply, error) {
	text := stripCodeFence(strings.TrimSpace(raw))

	var p fastjson.Parser
	root, err := p.Parse(text)
	if err != nil {
		return nil, err
	}
	if root.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("reply is a JSON %s, not an object", root.Type())
	}

	reply := &parsedReply{
		JSON:     []byte(text),
		Intent:   entity.UnknownIntent,
		Sections: []entity.SectionCount{},
	}

	inner := root.Get(entity.ResultRootKey)
	if inner == nil || inner.Type() != fastjson.TypeObject {
		return reply, nil
	}

	if intent := inner.Get("query_intent"); intent != nil {
		switch intent.Type() {
		case fastjson.TypeString:
			reply.Intent = string(intent.GetStringBytes())
		case fastjson.TypeNull:
		default:
			reply.Intent = intent.String()
		}
	}

	for _, name := range entity.Sections {
		section := inner.Get(name)
		if section == nil {
			continue
		}

		switch section.Type() {
		case fastjson.TypeArray:
			items, _ := section.Array()
			reply.Sections = append(reply.Sections, entity.SectionCount{Name: name, Count: len(items)})
		case fastjson.TypeObject:
			obj, _ := section.Object()
			reply.Sections = append(reply.Sections, entity.SectionCount{Name: name, Count: obj.Len()})
		}
	}

	return reply, nil
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	_, body, found := strings.Cut(text, "\n")
	if !found {
		return text
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}
