package query

import (
	"encoding/json"

	"github.com/futig/bms-rag/internal/entity"
)

var emptyObject = json.RawMessage(`{}`)

// toQueryResponse converts Answer entity to QueryResponse DTO
func toQueryResponse(a *entity.Answer) *entity.QueryResponse {
	sections := make(map[string]int, len(a.Sections))
	for _, s := range a.Sections {
		sections[s.Name] = s.Count
	}

	resp := &entity.QueryResponse{
		Query:      a.Query,
		Intent:     a.Intent,
		Sections:   sections,
		Retrieved:  a.Retrieved,
		Response:   emptyObject,
		ParseError: a.ParseError,
	}
	if a.Parsed() {
		resp.Response = json.RawMessage(a.JSON)
	}
	return resp
}
