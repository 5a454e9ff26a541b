package entity

import "encoding/json"

type QueryRequest struct {
	Query string `json:"query"`
}

type QueryResponse struct {
	Query      string          `json:"query"`
	Intent     string          `json:"intent"`
	Sections   map[string]int  `json:"sections"`
	Retrieved  int             `json:"retrieved"`
	Response   json.RawMessage `json:"response"`
	ParseError string          `json:"parse_error,omitempty"`
}

type HistoryResponse struct {
	Entries []*HistoryEntry `json:"entries"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

type StatsResponse struct {
	Documents       int `json:"documents"`
	ItemDefinition  int `json:"item_definition"`
	DamageScenarios int `json:"damage_scenarios"`
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
