package entity

import (
	"encoding/json"
	"time"
)

// HistoryEntry is a successfully answered query
type HistoryEntry struct {
	ID        string          `json:"id"`
	Query     string          `json:"query"`
	Intent    string          `json:"intent"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}
