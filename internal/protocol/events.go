// internal/protocol/events.go
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/user/recall/pkg/api"
)

// Streamed event types carried by query-response frames.
const (
	EventQueries = "queries"
	EventChunks  = "chunks"
	EventToken   = "token"
	EventDone    = "done"
	EventError   = "error"
)

// StreamEvent is one decoded payload from a streaming query response.
// Which fields are populated depends on Type: Queries for "queries",
// Chunks for "chunks", Content for "token" and "done", Data for "error".
type StreamEvent struct {
	Type    string         `json:"type"`
	Queries []string       `json:"queries,omitempty"`
	Chunks  []api.Evidence `json:"chunks,omitempty"`
	Content string         `json:"content,omitempty"`
	Data    string         `json:"data,omitempty"`
}

// ParseStreamEvent decodes one frame payload into a typed event. Types
// the caller does not recognize are still returned; dropping them is
// dispatch policy, not a decode failure.
func ParseStreamEvent(payload string) (*StreamEvent, error) {
	var ev StreamEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return nil, fmt.Errorf("parsing stream event: %w", err)
	}
	return &ev, nil
}
