// internal/types/models.go
package types

import (
	"time"

	"github.com/user/recall/pkg/api"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. Seq is assigned by the transcript
// store on append.
type Message struct {
	ID       MessageID      `json:"id"`
	TurnID   TurnID         `json:"turn_id,omitempty"`
	Seq      int64          `json:"seq"`
	Role     Role           `json:"role"`
	Content  string         `json:"content"`
	At       time.Time      `json:"at"`
	Evidence []api.Evidence `json:"evidence,omitempty"`
	Queries  []string       `json:"queries,omitempty"`
}

// TurnStats summarizes one streamed assistant turn.
type TurnStats struct {
	Tokens          int           `json:"tokens"`
	Fragments       int           `json:"fragments"`
	Duration        time.Duration `json:"duration"`
	TokensPerSecond float64       `json:"tokens_per_second"`
}
