// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

type SessionID string
type TurnID string
type MessageID string

func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// Validate reports whether the identifier parses as a canonical UUID.
// A persisted identifier that fails validation is treated as absent.
func (id SessionID) Validate() error {
	_, err := uuid.Parse(string(id))
	return err
}

func NewTurnID() TurnID {
	return TurnID(uuid.New().String())
}

func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}
