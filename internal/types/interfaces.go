// internal/types/interfaces.go
package types

import (
	"context"
)

type TranscriptStore interface {
	Append(ctx context.Context, sessionID SessionID, msg *Message) error
	Tail(ctx context.Context, sessionID SessionID, limit int) ([]*Message, error)
	Count(ctx context.Context, sessionID SessionID) (int64, error)
}

type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}
