// internal/notify/stdout.go
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/user/recall/internal/types"
)

// Stdout prints notifications one line at a time.
type Stdout struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdout creates a printer. A nil writer means os.Stdout.
func NewStdout(w io.Writer) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{w: w}
}

func (s *Stdout) Notify(_ context.Context, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "[%s] %s: %s\n", time.Now().Format(time.RFC3339), subject, body)
	return err
}

// StdoutBuilder returns a Builder for the "stdout" target.
func StdoutBuilder() Builder {
	return func(string) (types.Notifier, error) {
		return NewStdout(nil), nil
	}
}
