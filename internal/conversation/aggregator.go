// internal/conversation/aggregator.go
package conversation

import (
	"strings"
	"sync"
	"time"

	"github.com/user/recall/internal/types"
	"github.com/user/recall/pkg/api"
)

// Aggregator collects the pieces of one streamed turn: the growing
// answer text, the latest evidence batch, and the latest expanded
// queries. Finishing the turn freezes it; later mutations are dropped.
type Aggregator struct {
	mu        sync.Mutex
	turnID    types.TurnID
	started   time.Time
	finished  time.Time
	answer    strings.Builder
	fragments int
	evidence  []api.Evidence
	queries   []string
	final     string
	frozen    bool
}

// NewAggregator starts an empty turn.
func NewAggregator(turnID types.TurnID) *Aggregator {
	return &Aggregator{
		turnID:  turnID,
		started: time.Now(),
	}
}

// AppendToken adds one answer fragment.
func (a *Aggregator) AppendToken(fragment string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return
	}
	a.answer.WriteString(fragment)
	a.fragments++
}

// SetEvidence replaces the evidence list. Batches are whole snapshots,
// never deltas.
func (a *Aggregator) SetEvidence(chunks []api.Evidence) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return
	}
	a.evidence = chunks
}

// SetQueries replaces the expanded query list.
func (a *Aggregator) SetQueries(queries []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return
	}
	a.queries = queries
}

// Finish freezes the turn. A non-empty final text overrides whatever
// was accumulated from fragments. Finish is idempotent.
func (a *Aggregator) Finish(final string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return
	}
	a.frozen = true
	a.finished = time.Now()
	if final == "" {
		final = a.answer.String()
	}
	a.final = final
}

// Frozen reports whether the turn has finished.
func (a *Aggregator) Frozen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frozen
}

// Text returns the answer so far, or the final text once frozen.
func (a *Aggregator) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return a.final
	}
	return a.answer.String()
}

// Evidence returns the latest evidence batch.
func (a *Aggregator) Evidence() []api.Evidence {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.evidence
}

// Queries returns the latest expanded queries.
func (a *Aggregator) Queries() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.queries
}

// Fragments returns the number of fragments appended so far.
func (a *Aggregator) Fragments() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fragments
}

// Elapsed returns the turn duration, fixed at the freeze point once
// the turn has finished.
func (a *Aggregator) Elapsed() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return a.finished.Sub(a.started)
	}
	return time.Since(a.started)
}

// Message snapshots the turn as an assistant transcript entry.
func (a *Aggregator) Message() *types.Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	content := a.answer.String()
	if a.frozen {
		content = a.final
	}
	return &types.Message{
		ID:       types.NewMessageID(),
		TurnID:   a.turnID,
		Role:     types.RoleAssistant,
		Content:  content,
		At:       time.Now(),
		Evidence: a.evidence,
		Queries:  a.queries,
	}
}
