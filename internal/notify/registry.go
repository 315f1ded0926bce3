// internal/notify/registry.go
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/user/recall/internal/types"
)

// Builder turns a target like "telegram:123456" into a Notifier.
type Builder func(target string) (types.Notifier, error)

// Registry resolves notification targets to notifiers based on the
// target's scheme prefix (e.g. "telegram:", "stdout").
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
	}
}

// Register adds a builder for targets with the given scheme.
func (r *Registry) Register(scheme string, builder Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[scheme] = builder
}

// Build resolves one target. The scheme is everything before the first
// colon, or the whole target when there is none.
func (r *Registry) Build(target string) (types.Notifier, error) {
	scheme, _, _ := strings.Cut(target, ":")

	r.mu.RLock()
	builder, ok := r.builders[scheme]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no notifier for target: %s", target)
	}
	return builder(target)
}

// BuildAll resolves every target into one fanout notifier. An unknown
// target fails the whole resolution.
func (r *Registry) BuildAll(targets []string) (types.Notifier, error) {
	fanout := make(Fanout, 0, len(targets))
	for _, target := range targets {
		n, err := r.Build(target)
		if err != nil {
			return nil, err
		}
		fanout = append(fanout, n)
	}
	return fanout, nil
}

// Fanout notifies every member, collecting failures instead of stopping
// at the first.
type Fanout []types.Notifier

func (f Fanout) Notify(ctx context.Context, subject, body string) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
