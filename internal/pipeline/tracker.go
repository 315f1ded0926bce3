// internal/pipeline/tracker.go
package pipeline

import (
	"sync"
)

// Metrics holds the counters reported during one ingestion epoch.
type Metrics struct {
	Elements int `json:"elements"`
	Chunks   int `json:"chunks"`
	Images   int `json:"images"`
	Tables   int `json:"tables"`
}

// Tracker is the single authoritative progress model. It merges events
// from the push channel and the upload acknowledgement path under a
// forward-only stage guard; the stage regresses only through Reset,
// which opens a new epoch and invalidates everything registered under
// the old one. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	epoch   uint64
	stage   Stage
	metrics Metrics
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Epoch returns the current epoch. Event sources must capture it when
// they register and apply every event under that captured value.
func (t *Tracker) Epoch() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.epoch
}

// Stage returns the currently observed stage.
func (t *Tracker) Stage() Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stage
}

// Metrics returns a copy of the current counters.
func (t *Tracker) Metrics() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.metrics
}

// Snapshot returns the stage and counters read under one lock.
func (t *Tracker) Snapshot() (Stage, Metrics) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stage, t.metrics
}

// Apply merges one event registered under the given epoch and reports
// whether it was accepted. Stale-epoch events are dropped regardless of
// content; stage transitions and count updates naming a stage behind
// the current one are dropped.
func (t *Tracker) Apply(epoch uint64, ev Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if epoch != t.epoch {
		return false
	}

	switch ev.Kind {
	case KindStageTransition:
		if ev.Stage.Before(t.stage) {
			return false
		}
		t.stage = ev.Stage
		return true

	case KindCountUpdate:
		if ev.Stage.Before(t.stage) {
			return false
		}
		switch ev.Stage {
		case StagePartitioning:
			t.metrics.Elements = ev.Count
		case StageChunking:
			t.metrics.Chunks = ev.Count
		default:
			return false
		}
		return true

	case KindCompletionMetrics:
		t.metrics.Images = ev.Images
		t.metrics.Tables = ev.Tables
		return true
	}

	return false
}

// Reset forces the stage back to Idle, clears all metrics, and opens a
// new epoch. Returns the new epoch.
func (t *Tracker) Reset() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.epoch++
	t.stage = StageIdle
	t.metrics = Metrics{}
	return t.epoch
}
