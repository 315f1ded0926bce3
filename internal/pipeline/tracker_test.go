// internal/pipeline/tracker_test.go
package pipeline

import (
	"testing"
)

func TestTrackerMonotonicUnderReordering(t *testing.T) {
	tr := NewTracker()
	epoch := tr.Epoch()

	// Delivery order scrambled and duplicated across both channels.
	sequence := []Stage{
		StageUploading,
		StagePartitioning,
		StageUploading,    // late duplicate
		StageChunking,
		StagePartitioning, // cross-channel replay
		StageSummarizing,
		StageChunking,
		StageVectorizing,
		StageComplete,
		StageVectorizing, // straggler after completion
	}

	prev := tr.Stage()
	for _, s := range sequence {
		tr.Apply(epoch, StageTransition(s))
		cur := tr.Stage()
		if cur.Before(prev) {
			t.Fatalf("stage regressed from %v to %v", prev, cur)
		}
		prev = cur
	}

	if tr.Stage() != StageComplete {
		t.Errorf("expected complete, got %v", tr.Stage())
	}
}

func TestTrackerIgnoresEarlierStage(t *testing.T) {
	tr := NewTracker()
	epoch := tr.Epoch()

	tr.Apply(epoch, StageTransition(StageSummarizing))
	if applied := tr.Apply(epoch, StageTransition(StageChunking)); applied {
		t.Error("expected earlier stage transition to be dropped")
	}
	if tr.Stage() != StageSummarizing {
		t.Errorf("expected summarizing, got %v", tr.Stage())
	}

	// Same stage again is a harmless duplicate.
	if applied := tr.Apply(epoch, StageTransition(StageSummarizing)); !applied {
		t.Error("expected duplicate of current stage to be accepted")
	}
}

func TestTrackerCountUpdates(t *testing.T) {
	tr := NewTracker()
	epoch := tr.Epoch()

	tr.Apply(epoch, StageTransition(StagePartitioning))
	if !tr.Apply(epoch, CountUpdate(StagePartitioning, 120)) {
		t.Error("expected count for current stage to apply")
	}
	if tr.Metrics().Elements != 120 {
		t.Errorf("expected 120 elements, got %d", tr.Metrics().Elements)
	}

	// Counts may name a stage ahead of the current one.
	if !tr.Apply(epoch, CountUpdate(StageChunking, 34)) {
		t.Error("expected count for later stage to apply")
	}
	if tr.Metrics().Chunks != 34 {
		t.Errorf("expected 34 chunks, got %d", tr.Metrics().Chunks)
	}

	// Once the pipeline moved on, counts for earlier stages are stale.
	tr.Apply(epoch, StageTransition(StageVectorizing))
	if tr.Apply(epoch, CountUpdate(StagePartitioning, 999)) {
		t.Error("expected count for earlier stage to be dropped")
	}
	if tr.Metrics().Elements != 120 {
		t.Errorf("expected elements unchanged, got %d", tr.Metrics().Elements)
	}
}

func TestTrackerCountUpdateUnmappedStage(t *testing.T) {
	tr := NewTracker()
	epoch := tr.Epoch()

	if tr.Apply(epoch, CountUpdate(StageSummarizing, 5)) {
		t.Error("expected count for a stage without a counter to be dropped")
	}
	if m := tr.Metrics(); m != (Metrics{}) {
		t.Errorf("expected metrics untouched, got %+v", m)
	}
}

func TestTrackerCompletionMetrics(t *testing.T) {
	tr := NewTracker()
	epoch := tr.Epoch()

	tr.Apply(epoch, StageTransition(StageComplete))
	tr.Apply(epoch, CompletionMetrics(3, 2))

	m := tr.Metrics()
	if m.Images != 3 || m.Tables != 2 {
		t.Errorf("expected images=3 tables=2, got %+v", m)
	}
}

func TestTrackerResetClearsState(t *testing.T) {
	tr := NewTracker()
	epoch := tr.Epoch()

	tr.Apply(epoch, StageTransition(StagePartitioning))
	tr.Apply(epoch, CountUpdate(StagePartitioning, 44))
	tr.Apply(epoch, CompletionMetrics(1, 1))

	next := tr.Reset()
	if next != epoch+1 {
		t.Errorf("expected epoch %d, got %d", epoch+1, next)
	}
	if tr.Stage() != StageIdle {
		t.Errorf("expected idle after reset, got %v", tr.Stage())
	}
	if m := tr.Metrics(); m != (Metrics{}) {
		t.Errorf("expected cleared metrics, got %+v", m)
	}
}

func TestTrackerDropsStaleEpoch(t *testing.T) {
	tr := NewTracker()
	old := tr.Epoch()
	tr.Apply(old, StageTransition(StageChunking))

	tr.Reset()

	// Events registered before the reset arrive late. Content is
	// irrelevant: they are dropped unconditionally.
	if tr.Apply(old, StageTransition(StageComplete)) {
		t.Error("expected stale-epoch transition to be dropped")
	}
	if tr.Apply(old, CountUpdate(StageChunking, 10)) {
		t.Error("expected stale-epoch count to be dropped")
	}
	if tr.Apply(old, CompletionMetrics(9, 9)) {
		t.Error("expected stale-epoch metrics to be dropped")
	}

	if tr.Stage() != StageIdle {
		t.Errorf("expected idle, got %v", tr.Stage())
	}
	if m := tr.Metrics(); m != (Metrics{}) {
		t.Errorf("expected empty metrics, got %+v", m)
	}

	// The new epoch proceeds normally.
	if !tr.Apply(tr.Epoch(), StageTransition(StageUploading)) {
		t.Error("expected current-epoch transition to apply")
	}
}
