// internal/pipeline/event.go
package pipeline

// EventKind discriminates progress events.
type EventKind int

const (
	KindStageTransition EventKind = iota
	KindCountUpdate
	KindCompletionMetrics
)

// Event is one progress update from either delivery channel. Stage is
// the transition target for stage transitions and the keying stage for
// count updates.
type Event struct {
	Kind   EventKind
	Stage  Stage
	Count  int
	Images int
	Tables int
}

// StageTransition builds an event moving the pipeline to stage.
func StageTransition(stage Stage) Event {
	return Event{Kind: KindStageTransition, Stage: stage}
}

// CountUpdate builds an event carrying the count a stage reported at
// completion (elements for partitioning, chunks for chunking).
func CountUpdate(stage Stage, count int) Event {
	return Event{Kind: KindCountUpdate, Stage: stage, Count: count}
}

// CompletionMetrics builds the final image/table counts event.
func CompletionMetrics(images, tables int) Event {
	return Event{Kind: KindCompletionMetrics, Images: images, Tables: tables}
}
