// internal/protocol/envelope.go
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/user/recall/internal/pipeline"
)

// EnvelopeTypePipeline marks push-channel broadcasts carrying pipeline
// progress.
const EnvelopeTypePipeline = "pipeline"

// Envelope status values.
const (
	StatusActive   = "active"
	StatusComplete = "complete"
	StatusSkipped  = "skipped"
)

// Envelope is one push-channel broadcast. Count fields are pointers so
// absence and zero stay distinguishable; the terminal envelope may carry
// its counts either flat or under meta depending on backend version.
type Envelope struct {
	Type     string                     `json:"type"`
	Stage    string                     `json:"stage"`
	Status   string                     `json:"status"`
	Count    *int                       `json:"count,omitempty"`
	Images   *int                       `json:"images,omitempty"`
	Tables   *int                       `json:"tables,omitempty"`
	Chunks   *int                       `json:"chunks,omitempty"`
	Elements *int                       `json:"elements,omitempty"`
	Meta     map[string]json.RawMessage `json:"meta,omitempty"`
}

// ParseEnvelope decodes one push-channel message.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing envelope: %w", err)
	}
	return &env, nil
}

// Events translates the envelope into progress events. Envelopes that
// are not pipeline broadcasts, or that name a stage outside the
// canonical set, produce nothing. Count updates are ordered before the
// stage transition so that a tracker which fell behind can still accept
// them.
func (e *Envelope) Events() []pipeline.Event {
	if e.Type != EnvelopeTypePipeline {
		return nil
	}
	stage, ok := pipeline.ParseStage(e.Stage)
	if !ok {
		return nil
	}

	var events []pipeline.Event

	if e.Status == StatusComplete && e.Count != nil {
		switch stage {
		case pipeline.StagePartitioning, pipeline.StageChunking:
			events = append(events, pipeline.CountUpdate(stage, *e.Count))
		}
	}

	if stage == pipeline.StageComplete {
		if n, ok := e.intField(e.Elements, "elements"); ok {
			events = append(events, pipeline.CountUpdate(pipeline.StagePartitioning, n))
		}
		if n, ok := e.intField(e.Chunks, "chunks"); ok {
			events = append(events, pipeline.CountUpdate(pipeline.StageChunking, n))
		}
		images, iok := e.intField(e.Images, "images")
		tables, tok := e.intField(e.Tables, "tables")
		if iok || tok {
			events = append(events, pipeline.CompletionMetrics(images, tables))
		}
	}

	return append(events, pipeline.StageTransition(stage))
}

// intField resolves a count that may be flat or nested under meta.
func (e *Envelope) intField(flat *int, metaKey string) (int, bool) {
	if flat != nil {
		return *flat, true
	}
	raw, ok := e.Meta[metaKey]
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return int(f), true
}
