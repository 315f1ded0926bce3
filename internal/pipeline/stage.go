// internal/pipeline/stage.go
package pipeline

import (
	"strings"
)

// Stage identifies one phase of server-side document processing. Values
// are declared in processing order, so stages compare directly with <.
type Stage int

const (
	StageIdle Stage = iota
	StageUploading
	StagePartitioning
	StageChunking
	StageSummarizing
	StageVectorizing
	StageComplete
)

var stageNames = [...]string{
	"idle",
	"uploading",
	"partitioning",
	"chunking",
	"summarizing",
	"vectorizing",
	"complete",
}

func (s Stage) String() string {
	if s < StageIdle || s > StageComplete {
		return "unknown"
	}
	return stageNames[s]
}

// ParseStage resolves a stage name to its Stage value. Wire names arrive
// upper-case ("PARTITIONING"); matching is case-insensitive.
func ParseStage(name string) (Stage, bool) {
	for i, n := range stageNames {
		if strings.EqualFold(name, n) {
			return Stage(i), true
		}
	}
	return StageIdle, false
}

// Before reports whether s precedes other in the processing sequence.
func (s Stage) Before(other Stage) bool {
	return s < other
}
