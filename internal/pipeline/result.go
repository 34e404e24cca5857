package pipeline

import (
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/stats"
)

// Status is the terminal state of a translation run.
type Status string

const (
	StatusSuccess        Status = "Success"
	StatusPartialSuccess Status = "Partial Success"
	StatusFailure        Status = "Failure"
	StatusSkipped        Status = "Skipped"
)

// Result contains structured outputs from Run and Resume.
type Result struct {
	Status Status
	Stats  *stats.Stats
	// OutputRoot is where translated files were written; equals the project
	// root for in-place runs.
	OutputRoot string
	// SessionPath is set when a session log was written for later resume.
	SessionPath string
	Validation  engine.Validation

	TotalUnits  int
	FailedUnits int
	MemoryHits  int
}
