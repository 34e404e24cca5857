package pipeline

import (
	"fmt"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/metadata"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/provider"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/translator"
)

// Config holds everything a translation run needs. The entry point builds
// it from flags, the project file and the keychain; the pipeline itself
// never reads configuration sources.
type Config struct {
	// IO roots
	ProjectRoot string
	// OutputRoot receives the translated copy. Empty means translate the
	// project in place, which requires Overwrite or a confirmation.
	OutputRoot string

	// Engine and languages
	EngineType string
	SourceLang string
	TargetLang string

	// Provider identity, recorded in session logs and the run summary.
	Model string

	// Processing parameters
	BatchSize   int
	Concurrency int

	// Flags
	Force     bool // proceed despite project validation problems
	Overwrite bool // overwrite existing output without asking
	NoMemory  bool // skip the translation memory entirely

	// MemoryPath overrides the default translation memory location
	// (.translate-ai.db under the project root).
	MemoryPath string

	// Collaborators
	Registry *engine.Registry
	Client   provider.Client
	Pricing  metadata.Model

	// OnProgress is called with batch translation progress updates.
	OnProgress func(translator.Progress)

	// OnConfirmOverwrite is called when writing would touch existing files.
	// It should return true to proceed. If nil, the Overwrite flag decides.
	OnConfirmOverwrite func(path string) bool
}

const (
	MinConcurrency = 1
	MaxConcurrency = 20
	MaxBatchSize   = 100
)

func ClampConcurrency(value int) (int, bool) {
	if value < MinConcurrency {
		return MinConcurrency, true
	}
	if value > MaxConcurrency {
		return MaxConcurrency, true
	}
	return value, false
}

// Normalize applies safe bounds to config values and returns any adjustments.
func (c Config) Normalize() (Config, []string) {
	var notes []string
	if clamped, changed := ClampConcurrency(c.Concurrency); changed {
		notes = append(notes, fmt.Sprintf("concurrency clamped from %d to %d (max %d)", c.Concurrency, clamped, MaxConcurrency))
		c.Concurrency = clamped
	}
	if c.BatchSize > MaxBatchSize {
		notes = append(notes, fmt.Sprintf("batch-size clamped from %d to %d (max %d)", c.BatchSize, MaxBatchSize, MaxBatchSize))
		c.BatchSize = MaxBatchSize
	}
	return c, notes
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.ProjectRoot == "" {
		return fmt.Errorf("project root is required")
	}
	if c.EngineType == "" {
		return fmt.Errorf("engine type is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batchSize must be greater than 0, got %d", c.BatchSize)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be greater than 0, got %d", c.Concurrency)
	}
	if c.Registry == nil {
		return fmt.Errorf("engine registry is required")
	}
	if c.Client == nil {
		return fmt.Errorf("provider client is required")
	}
	return nil
}
