// Package config — .translate-ai.yaml project file support.
//
// A project may carry a .translate-ai.yaml in its root with per-project
// defaults: engine type, language pair, provider and model, batch tuning.
// Command-line flags always override the file; the file only fills in what
// the user did not say.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".translate-ai.yaml"

// ProjectFile is the top-level .translate-ai.yaml structure.
type ProjectFile struct {
	// Engine is the engine type, e.g. "rpgmv" or "rpgmz".
	Engine string `yaml:"engine,omitempty"`
	// SourceLang and TargetLang are language codes from the supported table.
	SourceLang string `yaml:"source_lang,omitempty"`
	TargetLang string `yaml:"target_lang,omitempty"`
	// Provider: "gemini", "openai", "ollama" or "google".
	Provider string `yaml:"provider,omitempty"`
	// Model is the provider model ID.
	Model string `yaml:"model,omitempty"`
	// BaseURL points openai/ollama providers at a compatible endpoint.
	BaseURL string `yaml:"base_url,omitempty"`
	// BatchSize is the number of units per translation request.
	BatchSize int `yaml:"batch_size,omitempty"`
	// Concurrency is the number of concurrent API requests.
	Concurrency int `yaml:"concurrency,omitempty"`
	// Output is the output root, relative to the project root.
	Output string `yaml:"output,omitempty"`
	// NoMemory disables the translation memory for this project.
	NoMemory bool `yaml:"no_memory,omitempty"`
}

// Load reads and validates .translate-ai.yaml from the given directory.
// Returns nil if the file does not exist.
func Load(rootDir string) (*ProjectFile, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var pf ProjectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := pf.validate(path); err != nil {
		return nil, err
	}
	return &pf, nil
}

func (pf *ProjectFile) validate(path string) error {
	if pf.BatchSize < 0 {
		return fmt.Errorf("%s: batch_size must not be negative", path)
	}
	if pf.Concurrency < 0 {
		return fmt.Errorf("%s: concurrency must not be negative", path)
	}
	if filepath.IsAbs(pf.Output) {
		return fmt.Errorf("%s: output must be relative to the project root", path)
	}
	return nil
}
