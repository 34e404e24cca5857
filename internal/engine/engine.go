package engine

import (
	"fmt"
	"path/filepath"
)

// FS is the filesystem surface an engine reads projects through. The live
// implementation is files.Disk; tests substitute an in-memory fake.
type FS interface {
	DirExists(path string) bool
	FileExists(path string) bool
	ReadJSON(path string, v any) error
}

// Handler extracts and reinjects units for one resource type. Apply returns
// a new file value and leaves its input untouched.
type Handler interface {
	Extract(file ResourceFile) []Unit
	Apply(file ResourceFile, units []Unit) ResourceFile
}

// Settings describes an engine: identity plus the project layout it expects.
// Values are fixed at construction.
type Settings struct {
	// Type is the registry key, e.g. "rpgmv".
	Type string
	// Name is the human-readable engine name.
	Name string
	// Version is the engine generation this definition targets.
	Version string
	// DataDir is the anchor directory holding data files, relative to the
	// project root, using forward slashes.
	DataDir string
	// RequiredFiles lists the data files a project must have, relative to
	// DataDir.
	RequiredFiles []string
	// ResourceTypes is the set of translatable resource types.
	ResourceTypes []string
}

// Engine drives validation, reading, extraction and reinjection for one game
// engine. All operations are pure with respect to their inputs; nothing here
// logs or writes to disk.
type Engine struct {
	settings     Settings
	handlers     map[string]Handler
	translatable map[string]bool
	fs           FS
}

// New assembles an engine from its settings, per-resource-type handlers and
// a filesystem collaborator.
func New(settings Settings, handlers map[string]Handler, fs FS) *Engine {
	translatable := make(map[string]bool, len(settings.ResourceTypes))
	for _, rt := range settings.ResourceTypes {
		translatable[rt] = true
	}
	return &Engine{
		settings:     settings,
		handlers:     handlers,
		translatable: translatable,
		fs:           fs,
	}
}

// Settings returns the engine's immutable settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// DataDir resolves the engine's anchor directory under root.
func (e *Engine) DataDir(root string) string {
	return filepath.Join(root, filepath.FromSlash(e.settings.DataDir))
}

// ValidateProject checks that root looks like a project for this engine.
// It always returns a report, never an error: a missing anchor directory
// short-circuits the per-file checks and reports every required file as
// missing.
func (e *Engine) ValidateProject(root string) Validation {
	var v Validation
	dataDir := e.DataDir(root)
	if !e.fs.DirExists(dataDir) {
		v.Problems = append(v.Problems, fmt.Sprintf("data directory not found: %s", dataDir))
		for _, name := range e.settings.RequiredFiles {
			v.addMissing(filepath.Join(dataDir, name))
		}
		return v
	}
	for _, name := range e.settings.RequiredFiles {
		path := filepath.Join(dataDir, name)
		if !e.fs.FileExists(path) {
			v.addMissing(path)
		}
	}
	v.Valid = len(v.Problems) == 0
	return v
}

// ReadProject loads and parses every required data file. Any failure aborts
// the whole read; partially loaded projects are never returned.
func (e *Engine) ReadProject(root string) ([]ResourceFile, error) {
	dataDir := e.DataDir(root)
	resourceFiles := make([]ResourceFile, 0, len(e.settings.RequiredFiles))
	for _, name := range e.settings.RequiredFiles {
		path := filepath.Join(dataDir, name)
		var content any
		if err := e.fs.ReadJSON(path, &content); err != nil {
			return nil, fmt.Errorf("read project: %w", err)
		}
		resourceFiles = append(resourceFiles, ResourceFile{
			Path:     path,
			FileType: FileTypeOf(name),
			Content:  content,
		})
	}
	return resourceFiles, nil
}

// ExtractTranslations lifts translatable units out of the given files.
// Files with nil content, non-translatable types, or no handler contribute
// nothing. Output order follows input file order, then each handler's
// emission order.
func (e *Engine) ExtractTranslations(resourceFiles []ResourceFile) []Unit {
	var units []Unit
	for _, f := range resourceFiles {
		if f.Content == nil {
			continue
		}
		if !e.translatable[f.FileType] {
			continue
		}
		h, ok := e.handlers[f.FileType]
		if !ok {
			continue
		}
		units = append(units, h.Extract(f)...)
	}
	return units
}

// ApplyTranslations reinjects units into their files and returns the
// updated list, same length and order as the input. Each file only sees
// units whose File matches its Path; files with no matching units or no
// handler pass through unchanged.
func (e *Engine) ApplyTranslations(resourceFiles []ResourceFile, units []Unit) []ResourceFile {
	byFile := make(map[string][]Unit)
	for _, u := range units {
		byFile[u.File] = append(byFile[u.File], u)
	}

	out := make([]ResourceFile, 0, len(resourceFiles))
	for _, f := range resourceFiles {
		matched := byFile[f.Path]
		if len(matched) == 0 {
			out = append(out, f)
			continue
		}
		h, ok := e.handlers[f.FileType]
		if !ok {
			out = append(out, f)
			continue
		}
		out = append(out, h.Apply(f, matched))
	}
	return out
}
