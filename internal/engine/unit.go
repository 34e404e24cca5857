// Package engine defines the contract between game engines and the
// translation pipeline: project validation, resource reading, unit
// extraction and reinjection. Engine implementations live in their own
// packages and are assembled by composition; this package stays free of
// engine-specific knowledge and never touches the disk directly.
package engine

import (
	"path/filepath"
	"strings"
	"time"
)

// PromptType steers the translation register for a field: character names
// get different instructions than flavor text or scripting notes.
type PromptType string

const (
	PromptName        PromptType = "name"
	PromptDialogue    PromptType = "dialogue"
	PromptDescription PromptType = "description"
	PromptMessage     PromptType = "message"
	PromptNote        PromptType = "note"
)

// ResourceFile is one parsed game data document. Content holds the decoded
// JSON value; Path doubles as the file's identity when matching units back.
type ResourceFile struct {
	Path     string
	FileType string
	Content  any
}

// UnitMeta carries optional telemetry stamped by the translation layer.
type UnitMeta struct {
	Tokens         int
	ProcessingTime time.Duration
	Confidence     float64
}

// Unit is one translatable string lifted out of a resource file.
// (File, ResourceID, Field) identifies it within an extraction pass.
// Source is fixed at extraction; Target starts empty and is filled by the
// translation layer.
type Unit struct {
	ResourceID string
	Field      string
	Source     string
	Target     string
	Context    string
	PromptType PromptType
	File       string
	Meta       *UnitMeta
}

// Key returns the unit's identity within one extraction pass.
func (u Unit) Key() string {
	return u.File + "\x00" + u.ResourceID + "\x00" + u.Field
}

// Translated reports whether the unit carries a usable translation.
func (u Unit) Translated() bool {
	return u.Target != ""
}

// FieldSchema declares one translatable field of a resource type: which
// record key holds the text, the human-readable label shown to translators,
// and the prompt register the text belongs to. Schemas are fixed tables
// declared next to each engine; fields are never discovered by walking
// record keys at runtime.
type FieldSchema struct {
	Field      string
	Label      string
	PromptType PromptType
}

// Context renders the schema as a unit context string, e.g.
// "Actor Name (name)".
func (s FieldSchema) Context() string {
	return s.Label + " (" + string(s.PromptType) + ")"
}

// FileTypeOf derives the resource type from a file name: the base name
// without extension, lower-cased. "Actors.json" becomes "actors".
func FileTypeOf(name string) string {
	base := filepath.Base(name)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}
