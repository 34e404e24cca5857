package main

import (
	"fmt"
	"path/filepath"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
)

// unitDoc is the JSON shape of one unit in extract/apply documents. File
// paths are relative to the project root so a document survives the project
// being moved.
type unitDoc struct {
	File       string `json:"file"`
	ResourceID string `json:"resource_id"`
	Field      string `json:"field"`
	Source     string `json:"source"`
	Target     string `json:"target,omitempty"`
	Context    string `json:"context,omitempty"`
	PromptType string `json:"prompt_type"`
}

// unitsDoc is the document written by `extract` and read by `apply`.
type unitsDoc struct {
	Version int       `json:"version"`
	Engine  string    `json:"engine"`
	Units   []unitDoc `json:"units"`
}

const unitsDocVersion = 1

func toUnitDocs(root string, units []engine.Unit) ([]unitDoc, error) {
	docs := make([]unitDoc, 0, len(units))
	for _, u := range units {
		rel, err := filepath.Rel(root, u.File)
		if err != nil {
			return nil, fmt.Errorf("failed to relativize %s: %w", u.File, err)
		}
		docs = append(docs, unitDoc{
			File:       filepath.ToSlash(rel),
			ResourceID: u.ResourceID,
			Field:      u.Field,
			Source:     u.Source,
			Target:     u.Target,
			Context:    u.Context,
			PromptType: string(u.PromptType),
		})
	}
	return docs, nil
}

func fromUnitDocs(root string, docs []unitDoc) ([]engine.Unit, error) {
	units := make([]engine.Unit, 0, len(docs))
	for i, d := range docs {
		if d.File == "" || d.ResourceID == "" || d.Field == "" {
			return nil, fmt.Errorf("unit %d is incomplete (file, resource_id and field are required)", i)
		}
		if filepath.IsAbs(d.File) {
			return nil, fmt.Errorf("unit %d: file must be relative to the project root: %s", i, d.File)
		}
		units = append(units, engine.Unit{
			File:       filepath.Join(root, filepath.FromSlash(d.File)),
			ResourceID: d.ResourceID,
			Field:      d.Field,
			Source:     d.Source,
			Target:     d.Target,
			Context:    d.Context,
			PromptType: engine.PromptType(d.PromptType),
		})
	}
	return units, nil
}
