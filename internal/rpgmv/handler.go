// Package rpgmv implements the RPG Maker MV and MZ engines. Both
// generations share one data format: JSON arrays of records where index 0
// is a reserved null slot and real records carry 1-based numeric ids. The
// generations differ only in project layout, so they share handlers and
// schema tables and are assembled with different settings.
package rpgmv

import (
	"encoding/json"
	"strconv"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
)

// RecordHandler extracts and reinjects the schema fields of one record-array
// resource type. It holds no state beyond its schema table and is safe to
// share across engines.
type RecordHandler struct {
	schemas []engine.FieldSchema
}

// NewRecordHandler returns a handler over the given schema table.
func NewRecordHandler(schemas []engine.FieldSchema) *RecordHandler {
	return &RecordHandler{schemas: schemas}
}

// Extract emits one unit per non-empty schema field of each record. Records
// without an id (including the reserved null slot) and fields holding
// non-string or empty values are skipped.
func (h *RecordHandler) Extract(file engine.ResourceFile) []engine.Unit {
	records, ok := file.Content.([]any)
	if !ok {
		return nil
	}
	var units []engine.Unit
	for _, rec := range records {
		m, ok := rec.(map[string]any)
		if !ok || m == nil {
			continue
		}
		id, ok := recordID(m)
		if !ok {
			continue
		}
		for _, s := range h.schemas {
			text, ok := m[s.Field].(string)
			if !ok || text == "" {
				continue
			}
			units = append(units, engine.Unit{
				ResourceID: id,
				Field:      s.Field,
				Source:     text,
				Context:    s.Context(),
				PromptType: s.PromptType,
				File:       file.Path,
			})
		}
	}
	return units
}

// Apply writes unit targets back into a copy of the record array. Units that
// address a missing record, an unknown field, or carry an empty target are
// dropped without signal. When several units address the same field, the
// last one in input order wins. The input file is never mutated; untouched
// records are shared with the input.
func (h *RecordHandler) Apply(file engine.ResourceFile, units []engine.Unit) engine.ResourceFile {
	records, ok := file.Content.([]any)
	if !ok {
		return file
	}

	index := make(map[string]int, len(records))
	for i, rec := range records {
		m, ok := rec.(map[string]any)
		if !ok || m == nil {
			continue
		}
		if id, ok := recordID(m); ok {
			index[id] = i
		}
	}

	var out []any
	copied := make(map[int]map[string]any)
	for _, u := range units {
		if u.Target == "" {
			continue
		}
		i, ok := index[u.ResourceID]
		if !ok {
			continue
		}
		if !h.knownField(u.Field) {
			continue
		}
		rec := copied[i]
		if rec == nil {
			if out == nil {
				out = make([]any, len(records))
				copy(out, records)
			}
			orig := records[i].(map[string]any)
			rec = make(map[string]any, len(orig))
			for k, v := range orig {
				rec[k] = v
			}
			copied[i] = rec
			out[i] = rec
		}
		rec[u.Field] = u.Target
	}

	if out == nil {
		// Every unit was dropped; the file is unchanged.
		return file
	}
	return engine.ResourceFile{Path: file.Path, FileType: file.FileType, Content: out}
}

func (h *RecordHandler) knownField(field string) bool {
	for _, s := range h.schemas {
		if s.Field == field {
			return true
		}
	}
	return false
}

// recordID reads a record's numeric id and renders it in canonical decimal
// form, matching the ids units carry.
func recordID(record map[string]any) (string, bool) {
	switch v := record["id"].(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}
