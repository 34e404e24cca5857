package rpgmv

import (
	"reflect"
	"testing"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
)

func actorsFile(records ...any) engine.ResourceFile {
	content := append([]any{nil}, records...)
	return engine.ResourceFile{Path: "data/Actors.json", FileType: "actors", Content: content}
}

func actorRecord(id float64, name, nickname, profile, note string) map[string]any {
	return map[string]any{
		"id":       id,
		"name":     name,
		"nickname": nickname,
		"profile":  profile,
		"note":     note,
		"maxHp":    float64(99),
	}
}

func TestExtract_SkipsEmptyFields(t *testing.T) {
	h := NewRecordHandler(actorFields)
	file := actorsFile(actorRecord(1, "Harold", "", "A brave knight.", ""))

	units := h.Extract(file)
	if len(units) != 2 {
		t.Fatalf("expected exactly 2 units, got %d: %+v", len(units), units)
	}

	name := units[0]
	if name.ResourceID != "1" || name.Field != "name" || name.Source != "Harold" {
		t.Fatalf("unexpected name unit: %+v", name)
	}
	if name.Context != "Actor Name (name)" {
		t.Fatalf("name context = %q", name.Context)
	}
	if name.File != file.Path {
		t.Fatalf("name unit file = %q", name.File)
	}

	profile := units[1]
	if profile.ResourceID != "1" || profile.Field != "profile" || profile.Source != "A brave knight." {
		t.Fatalf("unexpected profile unit: %+v", profile)
	}
	if profile.Context != "Actor Profile (dialogue)" {
		t.Fatalf("profile context = %q", profile.Context)
	}
}

func TestExtract_SkipsNullSlotAndBadRecords(t *testing.T) {
	h := NewRecordHandler(actorFields)
	file := actorsFile(
		map[string]any{"name": "NoID"},                        // no id, unaddressable
		map[string]any{"id": float64(2), "name": float64(42)}, // non-string field
		actorRecord(3, "Marsha", "", "", ""),
	)

	units := h.Extract(file)
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d: %+v", len(units), units)
	}
	if units[0].ResourceID != "3" || units[0].Source != "Marsha" {
		t.Fatalf("unexpected unit: %+v", units[0])
	}
}

func TestExtract_NonArrayContent(t *testing.T) {
	h := NewRecordHandler(actorFields)
	file := engine.ResourceFile{Path: "p", FileType: "actors", Content: map[string]any{"id": float64(1)}}
	if units := h.Extract(file); units != nil {
		t.Fatalf("expected no units for non-array content, got %+v", units)
	}
}

func TestApply_ReplacesOnlyAddressedField(t *testing.T) {
	h := NewRecordHandler(actorFields)
	file := actorsFile(actorRecord(1, "Harold", "", "A brave knight.", ""))

	got := h.Apply(file, []engine.Unit{
		{File: file.Path, ResourceID: "1", Field: "name", Target: "ハロルド"},
	})

	records := got.Content.([]any)
	rec := records[1].(map[string]any)
	if rec["name"] != "ハロルド" {
		t.Fatalf("name = %v", rec["name"])
	}
	if rec["profile"] != "A brave knight." {
		t.Fatalf("untouched field changed: %v", rec["profile"])
	}
	if rec["maxHp"] != float64(99) {
		t.Fatalf("non-schema field changed: %v", rec["maxHp"])
	}
	if records[0] != nil {
		t.Fatalf("reserved null slot changed: %v", records[0])
	}

	// The input document must be untouched.
	orig := file.Content.([]any)[1].(map[string]any)
	if orig["name"] != "Harold" {
		t.Fatalf("input mutated: %v", orig["name"])
	}
}

func TestApply_DropsInvalidUnitsSilently(t *testing.T) {
	h := NewRecordHandler(actorFields)
	file := actorsFile(actorRecord(1, "Harold", "", "A brave knight.", ""))

	got := h.Apply(file, []engine.Unit{
		{File: file.Path, ResourceID: "99", Field: "name", Target: "Ghost"},   // no such record
		{File: file.Path, ResourceID: "1", Field: "portrait", Target: "face"}, // unknown field
		{File: file.Path, ResourceID: "1", Field: "name", Target: ""},         // empty target
	})

	if !reflect.DeepEqual(got.Content, file.Content) {
		t.Fatalf("expected unchanged content, got %+v", got.Content)
	}
}

func TestApply_LastUnitWinsOnDuplicateKey(t *testing.T) {
	h := NewRecordHandler(actorFields)
	file := actorsFile(actorRecord(1, "Harold", "", "", ""))

	got := h.Apply(file, []engine.Unit{
		{File: file.Path, ResourceID: "1", Field: "name", Target: "first"},
		{File: file.Path, ResourceID: "1", Field: "name", Target: "second"},
	})

	rec := got.Content.([]any)[1].(map[string]any)
	if rec["name"] != "second" {
		t.Fatalf("expected last unit to win, got %v", rec["name"])
	}
}

func TestApply_NonArrayContent(t *testing.T) {
	h := NewRecordHandler(actorFields)
	file := engine.ResourceFile{Path: "p", FileType: "actors", Content: "garbage"}
	got := h.Apply(file, []engine.Unit{{ResourceID: "1", Field: "name", Target: "x"}})
	if got.Content != "garbage" {
		t.Fatalf("expected pass-through for non-array content")
	}
}

func TestRoundTrip_Identity(t *testing.T) {
	h := NewRecordHandler(actorFields)
	file := actorsFile(
		actorRecord(1, "Harold", "Hero", "A brave knight.", "<tag:1>"),
		actorRecord(2, "Therese", "", "", ""),
	)

	units := h.Extract(file)
	for i := range units {
		units[i].Target = units[i].Source
	}
	got := h.Apply(file, units)

	if !reflect.DeepEqual(got.Content, file.Content) {
		t.Fatalf("round trip changed the document:\n got %+v\nwant %+v", got.Content, file.Content)
	}
}
