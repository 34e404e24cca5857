package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeGameFixture lays out a minimal valid RPG Maker MV project with two
// translatable fields in Actors.json.
func writeGameFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "www", "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	fixtures := map[string]string{
		"Actors.json":  `[null,{"id":1,"name":"ハロルド","note":"\\V[1]を参照","initialLevel":1}]`,
		"Classes.json": `[null]`,
		"Skills.json":  `[null]`,
		"Items.json":   `[null]`,
		"Weapons.json": `[null]`,
		"Armors.json":  `[null]`,
		"Enemies.json": `[null]`,
		"States.json":  `[null]`,
	}
	for name, content := range fixtures {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func readActorName(t *testing.T, root string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "www", "data", "Actors.json"))
	if err != nil {
		t.Fatal(err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatal(err)
	}
	name, _ := records[1]["name"].(string)
	return name
}

func TestExtractWritesUnitsDocument(t *testing.T) {
	root := writeGameFixture(t)
	outPath := filepath.Join(t.TempDir(), "units.json")

	if _, err := executeCommand(t, "extract", root, "-o", outPath); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var doc unitsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("extract wrote invalid JSON: %v", err)
	}
	if doc.Version != unitsDocVersion || doc.Engine != "rpgmv" {
		t.Fatalf("unexpected document header: version=%d engine=%q", doc.Version, doc.Engine)
	}
	if len(doc.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(doc.Units))
	}
	for _, u := range doc.Units {
		if u.File != "www/data/Actors.json" {
			t.Fatalf("expected slash-relative file path, got %q", u.File)
		}
		if u.Target != "" {
			t.Fatalf("fresh extract should have empty targets, got %q", u.Target)
		}
	}
}

func TestExtractToStdout(t *testing.T) {
	root := writeGameFixture(t)

	out, err := executeCommand(t, "extract", root)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(out, `"units"`) || !strings.Contains(out, "ハロルド") {
		t.Fatalf("expected units JSON on stdout, got: %s", out)
	}
}

func TestExtractRejectsInvalidProject(t *testing.T) {
	_, err := executeCommand(t, "extract", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation error, got: %v", err)
	}
}

func translatedUnitsFile(t *testing.T, root string) string {
	t.Helper()
	outPath := filepath.Join(t.TempDir(), "units.json")
	if _, err := executeCommand(t, "extract", root, "-o", outPath); err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var doc unitsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	for i := range doc.Units {
		if doc.Units[i].Field == "name" {
			doc.Units[i].Target = "Harold"
		}
	}
	edited, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(outPath, edited, 0o644); err != nil {
		t.Fatal(err)
	}
	return outPath
}

func TestApplyWritesTranslatedCopy(t *testing.T) {
	root := writeGameFixture(t)
	unitsPath := translatedUnitsFile(t, root)
	outRoot := filepath.Join(t.TempDir(), "translated")

	if _, err := executeCommand(t, "apply", root, unitsPath, "-o", outRoot); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if got := readActorName(t, outRoot); got != "Harold" {
		t.Fatalf("expected translated name in output copy, got %q", got)
	}
	if got := readActorName(t, root); got != "ハロルド" {
		t.Fatalf("source project must stay untouched, got %q", got)
	}
	// Output mode mirrors the full data directory, not just changed files.
	if _, err := os.Stat(filepath.Join(outRoot, "www", "data", "Items.json")); err != nil {
		t.Fatalf("expected Items.json in output copy: %v", err)
	}
}

func TestApplyInPlaceNeedsConfirmation(t *testing.T) {
	root := writeGameFixture(t)
	unitsPath := translatedUnitsFile(t, root)

	if _, err := executeCommand(t, "apply", root, unitsPath); err == nil {
		t.Fatalf("expected in-place apply to fail without -y on non-interactive stdin")
	}
	if got := readActorName(t, root); got != "ハロルド" {
		t.Fatalf("declined apply must not modify the project, got %q", got)
	}

	if _, err := executeCommand(t, "apply", root, unitsPath, "-y"); err != nil {
		t.Fatalf("apply -y failed: %v", err)
	}
	if got := readActorName(t, root); got != "Harold" {
		t.Fatalf("expected in-place translation, got %q", got)
	}
}

func TestApplyRejectsUntranslatedDocument(t *testing.T) {
	root := writeGameFixture(t)
	outPath := filepath.Join(t.TempDir(), "units.json")
	if _, err := executeCommand(t, "extract", root, "-o", outPath); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	_, err := executeCommand(t, "apply", root, outPath, "-y")
	if err == nil || !strings.Contains(err.Error(), "no translated units") {
		t.Fatalf("expected untranslated document error, got: %v", err)
	}
}

func TestApplyRejectsEngineMismatch(t *testing.T) {
	root := writeGameFixture(t)
	unitsPath := translatedUnitsFile(t, root)

	data, err := os.ReadFile(unitsPath)
	if err != nil {
		t.Fatal(err)
	}
	var doc unitsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	doc.Engine = "rpgmz"
	edited, _ := json.Marshal(doc)
	if err := os.WriteFile(unitsPath, edited, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = executeCommand(t, "apply", root, unitsPath, "-y")
	if err == nil || !strings.Contains(err.Error(), "extracted for engine") {
		t.Fatalf("expected engine mismatch error, got: %v", err)
	}
}
