package engine

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

type fakeFS struct {
	dirs       map[string]bool
	files      map[string]string
	fileChecks int
}

func (f *fakeFS) DirExists(path string) bool { return f.dirs[path] }

func (f *fakeFS) FileExists(path string) bool {
	f.fileChecks++
	_, ok := f.files[path]
	return ok
}

func (f *fakeFS) ReadJSON(path string, v any) error {
	data, ok := f.files[path]
	if !ok {
		return fmt.Errorf("open %s: no such file", path)
	}
	return json.Unmarshal([]byte(data), v)
}

// markerHandler emits one unit per file and marks applied files so dispatch
// can be observed without a real schema.
type markerHandler struct{}

func (markerHandler) Extract(file ResourceFile) []Unit {
	return []Unit{{ResourceID: "1", Field: "name", Source: "src:" + file.FileType, File: file.Path}}
}

func (markerHandler) Apply(file ResourceFile, units []Unit) ResourceFile {
	applied := make([]string, 0, len(units))
	for _, u := range units {
		applied = append(applied, u.Target)
	}
	file.Content = "applied:" + strings.Join(applied, ",")
	return file
}

func testSettings() Settings {
	return Settings{
		Type:          "testengine",
		Name:          "Test Engine",
		Version:       "1.0",
		DataDir:       "data",
		RequiredFiles: []string{"Actors.json", "Items.json"},
		ResourceTypes: []string{"actors", "items"},
	}
}

func TestValidateProject_MissingAnchorShortCircuits(t *testing.T) {
	fs := &fakeFS{dirs: map[string]bool{}, files: map[string]string{}}
	eng := New(testSettings(), nil, fs)

	v := eng.ValidateProject("proj")
	if v.Valid {
		t.Fatalf("expected invalid project")
	}
	if len(v.MissingFiles) != 2 {
		t.Fatalf("expected every required file reported missing, got %v", v.MissingFiles)
	}
	if fs.fileChecks != 0 {
		t.Fatalf("expected no per-file checks after missing anchor, got %d", fs.fileChecks)
	}
	wantDirProblem := false
	for _, p := range v.Problems {
		if strings.Contains(p, "data directory not found") {
			wantDirProblem = true
		}
	}
	if !wantDirProblem {
		t.Fatalf("expected anchor problem in %v", v.Problems)
	}
}

func TestValidateProject_ReportsEachMissingFile(t *testing.T) {
	dataDir := filepath.Join("proj", "data")
	fs := &fakeFS{
		dirs:  map[string]bool{dataDir: true},
		files: map[string]string{filepath.Join(dataDir, "Actors.json"): "[null]"},
	}
	eng := New(testSettings(), nil, fs)

	v := eng.ValidateProject("proj")
	if v.Valid {
		t.Fatalf("expected invalid project")
	}
	if len(v.MissingFiles) != 1 {
		t.Fatalf("expected exactly one missing file, got %v", v.MissingFiles)
	}
	if want := filepath.Join(dataDir, "Items.json"); v.MissingFiles[0] != want {
		t.Fatalf("missing = %q, want %q", v.MissingFiles[0], want)
	}
}

func TestValidateProject_Valid(t *testing.T) {
	dataDir := filepath.Join("proj", "data")
	fs := &fakeFS{
		dirs: map[string]bool{dataDir: true},
		files: map[string]string{
			filepath.Join(dataDir, "Actors.json"): "[null]",
			filepath.Join(dataDir, "Items.json"):  "[null]",
		},
	}
	eng := New(testSettings(), nil, fs)

	v := eng.ValidateProject("proj")
	if !v.Valid {
		t.Fatalf("expected valid project, problems: %v", v.Problems)
	}
	if len(v.Problems) != 0 || len(v.MissingFiles) != 0 {
		t.Fatalf("expected empty report, got %+v", v)
	}
}

func TestReadProject_AllOrNothing(t *testing.T) {
	dataDir := filepath.Join("proj", "data")
	fs := &fakeFS{
		dirs: map[string]bool{dataDir: true},
		files: map[string]string{
			filepath.Join(dataDir, "Actors.json"): "[null]",
			filepath.Join(dataDir, "Items.json"):  "{broken",
		},
	}
	eng := New(testSettings(), nil, fs)

	got, err := eng.ReadProject("proj")
	if err == nil {
		t.Fatalf("expected error for unparsable file")
	}
	if got != nil {
		t.Fatalf("expected no partial result, got %d files", len(got))
	}
}

func TestReadProject_DerivesFileType(t *testing.T) {
	dataDir := filepath.Join("proj", "data")
	fs := &fakeFS{
		dirs: map[string]bool{dataDir: true},
		files: map[string]string{
			filepath.Join(dataDir, "Actors.json"): `[null,{"id":1}]`,
			filepath.Join(dataDir, "Items.json"):  "[null]",
		},
	}
	eng := New(testSettings(), nil, fs)

	got, err := eng.ReadProject("proj")
	if err != nil {
		t.Fatalf("ReadProject: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 files, got %d", len(got))
	}
	if got[0].FileType != "actors" || got[1].FileType != "items" {
		t.Fatalf("file types = %q, %q", got[0].FileType, got[1].FileType)
	}
	if got[0].Path != filepath.Join(dataDir, "Actors.json") {
		t.Fatalf("unexpected path %q", got[0].Path)
	}
}

func TestExtractTranslations_SkipsWithoutError(t *testing.T) {
	eng := New(testSettings(), map[string]Handler{"actors": markerHandler{}}, &fakeFS{})

	resourceFiles := []ResourceFile{
		{Path: "a", FileType: "actors", Content: []any{}},
		{Path: "b", FileType: "actors", Content: nil},        // nil content
		{Path: "c", FileType: "system", Content: []any{}},    // not translatable
		{Path: "d", FileType: "items", Content: []any{}},     // no handler
		{Path: "e", FileType: "actors", Content: []any{nil}}, // counted again
	}
	units := eng.ExtractTranslations(resourceFiles)
	if len(units) != 2 {
		t.Fatalf("expected units only from handled files, got %d", len(units))
	}
	if units[0].File != "a" || units[1].File != "e" {
		t.Fatalf("unexpected emission order: %v, %v", units[0].File, units[1].File)
	}
}

func TestApplyTranslations_PartitionsByPath(t *testing.T) {
	eng := New(testSettings(), map[string]Handler{"actors": markerHandler{}}, &fakeFS{})

	resourceFiles := []ResourceFile{
		{Path: "a", FileType: "actors", Content: "orig-a"},
		{Path: "b", FileType: "actors", Content: "orig-b"},
		{Path: "c", FileType: "items", Content: "orig-c"},
	}
	units := []Unit{
		{File: "a", ResourceID: "1", Field: "name", Target: "x"},
		{File: "a", ResourceID: "2", Field: "name", Target: "y"},
		{File: "c", ResourceID: "1", Field: "name", Target: "z"}, // no handler for items
		{File: "ghost", ResourceID: "1", Field: "name", Target: "w"},
	}

	got := eng.ApplyTranslations(resourceFiles, units)
	if len(got) != len(resourceFiles) {
		t.Fatalf("expected %d files, got %d", len(resourceFiles), len(got))
	}
	if got[0].Content != "applied:x,y" {
		t.Fatalf("file a content = %v", got[0].Content)
	}
	if got[1].Content != "orig-b" {
		t.Fatalf("file without units must pass through, got %v", got[1].Content)
	}
	if got[2].Content != "orig-c" {
		t.Fatalf("file without handler must pass through, got %v", got[2].Content)
	}
}

func TestFileTypeOf(t *testing.T) {
	cases := map[string]string{
		"Actors.json":  "actors",
		"Items.json":   "items",
		"WEAPONS.JSON": "weapons",
		"System.json":  "system",
	}
	for in, want := range cases {
		if got := FileTypeOf(in); got != want {
			t.Fatalf("FileTypeOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUnitKeyAndTranslated(t *testing.T) {
	a := Unit{File: "f", ResourceID: "1", Field: "name"}
	b := Unit{File: "f", ResourceID: "1", Field: "note"}
	if a.Key() == b.Key() {
		t.Fatalf("distinct fields must have distinct keys")
	}
	if a.Translated() {
		t.Fatalf("empty target must not count as translated")
	}
	a.Target = "done"
	if !a.Translated() {
		t.Fatalf("non-empty target must count as translated")
	}
}

func TestFieldSchemaContext(t *testing.T) {
	s := FieldSchema{Field: "profile", Label: "Actor Profile", PromptType: PromptDialogue}
	if got := s.Context(); got != "Actor Profile (dialogue)" {
		t.Fatalf("Context() = %q", got)
	}
}
