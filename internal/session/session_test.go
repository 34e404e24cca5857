package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
)

func validLog() *Log {
	return &Log{
		LogVersion:    CurrentLogVersion,
		EngineType:    "rpgmv",
		ProjectRoot:   "game",
		UnitsChecksum: "sha256:abc",
		SourceLang:    "ja",
		TargetLang:    "en",
		Provider:      "gemini",
		Model:         "gemini-3-flash-preview",
		BatchSize:     25,
		Concurrency:   3,
		TotalUnits:    10,
		FailedUnits:   []UnitRef{{File: "www/data/Actors.json", ResourceID: "1", Field: "name"}},
		Status:        "Partial Success",
	}
}

func TestValidateAcceptsCompleteLog(t *testing.T) {
	if err := validLog().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Log)
	}{
		{"future version", func(l *Log) { l.LogVersion = 99 }},
		{"absolute project root", func(l *Log) { l.ProjectRoot = "/abs/game" }},
		{"traversing output root", func(l *Log) { l.OutputRoot = "../elsewhere" }},
		{"bad checksum prefix", func(l *Log) { l.UnitsChecksum = "md5:abc" }},
		{"unknown language", func(l *Log) { l.TargetLang = "xx" }},
		{"no failed units", func(l *Log) { l.FailedUnits = nil }},
		{"absolute unit file", func(l *Log) { l.FailedUnits[0].File = "/abs/Actors.json" }},
		{"zero batch size", func(l *Log) { l.BatchSize = 0 }},
		{"success status", func(l *Log) { l.Status = "Success" }},
		{"odd status reason", func(l *Log) { l.StatusReason = "gave up" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := validLog()
			tc.mutate(l)
			if err := l.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	want := validLog()
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("loaded log invalid: %v", err)
	}
	if got.EngineType != want.EngineType || got.UnitsChecksum != want.UnitsChecksum {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.FailedUnits) != 1 || got.FailedUnits[0] != want.FailedUnits[0] {
		t.Errorf("failed units mismatch: %+v", got.FailedUnits)
	}
}

func TestSaveRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := Save(path, validLog()); err != nil {
		t.Fatal(err)
	}
	if err := Save(path, validLog()); err == nil {
		t.Fatal("expected error overwriting existing session log")
	}
}

func TestGeneratePathAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	first := GeneratePath(dir)
	if filepath.Base(first) != "translate-ai_session.json" {
		t.Errorf("first path = %s", first)
	}
	if err := os.WriteFile(first, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	second := GeneratePath(dir)
	if second == first {
		t.Error("GeneratePath returned an existing path")
	}
	if filepath.Base(second) != "translate-ai_session_0.json" {
		t.Errorf("second path = %s", second)
	}
}

func TestChecksumUnitsOrderIndependentAndTargetBlind(t *testing.T) {
	root := "game"
	a := engine.Unit{File: filepath.Join(root, "f"), ResourceID: "1", Field: "name", Source: "x"}
	b := engine.Unit{File: filepath.Join(root, "f"), ResourceID: "2", Field: "name", Source: "y"}

	sum1 := ChecksumUnits(root, []engine.Unit{a, b})
	sum2 := ChecksumUnits(root, []engine.Unit{b, a})
	if sum1 != sum2 {
		t.Error("checksum depends on order")
	}

	translated := a
	translated.Target = "X!"
	sum3 := ChecksumUnits(root, []engine.Unit{translated, b})
	if sum3 != sum1 {
		t.Error("checksum depends on targets")
	}

	changed := a
	changed.Source = "different"
	if ChecksumUnits(root, []engine.Unit{changed, b}) == sum1 {
		t.Error("checksum blind to source changes")
	}
}

func TestChecksumUnitsSurvivesProjectMove(t *testing.T) {
	// A session log travels with the project. Units re-extracted from a
	// copied or renamed root must hash the same as long as the relative
	// layout and source text are unchanged.
	unitsUnder := func(root string) []engine.Unit {
		return []engine.Unit{
			{File: filepath.Join(root, "www", "data", "Actors.json"), ResourceID: "1", Field: "name", Source: "ハロルド"},
			{File: filepath.Join(root, "www", "data", "Items.json"), ResourceID: "1", Field: "name", Source: "ポーション"},
		}
	}

	rootA := filepath.Join("/home", "dev", "game")
	rootB := filepath.Join("/mnt", "backup", "game-copy")
	sumA := ChecksumUnits(rootA, unitsUnder(rootA))
	sumB := ChecksumUnits(rootB, unitsUnder(rootB))
	if sumA != sumB {
		t.Errorf("checksum changed with the project location: %s vs %s", sumA, sumB)
	}

	moved := unitsUnder(rootB)
	moved[1].Source = "エリクサー"
	if ChecksumUnits(rootB, moved) == sumA {
		t.Error("checksum blind to source changes after a move")
	}
}

func TestRefForMatchesRelativePath(t *testing.T) {
	root := filepath.Join("proj", "game")
	u := engine.Unit{File: filepath.Join(root, "www", "data", "Actors.json"), ResourceID: "3", Field: "note"}
	ref := RefFor(root, u)
	if ref.File != "www/data/Actors.json" {
		t.Errorf("ref.File = %s", ref.File)
	}
	if !ref.Matches(root, u) {
		t.Error("ref should match the unit it was built from")
	}
	other := u
	other.Field = "name"
	if ref.Matches(root, other) {
		t.Error("ref matched a different field")
	}
}
