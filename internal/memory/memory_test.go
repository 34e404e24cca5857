package memory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	key := Key{SourceText: "ハロルド", SourceLang: "ja", TargetLang: "en", PromptType: engine.PromptName}

	if _, ok, err := s.Lookup(ctx, key); err != nil || ok {
		t.Fatalf("lookup before record: ok=%v err=%v", ok, err)
	}
	if err := s.Record(ctx, key, "Harold"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	target, ok, err := s.Lookup(ctx, key)
	if err != nil || !ok {
		t.Fatalf("lookup after record: ok=%v err=%v", ok, err)
	}
	if target != "Harold" {
		t.Errorf("target = %q, want %q", target, "Harold")
	}
}

func TestPromptTypesAreSeparate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	nameKey := Key{SourceText: "光", SourceLang: "ja", TargetLang: "en", PromptType: engine.PromptName}
	noteKey := nameKey
	noteKey.PromptType = engine.PromptNote

	if err := s.Record(ctx, nameKey, "Lumina"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.Lookup(ctx, noteKey); err != nil || ok {
		t.Fatalf("note register should miss: ok=%v err=%v", ok, err)
	}
}

func TestRecordReplacesAndNormalizes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	key := Key{SourceText: "  ポーション ", SourceLang: "ja", TargetLang: "en", PromptType: engine.PromptName}

	if err := s.Record(ctx, key, "Potion"); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, key, "Tonic"); err != nil {
		t.Fatal(err)
	}
	trimmed := Key{SourceText: "ポーション", SourceLang: "ja", TargetLang: "en", PromptType: engine.PromptName}
	target, ok, err := s.Lookup(ctx, trimmed)
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if target != "Tonic" {
		t.Errorf("target = %q, want replacement %q", target, "Tonic")
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 1 {
		t.Errorf("entries = %d, want 1 (replace, not insert)", st.Entries)
	}
}

func TestRecordRejectsEmptyTarget(t *testing.T) {
	s := openTestStore(t)
	key := Key{SourceText: "x", SourceLang: "ja", TargetLang: "en", PromptType: engine.PromptName}
	if err := s.Record(context.Background(), key, "  "); err == nil {
		t.Fatal("expected error for empty target")
	}
}

func TestLookupCountsUsage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	key := Key{SourceText: "a", SourceLang: "ja", TargetLang: "en", PromptType: engine.PromptName}
	if err := s.Record(ctx, key, "b"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, ok, err := s.Lookup(ctx, key); err != nil || !ok {
			t.Fatal(ok, err)
		}
	}
	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalUsage != 4 {
		t.Errorf("usage = %d, want 4 (1 record + 3 hits)", st.TotalUsage)
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	key := Key{SourceText: "old", SourceLang: "ja", TargetLang: "en", PromptType: engine.PromptName}
	if err := s.Record(ctx, key, "stale"); err != nil {
		t.Fatal(err)
	}
	dropped, err := s.Prune(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if _, ok, _ := s.Lookup(ctx, key); ok {
		t.Error("pruned entry still present")
	}
}
