package stats

import (
	"math"
	"testing"
	"time"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/metadata"
)

func unit(source, target string, meta *engine.UnitMeta) engine.Unit {
	return engine.Unit{ResourceID: "1", Field: "name", Source: source, Target: target, Meta: meta}
}

func TestAdd_CountsSuccessAndFailure(t *testing.T) {
	s := New()
	s.Add([]engine.Unit{
		unit("a", "b", nil),
		unit("c", "", nil),
		unit("d", "e", nil),
	})
	if s.SuccessfulTranslations != 2 || s.FailedTranslations != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", s.SuccessfulTranslations, s.FailedTranslations)
	}
}

func TestAdd_FoldsMetadata(t *testing.T) {
	s := New()
	s.Add([]engine.Unit{
		unit("a", "b", &engine.UnitMeta{Tokens: 10, ProcessingTime: 2 * time.Second, Confidence: 0.8}),
		unit("c", "d", nil), // no metadata, still counted
		unit("e", "f", &engine.UnitMeta{Tokens: 5, ProcessingTime: time.Second}),
	})
	if s.TotalTokens != 15 {
		t.Fatalf("TotalTokens = %d, want 15", s.TotalTokens)
	}
	if s.TotalProcessingTime != 3*time.Second {
		t.Fatalf("TotalProcessingTime = %v", s.TotalProcessingTime)
	}
	if got := s.AverageConfidence(); got != 0.8 {
		t.Fatalf("AverageConfidence = %v, want 0.8 (unreported confidences excluded)", got)
	}
}

func TestAverageConfidence_IncrementalAdds(t *testing.T) {
	s := New()
	s.Add([]engine.Unit{unit("a", "b", &engine.UnitMeta{Confidence: 0.8})})
	s.Add([]engine.Unit{
		unit("c", "d", &engine.UnitMeta{Confidence: 0.6}),
		unit("e", "f", &engine.UnitMeta{Confidence: 0.7}),
	})

	want := (0.8 + 0.6 + 0.7) / 3
	if got := s.AverageConfidence(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("AverageConfidence = %v, want %v", got, want)
	}
}

func TestAverageConfidence_Empty(t *testing.T) {
	s := New()
	if got := s.AverageConfidence(); got != 0 {
		t.Fatalf("AverageConfidence on empty aggregate = %v, want 0", got)
	}
	s.Add([]engine.Unit{unit("a", "b", nil)})
	if got := s.AverageConfidence(); got != 0 {
		t.Fatalf("AverageConfidence without reported confidence = %v, want 0", got)
	}
}

func TestAdd_CountsGraphemes(t *testing.T) {
	s := New()
	s.Add([]engine.Unit{unit("👩‍👩‍👧‍👦!", "やあ", nil)})
	if s.SourceChars != 2 {
		t.Fatalf("SourceChars = %d, want 2 (family emoji is one cluster)", s.SourceChars)
	}
	if s.TargetChars != 2 {
		t.Fatalf("TargetChars = %d, want 2", s.TargetChars)
	}
}

func TestAddUsage(t *testing.T) {
	s := New()
	pricing := metadata.Model{InputPerMillion: 2.00, OutputPerMillion: 12.00}
	s.AddUsage(pricing, 1_000_000, 500_000)
	s.AddUsage(pricing, 0, 0)

	if s.Requests != 2 {
		t.Fatalf("Requests = %d, want 2", s.Requests)
	}
	if s.PromptTokens != 1_000_000 || s.OutputTokens != 500_000 {
		t.Fatalf("tokens = %d/%d", s.PromptTokens, s.OutputTokens)
	}
	if want := 2.00 + 6.00; math.Abs(s.TotalCost-want) > 1e-9 {
		t.Fatalf("TotalCost = %v, want %v", s.TotalCost, want)
	}
}

func TestMerge_KeepsAverageExact(t *testing.T) {
	a := New()
	a.Add([]engine.Unit{unit("x", "y", &engine.UnitMeta{Confidence: 1.0})})

	b := New()
	b.Add([]engine.Unit{
		unit("p", "q", &engine.UnitMeta{Confidence: 0.5}),
		unit("r", "s", &engine.UnitMeta{Confidence: 0.5}),
	})

	a.Merge(b)
	want := (1.0 + 0.5 + 0.5) / 3
	if got := a.AverageConfidence(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("merged AverageConfidence = %v, want %v (not an average of averages)", got, want)
	}
	if a.SuccessfulTranslations != 3 {
		t.Fatalf("merged successes = %d", a.SuccessfulTranslations)
	}

	a.Merge(nil) // no-op
	if a.SuccessfulTranslations != 3 {
		t.Fatalf("nil merge changed the aggregate")
	}
}
