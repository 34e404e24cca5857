// Package stats aggregates translation run telemetry. An aggregate is built
// incrementally from unit batches as they finish, so derived values like
// average confidence are computed on read from running sums, never stored.
package stats

import (
	"time"

	"github.com/rivo/uniseg"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/metadata"
)

// Stats is a running aggregate over translated units and provider usage.
// Unit-level figures (tokens, processing time, confidence, characters) come
// from Add; request-level figures (prompt/output tokens, cost, request
// count) come from AddUsage. The two views never overlap, so both can be
// reported without double counting.
type Stats struct {
	SuccessfulTranslations int
	FailedTranslations     int

	// Folded from unit metadata.
	TotalTokens         int
	TotalProcessingTime time.Duration
	SourceChars         int
	TargetChars         int

	// Folded from provider usage reports.
	Requests     int
	PromptTokens int
	OutputTokens int
	TotalCost    float64

	confidenceSum   float64
	confidenceCount int
}

// New returns a zeroed aggregate.
func New() *Stats {
	return &Stats{}
}

// Add folds a batch of units into the aggregate. Units with a non-empty
// target count as successful, the rest as failed. Token and timing figures
// are taken from unit metadata when present; confidence contributes to the
// running average only when reported (> 0). Character counts are grapheme
// clusters, so emoji and combined characters count once.
func (s *Stats) Add(units []engine.Unit) {
	for _, u := range units {
		if u.Translated() {
			s.SuccessfulTranslations++
		} else {
			s.FailedTranslations++
		}
		s.SourceChars += uniseg.GraphemeClusterCount(u.Source)
		s.TargetChars += uniseg.GraphemeClusterCount(u.Target)

		if u.Meta == nil {
			continue
		}
		s.TotalTokens += u.Meta.Tokens
		s.TotalProcessingTime += u.Meta.ProcessingTime
		if u.Meta.Confidence > 0 {
			s.confidenceSum += u.Meta.Confidence
			s.confidenceCount++
		}
	}
}

// AddUsage folds one provider request's token usage into the aggregate and
// prices it under the given catalog entry.
func (s *Stats) AddUsage(pricing metadata.Model, promptTokens, outputTokens int) {
	s.Requests++
	s.PromptTokens += promptTokens
	s.OutputTokens += outputTokens
	s.TotalCost += metadata.Cost(pricing, promptTokens, outputTokens)
}

// AverageConfidence returns the mean confidence over units that reported
// one, or 0 when none did. Computed from running sums, so it stays correct
// however many partial Add calls built the aggregate.
func (s *Stats) AverageConfidence() float64 {
	if s.confidenceCount == 0 {
		return 0
	}
	return s.confidenceSum / float64(s.confidenceCount)
}

// Merge folds other into s. Raw sums are combined, never derived values,
// so merging concurrent per-worker aggregates keeps averages exact.
func (s *Stats) Merge(other *Stats) {
	if other == nil {
		return
	}
	s.SuccessfulTranslations += other.SuccessfulTranslations
	s.FailedTranslations += other.FailedTranslations
	s.TotalTokens += other.TotalTokens
	s.TotalProcessingTime += other.TotalProcessingTime
	s.SourceChars += other.SourceChars
	s.TargetChars += other.TargetChars
	s.Requests += other.Requests
	s.PromptTokens += other.PromptTokens
	s.OutputTokens += other.OutputTokens
	s.TotalCost += other.TotalCost
	s.confidenceSum += other.confidenceSum
	s.confidenceCount += other.confidenceCount
}
