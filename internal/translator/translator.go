// Package translator orchestrates batch translation: it splits extracted
// units into per-register batches, runs them through a bounded worker pool
// with rate limiting, retries each batch via the dispatch layer, and merges
// validated responses back onto the units. It owns no I/O besides the
// provider client it is given.
package translator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/apperrors"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/dispatch"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/language"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/logger"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/metadata"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/provider"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/stats"
)

// State represents the current state of a batch translation.
type State int

const (
	StateStarted State = iota
	StateInProgress
	StateCompleted
	StateCanceled
)

// Progress reports the state of one batch to the caller's callback.
type Progress struct {
	Batch        int
	TotalBatches int
	Attempt      int
	State        State
	Err          error
}

// Options tunes the orchestration. Zero values fall back to defaults.
type Options struct {
	// BatchSize is the number of units per provider request.
	BatchSize int
	// Concurrency is the number of concurrent provider requests.
	Concurrency int
	// QPS caps request starts per second across all workers.
	QPS int
	// RampUp spreads worker starts over this duration, easing a cold run
	// into a provider's rate limits.
	RampUp time.Duration
	// Retry is the per-batch retry policy.
	Retry dispatch.RetryConfig
	// Pricing is the catalog entry used to cost provider usage.
	Pricing metadata.Model
}

// DefaultOptions returns the tuning used when callers have no opinion.
func DefaultOptions() Options {
	return Options{
		BatchSize:   25,
		Concurrency: 3,
		QPS:         3,
		RampUp:      2 * time.Second,
		Retry: dispatch.RetryConfig{
			MaxAttempts:   3,
			InitialDelay:  time.Second,
			MaxDelay:      20 * time.Second,
			BackoffFactor: 2,
			IsRetryable:   apperrors.IsRetryable,
		},
	}
}

// Translator runs unit batches against one provider client.
type Translator struct {
	client  provider.Client
	srcLang language.Language
	tgtLang language.Language
	opts    Options
}

// New creates a Translator for a language pair.
func New(client provider.Client, srcLang, tgtLang language.Language, opts Options) (*Translator, error) {
	if client == nil {
		return nil, fmt.Errorf("provider client is required")
	}
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batchSize must be greater than 0, got %d", opts.BatchSize)
	}
	if opts.Concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be greater than 0, got %d", opts.Concurrency)
	}
	if opts.Retry.IsRetryable == nil {
		opts.Retry.IsRetryable = apperrors.IsRetryable
	}
	return &Translator{
		client:  client,
		srcLang: srcLang,
		tgtLang: tgtLang,
		opts:    opts,
	}, nil
}

// Result is the outcome of one TranslateUnits call.
type Result struct {
	// Units mirrors the input: same length and order, with Target and Meta
	// filled on units whose batch succeeded.
	Units []engine.Unit
	// Failed holds the units whose batch failed every attempt, in input
	// order, for session logging.
	Failed []engine.Unit
	// Stats aggregates unit and usage telemetry for the whole call.
	Stats *stats.Stats
}

// batch is a group of unit indices sharing one prompt register.
type batch struct {
	prompt  engine.PromptType
	indices []int
}

// splitBatches groups units by prompt register, preserving input order
// within each register, then chunks to the batch size. Registers never mix
// within a request because each register carries its own system prompt.
func splitBatches(units []engine.Unit, size int) []batch {
	var order []engine.PromptType
	byPrompt := make(map[engine.PromptType][]int)
	for i, u := range units {
		if _, ok := byPrompt[u.PromptType]; !ok {
			order = append(order, u.PromptType)
		}
		byPrompt[u.PromptType] = append(byPrompt[u.PromptType], i)
	}

	var batches []batch
	for _, prompt := range order {
		indices := byPrompt[prompt]
		for start := 0; start < len(indices); start += size {
			end := start + size
			if end > len(indices) {
				end = len(indices)
			}
			batches = append(batches, batch{prompt: prompt, indices: indices[start:end]})
		}
	}
	return batches
}

// TranslateUnits translates units concurrently and returns the merged
// result. It never fails the whole call for per-batch errors: failed
// batches leave their units untranslated and listed in Result.Failed.
func (t *Translator) TranslateUnits(ctx context.Context, units []engine.Unit, onProgress func(Progress)) Result {
	out := make([]engine.Unit, len(units))
	copy(out, units)
	agg := stats.New()
	if len(units) == 0 {
		return Result{Units: out, Stats: agg}
	}

	batches := splitBatches(units, t.opts.BatchSize)
	failedMarks := make([]bool, len(batches))
	processed := make([]bool, len(batches))

	var wg sync.WaitGroup
	var mu sync.Mutex

	rateCh, stopRate := newRateLimiter(t.opts.QPS)
	defer stopRate()

	jobs := make(chan int, len(batches))
	for i := range batches {
		jobs <- i
	}
	close(jobs)

	for w := 0; w < t.opts.Concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			if delay := rampDelay(worker, t.opts.Concurrency, t.opts.RampUp); delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if rateCh != nil {
					select {
					case <-ctx.Done():
						return
					case <-rateCh:
					}
				}
				if err := t.runBatch(ctx, batches[i], i, len(batches), units, out, agg, &mu, onProgress); err != nil {
					mu.Lock()
					failedMarks[i] = true
					mu.Unlock()
					logger.Error("Batch failed", "index", i, "register", string(batches[i].prompt), "error", err)
				} else {
					mu.Lock()
					processed[i] = true
					mu.Unlock()
				}
			}
		}(w)
	}

	wg.Wait()
	if ctx.Err() != nil && onProgress != nil {
		onProgress(Progress{
			Batch:        -1,
			TotalBatches: len(batches),
			State:        StateCanceled,
			Err:          ctx.Err(),
		})
	}

	var failed []engine.Unit
	for i, b := range batches {
		if processed[i] && !failedMarks[i] {
			continue
		}
		for _, idx := range b.indices {
			failed = append(failed, units[idx])
		}
	}

	agg.Add(out)
	return Result{Units: out, Failed: failed, Stats: agg}
}

// runBatch dispatches one batch with retries and writes merged targets into
// out. Batch index sets are disjoint, so out writes need no lock; stats and
// progress state do.
func (t *Translator) runBatch(ctx context.Context, b batch, index, total int, units, out []engine.Unit, agg *stats.Stats, mu *sync.Mutex, onProgress func(Progress)) error {
	req := provider.BatchRequest{
		SourceLanguage: t.srcLang.Name,
		TargetLanguage: t.tgtLang.Name,
		PromptType:     b.prompt,
		Items:          make([]provider.Item, 0, len(b.indices)),
	}
	for i, idx := range b.indices {
		u := units[idx]
		req.Items = append(req.Items, provider.Item{
			ID:      wireID(i),
			Field:   u.Field,
			Text:    u.Source,
			Context: u.Context,
		})
	}

	attempt := 0
	merged, err := dispatch.WithRetry(ctx, t.opts.Retry, func(ctx context.Context) ([]mergedUnit, error) {
		attempt++
		if onProgress != nil {
			state := StateStarted
			if attempt > 1 {
				state = StateInProgress
			}
			onProgress(Progress{Batch: index, TotalBatches: total, Attempt: attempt, State: state})
		}

		start := time.Now()
		resp, err := t.client.TranslateBatch(ctx, req)
		if err != nil {
			return nil, err
		}
		elapsed := time.Since(start)

		mu.Lock()
		agg.AddUsage(t.opts.Pricing, resp.Usage.PromptTokens, resp.Usage.OutputTokens)
		mu.Unlock()

		merged, err := mergeBatch(batchUnits(units, b.indices), resp)
		if err != nil {
			// Model output problems are non-deterministic; classify as
			// validation so the retry policy gets another shot.
			return nil, apperrors.Validation(err)
		}
		stamp(merged, resp.Usage, elapsed)
		return merged, nil
	})
	if err != nil {
		return err
	}

	for i, m := range merged {
		idx := b.indices[i]
		out[idx].Target = m.target
		out[idx].Meta = m.meta
	}
	if onProgress != nil {
		onProgress(Progress{Batch: index, TotalBatches: total, Attempt: attempt, State: StateCompleted})
	}
	return nil
}

func batchUnits(units []engine.Unit, indices []int) []engine.Unit {
	selected := make([]engine.Unit, 0, len(indices))
	for _, idx := range indices {
		selected = append(selected, units[idx])
	}
	return selected
}

// stamp fills unit metadata: tokens apportioned across the batch with the
// remainder on the first unit, elapsed time split evenly.
func stamp(merged []mergedUnit, usage provider.Usage, elapsed time.Duration) {
	n := len(merged)
	if n == 0 {
		return
	}
	share := usage.TotalTokens / n
	remainder := usage.TotalTokens - share*n
	perUnit := elapsed / time.Duration(n)
	for i := range merged {
		meta := &engine.UnitMeta{
			Tokens:         share,
			ProcessingTime: perUnit,
			Confidence:     merged[i].confidence,
		}
		if i == 0 {
			meta.Tokens += remainder
		}
		merged[i].meta = meta
	}
}

func newRateLimiter(qps int) (<-chan time.Time, func()) {
	if qps <= 0 {
		return nil, func() {}
	}
	interval := time.Second / time.Duration(qps)
	ticker := time.NewTicker(interval)
	return ticker.C, ticker.Stop
}

func rampDelay(worker, concurrency int, ramp time.Duration) time.Duration {
	if ramp <= 0 || concurrency <= 1 {
		return 0
	}
	return time.Duration(int64(ramp) * int64(worker) / int64(concurrency-1))
}
