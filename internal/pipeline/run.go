// Package pipeline wires the whole translation flow together: engine lookup,
// project validation, extraction, translation memory, batch translation,
// reinjection, atomic writes and session logging. It is the only layer that
// touches the disk for output; the core packages below it stay pure.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/files"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/language"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/logger"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/memory"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/session"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/stats"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/translator"
)

// DefaultMemoryFile is the translation memory filename used when no explicit
// path is configured, created under the project root.
const DefaultMemoryFile = ".translate-ai.db"

// Run executes the full translation pipeline.
func Run(ctx context.Context, cfg Config) (Result, error) {
	var notes []string
	cfg, notes = cfg.Normalize()
	for _, note := range notes {
		logger.Warn("Config normalized", "detail", note)
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid configuration: %w", err)
	}

	srcLang, ok := language.GetLanguage(cfg.SourceLang)
	if !ok {
		return Result{}, fmt.Errorf("unsupported source language: %s", cfg.SourceLang)
	}
	tgtLang, ok := language.GetLanguage(cfg.TargetLang)
	if !ok {
		return Result{}, fmt.Errorf("unsupported target language: %s", cfg.TargetLang)
	}
	if srcLang.Code == tgtLang.Code {
		return Result{}, fmt.Errorf("source and target languages must be different (%s)", srcLang.Code)
	}

	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve project root: %w", err)
	}
	inPlace := cfg.OutputRoot == ""
	outRoot := root
	if !inPlace {
		outRoot, err = filepath.Abs(cfg.OutputRoot)
		if err != nil {
			return Result{}, fmt.Errorf("failed to resolve output root: %w", err)
		}
		if outRoot == root {
			return Result{}, fmt.Errorf("output root and project root are the same (%s); omit the output to translate in place", root)
		}
		if err := files.RejectSymlinkPath(outRoot); err != nil {
			return Result{}, err
		}
	}

	eng, err := cfg.Registry.Get(cfg.EngineType)
	if err != nil {
		return Result{}, err
	}

	validation := eng.ValidateProject(root)
	if !validation.Valid {
		for _, p := range validation.Problems {
			logger.Warn("Project problem", "detail", p)
		}
		if !cfg.Force {
			return Result{Status: StatusFailure, Validation: validation},
				fmt.Errorf("project failed validation with %d problems (use --force to proceed anyway)", len(validation.Problems))
		}
		logger.Warn("Proceeding despite validation problems", "count", len(validation.Problems))
	}

	resourceFiles, err := eng.ReadProject(root)
	if err != nil {
		return Result{Validation: validation}, err
	}
	units := eng.ExtractTranslations(resourceFiles)
	logger.Info("Extracted translatable text", "units", len(units), "files", len(resourceFiles))
	if len(units) == 0 {
		return Result{Status: StatusSuccess, Stats: stats.New(), OutputRoot: outRoot, Validation: validation}, nil
	}

	if !confirmWrite(cfg, eng, root, outRoot, inPlace) {
		logger.Info("Existing files would be overwritten. Aborted by user.")
		return Result{Status: StatusSkipped, Validation: validation}, nil
	}

	store := openMemory(cfg, root)
	if store != nil {
		defer store.Close()
	}

	pending, pendingIdx, hitUnits := prefillFromMemory(ctx, store, units, srcLang.Code, tgtLang.Code)
	if len(hitUnits) > 0 {
		logger.Info("Translation memory hits", "count", len(hitUnits), "remaining", len(pending))
	}

	var res translator.Result
	if len(pending) > 0 {
		opts := translator.DefaultOptions()
		opts.BatchSize = cfg.BatchSize
		opts.Concurrency = cfg.Concurrency
		opts.Pricing = cfg.Pricing
		tr, err := translator.New(cfg.Client, srcLang, tgtLang, opts)
		if err != nil {
			return Result{Validation: validation}, fmt.Errorf("failed to initialize translator: %w", err)
		}
		logger.Info("Starting translation", "provider", cfg.Client.Name(), "model", cfg.Model, "units", len(pending))
		res = tr.TranslateUnits(ctx, pending, cfg.OnProgress)
		for j, idx := range pendingIdx {
			units[idx] = res.Units[j]
		}
	} else {
		res = translator.Result{Stats: stats.New()}
	}
	st := res.Stats
	st.Add(hitUnits)

	recordToMemory(ctx, store, res.Units, srcLang.Code, tgtLang.Code)

	status := Status(session.CalculateStatus(len(res.Failed), len(units)))
	logger.Info("Translation finished", "status", string(status))

	result := Result{
		Status:      status,
		Stats:       st,
		OutputRoot:  outRoot,
		Validation:  validation,
		TotalUnits:  len(units),
		FailedUnits: len(res.Failed),
		MemoryHits:  len(hitUnits),
	}

	if status == StatusSuccess || status == StatusPartialSuccess {
		applied := eng.ApplyTranslations(resourceFiles, units)
		written, err := writeFiles(root, outRoot, inPlace, applied, units)
		if err != nil {
			return result, fmt.Errorf("failed to save translated files: %w", err)
		}
		logger.Info("Saved translated files", "count", written, "root", outRoot)
	}

	if status == StatusPartialSuccess || status == StatusFailure {
		logPath, err := saveSessionLog(cfg, root, outRoot, inPlace, units, res.Failed, status, ctx.Err() != nil)
		if err != nil {
			logger.Error("Failed to save session log", "error", err)
		} else {
			result.SessionPath = logPath
			if status == StatusPartialSuccess {
				logger.Warn("Partial success - session log saved", "path", logPath)
			} else {
				logger.Error("Translation failed - session log saved", "path", logPath)
			}
		}
	}

	return result, nil
}

// confirmWrite decides whether the run may write its output. A fresh output
// root needs no confirmation; existing output and in-place runs do.
func confirmWrite(cfg Config, eng *engine.Engine, root, outRoot string, inPlace bool) bool {
	target := outRoot
	if !inPlace {
		// A new output root has nothing to clobber.
		var fs files.Disk
		if !fs.DirExists(eng.DataDir(outRoot)) {
			return true
		}
	} else {
		target = root
	}
	if cfg.OnConfirmOverwrite != nil {
		return cfg.OnConfirmOverwrite(target)
	}
	return cfg.Overwrite
}

// openMemory opens the translation memory, or returns nil when it is
// disabled or unavailable. A broken memory never stops a run.
func openMemory(cfg Config, root string) *memory.Store {
	if cfg.NoMemory {
		return nil
	}
	path := cfg.MemoryPath
	if path == "" {
		path = filepath.Join(root, DefaultMemoryFile)
	}
	store, err := memory.Open(path)
	if err != nil {
		logger.Warn("Translation memory unavailable", "path", path, "error", err)
		return nil
	}
	return store
}

// prefillFromMemory fills targets for remembered sources and returns the
// units still needing a provider, their indices into units, and the units
// satisfied from memory.
func prefillFromMemory(ctx context.Context, store *memory.Store, units []engine.Unit, srcCode, tgtCode string) ([]engine.Unit, []int, []engine.Unit) {
	var pending []engine.Unit
	var pendingIdx []int
	var hits []engine.Unit
	for i, u := range units {
		if store != nil {
			target, ok, err := store.Lookup(ctx, memory.Key{
				SourceText: u.Source,
				SourceLang: srcCode,
				TargetLang: tgtCode,
				PromptType: u.PromptType,
			})
			if err != nil {
				logger.Warn("Translation memory lookup failed", "error", err)
			} else if ok {
				units[i].Target = target
				hits = append(hits, units[i])
				continue
			}
		}
		pending = append(pending, u)
		pendingIdx = append(pendingIdx, i)
	}
	return pending, pendingIdx, hits
}

// recordToMemory remembers freshly translated pairs. Failures are logged,
// never fatal.
func recordToMemory(ctx context.Context, store *memory.Store, units []engine.Unit, srcCode, tgtCode string) {
	if store == nil {
		return
	}
	for _, u := range units {
		if !u.Translated() {
			continue
		}
		err := store.Record(ctx, memory.Key{
			SourceText: u.Source,
			SourceLang: srcCode,
			TargetLang: tgtCode,
			PromptType: u.PromptType,
		}, u.Target)
		if err != nil {
			logger.Warn("Failed to record translation memory entry", "error", err)
			return
		}
	}
}

// writeFiles persists the applied documents. With a separate output root the
// whole required file set is mirrored so the copy is a loadable project;
// in-place runs rewrite only files that received a translation.
func writeFiles(root, outRoot string, inPlace bool, applied []engine.ResourceFile, units []engine.Unit) (int, error) {
	changed := make(map[string]bool)
	for _, u := range units {
		if u.Translated() {
			changed[u.File] = true
		}
	}

	var fs files.Disk
	written := 0
	for _, f := range applied {
		if inPlace && !changed[f.Path] {
			continue
		}
		rel, err := filepath.Rel(root, f.Path)
		if err != nil {
			return written, fmt.Errorf("failed to relativize %s: %w", f.Path, err)
		}
		dest := filepath.Join(outRoot, rel)
		if !inPlace {
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return written, err
			}
		}
		if err := fs.WriteJSON(dest, f.Content); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// saveSessionLog writes the resume log next to the output, where the
// partially translated files live. The checksum covers only the failed
// units: their source text must be intact when resuming, while succeeded
// fields may already hold translations.
func saveSessionLog(cfg Config, root, outRoot string, inPlace bool, units, failed []engine.Unit, status Status, canceled bool) (string, error) {
	if !inPlace {
		if err := os.MkdirAll(outRoot, 0o755); err != nil {
			return "", err
		}
	}
	logPath := session.GeneratePath(outRoot)
	relRoot, err := session.ToRelativeProjectRoot(logPath, root)
	if err != nil {
		return "", fmt.Errorf("failed to relativize project root: %w", err)
	}
	relOut := ""
	if !inPlace {
		relOut, err = session.ToRelativeProjectRoot(logPath, outRoot)
		if err != nil {
			return "", fmt.Errorf("failed to relativize output root: %w", err)
		}
	}

	refs := make([]session.UnitRef, 0, len(failed))
	for _, u := range failed {
		refs = append(refs, session.RefFor(root, u))
	}

	l := &session.Log{
		LogVersion:    session.CurrentLogVersion,
		EngineType:    cfg.EngineType,
		ProjectRoot:   relRoot,
		OutputRoot:    relOut,
		UnitsChecksum: session.ChecksumUnits(root, failed),
		SourceLang:    cfg.SourceLang,
		TargetLang:    cfg.TargetLang,
		Provider:      cfg.Client.Name(),
		Model:         cfg.Model,
		BatchSize:     cfg.BatchSize,
		Concurrency:   cfg.Concurrency,
		TotalUnits:    len(units),
		FailedUnits:   refs,
		Status:        string(status),
	}
	if canceled {
		l.StatusReason = "canceled"
	}
	if err := session.Save(logPath, l); err != nil {
		return "", err
	}
	return logPath, nil
}
