package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/files"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/language"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/logger"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/metadata"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/provider"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/session"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/stats"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/translator"
)

// ResumeConfig holds the runtime collaborators for resuming a session.
// Tuning (engine, languages, batch size, concurrency) comes from the session
// log, not from here.
type ResumeConfig struct {
	Registry *engine.Registry
	Client   provider.Client
	Pricing  metadata.Model

	NoMemory   bool
	MemoryPath string

	OnProgress func(translator.Progress)
}

// Resume re-runs only the failed units recorded in a session log. It reads
// the partially translated output (succeeded fields already hold their
// translations there), verifies the failed units' source text is unchanged,
// translates just those units and writes the touched files back.
func Resume(ctx context.Context, logPath string, cfg ResumeConfig) (Result, error) {
	if logPath == "" {
		return Result{}, fmt.Errorf("session log path is required")
	}
	if cfg.Registry == nil {
		return Result{}, fmt.Errorf("engine registry is required")
	}
	if cfg.Client == nil {
		return Result{}, fmt.Errorf("provider client is required")
	}
	if err := files.RejectSymlinkPath(logPath); err != nil {
		return Result{}, err
	}

	l, err := session.Load(logPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load session log: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid session log: %w", err)
	}
	if name := cfg.Client.Name(); name != l.Provider {
		logger.Warn("Resuming with a different provider than the original run", "original", l.Provider, "current", name)
	}

	srcLang, _ := language.GetLanguage(l.SourceLang)
	tgtLang, _ := language.GetLanguage(l.TargetLang)

	projectRoot := session.ResolveProjectRoot(logPath, l.ProjectRoot)
	workRoot := projectRoot
	if l.OutputRoot != "" {
		workRoot = session.ResolveProjectRoot(logPath, l.OutputRoot)
	}

	eng, err := cfg.Registry.Get(l.EngineType)
	if err != nil {
		return Result{}, err
	}
	validation := eng.ValidateProject(workRoot)
	if !validation.Valid {
		return Result{Status: StatusFailure, Validation: validation},
			fmt.Errorf("project referenced by session log is no longer valid: %s", workRoot)
	}

	resourceFiles, err := eng.ReadProject(workRoot)
	if err != nil {
		return Result{Validation: validation}, err
	}
	units := eng.ExtractTranslations(resourceFiles)

	refSet := make(map[session.UnitRef]bool, len(l.FailedUnits))
	for _, ref := range l.FailedUnits {
		refSet[ref] = true
	}
	var pending []engine.Unit
	for _, u := range units {
		if refSet[session.RefFor(workRoot, u)] {
			pending = append(pending, u)
		}
	}
	if len(pending) != len(l.FailedUnits) {
		return Result{Validation: validation}, fmt.Errorf(
			"session log names %d failed units but the project yields %d; data files changed since the session was recorded",
			len(l.FailedUnits), len(pending))
	}
	if sum := session.ChecksumUnits(workRoot, pending); sum != l.UnitsChecksum {
		return Result{Validation: validation}, fmt.Errorf(
			"unit checksum mismatch: expected %s, got %s; data files changed since the session was recorded",
			l.UnitsChecksum, sum)
	}

	store := openMemory(Config{NoMemory: cfg.NoMemory, MemoryPath: cfg.MemoryPath}, projectRoot)
	if store != nil {
		defer store.Close()
	}

	toTranslate, _, hitUnits := prefillFromMemory(ctx, store, pending, srcLang.Code, tgtLang.Code)
	if len(hitUnits) > 0 {
		logger.Info("Translation memory hits", "count", len(hitUnits), "remaining", len(toTranslate))
	}

	var res translator.Result
	if len(toTranslate) > 0 {
		opts := translator.DefaultOptions()
		opts.BatchSize = l.BatchSize
		opts.Concurrency = l.Concurrency
		opts.Pricing = cfg.Pricing
		tr, err := translator.New(cfg.Client, srcLang, tgtLang, opts)
		if err != nil {
			return Result{Validation: validation}, fmt.Errorf("failed to initialize translator: %w", err)
		}
		logger.Info("Resuming translation", "provider", cfg.Client.Name(), "model", l.Model, "units", len(toTranslate))
		res = tr.TranslateUnits(ctx, toTranslate, cfg.OnProgress)
	} else {
		res = translator.Result{Stats: stats.New()}
	}
	st := res.Stats
	st.Add(hitUnits)

	recordToMemory(ctx, store, res.Units, srcLang.Code, tgtLang.Code)

	translated := append(append([]engine.Unit(nil), hitUnits...), res.Units...)
	status := Status(session.CalculateStatus(len(res.Failed), len(pending)))
	logger.Info("Resume finished", "status", string(status))

	result := Result{
		Status:      status,
		Stats:       st,
		OutputRoot:  workRoot,
		Validation:  validation,
		TotalUnits:  len(pending),
		FailedUnits: len(res.Failed),
		MemoryHits:  len(hitUnits),
	}

	if status == StatusSuccess || status == StatusPartialSuccess {
		applied := eng.ApplyTranslations(resourceFiles, translated)
		written, err := writeFiles(workRoot, workRoot, true, applied, translated)
		if err != nil {
			return result, fmt.Errorf("failed to save translated files: %w", err)
		}
		logger.Info("Saved translated files", "count", written, "root", workRoot)
	}

	if status == StatusSuccess {
		if err := os.Remove(logPath); err != nil {
			logger.Warn("Failed to remove session log after success", "path", logPath, "error", err)
		} else {
			logger.Info("Session log removed", "path", logPath)
		}
		return result, nil
	}

	// Some units failed again; rewrite the log so the next resume targets
	// only those.
	refs := make([]session.UnitRef, 0, len(res.Failed))
	for _, u := range res.Failed {
		refs = append(refs, session.RefFor(workRoot, u))
	}
	l.FailedUnits = refs
	l.UnitsChecksum = session.ChecksumUnits(workRoot, res.Failed)
	l.Status = session.CalculateStatus(len(res.Failed), l.TotalUnits)
	l.StatusReason = ""
	if ctx.Err() != nil {
		l.StatusReason = "canceled"
	}
	if err := os.Remove(logPath); err != nil {
		logger.Error("Failed to replace session log", "path", logPath, "error", err)
	} else if err := session.Save(logPath, l); err != nil {
		logger.Error("Failed to update session log", "path", logPath, "error", err)
	} else {
		logger.Warn("Units still failing - session log updated", "path", logPath)
		result.SessionPath = logPath
	}
	return result, nil
}
