package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/config"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/logger"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/metadata"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/pipeline"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/prompt"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/translator"
)

type translateOptions struct {
	engineType     string
	output         string
	providerName   string
	modelName      string
	baseURL        string
	credentials    string
	batchSize      int
	concurrency    int
	sourceLangCode string
	targetLangCode string
	yes            bool
	force          bool
	noMemory       bool
	memoryPath     string
	logFilePath    string
	allowEnv       bool
	envOnly        bool
	debug          bool
}

func newTranslateCmd() *cobra.Command {
	opts := translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate <project-root>",
		Short: "Translate a game project's data files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				_ = cmd.Usage()
				return fmt.Errorf("project root is required")
			}
			return runTranslate(cmd, args, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addTranslateFlags(cmd, &opts)
	return cmd
}

func addTranslateFlags(cmd *cobra.Command, opts *translateOptions) {
	cmd.Flags().StringVar(&opts.engineType, "engine", "rpgmv", "Game engine type (see 'translate-ai engines')")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output root for the translated copy (default: translate in place)")
	cmd.Flags().StringVar(&opts.providerName, "provider", "gemini", "Translation provider (gemini, openai, ollama, google)")
	cmd.Flags().StringVar(&opts.modelName, "model", "gemini-3-flash-preview", "Model name for LLM providers")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Override API base URL (openai, ollama)")
	cmd.Flags().StringVar(&opts.credentials, "credentials", "", "Service account credentials file (google provider)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 25, "Number of text units per request")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 3, "Number of concurrent API requests (1-20)")
	cmd.Flags().StringVar(&opts.sourceLangCode, "source", "ja", "Source language code (default: ja)")
	cmd.Flags().StringVar(&opts.targetLangCode, "target", "en", "Target language code (default: en)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Overwrite existing files without asking")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Proceed even when project validation reports problems")
	cmd.Flags().BoolVar(&opts.noMemory, "no-memory", false, "Disable the translation memory")
	cmd.Flags().StringVar(&opts.memoryPath, "memory", "", "Translation memory database path (default: .translate-ai.db in the project)")
	cmd.Flags().StringVar(&opts.logFilePath, "log-file", "", "Path to save machine-readable JSONL logs")
	cmd.Flags().BoolVar(&opts.allowEnv, "allow-env", false, "Allow reading API key from environment variables")
	cmd.Flags().BoolVar(&opts.envOnly, "env-only", false, "Use only environment variables for API keys")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
}

// applyProjectDefaults fills options the user did not set on the command
// line from the project's .translate-ai.yaml.
func applyProjectDefaults(cmd *cobra.Command, opts *translateOptions, pf *config.ProjectFile) {
	if pf == nil {
		return
	}
	set := cmd.Flags().Changed
	if pf.Engine != "" && !set("engine") {
		opts.engineType = pf.Engine
	}
	if pf.SourceLang != "" && !set("source") {
		opts.sourceLangCode = pf.SourceLang
	}
	if pf.TargetLang != "" && !set("target") {
		opts.targetLangCode = pf.TargetLang
	}
	if pf.Provider != "" && !set("provider") {
		opts.providerName = pf.Provider
	}
	if pf.Model != "" && !set("model") {
		opts.modelName = pf.Model
	}
	if pf.BaseURL != "" && !set("base-url") {
		opts.baseURL = pf.BaseURL
	}
	if pf.BatchSize > 0 && !set("batch-size") {
		opts.batchSize = pf.BatchSize
	}
	if pf.Concurrency > 0 && !set("concurrency") {
		opts.concurrency = pf.Concurrency
	}
	if pf.Output != "" && !set("output") {
		opts.output = pf.Output
	}
	if pf.NoMemory && !set("no-memory") {
		opts.noMemory = true
	}
}

func runTranslate(cmd *cobra.Command, args []string, opts *translateOptions) error {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Warning: expected 1 argument but got %d. Did you forget quotes around the path?\n", len(args))
		fmt.Fprintf(os.Stderr, "  Using project root: %s\n", args[0])
	}
	projectRoot := args[0]

	if err := initLogging(opts.debug, opts.logFilePath); err != nil {
		return err
	}

	pf, err := config.Load(projectRoot)
	if err != nil {
		return err
	}
	if pf != nil {
		logger.Info("Loaded project configuration", "file", config.FileName)
		applyProjectDefaults(cmd, opts, pf)
	}

	sourceCode, err := resolveLanguageCode(opts.sourceLangCode)
	if err != nil {
		return err
	}
	targetCode, err := resolveLanguageCode(opts.targetLangCode)
	if err != nil {
		return err
	}

	startTime := time.Now()

	ctx, stop := signalContext()
	defer stop()

	client, closeClient, err := buildClient(ctx, providerOptions{
		name:        opts.providerName,
		model:       opts.modelName,
		baseURL:     opts.baseURL,
		credentials: opts.credentials,
		sourceCode:  sourceCode,
		targetCode:  targetCode,
		allowEnv:    opts.allowEnv,
		envOnly:     opts.envOnly,
	})
	if err != nil {
		return err
	}
	defer closeClient()

	pricing, known := metadata.Pricing(opts.providerName, opts.modelName)
	if !known && opts.providerName != metadata.ProviderGoogleNMT {
		logger.Warn("Unknown model; using default pricing for cost estimates", "model", opts.modelName)
	}

	cfg := pipeline.Config{
		ProjectRoot: projectRoot,
		OutputRoot:  opts.output,
		EngineType:  opts.engineType,
		SourceLang:  sourceCode,
		TargetLang:  targetCode,
		Model:       opts.modelName,
		BatchSize:   opts.batchSize,
		Concurrency: opts.concurrency,
		Force:       opts.force,
		Overwrite:   opts.yes,
		NoMemory:    opts.noMemory,
		MemoryPath:  opts.memoryPath,
		Registry:    newRegistry(),
		Client:      client,
		Pricing:     pricing,
		OnProgress:  logProgress,
		OnConfirmOverwrite: func(path string) bool {
			confirmed, err := prompt.DefaultConfirmer().ConfirmOverwrite(path, opts.yes)
			if err != nil {
				logger.Error("Overwrite confirmation failed", "error", err)
				return false
			}
			return confirmed
		},
	}

	result, err := pipeline.Run(ctx, cfg)

	// Always print stats (even on partial success)
	printRunStats(result.Stats, time.Since(startTime), opts.providerName, opts.modelName)

	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("Translation canceled", "error", err)
			return nil
		}
		return err
	}

	return statusError(result)
}

func logProgress(p translator.Progress) {
	switch p.State {
	case translator.StateCompleted:
		logger.Info("Batch completed", "index", p.Batch, "total", p.TotalBatches)
	case translator.StateInProgress:
		logger.Warn("Batch retry", "index", p.Batch, "attempt", p.Attempt, "error", p.Err)
	}
}

func statusError(result pipeline.Result) error {
	switch result.Status {
	case pipeline.StatusSuccess, pipeline.StatusSkipped:
		return nil
	case pipeline.StatusPartialSuccess, pipeline.StatusFailure:
		if result.SessionPath != "" {
			return fmt.Errorf("translation finished with status: %s (session log: %s)", result.Status, result.SessionPath)
		}
		return fmt.Errorf("translation finished with status: %s", result.Status)
	default:
		return fmt.Errorf("translation finished with unknown status: %q", result.Status)
	}
}
