package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/logger"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/metadata"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/pipeline"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/session"
)

var runResumePipeline = pipeline.Resume

type resumeOptions struct {
	baseURL     string
	credentials string
	noMemory    bool
	memoryPath  string
	allowEnv    bool
	envOnly     bool
	debug       bool
}

func newResumeCmd() *cobra.Command {
	opts := resumeOptions{}
	cmd := &cobra.Command{
		Use:   "resume <session_log.json>",
		Short: "Re-translate the failed units recorded in a session log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				_ = cmd.Usage()
				return fmt.Errorf("session log path is required")
			}
			return runResume(cmd, args, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Override API base URL (openai, ollama)")
	cmd.Flags().StringVar(&opts.credentials, "credentials", "", "Service account credentials file (google provider)")
	cmd.Flags().BoolVar(&opts.noMemory, "no-memory", false, "Disable the translation memory")
	cmd.Flags().StringVar(&opts.memoryPath, "memory", "", "Translation memory database path")
	cmd.Flags().BoolVar(&opts.allowEnv, "allow-env", false, "Allow reading API key from environment variables")
	cmd.Flags().BoolVar(&opts.envOnly, "env-only", false, "Use only environment variables for API keys")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	return cmd
}

func runResume(cmd *cobra.Command, args []string, opts *resumeOptions) error {
	startTime := time.Now()
	logPath := args[0]

	if err := initLogging(opts.debug, ""); err != nil {
		return err
	}

	// The log names the provider and model the run was started with; the
	// client is rebuilt from those so resumed batches match the originals.
	l, err := session.Load(logPath)
	if err != nil {
		return fmt.Errorf("failed to load session log: %w", err)
	}
	if err := l.Validate(); err != nil {
		return fmt.Errorf("invalid session log: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	client, closeClient, err := buildClient(ctx, providerOptions{
		name:        l.Provider,
		model:       l.Model,
		baseURL:     opts.baseURL,
		credentials: opts.credentials,
		sourceCode:  l.SourceLang,
		targetCode:  l.TargetLang,
		allowEnv:    opts.allowEnv,
		envOnly:     opts.envOnly,
	})
	if err != nil {
		return err
	}
	defer closeClient()

	pricing, _ := metadata.Pricing(l.Provider, l.Model)

	result, err := runResumePipeline(ctx, logPath, pipeline.ResumeConfig{
		Registry:   newRegistry(),
		Client:     client,
		Pricing:    pricing,
		NoMemory:   opts.noMemory,
		MemoryPath: opts.memoryPath,
		OnProgress: logProgress,
	})

	printRunStats(result.Stats, time.Since(startTime), l.Provider, l.Model)

	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("Resume canceled", "error", err)
			return nil
		}
		return err
	}
	return statusError(result)
}
