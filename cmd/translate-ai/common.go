package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/auth"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/cleanup"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/files"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/gemini"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/gtranslate"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/language"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/logger"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/metadata"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/ollama"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/openai"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/provider"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/rpgmv"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/stats"
)

var (
	isTerminal   = term.IsTerminal
	getKey       = auth.GetKey
	getEnvKey    = auth.GetEnvKey
	getStatus    = auth.GetStatus
	promptForKey = auth.PromptForAPIKey
)

// newRegistry assembles the engine registry over the live filesystem. Every
// entry point builds exactly one and passes it down.
func newRegistry() *engine.Registry {
	return engine.NewRegistry(rpgmv.Builders(files.Disk{}))
}

// resolveAPIKey handles the logic for finding the API key.
func resolveAPIKey(service string, allowEnv, envOnly bool) (string, string, error) {
	if envOnly {
		if key, ok := getEnvKey(service); ok {
			return key, "Environment Variable", nil
		}
		return "", "", fmt.Errorf("env-only set but %s_API_KEY is not set", strings.ToUpper(service))
	}

	if key, source := getKey(service, false); key != "" {
		return key, source, nil
	}

	if allowEnv {
		if key, ok := getEnvKey(service); ok {
			return key, "Environment Variable", nil
		}
	}

	if isTerminal(int(os.Stdin.Fd())) {
		key, err := promptForKey(fmt.Sprintf("%s API Key (press Enter to skip): ", serviceLabel(service)))
		if err != nil {
			return "", "", fmt.Errorf("error reading API key: %w", err)
		}
		if strings.TrimSpace(key) != "" {
			return strings.TrimSpace(key), "Terminal Prompt", nil
		}
	}

	if !isTerminal(int(os.Stdin.Fd())) {
		return "", "", fmt.Errorf("no API key available (non-interactive shell); set keychain or use --allow-env")
	}
	if allowEnv {
		return "", "", fmt.Errorf("API key is required; not found in keychain or environment")
	}
	return "", "", fmt.Errorf("API key is required; not found in keychain (environment disabled by default; use --allow-env)")
}

func serviceLabel(service string) string {
	switch service {
	case metadata.ProviderOpenAI:
		return "OpenAI"
	default:
		return "Gemini"
	}
}

func resolveLanguageCode(input string) (string, error) {
	if lang, ok := language.GetLanguage(input); ok {
		return lang.Code, nil
	}
	needle := strings.TrimSpace(input)
	if needle == "" {
		return "", fmt.Errorf("language is empty")
	}
	for _, entry := range language.GetSupportedLanguages() {
		if strings.EqualFold(entry.Name, needle) {
			return entry.Code, nil
		}
	}
	return "", fmt.Errorf("unsupported language: %s", input)
}

// providerOptions is what buildClient needs to construct any backend.
type providerOptions struct {
	name        string
	model       string
	baseURL     string
	credentials string
	sourceCode  string
	targetCode  string
	allowEnv    bool
	envOnly     bool
}

// buildClient constructs the provider client named in opts. The returned
// close function is never nil.
func buildClient(ctx context.Context, opts providerOptions) (provider.Client, func() error, error) {
	noop := func() error { return nil }
	switch opts.name {
	case metadata.ProviderGemini:
		key, source, err := resolveAPIKey(metadata.ProviderGemini, opts.allowEnv, opts.envOnly)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("Using API Key", "service", metadata.ProviderGemini, "source", source)
		c, err := gemini.NewClient(ctx, key, opts.model)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return c, c.Close, nil

	case metadata.ProviderOpenAI:
		key, source, err := resolveAPIKey(metadata.ProviderOpenAI, opts.allowEnv, opts.envOnly)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("Using API Key", "service", metadata.ProviderOpenAI, "source", source)
		c := openai.NewClient(key, opts.model)
		if opts.baseURL != "" {
			c.SetBaseURL(opts.baseURL)
		}
		return c, noop, nil

	case metadata.ProviderOllama:
		c := ollama.NewClient(opts.baseURL, opts.model)
		if err := c.Ping(ctx); err != nil {
			return nil, noop, fmt.Errorf("ollama is not reachable: %w", err)
		}
		return c, noop, nil

	case metadata.ProviderGoogleNMT:
		c, err := gtranslate.NewClient(ctx, opts.credentials, opts.sourceCode, opts.targetCode)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create Cloud Translation client: %w", err)
		}
		return c, c.Close, nil

	default:
		return nil, noop, fmt.Errorf("unsupported provider %q (supported: gemini, openai, ollama, google)", opts.name)
	}
}

// initLogging sets up the global logger, optionally teeing JSONL records
// into a log file.
func initLogging(debug bool, logFilePath string) error {
	logLevel := logger.LevelInfo
	if debug {
		logLevel = logger.LevelDebug
	}
	var logFileW io.Writer
	if logFilePath != "" {
		if err := files.RejectSymlinkPath(logFilePath); err != nil {
			return err
		}
		f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register(f.Close)
		logFileW = f
	}
	logger.Init(logLevel, logFileW)
	return nil
}

func printRunStats(st *stats.Stats, duration time.Duration, providerName, model string) {
	fmt.Println("\n--- Execution Stats ---")
	fmt.Printf("Time: %s\n", duration)
	if model != "" {
		fmt.Printf("Provider: %s (%s)\n", providerName, model)
	} else {
		fmt.Printf("Provider: %s\n", providerName)
	}
	if st == nil {
		return
	}
	fmt.Printf("Units: %d translated, %d failed\n", st.SuccessfulTranslations, st.FailedTranslations)
	if st.Requests > 0 {
		fmt.Printf("Requests: %d\n", st.Requests)
		fmt.Printf("Tokens: In=%d, Out=%d\n", st.PromptTokens, st.OutputTokens)
		fmt.Printf("Estimated Cost: $%.5f\n", st.TotalCost)
	}
	if avg := st.AverageConfidence(); avg > 0 {
		fmt.Printf("Average Confidence: %.2f\n", avg)
	}
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("Cancellation requested")
		cancel()
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
