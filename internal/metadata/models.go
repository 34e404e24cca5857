// Package metadata is the model catalog: which models each provider offers
// and what they bill per million tokens. Cost figures feed the run summary
// and are estimates; providers change prices without notice.
package metadata

// Provider identifiers used across the CLI, config and session logs.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderGoogleNMT = "google"
)

type Model struct {
	ID               string
	Label            string
	InputPerMillion  float64
	OutputPerMillion float64
}

var GeminiModels = []Model{
	{
		ID:               "gemini-3-flash-preview",
		Label:            "Gemini 3 Flash (preview)",
		InputPerMillion:  0.50,
		OutputPerMillion: 3.00,
	},
	{
		ID:               "gemini-3-pro-preview",
		Label:            "Gemini 3 Pro (preview)",
		InputPerMillion:  2.00,
		OutputPerMillion: 12.00,
	},
}

var OpenAIModels = []Model{
	{
		ID:               "gpt-5.2",
		Label:            "GPT-5.2",
		InputPerMillion:  1.75,
		OutputPerMillion: 14.00,
	},
}

// Local models are free; they stay in the catalog so the CLI can list them
// and the summary can show zero cost rather than guessing.
var OllamaModels = []Model{
	{ID: "qwen3", Label: "Qwen 3 (local)"},
	{ID: "llama3.3", Label: "Llama 3.3 (local)"},
}

const (
	DefaultGeminiInputPerMillion  = 2.00
	DefaultGeminiOutputPerMillion = 12.00
	DefaultOpenAIInputPerMillion  = 2.50
	DefaultOpenAIOutputPerMillion = 10.00
	// Cloud Translation bills per character; we meter it in characters
	// through the same per-million figure.
	GoogleNMTPerMillionChars = 20.00
)

func catalog(provider string) []Model {
	switch provider {
	case ProviderGemini:
		return GeminiModels
	case ProviderOpenAI:
		return OpenAIModels
	case ProviderOllama:
		return OllamaModels
	default:
		return nil
	}
}

// ModelIDs lists the known model IDs for a provider.
func ModelIDs(provider string) []string {
	models := catalog(provider)
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	return ids
}

// Pricing returns the pricing entry for a model. Unknown models fall back
// to a conservative per-provider default so cost estimates stay visible;
// the second result reports whether the model was found.
func Pricing(provider, modelID string) (Model, bool) {
	for _, m := range catalog(provider) {
		if m.ID == modelID {
			return m, true
		}
	}
	switch provider {
	case ProviderGemini:
		return Model{
			ID:               "default",
			Label:            "Default Gemini",
			InputPerMillion:  DefaultGeminiInputPerMillion,
			OutputPerMillion: DefaultGeminiOutputPerMillion,
		}, false
	case ProviderOpenAI:
		return Model{
			ID:               "default",
			Label:            "Default OpenAI",
			InputPerMillion:  DefaultOpenAIInputPerMillion,
			OutputPerMillion: DefaultOpenAIOutputPerMillion,
		}, false
	case ProviderGoogleNMT:
		return Model{
			ID:               "nmt",
			Label:            "Cloud Translation",
			OutputPerMillion: GoogleNMTPerMillionChars,
		}, false
	default:
		return Model{ID: "default", Label: "Unpriced"}, false
	}
}

// Cost estimates the spend for a token count under the given pricing.
func Cost(m Model, promptTokens, outputTokens int) float64 {
	return float64(promptTokens)/1e6*m.InputPerMillion +
		float64(outputTokens)/1e6*m.OutputPerMillion
}
