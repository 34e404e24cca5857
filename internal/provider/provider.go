// Package provider defines the contract between the batch translation layer
// and the upstream translation services, plus the wire payloads and prompt
// text the LLM-backed clients share. Concrete clients live in their own
// packages (gemini, openai, ollama, gtranslate).
package provider

import (
	"context"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
)

// Item is one string sent upstream for translation. ID is a caller-assigned
// identifier, unique within the batch, that the model must echo back so
// responses can be matched without positional assumptions.
type Item struct {
	ID      string `json:"id"`
	Field   string `json:"field"`
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}

// BatchRequest is one translation call: a set of items sharing a language
// pair and prompt register.
type BatchRequest struct {
	SourceLanguage string
	TargetLanguage string
	PromptType     engine.PromptType
	Items          []Item
}

// ResponseItem is one translated string. Confidence is optional; LLM
// providers rarely report one, classic NMT does.
type ResponseItem struct {
	ID         string  `json:"id"`
	Field      string  `json:"field"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Usage is the token accounting for one request. Zero for providers that
// do not meter tokens.
type Usage struct {
	PromptTokens int
	OutputTokens int
	TotalTokens  int
}

// BatchResponse is the upstream answer to one BatchRequest.
type BatchResponse struct {
	Items []ResponseItem
	Usage Usage
}

// Client is a translation backend. TranslateBatch returns classified errors
// (apperrors kinds) so the retry layer can tell transient failures from
// fatal ones.
type Client interface {
	Name() string
	TranslateBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error)
}
