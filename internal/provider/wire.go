package provider

import (
	"encoding/json"
	"fmt"
)

// wireRequest is the JSON document LLM providers receive as the user
// message.
type wireRequest struct {
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Category       string `json:"category"`
	Items          []Item `json:"items"`
}

// wireResponse is the JSON object models are instructed to answer with.
type wireResponse struct {
	Translations []ResponseItem `json:"translations"`
}

// EncodeRequest renders a batch request as the JSON payload sent to LLM
// providers.
func EncodeRequest(req BatchRequest) ([]byte, error) {
	data, err := json.Marshal(wireRequest{
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Category:       string(req.PromptType),
		Items:          req.Items,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return data, nil
}

// DecodeResponse parses a model's JSON answer. The expected shape is an
// object with a translations array; a bare array is accepted as a fallback
// because models drop the wrapper now and then.
func DecodeResponse(data []byte) ([]ResponseItem, error) {
	var resp wireResponse
	if err := json.Unmarshal(data, &resp); err == nil && resp.Translations != nil {
		return resp.Translations, nil
	}
	var items []ResponseItem
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}
	return nil, fmt.Errorf("response is neither a translations object nor an array")
}
