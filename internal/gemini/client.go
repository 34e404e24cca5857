// Package gemini implements the Gemini-backed translation provider.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/apperrors"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/httpclient"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/provider"
)

// Client talks to the Gemini API. It is safe for concurrent use: each batch
// builds its own model handle so per-register system instructions never
// race.
type Client struct {
	client    *genai.Client
	modelName string
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey string, modelName string) (*Client, error) {
	// Note: We avoid option.WithHTTPClient because it interferes with the
	// genai library's internal header injection for API keys, causing 403
	// errors. Timeouts are enforced via context in TranslateBatch instead.
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{
		client:    client,
		modelName: modelName,
	}, nil
}

// Close closes the underlying genai client.
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Name() string {
	return "gemini"
}

var _ provider.Client = (*Client)(nil)

// TranslateBatch sends one batch to Gemini and decodes the translations.
func (c *Client) TranslateBatch(ctx context.Context, req provider.BatchRequest) (*provider.BatchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, httpclient.DefaultTimeout)
	defer cancel()

	payload, err := provider.EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	model := c.client.GenerativeModel(c.modelName)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(provider.SystemPrompt(req))},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(string(payload)))
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	text, err := extractResponseText(resp)
	if err != nil {
		return nil, apperrors.Validation(err)
	}
	items, err := provider.DecodeResponse([]byte(text))
	if err != nil {
		return nil, apperrors.Validation(fmt.Errorf("failed to decode Gemini response: %w", err))
	}

	out := &provider.BatchResponse{Items: items}
	if resp.UsageMetadata != nil {
		out.Usage = provider.Usage{
			PromptTokens: int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response received from Gemini")
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	for i, candidate := range resp.Candidates {
		if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
			continue
		}
		var combined string
		for _, part := range candidate.Content.Parts {
			text, ok := part.(genai.Text)
			if !ok {
				continue
			}
			combined += string(text)
		}
		if combined != "" {
			return combined, nil
		}
		if i == len(resp.Candidates)-1 {
			break
		}
	}
	return "", fmt.Errorf("no text parts found in Gemini response")
}
