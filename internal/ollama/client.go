// Package ollama implements the translation provider for a local Ollama
// server. Local models are free but slower and less reliable at structured
// output, so responses go through the same strict decode path as the hosted
// providers.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/apperrors"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/httpclient"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/provider"
)

// DefaultBaseURL is the standard local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

type requestData struct {
	Model    string          `json:"model"`
	Messages []chatMessage   `json:"messages"`
	Format   json.RawMessage `json:"format,omitempty"`
	Stream   bool            `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseData struct {
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	DoneReason      string      `json:"done_reason,omitempty"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

type Client struct {
	model   string
	baseURL string
}

func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) Name() string {
	return "ollama"
}

var _ provider.Client = (*Client)(nil)

// TranslateBatch sends one batch through the chat endpoint and decodes the
// translations.
func (c *Client) TranslateBatch(ctx context.Context, req provider.BatchRequest) (*provider.BatchResponse, error) {
	payload, err := provider.EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.chat(ctx, requestData{
		Messages: []chatMessage{
			{Role: "system", Content: provider.SystemPrompt(req)},
			{Role: "user", Content: string(payload)},
		},
		Format: json.RawMessage(`"json"`),
	})
	if err != nil {
		return nil, err
	}

	if resp.Done && resp.DoneReason != "" && resp.DoneReason != "stop" {
		return nil, apperrors.New(
			apperrors.KindValidation,
			fmt.Sprintf("Ollama response was cut short (%s).", resp.DoneReason),
			fmt.Errorf("generation stopped: %s", resp.DoneReason),
		)
	}
	if resp.Message.Content == "" {
		return nil, apperrors.Validation(fmt.Errorf("no output text in Ollama response"))
	}
	items, err := provider.DecodeResponse([]byte(resp.Message.Content))
	if err != nil {
		return nil, apperrors.Validation(fmt.Errorf("failed to decode Ollama response: %w", err))
	}

	return &provider.BatchResponse{
		Items: items,
		Usage: provider.Usage{
			PromptTokens: resp.PromptEvalCount,
			OutputTokens: resp.EvalCount,
			TotalTokens:  resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}

func (c *Client) chat(ctx context.Context, req requestData) (*responseData, error) {
	req.Model = c.model
	req.Stream = false

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := httpclient.Default()
	body, resp, err := httpclient.DoAndRead(client, httpReq)
	if err != nil {
		return nil, apperrors.New(
			apperrors.KindTransient,
			"Ollama request failed; is the server running?",
			fmt.Errorf("request failed: %w", err),
		)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyOllamaError(resp.StatusCode, body)
	}

	var result responseData
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.New(
			apperrors.KindValidation,
			"Ollama response format was invalid.",
			fmt.Errorf("failed to decode response: %w", err),
		)
	}
	return &result, nil
}

func classifyOllamaError(statusCode int, body []byte) error {
	var envelope errorEnvelope
	_ = json.Unmarshal(body, &envelope)
	cause := fmt.Errorf("ollama status=%d message=%s", statusCode, envelope.Error)

	switch {
	case statusCode == http.StatusNotFound && strings.Contains(envelope.Error, "model"):
		return apperrors.New(
			apperrors.KindBadRequest,
			"The model is not pulled locally; run `ollama pull <model>` first.",
			cause,
		)
	case statusCode == http.StatusTooManyRequests:
		return apperrors.RateLimit(cause)
	case statusCode >= 500:
		return apperrors.New(
			apperrors.KindTransient,
			fmt.Sprintf("Ollama server error (%d): please try again.", statusCode),
			cause,
		)
	default:
		return apperrors.New(
			apperrors.KindBadRequest,
			fmt.Sprintf("Ollama request rejected (%d).", statusCode),
			cause,
		)
	}
}

// Ping reports whether the server answers on its tags endpoint, used by the
// CLI to fail fast before extracting a whole project.
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	_, resp, err := httpclient.DoAndRead(httpclient.Default(), httpReq)
	if err != nil {
		return fmt.Errorf("ollama not reachable at %s: %w", c.baseURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}
