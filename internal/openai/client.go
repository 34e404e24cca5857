// Package openai implements the translation provider for the OpenAI
// Responses API and compatible endpoints.
package openai

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

type requestData struct {
	Model           string       `json:"model"`
	Input           []inputItem  `json:"input"`
	Text            *textOptions `json:"text,omitempty"`
	MaxOutputTokens int          `json:"max_output_tokens,omitempty"`
}

type inputItem struct {
	Type    string `json:"type"`
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

type textOptions struct {
	Format *responseFormat `json:"format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type responseData struct {
	ID                string             `json:"id"`
	Status            string             `json:"status"`
	IncompleteDetails *incompleteDetails `json:"incomplete_details,omitempty"`
	Output            []outputItem       `json:"output"`
	Usage             usage              `json:"usage"`
}

type incompleteDetails struct {
	Reason string `json:"reason"`
}

type outputItem struct {
	Type    string            `json:"type"`
	Role    string            `json:"role,omitempty"`
	Content []responseContent `json:"content,omitempty"`
}

type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type errorEnvelope struct {
	Error errorDetails `json:"error"`
}

type errorDetails struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

func (e errorDetails) codeString() string {
	if e.Code == nil {
		return ""
	}
	return fmt.Sprint(e.Code)
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.openai.com/v1",
	}
}

// SetBaseURL points the client at an OpenAI-compatible endpoint.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

func (c *Client) Name() string {
	return "openai"
}

var _ provider.Client = (*Client)(nil)

// TranslateBatch sends one batch through the Responses API and decodes the
// translations.
func (c *Client) TranslateBatch(ctx context.Context, req provider.BatchRequest) (*provider.BatchResponse, error) {
	payload, err := provider.EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.generate(ctx, requestData{
		Input: []inputItem{
			{Type: "message", Role: "system", Content: provider.SystemPrompt(req)},
			{Type: "message", Role: "user", Content: string(payload)},
		},
		Text: &textOptions{Format: &responseFormat{Type: "json_object"}},
	})
	if err != nil {
		return nil, err
	}

	if resp.Status == "incomplete" {
		reason := "unknown"
		if resp.IncompleteDetails != nil {
			reason = resp.IncompleteDetails.Reason
		}
		return nil, apperrors.New(
			apperrors.KindValidation,
			fmt.Sprintf("OpenAI response was cut short (%s).", reason),
			fmt.Errorf("incomplete response %s: %s", resp.ID, reason),
		)
	}

	text := extractOutputText(resp)
	if text == "" {
		return nil, apperrors.Validation(fmt.Errorf("no output text in response %s", resp.ID))
	}
	items, err := provider.DecodeResponse([]byte(text))
	if err != nil {
		return nil, apperrors.Validation(fmt.Errorf("failed to decode OpenAI response: %w", err))
	}

	return &provider.BatchResponse{
		Items: items,
		Usage: provider.Usage{
			PromptTokens: resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

func (c *Client) generate(ctx context.Context, req requestData) (*responseData, error) {
	req.Model = c.model

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/responses"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	client := httpclient.Default()
	body, resp, err := httpclient.DoAndRead(client, httpReq)
	if err != nil {
		return nil, apperrors.New(
			apperrors.KindTransient,
			"OpenAI request failed due to a temporary network/runtime error.",
			fmt.Errorf("request failed: %w", err),
		)
	}

	if resp.StatusCode != http.StatusOK {
		details := parseErrorDetails(body)
		return nil, classifyOpenAIError(resp.StatusCode, resp.Status, details)
	}

	var result responseData
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.New(
			apperrors.KindValidation,
			"OpenAI response format was invalid.",
			fmt.Errorf("failed to decode response: %w", err),
		)
	}
	return &result, nil
}

func extractOutputText(resp *responseData) string {
	var combined string
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			if content.Type == "output_text" {
				combined += content.Text
			}
		}
	}
	return combined
}

func parseErrorDetails(body []byte) errorDetails {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return errorDetails{}
	}
	return envelope.Error
}

func classifyOpenAIError(statusCode int, status string, details errorDetails) error {
	code := details.codeString()
	cause := fmt.Errorf("openai status=%s type=%s code=%s message=%s", status, details.Type, code, details.Message)

	switch statusCode {
	case http.StatusTooManyRequests:
		return apperrors.New(
			apperrors.KindRateLimit,
			"OpenAI API rate limit exceeded (429): please try again later.",
			cause,
		)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.New(
			apperrors.KindAuth,
			fmt.Sprintf("OpenAI API authentication/authorization failed (%d): please verify your API key and permissions.", statusCode),
			cause,
		)
	case http.StatusNotFound:
		if isModelNotFound(details) {
			return apperrors.New(
				apperrors.KindBadRequest,
				"The model does not exist or you do not have access to it.",
				cause,
			)
		}
		return apperrors.New(
			apperrors.KindBadRequest,
			"OpenAI resource not found (404).",
			cause,
		)
	default:
		if statusCode >= 500 {
			return apperrors.New(
				apperrors.KindTransient,
				fmt.Sprintf("OpenAI server error (%d): please try again later.", statusCode),
				cause,
			)
		}
		return apperrors.New(
			apperrors.KindBadRequest,
			fmt.Sprintf("OpenAI API error (%d): %s", statusCode, status),
			cause,
		)
	}
}

func isModelNotFound(details errorDetails) bool {
	needle := strings.ToLower(details.codeString() + " " + details.Type + " " + details.Message)
	if strings.Contains(needle, "model_not_found") {
		return true
	}
	return strings.Contains(needle, "does not exist or you do not have access to it")
}
