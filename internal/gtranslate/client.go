// Package gtranslate implements the translation provider backed by the
// Google Cloud Translation API (classic NMT, not an LLM). It is the cheap,
// deterministic option: no prompt registers, no hallucinated IDs, but also
// no awareness of game control codes, so the merge validation layer matters
// more here, not less.
package gtranslate

import (
	"context"
	"fmt"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/apperrors"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/provider"
	"github.com/rivo/uniseg"
)

// api abstracts the translate.Client surface we use so tests can fake the
// network.
type api interface {
	Translate(ctx context.Context, inputs []string, target language.Tag, opts *translate.Options) ([]translate.Translation, error)
	Close() error
}

type Client struct {
	api       api
	sourceTag language.Tag
	targetTag language.Tag
}

// NewClient creates a Cloud Translation client for a language pair.
// credentialsFile may be empty, in which case application default
// credentials apply.
func NewClient(ctx context.Context, credentialsFile, sourceCode, targetCode string) (*Client, error) {
	sourceTag, err := language.Parse(sourceCode)
	if err != nil {
		return nil, fmt.Errorf("invalid source language %q: %w", sourceCode, err)
	}
	targetTag, err := language.Parse(targetCode)
	if err != nil {
		return nil, fmt.Errorf("invalid target language %q: %w", targetCode, err)
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation client: %w", err)
	}
	return &Client{api: c, sourceTag: sourceTag, targetTag: targetTag}, nil
}

func (c *Client) Close() error {
	return c.api.Close()
}

func (c *Client) Name() string {
	return "google"
}

var _ provider.Client = (*Client)(nil)

// TranslateBatch translates the batch's texts in one API call. Item order is
// positional: the API returns one translation per input in input order, so
// IDs and fields are echoed from the request rather than parsed back.
func (c *Client) TranslateBatch(ctx context.Context, req provider.BatchRequest) (*provider.BatchResponse, error) {
	if len(req.Items) == 0 {
		return &provider.BatchResponse{}, nil
	}

	inputs := make([]string, len(req.Items))
	chars := 0
	for i, item := range req.Items {
		inputs[i] = item.Text
		chars += uniseg.GraphemeClusterCount(item.Text)
	}

	translations, err := c.api.Translate(ctx, inputs, c.targetTag, &translate.Options{
		Source: c.sourceTag,
		Format: translate.Text,
	})
	if err != nil {
		return nil, apperrors.New(
			apperrors.KindTransient,
			"Cloud Translation request failed.",
			fmt.Errorf("translate: %w", err),
		)
	}
	if len(translations) != len(req.Items) {
		return nil, apperrors.Validation(fmt.Errorf(
			"translation count mismatch: sent %d, got %d", len(req.Items), len(translations)))
	}

	items := make([]provider.ResponseItem, len(req.Items))
	for i, tr := range translations {
		items[i] = provider.ResponseItem{
			ID:    req.Items[i].ID,
			Field: req.Items[i].Field,
			Text:  tr.Text,
		}
	}
	// Cloud Translation bills per character; metering characters through the
	// output-token counter keeps the cost summary honest.
	return &provider.BatchResponse{
		Items: items,
		Usage: provider.Usage{OutputTokens: chars, TotalTokens: chars},
	}, nil
}
