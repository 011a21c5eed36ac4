package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiGenerator struct {
	client *genai.Client
	cfg    Config
}

func newGemini(ctx context.Context, cfg Config) (TextGenerator, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &geminiGenerator{client: c, cfg: cfg}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.cfg.Temperature),
	}
	if g.cfg.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = g.cfg.MaxOutputTokens
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(prompt), gc)
	if err != nil {
		return "", geminiError(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// geminiError lifts the API status out of genai errors so callers can tell 429 from 500.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &StatusError{StatusCode: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("gemini generate: %w", err)
}
