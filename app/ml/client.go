package ml

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-flash-lite-latest"

// Client wraps the model backend used by the processing stages. Creating it
// is expensive, so one client is built lazily per worker process and reused
// for the process lifetime.
type Client struct {
	gClient *genai.Client
	model   string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("model API key is required (set GEMINI_API_KEY)")
	}
	if model == "" {
		model = DefaultModel
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	return &Client{gClient: gClient, model: model}, nil
}

// generate runs one model call and returns the raw text response.
func (c *Client) generate(ctx context.Context, parts []*genai.Part, config *genai.GenerateContentConfig) (string, error) {
	contents := []*genai.Content{{Parts: parts, Role: "user"}}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return text, nil
}
