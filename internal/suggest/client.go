// internal/suggest/client.go

// Package suggest talks to the external text-completion service that powers
// the donation form's AI helper. The service is an opaque prompt-in,
// text-out endpoint; this package owns the prompts and the parsing of the
// JSON the model is asked to produce.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("missing suggestion service API key")

// Suggestions is the structured advice for a described situation.
type Suggestions struct {
	Items           []string `json:"items"`
	Impact          string   `json:"impact"`
	Recommendations []string `json:"recommendations"`
}

// ImpactAssessment summarizes the effect of a set of donations.
type ImpactAssessment struct {
	Impact      string   `json:"impact"`
	Communities []string `json:"communities"`
	Suggestions []string `json:"suggestions"`
}

// DonationSummary is the caller-provided description of one donation fed to
// the impact prompt.
type DonationSummary struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Condition string `json:"condition"`
}

// Client calls the text-completion endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) { client.httpClient = c }
}

// WithModel selects the completion model.
func WithModel(model string) Option {
	return func(client *Client) { client.model = model }
}

// New creates a suggestion client.
func New(endpoint, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      "gemini-pro",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// DonationSuggestions asks the advisor prompt about a described situation.
func (c *Client) DonationSuggestions(ctx context.Context, description string) (*Suggestions, error) {
	prompt := fmt.Sprintf(`As a donation advisor, analyze this situation and provide specific suggestions:
"%s"

Please provide:
1. Most needed items
2. Potential impact
3. Additional recommendations

Format the response in JSON with these keys: items (array), impact (string), recommendations (array)`, description)

	var out Suggestions
	if err := c.complete(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("donation suggestions: %w", err)
	}
	return &out, nil
}

// AssessImpact asks the impact-assessment prompt about a set of donations.
func (c *Client) AssessImpact(ctx context.Context, donations []DonationSummary) (*ImpactAssessment, error) {
	encoded, err := json.Marshal(donations)
	if err != nil {
		return nil, fmt.Errorf("encode donations: %w", err)
	}

	prompt := fmt.Sprintf(`As an impact assessment expert, analyze these donations:
%s

Please provide:
1. Total estimated impact
2. Communities benefited
3. Suggestions for increasing impact

Format the response in JSON with these keys: impact (string), communities (array), suggestions (array)`, encoded)

	var out ImpactAssessment
	if err := c.complete(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("assess impact: %w", err)
	}
	return &out, nil
}

// completionRequest and completionResponse are the wire shapes of the
// text-completion endpoint.
type completionRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// complete runs one prompt round-trip and decodes the JSON the model returns
// into target.
func (c *Client) complete(ctx context.Context, prompt string, target any) error {
	body, err := json.Marshal(completionRequest{Model: c.model, Prompt: prompt})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if err := json.Unmarshal([]byte(stripFences(completion.Text)), target); err != nil {
		return fmt.Errorf("parse completion text: %w", err)
	}
	return nil
}

// stripFences removes a markdown code fence the model sometimes wraps its
// JSON in.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
