package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// DefaultAPIVersion is used when a candidate names no version.
const DefaultAPIVersion = "v1"

// Option adjusts the client configuration.
type Option func(*genai.ClientConfig)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(baseURL string) Option {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions.BaseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPClient = client
	}
}

// Factory builds candidates and shares one genai client per API version.
type Factory struct {
	apiKey string
	opts   []Option

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewFactory returns a Factory for the given API key.
func NewFactory(apiKey string, opts ...Option) (*Factory, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	return &Factory{apiKey: apiKey, opts: opts, clients: make(map[string]*genai.Client)}, nil
}

// Client returns the shared client for an API version.
func (f *Factory) Client(ctx context.Context, apiVersion string) (*genai.Client, error) {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.clients[apiVersion]; ok {
		return c, nil
	}
	cfg := &genai.ClientConfig{
		APIKey:  f.apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			APIVersion: apiVersion,
		},
	}
	for _, opt := range f.opts {
		opt(cfg)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client %s: %w", apiVersion, err)
	}
	f.clients[apiVersion] = client
	return client, nil
}

// Candidate builds a chain entry for model at apiVersion.
func (f *Factory) Candidate(ctx context.Context, model, apiVersion string) (*Candidate, error) {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	client, err := f.Client(ctx, apiVersion)
	if err != nil {
		return nil, err
	}
	return &Candidate{client: client, model: model, apiVersion: apiVersion}, nil
}

// Candidate calls one Gemini model with deterministic decoding.
type Candidate struct {
	client     *genai.Client
	model      string
	apiVersion string
}

// Name implements llm.Candidate.
func (c *Candidate) Name() string {
	return "gemini:" + c.model + "@" + c.apiVersion
}

// Complete implements llm.Candidate.
func (c *Candidate) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), generationConfig())
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("empty gemini response")
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no text content in gemini response")
	}
	return text, nil
}

func generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
		TopP:        genai.Ptr[float32](0.1),
		TopK:        genai.Ptr[float32](1),
	}
}
