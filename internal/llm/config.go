// Package llm provides the provider wire layer: endpoint configuration,
// request and response envelopes, and the retrying HTTP transport.
package llm

import (
	"fmt"
	"net/url"
	"strings"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

const (
	// DefaultBaseURL is the Gemini REST API root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is the model used for summary generation.
	DefaultModel = "gemini-1.5-flash"
)

// Config holds the endpoint configuration for the provider
type Config struct {
	Provider Provider
	BaseURL  string
	Model    string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		BaseURL:  DefaultBaseURL,
		Model:    DefaultModel,
	}
}

// WithModel returns a copy of the config using model.
func (c *Config) WithModel(model string) *Config {
	out := *c
	out.Model = model
	return &out
}

// WithBaseURL returns a copy of the config using baseURL.
func (c *Config) WithBaseURL(baseURL string) *Config {
	out := *c
	out.BaseURL = baseURL
	return &out
}

// GenerateURL builds the generateContent endpoint for the configured model,
// carrying the API key as the "key" query parameter.
func (c *Config) GenerateURL(apiKey string) (string, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	model := c.Model
	if model == "" {
		model = DefaultModel
	}

	u, err := url.Parse(strings.TrimSuffix(base, "/") + "/models/" + url.PathEscape(model) + ":generateContent")
	if err != nil {
		return "", fmt.Errorf("invalid provider base URL %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid provider base URL %q: missing scheme or host", base)
	}

	q := u.Query()
	q.Set("key", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
