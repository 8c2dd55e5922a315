package llm

import (
	"cmp"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "google/gemini-2.5-flash"
	openRouterAppTitle       = "readcheck"
)

// NewOpenRouterProvider targets OpenRouter's OpenAI-compatible API. Model
// IDs are vendor-qualified ("google/gemini-2.5-flash") and passed through
// unchanged.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}

	c := openai.DefaultConfig(cfg.APIKey)
	c.BaseURL = cmp.Or(cfg.BaseURL, defaultOpenRouterBaseURL)
	c.HTTPClient = &http.Client{Transport: appTitleTransport{base: http.DefaultTransport}}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(c),
		model:  cmp.Or(cfg.Model, defaultOpenRouterModel),
	}, nil
}

// appTitleTransport names the application on every request so calls are
// attributed in the OpenRouter dashboard.
type appTitleTransport struct {
	base http.RoundTripper
}

func (t appTitleTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("X-Title", openRouterAppTitle)
	return t.base.RoundTrip(r)
}
