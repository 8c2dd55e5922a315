package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/readcheck/internal/store"
)

// NewProvider creates a Provider from configuration.
// The base provider is wrapped, innermost first, with event logging, the
// rate limiter and the overload retry, so every upstream attempt is logged.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log *zap.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		// Marks every open answer correct; for local development only.
		base = NewMockProvider().WithFallback(MockVerdict(true, "Mock judgment."))
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return Wrap(base, cfg, events, log), nil
}

// Wrap applies the standard decorator chain to an already built provider.
func Wrap(base Provider, cfg Config, events store.EventRepo, log *zap.Logger) Provider {
	logged := WithLogging(base, cfg.Provider, events, log)
	limited := WithRateLimit(logged, cfg.RequestsPerSecond)
	return WithRetry(limited, cfg.Retry)
}
