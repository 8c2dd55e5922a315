package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitProvider holds every call until the shared limiter admits it.
type RateLimitProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit caps p at rps calls per second with a burst of one.
// A non-positive rps returns p unchanged.
func WithRateLimit(p Provider, rps float64) Provider {
	if rps <= 0 {
		return p
	}
	return &RateLimitProvider{inner: p, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (r *RateLimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Generate(ctx, req)
}

func (r *RateLimitProvider) ModelID() string {
	return r.inner.ModelID()
}
