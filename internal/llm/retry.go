package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries calls that fail with ErrServiceUnavailable. Every
// other failure, including a cancelled or expired context, is returned as is.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	sleep  func(context.Context, time.Duration) error
}

func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg, sleep: sleepContext}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	for attempt := 0; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		switch {
		case err == nil:
			return resp, nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case !IsRetryable(err), attempt+1 >= attempts:
			return nil, err
		}
		if err := r.sleep(ctx, r.backoff(attempt)); err != nil {
			return nil, err
		}
	}
}

// backoff is the wait after zero-based attempt n:
// InitialWait * Multiplier^n, capped at MaxWait, then jittered.
func (r *RetryProvider) backoff(n int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(n))
	if r.config.MaxWait > 0 {
		wait = min(wait, float64(r.config.MaxWait))
	}
	if j := r.config.Jitter; j > 0 {
		wait *= 1 + j*(2*rand.Float64()-1)
	}
	return time.Duration(max(wait, 0))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
