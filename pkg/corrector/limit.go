package corrector

import (
	"context"

	"golang.org/x/time/rate"
)

var _ Provider = (*limited)(nil)

type limited struct {
	provider Provider
	limiter  *rate.Limiter
}

// WithRateLimit caps the request rate across all workers sharing the
// returned provider.
func WithRateLimit(provider Provider, limiter *rate.Limiter) Provider {
	if limiter == nil {
		return provider
	}

	return &limited{
		provider: provider,
		limiter:  limiter,
	}
}

func (l *limited) Correct(ctx context.Context, text string) (*Result, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return l.provider.Correct(ctx, text)
}
