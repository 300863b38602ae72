package config

import (
	"errors"

	"github.com/archivelab/scriptorium/pkg/corrector"
	"github.com/archivelab/scriptorium/pkg/corrector/anthropic"
	"github.com/archivelab/scriptorium/pkg/corrector/openai"

	"golang.org/x/time/rate"
)

func (cfg *Config) Corrector() (corrector.Provider, error) {
	provider, err := cfg.correctionProvider()

	if err != nil {
		return nil, err
	}

	if cfg.Correction.RateLimit > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.Correction.RateLimit), 1)
		provider = corrector.WithRateLimit(provider, limiter)
	}

	return provider, nil
}

func (cfg *Config) correctionProvider() (corrector.Provider, error) {
	switch cfg.Correction.Provider {
	case "openai":
		return openai.New(cfg.Correction.URL, cfg.Correction.Model, openai.WithToken(cfg.Correction.Token))

	case "anthropic":
		return anthropic.New(cfg.Correction.URL, cfg.Correction.Model, anthropic.WithToken(cfg.Correction.Token))

	default:
		return nil, errors.New("invalid correction provider: " + cfg.Correction.Provider)
	}
}
