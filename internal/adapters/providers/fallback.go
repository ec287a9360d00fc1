package providers

import (
	"context"

	"vega/pkg/errors"
	"vega/pkg/logger"
)

// FirstSuccessful walks an ordered list of quote providers and returns the
// first answer. Failures are collected so the caller sees every provider's
// error when the whole chain is down.
type FirstSuccessful struct {
	providers []QuoteProvider
	log       *logger.Logger
}

// NewFirstSuccessful creates a fallback chain over the given providers,
// tried in order
func NewFirstSuccessful(provs ...QuoteProvider) *FirstSuccessful {
	return &FirstSuccessful{
		providers: provs,
		log:       logger.Get().With("component", "provider_fallback"),
	}
}

// Name implements QuoteProvider
func (f *FirstSuccessful) Name() string {
	return "fallback"
}

// GetQuote tries each provider in order and returns the first success.
// Context cancellation stops the walk immediately.
func (f *FirstSuccessful) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if len(f.providers) == 0 {
		return nil, errors.ErrNoProviders
	}

	multi := &errors.MultiError{}
	for _, p := range f.providers {
		if err := ctx.Err(); err != nil {
			multi.Add(err)
			break
		}
		quote, err := p.GetQuote(ctx, symbol)
		if err == nil {
			return quote, nil
		}
		f.log.Warnf("provider %s failed for %s: %v", p.Name(), symbol, err)
		multi.Add(errors.Wrapf(err, "provider %s", p.Name()))
	}

	return nil, errors.Wrap(multi.ToError(), "all quote providers failed")
}
