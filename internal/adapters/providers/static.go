package providers

import (
	"context"
	"sync"
	"time"

	"vega/internal/domain/option"
	"vega/pkg/errors"
)

// StaticProvider serves fixed data from memory. Used in dry-run mode and in
// tests; it implements the quote, bar and chain provider interfaces.
type StaticProvider struct {
	name string
	now  func() time.Time

	mu     sync.RWMutex
	quotes map[string]float64
	bars   map[string][]Bar
	chains map[string][]option.RawQuote // keyed by symbol:expiry
	calls  int
}

// NewStaticProvider creates an empty static provider
func NewStaticProvider(name string) *StaticProvider {
	return &StaticProvider{
		name:   name,
		now:    time.Now,
		quotes: make(map[string]float64),
		bars:   make(map[string][]Bar),
		chains: make(map[string][]option.RawQuote),
	}
}

// WithClock overrides the wall clock, for tests
func (s *StaticProvider) WithClock(now func() time.Time) *StaticProvider {
	s.now = now
	return s
}

// SetQuote registers a spot price for a symbol
func (s *StaticProvider) SetQuote(symbol string, price float64) *StaticProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[symbol] = price
	return s
}

// SetBars registers daily history for a symbol
func (s *StaticProvider) SetBars(symbol string, bars []Bar) *StaticProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bars[symbol] = bars
	return s
}

// SetChain registers a raw chain for a symbol and expiry
func (s *StaticProvider) SetChain(symbol, expiry string, rows []option.RawQuote) *StaticProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains[symbol+":"+expiry] = rows
	return s
}

// Name implements the provider interfaces
func (s *StaticProvider) Name() string { return s.name }

// Calls reports how many fetches hit this provider, for cache tests
func (s *StaticProvider) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

// GetQuote implements QuoteProvider
func (s *StaticProvider) GetQuote(_ context.Context, symbol string) (*Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	price, ok := s.quotes[symbol]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no static quote for %s", symbol)
	}
	return &Quote{Symbol: symbol, Price: price, Timestamp: s.now(), Source: s.name}, nil
}

// GetDailyBars implements BarProvider
func (s *StaticProvider) GetDailyBars(_ context.Context, symbol string, limit int) ([]Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	bars, ok := s.bars[symbol]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no static bars for %s", symbol)
	}
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	out := make([]Bar, len(bars))
	copy(out, bars)
	return out, nil
}

// GetChain implements ChainProvider
func (s *StaticProvider) GetChain(_ context.Context, symbol, expiry string) ([]option.RawQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	rows, ok := s.chains[symbol+":"+expiry]
	if !ok {
		return nil, errors.Wrapf(errors.ErrEmptyChain, "no static chain for %s %s", symbol, expiry)
	}
	out := make([]option.RawQuote, len(rows))
	copy(out, rows)
	return out, nil
}

// FailingProvider always errors; used to exercise fallback chains in tests
type FailingProvider struct {
	ProviderName string
	Err          error
}

// Name implements QuoteProvider
func (f *FailingProvider) Name() string { return f.ProviderName }

// GetQuote implements QuoteProvider
func (f *FailingProvider) GetQuote(context.Context, string) (*Quote, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return nil, errors.ErrProviderUnavailable
}
