package providers

import (
	"context"
	"sync"
	"time"

	"vega/pkg/logger"
)

// DefaultQuoteTTL keeps spot quotes fresh enough for intraday sizing while
// absorbing repeat lookups within one scan pass.
const DefaultQuoteTTL = 20 * time.Second

type cachedQuote struct {
	quote   Quote
	fetched time.Time
}

// QuoteCache wraps a QuoteProvider with an in-memory TTL cache. The clock is
// injectable so expiry behavior is testable without sleeping.
type QuoteCache struct {
	inner QuoteProvider
	ttl   time.Duration
	now   func() time.Time
	log   *logger.Logger

	mu      sync.RWMutex
	entries map[string]cachedQuote

	hits   int64
	misses int64
}

// NewQuoteCache creates a caching layer over a quote provider
func NewQuoteCache(inner QuoteProvider, ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &QuoteCache{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		log:     logger.Get().With("component", "quote_cache"),
		entries: make(map[string]cachedQuote),
	}
}

// WithClock overrides the wall clock, for tests
func (c *QuoteCache) WithClock(now func() time.Time) *QuoteCache {
	c.now = now
	return c
}

// Name implements QuoteProvider
func (c *QuoteCache) Name() string {
	return c.inner.Name() + "+cache"
}

// GetQuote returns a cached quote while fresh, otherwise fetches through.
// Fetch errors are never cached.
func (c *QuoteCache) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	c.mu.RLock()
	entry, ok := c.entries[symbol]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.fetched) < c.ttl {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		q := entry.quote
		return &q, nil
	}

	quote, err := c.inner.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.misses++
	c.entries[symbol] = cachedQuote{quote: *quote, fetched: c.now()}
	c.mu.Unlock()

	c.log.Debugf("quote cache miss for %s, refreshed", symbol)
	return quote, nil
}

// Invalidate drops one symbol from the cache
func (c *QuoteCache) Invalidate(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, symbol)
}

// Stats returns hit and miss counters
func (c *QuoteCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
