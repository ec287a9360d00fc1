package providers

import (
	"context"
	"time"

	"vega/internal/domain/option"
)

// Quote is a spot quote for an underlying
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
}

// Bar is one daily OHLCV bar
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// QuoteProvider fetches spot quotes for underlyings
type QuoteProvider interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// BarProvider fetches daily history for indicator computation
type BarProvider interface {
	Name() string
	GetDailyBars(ctx context.Context, symbol string, limit int) ([]Bar, error)
}

// ChainProvider fetches a raw options chain for one symbol and expiry date.
// Rows come back unnormalized; callers run them through option.NormalizeChain.
type ChainProvider interface {
	Name() string
	GetChain(ctx context.Context, symbol, expiry string) ([]option.RawQuote, error)
}

// Closes extracts chronological close prices from bars
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
