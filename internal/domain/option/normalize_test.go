package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		q, err := Normalize(RawQuote{
			Strike:         "455",
			Type:           "CALL",
			Bid:            "1.00",
			Ask:            "1.20",
			Last:           "1.10",
			Delta:          "0.35",
			OpenInterest:   "500",
			Volume:         "300",
			Expiry:         "2026-09-04",
			ContractSymbol: "SPY260904C00455000",
		})
		require.NoError(t, err)
		assert.Equal(t, 455.0, q.Strike)
		assert.Equal(t, Call, q.Type)
		require.NotNil(t, q.Bid)
		assert.Equal(t, 1.0, *q.Bid)
		require.NotNil(t, q.Delta)
		assert.Equal(t, 0.35, *q.Delta)
		require.NotNil(t, q.OpenInterest)
		assert.Equal(t, int64(500), *q.OpenInterest)
		require.NotNil(t, q.Expiry)
		assert.Equal(t, "2026-09-04", q.Expiry.Format("2006-01-02"))
	})

	t.Run("sentinel strings degrade to nil", func(t *testing.T) {
		q, err := Normalize(RawQuote{
			Strike:       "100",
			Type:         "put",
			Bid:          "N/A",
			Ask:          "-",
			Last:         "",
			Delta:        "null",
			OpenInterest: "n/a",
			Volume:       "--",
		})
		require.NoError(t, err)
		assert.Nil(t, q.Bid)
		assert.Nil(t, q.Ask)
		assert.Nil(t, q.Last)
		assert.Nil(t, q.Delta)
		assert.Nil(t, q.OpenInterest)
		assert.Nil(t, q.Volume)
		assert.False(t, q.Usable())
	})

	t.Run("zero and negative prices treated as missing", func(t *testing.T) {
		q, err := Normalize(RawQuote{Strike: "100", Type: "call", Bid: "0", Ask: "-0.5", Last: "0.00"})
		require.NoError(t, err)
		assert.Nil(t, q.Bid)
		assert.Nil(t, q.Ask)
		assert.Nil(t, q.Last)
	})

	t.Run("short type codes", func(t *testing.T) {
		q, err := Normalize(RawQuote{Strike: "50", Type: "P"})
		require.NoError(t, err)
		assert.Equal(t, Put, q.Type)
	})

	t.Run("float volume counts", func(t *testing.T) {
		q, err := Normalize(RawQuote{Strike: "50", Type: "call", Volume: "1200.0"})
		require.NoError(t, err)
		require.NotNil(t, q.Volume)
		assert.Equal(t, int64(1200), *q.Volume)
	})

	t.Run("missing strike is an error", func(t *testing.T) {
		_, err := Normalize(RawQuote{Strike: "N/A", Type: "call"})
		assert.Error(t, err)
	})

	t.Run("non-positive strike is an error", func(t *testing.T) {
		_, err := Normalize(RawQuote{Strike: "-455", Type: "call"})
		assert.Error(t, err)
	})

	t.Run("out of range delta dropped", func(t *testing.T) {
		q, err := Normalize(RawQuote{Strike: "455", Type: "call", Delta: "3.5"})
		require.NoError(t, err)
		assert.Nil(t, q.Delta)
	})
}

func TestNormalizeChain(t *testing.T) {
	quotes, dropped := NormalizeChain([]RawQuote{
		{Strike: "455", Type: "call", Bid: "1.0", Ask: "1.2"},
		{Strike: "bogus", Type: "call"},
		{Strike: "460", Type: "wombat"},
		{Strike: "460", Type: "call", Last: "0.75"},
	})
	assert.Len(t, quotes, 2)
	assert.Equal(t, 2, dropped)
}

func TestQuoteMid(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name   string
		quote  Quote
		want   float64
		usable bool
	}{
		{"bid and ask", Quote{Bid: f(1.0), Ask: f(1.2)}, 1.1, true},
		{"crossed book falls back to last", Quote{Bid: f(1.5), Ask: f(1.2), Last: f(1.3)}, 1.3, true},
		{"last only", Quote{Last: f(0.8)}, 0.8, true},
		{"ask only", Quote{Ask: f(0.9)}, 0.9, true},
		{"bid only", Quote{Bid: f(0.4)}, 0.4, true},
		{"nothing", Quote{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mid, ok := tt.quote.Mid()
			assert.Equal(t, tt.usable, ok)
			if ok {
				assert.InDelta(t, tt.want, mid, 1e-9)
			}
		})
	}
}

func TestQuoteSpreadPct(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	q := Quote{Bid: f(1.0), Ask: f(1.2)}
	pct, ok := q.SpreadPct()
	require.True(t, ok)
	assert.InDelta(t, 0.2/1.1, pct, 1e-9)

	_, ok = (&Quote{Last: f(1.0)}).SpreadPct()
	assert.False(t, ok)

	// A crossed book is malformed, not a negative-width spread
	_, ok = (&Quote{Bid: f(2.0), Ask: f(1.0)}).SpreadPct()
	assert.False(t, ok)
}
