package suggestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vega/internal/domain/option"
	"vega/internal/domain/selection"
	"vega/internal/domain/symbol"
	"vega/pkg/errors"
)

// Wednesday, mid-session UTC
var testNow = time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

func testBuilder() *Builder {
	return NewBuilder(symbol.DefaultTable()).WithClock(func() time.Time { return testNow })
}

func baseParams() Params {
	return Params{
		Symbol:         "SPY",
		Side:           option.Call,
		Direction:      "long",
		Spot:           450,
		IV:             0.22,
		RiskFreeRate:   0.045,
		Cadence:        symbol.CadenceWeekly,
		StopLossPct:    0.30,
		TakeProfitMult: 0.50,
	}
}

func fptr(v float64) *float64 { return &v }

func TestBuilderBuild(t *testing.T) {
	b := testBuilder()

	t.Run("call strike rounds up onto the grid", func(t *testing.T) {
		p := baseParams()
		p.OTMPct = 0.02
		s, err := b.Build(p)
		require.NoError(t, err)

		// 450 * 1.02 = 459 on a $1 grid
		assert.Equal(t, 459.0, s.Strike)
		assert.Equal(t, "SPY", s.Symbol)
		assert.Equal(t, option.Call, s.Side)
		assert.Equal(t, SourceTheoretical, s.PricingSource)
		assert.Equal(t, 100, s.Multiplier)
		assert.NotEqual(t, "", s.ID.String())
	})

	t.Run("put strike rounds down onto the grid", func(t *testing.T) {
		p := baseParams()
		p.Symbol = "AAPL"
		p.Side = option.Put
		p.Spot = 230
		p.OTMPct = 0.02
		s, err := b.Build(p)
		require.NoError(t, err)

		// 230 * 0.98 = 225.40 floored to the $2.50 grid
		assert.Equal(t, 225.0, s.Strike)
	})

	t.Run("zero otm pct falls back to policy default", func(t *testing.T) {
		p := baseParams()
		p.OTMPct = 0
		s, err := b.Build(p)
		require.NoError(t, err)

		// SPY policy default is 1%: 450 * 1.01 = 454.5 -> 455
		assert.Equal(t, 455.0, s.Strike)
	})

	t.Run("weekly expiry lands on the coming friday", func(t *testing.T) {
		s, err := b.Build(baseParams())
		require.NoError(t, err)
		assert.Equal(t, "2026-08-28", s.Expiry)
		assert.Equal(t, symbol.CadenceWeekly, s.Cadence)
		assert.Empty(t, s.FallbackReason)
	})

	t.Run("0dte fallback reason is surfaced", func(t *testing.T) {
		p := baseParams()
		p.Symbol = "AAPL"
		p.Spot = 230
		p.Cadence = symbol.CadenceZeroDTE
		s, err := b.Build(p)
		require.NoError(t, err)
		assert.Equal(t, symbol.CadenceWeekly, s.Cadence)
		assert.NotEmpty(t, s.FallbackReason)
	})

	t.Run("entry stop and target keep the premium relation", func(t *testing.T) {
		s, err := b.Build(baseParams())
		require.NoError(t, err)

		assert.GreaterOrEqual(t, s.EntryPrice, 0.01)
		assert.Less(t, s.StopPrice, s.EntryPrice)
		assert.Greater(t, s.TargetPrice, s.EntryPrice)
	})

	t.Run("worthless theoretical premium floors at a cent", func(t *testing.T) {
		p := baseParams()
		p.IV = 0.01
		p.OTMPct = 0.40
		s, err := b.Build(p)
		require.NoError(t, err)
		assert.Equal(t, 0.01, s.EntryPrice)
		assert.Equal(t, 0.01, s.StopPrice)
	})

	t.Run("unknown symbol is rejected", func(t *testing.T) {
		p := baseParams()
		p.Symbol = "GME"
		_, err := b.Build(p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnsupportedSymbol))
	})

	t.Run("short direction is rejected", func(t *testing.T) {
		p := baseParams()
		p.Direction = "short"
		_, err := b.Build(p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnsupportedDirection))
	})

	t.Run("invalid side is rejected", func(t *testing.T) {
		p := baseParams()
		p.Side = option.Type("straddle")
		_, err := b.Build(p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("non positive spot is rejected", func(t *testing.T) {
		p := baseParams()
		p.Spot = 0
		_, err := b.Build(p)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("bad expiry override propagates", func(t *testing.T) {
		p := baseParams()
		p.OverrideExpiry = "next friday"
		_, err := b.Build(p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidExpiryOverride))
	})

	t.Run("valid expiry override wins over cadence", func(t *testing.T) {
		p := baseParams()
		p.OverrideExpiry = "2026-09-18"
		s, err := b.Build(p)
		require.NoError(t, err)
		assert.Equal(t, "2026-09-18", s.Expiry)
		assert.Equal(t, symbol.CadenceCustom, s.Cadence)
	})
}

func TestSuggestionApplyChain(t *testing.T) {
	b := testBuilder()
	s, err := b.Build(baseParams())
	require.NoError(t, err)

	sel := &selection.Scored{
		Quote: option.Quote{
			Strike:     455,
			Type:       option.Call,
			Delta:      fptr(0.42),
			ContractID: "SPY260828C00455000",
		},
		Mid:   3.275,
		Score: 0.81,
	}
	s.ApplyChain(sel)

	assert.Equal(t, SourceChainDerived, s.PricingSource)
	assert.Equal(t, 455.0, s.Strike)
	assert.Equal(t, 3.28, s.EntryPrice)
	assert.Equal(t, "SPY260828C00455000", s.ContractID)
	require.NotNil(t, s.SelectionScore)
	assert.Equal(t, 0.81, *s.SelectionScore)
	require.NotNil(t, s.Delta)
	assert.Equal(t, 0.42, *s.Delta)

	// stop and target follow the new entry: 30% stop, 50% target
	assert.Equal(t, 2.3, s.StopPrice)
	assert.Equal(t, 4.92, s.TargetPrice)
}

func TestSuggestionApplyChainNil(t *testing.T) {
	b := testBuilder()
	s, err := b.Build(baseParams())
	require.NoError(t, err)

	before := *s
	s.ApplyChain(nil)
	assert.Equal(t, before.EntryPrice, s.EntryPrice)
	assert.Equal(t, before.PricingSource, s.PricingSource)
}

func TestSuggestionApplyNearest(t *testing.T) {
	b := testBuilder()

	t.Run("usable mid replaces theoretical entry", func(t *testing.T) {
		s, err := b.Build(baseParams())
		require.NoError(t, err)

		q := &option.Quote{
			Strike:     460,
			Type:       option.Call,
			Bid:        fptr(2.10),
			Ask:        fptr(2.30),
			ContractID: "SPY260828C00460000",
		}
		s.ApplyNearest(q)

		assert.Equal(t, SourceChainDerived, s.PricingSource)
		assert.Equal(t, 460.0, s.Strike)
		assert.Equal(t, 2.2, s.EntryPrice)
	})

	t.Run("quote without prices keeps theoretical pricing", func(t *testing.T) {
		s, err := b.Build(baseParams())
		require.NoError(t, err)
		entry := s.EntryPrice

		s.ApplyNearest(&option.Quote{Strike: 460, Type: option.Call, ContractID: "x"})

		assert.Equal(t, SourceTheoretical, s.PricingSource)
		assert.Equal(t, entry, s.EntryPrice)
		assert.Equal(t, 460.0, s.Strike)
	})
}
