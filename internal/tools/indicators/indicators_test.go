package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vega/pkg/errors"
)

// trendingCloses builds a gently rising series with a small oscillation so
// the momentum indicators have something to chew on.
func trendingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5 + 2*math.Sin(float64(i)/3)
	}
	return closes
}

func TestSMA(t *testing.T) {
	t.Run("flat series returns the level", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 42
		}
		v, err := SMA(closes, 20)
		require.NoError(t, err)
		assert.InDelta(t, 42, v, 1e-9)
	})

	t.Run("known average of the tail window", func(t *testing.T) {
		closes := []float64{1, 2, 3, 4, 5, 6}
		v, err := SMA(closes, 3)
		require.NoError(t, err)
		assert.InDelta(t, 5, v, 1e-9)
	})

	t.Run("too little data is rejected", func(t *testing.T) {
		_, err := SMA([]float64{1, 2}, 20)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})
}

func TestEMA(t *testing.T) {
	closes := trendingCloses(60)

	ema, err := EMA(closes, 9)
	require.NoError(t, err)
	sma, err := SMA(closes, 9)
	require.NoError(t, err)

	// On an uptrend the EMA sits above the equally-weighted average
	assert.Greater(t, ema, sma-1.0)
	assert.Greater(t, ema, closes[0])
}

func TestRSI(t *testing.T) {
	t.Run("uptrend reads above 50", func(t *testing.T) {
		closes := make([]float64, 40)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		v, err := RSI(closes, 14)
		require.NoError(t, err)
		assert.Greater(t, v, 50.0)
		assert.LessOrEqual(t, v, 100.0)
	})

	t.Run("downtrend reads below 50", func(t *testing.T) {
		closes := make([]float64, 40)
		for i := range closes {
			closes[i] = 140 - float64(i)
		}
		v, err := RSI(closes, 14)
		require.NoError(t, err)
		assert.Less(t, v, 50.0)
		assert.GreaterOrEqual(t, v, 0.0)
	})
}

func TestMACD(t *testing.T) {
	closes := trendingCloses(120)

	res, err := MACD(closes, 12, 26, 9)
	require.NoError(t, err)

	// histogram is macd minus signal by definition
	assert.InDelta(t, res.MACD-res.Signal, res.Histogram, 1e-9)
	// steady uptrend keeps the macd line positive
	assert.Greater(t, res.MACD, 0.0)

	t.Run("insufficient history", func(t *testing.T) {
		_, err := MACD(trendingCloses(20), 12, 26, 9)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})
}

func TestRealizedVol(t *testing.T) {
	t.Run("constant series has zero vol", func(t *testing.T) {
		v, err := RealizedVol([]float64{50, 50, 50, 50, 50})
		require.NoError(t, err)
		assert.InDelta(t, 0, v, 1e-12)
	})

	t.Run("noisier series has higher vol", func(t *testing.T) {
		calm := []float64{100, 100.1, 100.2, 100.1, 100.3, 100.2, 100.4}
		wild := []float64{100, 104, 97, 105, 96, 107, 95}
		calmVol, err := RealizedVol(calm)
		require.NoError(t, err)
		wildVol, err := RealizedVol(wild)
		require.NoError(t, err)
		assert.Greater(t, wildVol, calmVol)
	})

	t.Run("non-positive close is rejected", func(t *testing.T) {
		_, err := RealizedVol([]float64{100, 0, 101})
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})
}

func TestCompute(t *testing.T) {
	closes := trendingCloses(120)

	snap, err := Compute(closes)
	require.NoError(t, err)

	assert.Equal(t, closes[len(closes)-1], snap.Close)
	assert.Positive(t, snap.SMA20)
	assert.Positive(t, snap.EMA9)
	assert.Greater(t, snap.RSI14, 0.0)
	assert.Positive(t, snap.RealizedVol)
	require.NotNil(t, snap.MACD)

	t.Run("short history is rejected", func(t *testing.T) {
		_, err := Compute(trendingCloses(10))
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})
}
