package indicators

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/montanaflynn/stats"

	"vega/pkg/errors"
)

// tradingDaysPerYear annualizes daily return volatility
const tradingDaysPerYear = 252

// ValidateMinLength checks that a close series is long enough for an
// indicator calculation
func ValidateMinLength(closes []float64, minLength int, indicatorName string) error {
	if len(closes) < minLength {
		return errors.Wrapf(errors.ErrInvalidInput,
			"%s requires at least %d closes, got %d",
			indicatorName, minLength, len(closes))
	}
	return nil
}

// lastValue returns the most recent value from ta-lib output.
// ta-lib returns the full array with a zero-filled warmup prefix; the last
// element is the latest reading.
func lastValue(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.Wrapf(errors.ErrInternal, "no values returned from indicator")
	}
	return values[len(values)-1], nil
}

// SMA computes the latest simple moving average using ta-lib.
// Closes must be chronological, oldest first.
func SMA(closes []float64, period int) (float64, error) {
	if err := ValidateMinLength(closes, period, "SMA"); err != nil {
		return 0, err
	}
	return lastValue(talib.Sma(closes, period))
}

// EMA computes the latest exponential moving average using ta-lib
func EMA(closes []float64, period int) (float64, error) {
	if err := ValidateMinLength(closes, period, "EMA"); err != nil {
		return 0, err
	}
	return lastValue(talib.Ema(closes, period))
}

// RSI computes the latest Relative Strength Index using ta-lib
func RSI(closes []float64, period int) (float64, error) {
	if err := ValidateMinLength(closes, period+1, "RSI"); err != nil {
		return 0, err
	}
	return lastValue(talib.Rsi(closes, period))
}

// MACDResult holds the three MACD components
type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// MACD computes Moving Average Convergence Divergence. The signal line is a
// proper EMA of the MACD line over the signal period, not a scaled copy.
func MACD(closes []float64, fast, slow, signal int) (*MACDResult, error) {
	if err := ValidateMinLength(closes, slow+signal, "MACD"); err != nil {
		return nil, err
	}
	macdLine, signalLine, histogram := talib.Macd(closes, fast, slow, signal)

	macdVal, err := lastValue(macdLine)
	if err != nil {
		return nil, errors.Wrap(err, "macd line")
	}
	signalVal, err := lastValue(signalLine)
	if err != nil {
		return nil, errors.Wrap(err, "macd signal line")
	}
	histVal, err := lastValue(histogram)
	if err != nil {
		return nil, errors.Wrap(err, "macd histogram")
	}
	return &MACDResult{MACD: macdVal, Signal: signalVal, Histogram: histVal}, nil
}

// RealizedVol computes annualized volatility from daily closes as the sample
// standard deviation of log returns scaled by sqrt(252). This is the fallback
// IV estimate when no options chain supplies one.
func RealizedVol(closes []float64) (float64, error) {
	if err := ValidateMinLength(closes, 3, "realized volatility"); err != nil {
		return 0, err
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return 0, errors.Wrapf(errors.ErrInvalidInput, "non-positive close at index %d", i)
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0, errors.Wrap(err, "stdev of log returns")
	}
	return stdev * math.Sqrt(tradingDaysPerYear), nil
}

// Snapshot is the condensed trend context attached to scan reports
type Snapshot struct {
	Close       float64     `json:"close"`
	SMA20       float64     `json:"sma_20"`
	EMA9        float64     `json:"ema_9"`
	RSI14       float64     `json:"rsi_14"`
	MACD        *MACDResult `json:"macd"`
	RealizedVol float64     `json:"realized_vol"`
	Bullish     bool        `json:"bullish"`
}

// Compute builds a trend snapshot from chronological daily closes. Requires
// enough history for the slowest component (MACD 26+9).
func Compute(closes []float64) (*Snapshot, error) {
	if err := ValidateMinLength(closes, 35, "trend snapshot"); err != nil {
		return nil, err
	}

	sma20, err := SMA(closes, 20)
	if err != nil {
		return nil, err
	}
	ema9, err := EMA(closes, 9)
	if err != nil {
		return nil, err
	}
	rsi14, err := RSI(closes, 14)
	if err != nil {
		return nil, err
	}
	macd, err := MACD(closes, 12, 26, 9)
	if err != nil {
		return nil, err
	}
	vol, err := RealizedVol(closes)
	if err != nil {
		return nil, err
	}

	last := closes[len(closes)-1]
	return &Snapshot{
		Close:       last,
		SMA20:       sma20,
		EMA9:        ema9,
		RSI14:       rsi14,
		MACD:        macd,
		RealizedVol: vol,
		Bullish:     last > sma20 && macd.Histogram > 0,
	}, nil
}
