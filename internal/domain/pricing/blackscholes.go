package pricing

import (
	"math"

	gaussian "github.com/chobie/go-gaussian"

	"vega/internal/domain/option"
)

// stdNormal is the standard normal distribution used for Φ in Black-Scholes.
// The Gaussian object is stateless, so sharing it is safe for concurrent
// callers.
var stdNormal = gaussian.NewGaussian(0, 1)

// Price computes the Black-Scholes theoretical price of a vanilla option
// with no dividend yield. Degenerate inputs (expired contract or
// non-positive volatility) collapse to intrinsic value. Never negative.
func Price(spot, strike, timeToExpiryYears, riskFreeRate, volatility float64, side option.Type) float64 {
	if spot <= 0 || strike <= 0 {
		return 0
	}
	if timeToExpiryYears <= 0 || volatility <= 0 {
		return Intrinsic(spot, strike, side)
	}

	sqrtT := math.Sqrt(timeToExpiryYears)
	d1 := (math.Log(spot/strike) + (riskFreeRate+0.5*volatility*volatility)*timeToExpiryYears) / (volatility * sqrtT)
	d2 := d1 - volatility*sqrtT
	discount := math.Exp(-riskFreeRate * timeToExpiryYears)

	var price float64
	if side == option.Put {
		price = strike*discount*stdNormal.Cdf(-d2) - spot*stdNormal.Cdf(-d1)
	} else {
		price = spot*stdNormal.Cdf(d1) - strike*discount*stdNormal.Cdf(d2)
	}

	if price < 0 || math.IsNaN(price) {
		return 0
	}
	return price
}

// Intrinsic returns the value of the option at immediate exercise
func Intrinsic(spot, strike float64, side option.Type) float64 {
	var value float64
	if side == option.Put {
		value = strike - spot
	} else {
		value = spot - strike
	}
	return math.Max(0, value)
}

// Delta returns the Black-Scholes delta, useful when chain greeks are
// missing. Calls in [0,1], puts in [-1,0].
func Delta(spot, strike, timeToExpiryYears, riskFreeRate, volatility float64, side option.Type) float64 {
	if spot <= 0 || strike <= 0 || timeToExpiryYears <= 0 || volatility <= 0 {
		// Collapse to the exercise indicator at expiry
		if Intrinsic(spot, strike, side) > 0 {
			if side == option.Put {
				return -1
			}
			return 1
		}
		return 0
	}

	sqrtT := math.Sqrt(timeToExpiryYears)
	d1 := (math.Log(spot/strike) + (riskFreeRate+0.5*volatility*volatility)*timeToExpiryYears) / (volatility * sqrtT)
	if side == option.Put {
		return stdNormal.Cdf(d1) - 1
	}
	return stdNormal.Cdf(d1)
}

// Round2 rounds a premium to cents for display and sizing
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
