package selection

import (
	"math"

	"vega/internal/domain/option"
)

// Score weights. Delta proximity dominates because it is the best proxy for
// the probability profile the caller asked for; spread quality matters more
// than raw liquidity counts.
const (
	weightDelta  = 0.45
	weightSpread = 0.30
	weightOI     = 0.15
	weightVolume = 0.10

	// deltaTolerance is the distance at which the delta sub-score decays
	// to zero
	deltaTolerance = 0.2

	// neutralDeltaScore is used when the chain carries no delta at all
	neutralDeltaScore = 0.25

	// volumeSaturation is the daily volume treated as full liquidity credit
	volumeSaturation = 1000
)

// Criteria are the caller's selection constraints. TargetDelta is an
// unsigned magnitude; the selector signs it negative for puts.
type Criteria struct {
	TargetDelta     float64 `json:"target_delta"`
	MaxSpreadPct    float64 `json:"max_spread_pct"`
	MinOpenInterest int64   `json:"min_open_interest"`
}

// Scored is a selected quote with its score decomposition attached for
// observability.
type Scored struct {
	Quote       option.Quote `json:"quote"`
	Mid         float64      `json:"mid"`
	Score       float64      `json:"score"`
	DeltaScore  float64      `json:"delta_score"`
	SpreadScore float64      `json:"spread_score"`
	OIScore     float64      `json:"oi_score"`
	VolumeScore float64      `json:"volume_score"`
}

// SelectOptimal picks the best contract of the requested side by weighted
// multi-factor score. Quotes with no usable mid price are skipped. Returns
// nil when nothing is scorable; callers fall back to NearestStrike and then
// to theoretical pricing.
func SelectOptimal(quotes []option.Quote, side option.Type, c Criteria) *Scored {
	targetDelta := c.TargetDelta
	if side == option.Put {
		targetDelta = -targetDelta
	}

	var best *Scored
	for i := range quotes {
		q := quotes[i]
		if q.Type != side {
			continue
		}
		mid, ok := q.Mid()
		if !ok || mid <= 0 {
			continue
		}

		scored := &Scored{
			Quote:       q,
			Mid:         mid,
			DeltaScore:  deltaScore(q.Delta, targetDelta),
			SpreadScore: spreadScore(&q, c.MaxSpreadPct),
			OIScore:     liquidityScore(q.OpenInterest, float64(c.MinOpenInterest)+10),
			VolumeScore: liquidityScore(q.Volume, volumeSaturation),
		}
		scored.Score = weightDelta*scored.DeltaScore +
			weightSpread*scored.SpreadScore +
			weightOI*scored.OIScore +
			weightVolume*scored.VolumeScore

		if best == nil || scored.Score > best.Score {
			best = scored
		}
	}
	return best
}

// NearestStrike ignores pricing entirely and returns the quote of the
// requested side whose strike is closest to target. Nil when the side is
// absent from the chain.
func NearestStrike(quotes []option.Quote, side option.Type, targetStrike float64) *option.Quote {
	var best *option.Quote
	bestDist := math.Inf(1)
	for i := range quotes {
		q := &quotes[i]
		if q.Type != side {
			continue
		}
		dist := math.Abs(q.Strike - targetStrike)
		if dist < bestDist {
			best = q
			bestDist = dist
		}
	}
	return best
}

// deltaScore gives full credit at the signed target and decays linearly to
// zero at deltaTolerance away. Missing delta earns a flat neutral score
// rather than disqualifying the quote.
func deltaScore(delta *float64, targetDelta float64) float64 {
	if delta == nil {
		return neutralDeltaScore
	}
	return math.Max(0, 1-math.Abs(*delta-targetDelta)/deltaTolerance)
}

// spreadScore rates quoted spread against the allowed maximum. A quote with
// only one side of the book, or a crossed book, is treated as sitting exactly
// at the allowed maximum, the worst admissible case. The sub-score stays in
// [0,1] so a malformed quote can never outrank a clean one.
func spreadScore(q *option.Quote, maxSpreadPct float64) float64 {
	denom := math.Max(maxSpreadPct, 0.01)
	spreadPct, ok := q.SpreadPct()
	if !ok {
		spreadPct = maxSpreadPct
	}
	return math.Min(1, math.Max(0, 1-spreadPct/denom))
}

// liquidityScore maps a count onto [0,1] with log10 scaling so the first
// few hundred contracts matter much more than the next few thousand.
func liquidityScore(count *int64, saturation float64) float64 {
	var n float64
	if count != nil {
		n = float64(*count)
	}
	if saturation <= 1 {
		return 1
	}
	return math.Min(1, math.Log10(n+1)/math.Log10(saturation))
}
