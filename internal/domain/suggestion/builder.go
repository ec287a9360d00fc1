package suggestion

import (
	"math"
	"time"

	"github.com/google/uuid"

	"vega/internal/domain/expiry"
	"vega/internal/domain/option"
	"vega/internal/domain/pricing"
	"vega/internal/domain/selection"
	"vega/internal/domain/symbol"
	"vega/pkg/errors"
)

// PricingSource records where the entry price came from
type PricingSource string

const (
	SourceTheoretical  PricingSource = "theoretical"
	SourceChainDerived PricingSource = "chain-derived"
)

// Default parameters applied when the caller leaves them zero
const (
	defaultOTMPct  = 0.02
	minimumPremium = 0.01

	// expiry is approximated as 20:00 UTC on the expiry date, close enough
	// to US market close for time-value purposes
	expiryCloseHourUTC = 20
)

// Suggestion is a baseline contract suggestion. It is built from theoretical
// pricing first; chain enrichment may later overwrite the entry, strike and
// greeks via ApplyChain.
type Suggestion struct {
	ID             uuid.UUID      `json:"id"`
	Symbol         string         `json:"symbol"`
	Side           option.Type    `json:"side"`
	Strike         float64        `json:"strike"`
	Expiry         string         `json:"expiry"` // YYYY-MM-DD
	Cadence        symbol.Cadence `json:"cadence"`
	FallbackReason string         `json:"fallback_reason,omitempty"`
	Multiplier     int            `json:"multiplier"`
	EntryPrice     float64        `json:"entry_price"`
	StopPrice      float64        `json:"stop_price"`
	TargetPrice    float64        `json:"target_price"`
	PricingSource  PricingSource  `json:"pricing_source"`
	SelectionScore *float64       `json:"selection_score,omitempty"`
	Delta          *float64       `json:"delta,omitempty"`
	ContractID     string         `json:"contract_id,omitempty"`

	stopLossPct    float64
	takeProfitMult float64
}

// Params are the inputs for building a baseline suggestion
type Params struct {
	Symbol          string         `json:"symbol"`
	Side            option.Type    `json:"side"`
	Direction       string         `json:"direction"` // only "long" (or empty) is accepted
	Spot            float64        `json:"spot"`
	IV              float64        `json:"iv"`
	RiskFreeRate    float64        `json:"risk_free_rate"`
	OTMPct          float64        `json:"otm_pct"` // 0 = use policy default
	MinBusinessDays int            `json:"min_business_days"`
	Cadence         symbol.Cadence `json:"cadence"`
	OverrideExpiry  string         `json:"override_expiry,omitempty"`
	StopLossPct     float64        `json:"stop_loss_pct"`
	TakeProfitMult  float64        `json:"take_profit_mult"`
}

// Builder produces contract suggestions against a symbol policy table.
// The clock is injectable so expiry math is testable.
type Builder struct {
	policies symbol.Table
	now      func() time.Time
}

// NewBuilder creates a suggestion builder over the given policy table
func NewBuilder(policies symbol.Table) *Builder {
	return &Builder{policies: policies, now: time.Now}
}

// WithClock overrides the wall clock, for tests
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build produces a baseline suggestion with a theoretical entry price.
// Unknown symbols and non-long directions are hard errors.
func (b *Builder) Build(p Params) (*Suggestion, error) {
	if p.Direction != "" && p.Direction != "long" {
		return nil, errors.Wrapf(errors.ErrUnsupportedDirection, "only long premium positions are supported, got %q", p.Direction)
	}
	if !p.Side.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown side %q", p.Side)
	}
	if p.Spot <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "spot must be positive, got %v", p.Spot)
	}
	if p.StopLossPct <= 0 || p.StopLossPct >= 1 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "stop loss pct must be in (0,1), got %v", p.StopLossPct)
	}
	if p.TakeProfitMult <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "take profit mult must be positive, got %v", p.TakeProfitMult)
	}

	pol, err := b.policies.Lookup(p.Symbol)
	if err != nil {
		return nil, err
	}

	otmPct := p.OTMPct
	if otmPct <= 0 {
		otmPct = pol.DefaultOTMPct
	}
	if otmPct <= 0 {
		otmPct = defaultOTMPct
	}

	strike := targetStrike(p.Spot, otmPct, pol.StrikeIncrement, p.Side)

	now := b.now()
	res, err := expiry.Resolve(now, pol, p.Cadence, p.MinBusinessDays, p.OverrideExpiry)
	if err != nil {
		return nil, err
	}

	tYears := yearsToExpiry(now, res.Date)
	entry := pricing.Round2(pricing.Price(p.Spot, strike, tYears, p.RiskFreeRate, p.IV, p.Side))
	if entry < minimumPremium {
		entry = minimumPremium
	}

	s := &Suggestion{
		ID:             uuid.New(),
		Symbol:         pol.Symbol,
		Side:           p.Side,
		Strike:         strike,
		Expiry:         res.Date,
		Cadence:        res.EffectiveCadence,
		FallbackReason: res.FallbackReason,
		Multiplier:     pol.Multiplier,
		PricingSource:  SourceTheoretical,
		stopLossPct:    p.StopLossPct,
		takeProfitMult: p.TakeProfitMult,
	}
	s.reprice(entry)

	return s, nil
}

// ApplyChain overwrites the baseline with a live chain selection: entry
// becomes the selected mid, strike and greeks come from the quote, and the
// pricing source flips to chain-derived. Stop and target are recomputed so
// the premium risk relation keeps holding.
func (s *Suggestion) ApplyChain(sel *selection.Scored) {
	if sel == nil {
		return
	}
	s.Strike = sel.Quote.Strike
	s.Delta = sel.Quote.Delta
	s.ContractID = sel.Quote.ContractID
	score := sel.Score
	s.SelectionScore = &score
	s.PricingSource = SourceChainDerived
	s.reprice(math.Max(minimumPremium, pricing.Round2(sel.Mid)))
}

// ApplyNearest overwrites strike and contract identity from a
// nearest-strike match. The entry only moves if the quote has a usable mid;
// otherwise theoretical pricing stands.
func (s *Suggestion) ApplyNearest(q *option.Quote) {
	if q == nil {
		return
	}
	s.Strike = q.Strike
	s.Delta = q.Delta
	s.ContractID = q.ContractID
	if mid, ok := q.Mid(); ok && mid > 0 {
		s.PricingSource = SourceChainDerived
		s.reprice(math.Max(minimumPremium, pricing.Round2(mid)))
	}
}

// reprice sets entry and derives stop/target from it. Premium always
// decreases toward the stop and increases toward the target; these are
// long-premium positions regardless of side.
func (s *Suggestion) reprice(entry float64) {
	s.EntryPrice = entry
	s.StopPrice = math.Max(minimumPremium, pricing.Round2(entry*(1-s.stopLossPct)))
	s.TargetPrice = pricing.Round2(entry * (1 + s.takeProfitMult))
}

// targetStrike rounds the OTM target onto the listed strike grid: up for
// calls, down for puts, so the contract stays out of the money.
func targetStrike(spot, otmPct, increment float64, side option.Type) float64 {
	if side == option.Put {
		raw := spot * (1 - otmPct)
		return math.Floor(raw/increment) * increment
	}
	raw := spot * (1 + otmPct)
	return math.Ceil(raw/increment) * increment
}

// yearsToExpiry measures now to 20:00 UTC on the expiry date, floored at
// zero, in years.
func yearsToExpiry(now time.Time, expiryDate string) float64 {
	parsed, err := time.Parse("2006-01-02", expiryDate)
	if err != nil {
		return 0
	}
	closeAt := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), expiryCloseHourUTC, 0, 0, 0, time.UTC)
	hours := closeAt.Sub(now.UTC()).Hours()
	if hours <= 0 {
		return 0
	}
	return hours / 24 / 365
}
