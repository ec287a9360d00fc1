package symbol

import (
	"strings"

	"vega/pkg/errors"
)

// Cadence names the requested expiry schedule for a contract
type Cadence string

const (
	CadenceZeroDTE Cadence = "0dte"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
	CadenceCustom  Cadence = "custom"
)

// Policy describes how options on a symbol are listed and traded.
// Static configuration; unknown symbols are rejected rather than defaulted
// because strike rounding is ambiguous without an increment.
type Policy struct {
	Symbol          string  `json:"symbol"`
	Multiplier      int     `json:"multiplier"`
	StrikeIncrement float64 `json:"strike_increment"`
	Supports0DTE    bool    `json:"supports_0dte"`
	DefaultOTMPct   float64 `json:"default_otm_pct"`
	FallbackCadence Cadence `json:"fallback_cadence"`
}

// Table maps symbol to its option policy
type Table map[string]Policy

// Lookup returns the policy for a symbol or ErrUnsupportedSymbol
func (t Table) Lookup(sym string) (Policy, error) {
	pol, ok := t[strings.ToUpper(strings.TrimSpace(sym))]
	if !ok {
		return Policy{}, errors.Wrapf(errors.ErrUnsupportedSymbol, "no option policy for %q", sym)
	}
	return pol, nil
}

// DefaultTable returns the built-in policy table for commonly scanned
// underlyings. Index products list daily expiries; single names are weekly.
func DefaultTable() Table {
	policies := []Policy{
		{Symbol: "SPY", Multiplier: 100, StrikeIncrement: 1, Supports0DTE: true, DefaultOTMPct: 0.01, FallbackCadence: CadenceWeekly},
		{Symbol: "QQQ", Multiplier: 100, StrikeIncrement: 1, Supports0DTE: true, DefaultOTMPct: 0.01, FallbackCadence: CadenceWeekly},
		{Symbol: "IWM", Multiplier: 100, StrikeIncrement: 1, Supports0DTE: true, DefaultOTMPct: 0.015, FallbackCadence: CadenceWeekly},
		{Symbol: "SPX", Multiplier: 100, StrikeIncrement: 5, Supports0DTE: true, DefaultOTMPct: 0.01, FallbackCadence: CadenceWeekly},
		{Symbol: "AAPL", Multiplier: 100, StrikeIncrement: 2.5, Supports0DTE: false, DefaultOTMPct: 0.02, FallbackCadence: CadenceWeekly},
		{Symbol: "MSFT", Multiplier: 100, StrikeIncrement: 5, Supports0DTE: false, DefaultOTMPct: 0.02, FallbackCadence: CadenceWeekly},
		{Symbol: "NVDA", Multiplier: 100, StrikeIncrement: 2.5, Supports0DTE: false, DefaultOTMPct: 0.025, FallbackCadence: CadenceWeekly},
		{Symbol: "TSLA", Multiplier: 100, StrikeIncrement: 2.5, Supports0DTE: false, DefaultOTMPct: 0.03, FallbackCadence: CadenceWeekly},
		{Symbol: "AMZN", Multiplier: 100, StrikeIncrement: 2.5, Supports0DTE: false, DefaultOTMPct: 0.02, FallbackCadence: CadenceWeekly},
		{Symbol: "META", Multiplier: 100, StrikeIncrement: 5, Supports0DTE: false, DefaultOTMPct: 0.02, FallbackCadence: CadenceWeekly},
		{Symbol: "AMD", Multiplier: 100, StrikeIncrement: 1, Supports0DTE: false, DefaultOTMPct: 0.025, FallbackCadence: CadenceWeekly},
	}

	table := make(Table, len(policies))
	for _, p := range policies {
		table[p.Symbol] = p
	}
	return table
}
