package risk

import (
	"github.com/shopspring/decimal"
)

// Strategy names a trading style with its own risk ceiling
type Strategy string

const (
	StrategyDayTrade   Strategy = "day_trade"
	StrategySwingTrade Strategy = "swing_trade"
	StrategyScalping   Strategy = "scalping"
)

// Default input bounds applied when the caller leaves them zero
const (
	DefaultMultiplier   = 100
	DefaultMaxContracts = 100
)

// Strategy risk ceilings. Swing trades are allowed to scale the requested
// risk up by half, everything else only tightens.
var (
	dayTradeRiskCap  = decimal.NewFromFloat(0.01)
	swingRiskCap     = decimal.NewFromFloat(0.02)
	swingRiskScale   = decimal.NewFromFloat(1.5)
	scalpingRiskCap  = decimal.NewFromFloat(0.002)
	dayTradeMaxQty   = 5
	swingTradeMaxQty = 10
	scalpingMaxQty   = 2
)

// SizingInput contains parameters for contract quantity calculation
type SizingInput struct {
	AccountSize  decimal.Decimal `json:"account_size"`
	RiskPct      decimal.Decimal `json:"risk_pct"` // 0.01 = 1%
	Entry        decimal.Decimal `json:"entry"`    // premium per share
	Stop         decimal.Decimal `json:"stop"`
	Multiplier   int             `json:"multiplier"`    // contract size, default 100
	MaxContracts int             `json:"max_contracts"` // hard ceiling, default 100
	Strategy     Strategy        `json:"strategy"`
}

// SizingResult contains the bounded position size.
// Invariant: Quantity * PerContractRisk <= RiskBudget, by floor division.
type SizingResult struct {
	Quantity        int             `json:"quantity"`
	PerContractRisk decimal.Decimal `json:"per_contract_risk"`
	TotalRisk       decimal.Decimal `json:"total_risk"`
	RiskBudget      decimal.Decimal `json:"risk_budget"`
	AdjustedRiskPct decimal.Decimal `json:"adjusted_risk_pct"`
	MaxContracts    int             `json:"max_contracts"`
}

// ComputeQty converts an account size and risk percentage into a bounded
// contract quantity. A stop at or above entry is a misconfiguration and
// sizes to zero rather than being silently ignored.
func ComputeQty(input SizingInput) SizingResult {
	multiplier := input.Multiplier
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}
	maxContracts := input.MaxContracts
	if maxContracts <= 0 {
		maxContracts = DefaultMaxContracts
	}

	perContractRisk := input.Entry.Sub(input.Stop).Mul(decimal.NewFromInt(int64(multiplier)))
	if perContractRisk.LessThanOrEqual(decimal.Zero) {
		return SizingResult{
			Quantity:        0,
			PerContractRisk: decimal.Zero,
			TotalRisk:       decimal.Zero,
			RiskBudget:      decimal.Zero,
			AdjustedRiskPct: decimal.Zero,
			MaxContracts:    maxContracts,
		}
	}

	adjustedRiskPct, maxContracts := applyStrategyCaps(input.Strategy, input.RiskPct, maxContracts)
	if adjustedRiskPct.IsNegative() {
		adjustedRiskPct = decimal.Zero
	}

	riskBudget := input.AccountSize.Mul(adjustedRiskPct)

	quantity := 0
	if riskBudget.IsPositive() {
		quantity = int(riskBudget.Div(perContractRisk).Floor().IntPart())
	}
	if quantity < 0 {
		quantity = 0
	}
	if quantity > maxContracts {
		quantity = maxContracts
	}

	return SizingResult{
		Quantity:        quantity,
		PerContractRisk: perContractRisk,
		TotalRisk:       perContractRisk.Mul(decimal.NewFromInt(int64(quantity))),
		RiskBudget:      riskBudget,
		AdjustedRiskPct: adjustedRiskPct,
		MaxContracts:    maxContracts,
	}
}

// applyStrategyCaps tightens risk percentage and contract ceilings per
// strategy. Caller-provided stricter values always win; the one exception
// is swing trading, where the requested risk is scaled by 1.5x before
// hitting its 2% ceiling.
func applyStrategyCaps(strategy Strategy, riskPct decimal.Decimal, maxContracts int) (decimal.Decimal, int) {
	switch strategy {
	case StrategyDayTrade:
		return decimal.Min(riskPct, dayTradeRiskCap), minInt(maxContracts, dayTradeMaxQty)
	case StrategySwingTrade:
		return decimal.Min(riskPct.Mul(swingRiskScale), swingRiskCap), minInt(maxContracts, swingTradeMaxQty)
	case StrategyScalping:
		return decimal.Min(riskPct, scalpingRiskCap), minInt(maxContracts, scalpingMaxQty)
	default:
		return riskPct, maxContracts
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
