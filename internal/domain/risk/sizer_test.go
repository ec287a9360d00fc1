package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestComputeQty(t *testing.T) {
	t.Run("basic sizing", func(t *testing.T) {
		// $10k account, 1% risk = $100 budget; $0.30 stop distance x100 = $30/contract
		res := ComputeQty(SizingInput{
			AccountSize: d(10000),
			RiskPct:     d(0.01),
			Entry:       d(1.00),
			Stop:        d(0.70),
		})
		assert.Equal(t, 3, res.Quantity)
		assert.True(t, res.PerContractRisk.Equal(d(30)), res.PerContractRisk.String())
		assert.True(t, res.TotalRisk.Equal(d(90)), res.TotalRisk.String())
		assert.True(t, res.RiskBudget.Equal(d(100)), res.RiskBudget.String())
	})

	t.Run("stop at entry sizes to zero", func(t *testing.T) {
		res := ComputeQty(SizingInput{
			AccountSize: d(1000),
			RiskPct:     d(0.01),
			Entry:       d(1.00),
			Stop:        d(1.00),
			Strategy:    StrategyDayTrade,
		})
		assert.Equal(t, 0, res.Quantity)
		assert.True(t, res.PerContractRisk.IsZero())
		assert.True(t, res.TotalRisk.IsZero())
	})

	t.Run("stop above entry sizes to zero", func(t *testing.T) {
		res := ComputeQty(SizingInput{
			AccountSize: d(1000),
			RiskPct:     d(0.01),
			Entry:       d(1.00),
			Stop:        d(1.50),
		})
		assert.Equal(t, 0, res.Quantity)
	})

	t.Run("negative risk pct clamps to zero quantity", func(t *testing.T) {
		res := ComputeQty(SizingInput{
			AccountSize: d(1000),
			RiskPct:     d(-0.01),
			Entry:       d(1.00),
			Stop:        d(0.50),
		})
		assert.Equal(t, 0, res.Quantity)
	})

	t.Run("default contract ceiling applies", func(t *testing.T) {
		// Huge budget, tiny per-contract risk
		res := ComputeQty(SizingInput{
			AccountSize: d(10_000_000),
			RiskPct:     d(0.05),
			Entry:       d(0.10),
			Stop:        d(0.05),
		})
		assert.Equal(t, DefaultMaxContracts, res.Quantity)
	})
}

func TestComputeQtyStrategyCaps(t *testing.T) {
	base := SizingInput{
		AccountSize:  d(100000),
		Entry:        d(2.00),
		Stop:         d(1.00),
		MaxContracts: 50,
	}

	t.Run("day trade caps risk at 1% and 5 contracts", func(t *testing.T) {
		in := base
		in.RiskPct = d(0.05)
		in.Strategy = StrategyDayTrade
		res := ComputeQty(in)
		assert.True(t, res.AdjustedRiskPct.Equal(d(0.01)), res.AdjustedRiskPct.String())
		assert.Equal(t, 5, res.Quantity)
	})

	t.Run("day trade keeps stricter caller risk", func(t *testing.T) {
		in := base
		in.RiskPct = d(0.005)
		in.Strategy = StrategyDayTrade
		res := ComputeQty(in)
		assert.True(t, res.AdjustedRiskPct.Equal(d(0.005)))
	})

	t.Run("swing trade scales risk 1.5x up to 2%", func(t *testing.T) {
		in := base
		in.RiskPct = d(0.01)
		in.Strategy = StrategySwingTrade
		res := ComputeQty(in)
		assert.True(t, res.AdjustedRiskPct.Equal(d(0.015)), res.AdjustedRiskPct.String())
		assert.Equal(t, 10, res.MaxContracts)
	})

	t.Run("swing trade risk ceiling is 2%", func(t *testing.T) {
		in := base
		in.RiskPct = d(0.02)
		in.Strategy = StrategySwingTrade
		res := ComputeQty(in)
		assert.True(t, res.AdjustedRiskPct.Equal(d(0.02)))
	})

	t.Run("scalping caps risk at 0.2% and 2 contracts", func(t *testing.T) {
		in := base
		in.RiskPct = d(0.01)
		in.Strategy = StrategyScalping
		res := ComputeQty(in)
		assert.True(t, res.AdjustedRiskPct.Equal(d(0.002)))
		assert.LessOrEqual(t, res.Quantity, 2)
	})

	t.Run("caller ceiling below strategy ceiling wins", func(t *testing.T) {
		in := base
		in.RiskPct = d(0.05)
		in.Strategy = StrategyDayTrade
		in.MaxContracts = 3
		res := ComputeQty(in)
		assert.LessOrEqual(t, res.Quantity, 3)
	})

	t.Run("unknown strategy leaves inputs untouched", func(t *testing.T) {
		in := base
		in.RiskPct = d(0.05)
		in.Strategy = "theta_harvest"
		res := ComputeQty(in)
		assert.True(t, res.AdjustedRiskPct.Equal(d(0.05)))
		assert.Equal(t, 50, res.MaxContracts)
	})
}

func TestComputeQtyBudgetInvariant(t *testing.T) {
	// quantity * perContractRisk <= riskBudget must hold for any input mix
	accounts := []float64{500, 2500, 10000, 250000}
	risks := []float64{0.001, 0.005, 0.01, 0.03}
	entries := []float64{0.15, 1.00, 4.20, 12.50}
	stopPcts := []float64{0.2, 0.5, 0.9}
	strategies := []Strategy{StrategyDayTrade, StrategySwingTrade, StrategyScalping, ""}

	for _, acct := range accounts {
		for _, riskPct := range risks {
			for _, entry := range entries {
				for _, stopPct := range stopPcts {
					for _, strat := range strategies {
						res := ComputeQty(SizingInput{
							AccountSize: d(acct),
							RiskPct:     d(riskPct),
							Entry:       d(entry),
							Stop:        d(entry * (1 - stopPct)),
							Strategy:    strat,
						})
						require.GreaterOrEqual(t, res.Quantity, 0)
						require.LessOrEqual(t, res.Quantity, res.MaxContracts)
						require.True(t, res.TotalRisk.LessThanOrEqual(res.RiskBudget),
							"acct=%v risk=%v entry=%v stop=%v strat=%v: total %s > budget %s",
							acct, riskPct, entry, stopPct, strat, res.TotalRisk, res.RiskBudget)
					}
				}
			}
		}
	}
}
