package risk

import (
	"github.com/shopspring/decimal"
)

// Target extension multipliers for the runner tiers. The second and third
// exits stretch the original entry-to-target distance by 1.3x and 1.6x.
var (
	runnerExtension      = decimal.NewFromFloat(1.3)
	finalRunnerExtension = decimal.NewFromFloat(1.6)
	half                 = decimal.NewFromFloat(0.5)
)

// PlanInput describes the sized position to decompose into exits
type PlanInput struct {
	Quantity   int             `json:"quantity"`
	Entry      decimal.Decimal `json:"entry"`
	TakeProfit decimal.Decimal `json:"take_profit"`
	Stop       decimal.Decimal `json:"stop"`
}

// Iteration is a single partial exit
type Iteration struct {
	SellQuantity int             `json:"sell_quantity"`
	TargetPrice  decimal.Decimal `json:"target_price"`
	Note         string          `json:"note"`
}

// ScalingPlan is a tiered exit plan. Iterations are ordered by ascending
// target aggressiveness and their sell quantities always sum to Quantity.
type ScalingPlan struct {
	Quantity   int             `json:"quantity"`
	StopPrice  decimal.Decimal `json:"stop_price"`
	Iterations []Iteration     `json:"iterations"`
}

// BuildPlan decomposes a sized position into partial sells at escalating
// targets: roughly half at the base target, half of the rest at a 1.3x
// extension, and whatever remains as a final runner at 1.6x.
func BuildPlan(in PlanInput) ScalingPlan {
	plan := ScalingPlan{
		Quantity:   in.Quantity,
		StopPrice:  in.Stop,
		Iterations: []Iteration{},
	}
	if in.Quantity <= 0 {
		return plan
	}

	if in.Quantity == 1 {
		plan.Iterations = append(plan.Iterations, Iteration{
			SellQuantity: 1,
			TargetPrice:  in.TakeProfit.Round(2),
			Note:         "sell entire position",
		})
		return plan
	}

	reward := in.TakeProfit.Sub(in.Entry)
	stretchTarget := in.Entry.Add(reward.Mul(runnerExtension)).Round(2)
	finalTarget := in.Entry.Add(reward.Mul(finalRunnerExtension)).Round(2)

	first := int(decimal.NewFromInt(int64(in.Quantity)).Mul(half).Ceil().IntPart())
	if first < 1 {
		first = 1
	}
	plan.Iterations = append(plan.Iterations, Iteration{
		SellQuantity: first,
		TargetPrice:  in.TakeProfit.Round(2),
		Note:         "move stop to breakeven",
	})

	remaining := in.Quantity - first
	if remaining == 1 {
		plan.Iterations = append(plan.Iterations, Iteration{
			SellQuantity: 1,
			TargetPrice:  stretchTarget,
			Note:         "let runner stretch",
		})
		return plan
	}
	if remaining >= 2 {
		second := remaining / 2
		if second < 1 {
			second = 1
		}
		plan.Iterations = append(plan.Iterations, Iteration{
			SellQuantity: second,
			TargetPrice:  stretchTarget,
			Note:         "let runner stretch",
		})
		if final := remaining - second; final > 0 {
			plan.Iterations = append(plan.Iterations, Iteration{
				SellQuantity: final,
				TargetPrice:  finalTarget,
				Note:         "leave final runner",
			})
		}
	}
	return plan
}
