package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlan(t *testing.T) {
	entry := d(1.00)
	takeProfit := d(1.50)
	stop := d(0.70)

	t.Run("zero quantity yields empty plan", func(t *testing.T) {
		plan := BuildPlan(PlanInput{Quantity: 0, Entry: entry, TakeProfit: takeProfit, Stop: stop})
		assert.Empty(t, plan.Iterations)
	})

	t.Run("negative quantity yields empty plan", func(t *testing.T) {
		plan := BuildPlan(PlanInput{Quantity: -3, Entry: entry, TakeProfit: takeProfit, Stop: stop})
		assert.Empty(t, plan.Iterations)
	})

	t.Run("single contract sells everything at target", func(t *testing.T) {
		plan := BuildPlan(PlanInput{Quantity: 1, Entry: entry, TakeProfit: takeProfit, Stop: stop})
		require.Len(t, plan.Iterations, 1)
		assert.Equal(t, 1, plan.Iterations[0].SellQuantity)
		assert.True(t, plan.Iterations[0].TargetPrice.Equal(d(1.50)))
	})

	t.Run("two contracts split into target and stretched runner", func(t *testing.T) {
		plan := BuildPlan(PlanInput{Quantity: 2, Entry: entry, TakeProfit: takeProfit, Stop: stop})
		require.Len(t, plan.Iterations, 2)

		assert.Equal(t, 1, plan.Iterations[0].SellQuantity)
		assert.True(t, plan.Iterations[0].TargetPrice.Equal(d(1.50)))
		assert.Equal(t, "move stop to breakeven", plan.Iterations[0].Note)

		// entry + (tp-entry)*1.3 = 1 + 0.5*1.3 = 1.65
		assert.Equal(t, 1, plan.Iterations[1].SellQuantity)
		assert.True(t, plan.Iterations[1].TargetPrice.Equal(d(1.65)), plan.Iterations[1].TargetPrice.String())
		assert.Equal(t, "let runner stretch", plan.Iterations[1].Note)
	})

	t.Run("five contracts build three tiers", func(t *testing.T) {
		plan := BuildPlan(PlanInput{Quantity: 5, Entry: entry, TakeProfit: takeProfit, Stop: stop})
		require.Len(t, plan.Iterations, 3)

		// ceil(5*0.5)=3, floor(2/2)=1, final 1
		assert.Equal(t, 3, plan.Iterations[0].SellQuantity)
		assert.Equal(t, 1, plan.Iterations[1].SellQuantity)
		assert.Equal(t, 1, plan.Iterations[2].SellQuantity)

		// entry + 0.5*1.6 = 1.80
		assert.True(t, plan.Iterations[2].TargetPrice.Equal(d(1.80)), plan.Iterations[2].TargetPrice.String())
		assert.Equal(t, "leave final runner", plan.Iterations[2].Note)
	})

	t.Run("targets ascend in aggressiveness", func(t *testing.T) {
		plan := BuildPlan(PlanInput{Quantity: 10, Entry: entry, TakeProfit: takeProfit, Stop: stop})
		for i := 1; i < len(plan.Iterations); i++ {
			assert.True(t, plan.Iterations[i].TargetPrice.GreaterThan(plan.Iterations[i-1].TargetPrice))
		}
	})

	t.Run("targets rounded to cents", func(t *testing.T) {
		plan := BuildPlan(PlanInput{Quantity: 4, Entry: d(1.03), TakeProfit: d(1.37), Stop: d(0.80)})
		for _, it := range plan.Iterations {
			assert.True(t, it.TargetPrice.Equal(it.TargetPrice.Round(2)))
		}
	})
}

func TestBuildPlanSumInvariant(t *testing.T) {
	// sum(iterations.sellQuantity) == quantity for every non-negative size
	for qty := 0; qty <= 40; qty++ {
		plan := BuildPlan(PlanInput{
			Quantity:   qty,
			Entry:      d(2.00),
			TakeProfit: d(3.00),
			Stop:       d(1.40),
		})
		sum := 0
		for _, it := range plan.Iterations {
			sum += it.SellQuantity
			assert.Positive(t, it.SellQuantity, "qty=%d", qty)
		}
		assert.Equal(t, qty, sum, "qty=%d", qty)
	}
}

func TestBuildPlanStopCarried(t *testing.T) {
	stop := decimal.NewFromFloat(0.55)
	plan := BuildPlan(PlanInput{Quantity: 3, Entry: d(1.00), TakeProfit: d(1.40), Stop: stop})
	assert.True(t, plan.StopPrice.Equal(stop))
}
