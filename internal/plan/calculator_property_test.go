package plan

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizplan/internal/domain"
)

func randomPlan(rng *rand.Rand) ([]domain.PlanLineItem, domain.PlanSettings) {
	n := rng.Intn(12) + 1
	items := make([]domain.PlanLineItem, n)
	for i := range items {
		p := striploin()
		p.DefaultWeightKg = float64(rng.Intn(3)) * 10000
		item := NewLineItem(p, fmt.Sprintf("item-%d", i),
			float64(rng.Intn(60000)),
			float64(rng.Intn(6000)+500),
			float64(rng.Intn(200000)+10000),
		)
		item.UserInput.Costs.CustomsFee = float64(rng.Intn(5_000_000))
		item.UserInput.Costs.ImportVATRate = float64(rng.Intn(11))
		item.UserInput.Costs.OtherSellingCosts = float64(rng.Intn(2_000_000))
		items[i] = item
	}
	settings := DefaultSettings()
	settings.SalesSalaryRate = float64(rng.Intn(40))
	settings.TotalMonthlyDepreciation = float64(rng.Intn(10_000_000))
	settings.TotalMonthlyFinancialCost = float64(rng.Intn(10_000_000))
	return items, settings
}

func relTol(v float64) float64 {
	return math.Max(1e-6, math.Abs(v)*1e-9)
}

// TestRecalculate_Invariants checks the plan-wide identities on random plans.
func TestRecalculate_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		items, settings := randomPlan(rng)
		out := Recalculate(items, settings)
		require.Len(t, out, len(items))

		totalQty := 0.0
		for _, item := range items {
			totalQty += item.UserInput.QuantityKg
		}

		categories := map[string]struct {
			total float64
			pick  func(domain.Calculated) float64
		}{
			"indirect":    {settings.TotalMonthlyIndirectSalary, func(c domain.Calculated) float64 { return c.IndirectStaffSalary }},
			"rent":        {settings.TotalMonthlyRent, func(c domain.Calculated) float64 { return c.Rent }},
			"electricity": {settings.TotalMonthlyElectricity, func(c domain.Calculated) float64 { return c.Electricity }},
			"water":       {settings.TotalMonthlyWater, func(c domain.Calculated) float64 { return c.Water }},
			"stationery":  {settings.TotalMonthlyStationery, func(c domain.Calculated) float64 { return c.Stationery }},
			"deprec":      {settings.TotalMonthlyDepreciation, func(c domain.Calculated) float64 { return c.Depreciation }},
			"external":    {settings.TotalMonthlyExternalServices, func(c domain.Calculated) float64 { return c.ExternalServices }},
			"other cash":  {settings.TotalMonthlyOtherCashExpenses, func(c domain.Calculated) float64 { return c.OtherCashExpenses }},
			"financial":   {settings.TotalMonthlyFinancialCost, func(c domain.Calculated) float64 { return c.FinancialValuationCost }},
		}
		for name, cat := range categories {
			sum := 0.0
			for _, item := range out {
				sum += cat.pick(item.Calculated)
			}
			want := cat.total
			if totalQty == 0 {
				want = 0
			}
			assert.InDelta(t, want, sum, relTol(cat.total), "trial %d: %s allocation must be conserved", trial, name)
		}

		for _, item := range out {
			c := item.Calculated

			assert.Equal(t, c.OutputVAT-c.ImportVAT, c.VATPayable, "trial %d: vat identity", trial)

			pbt := c.TotalRevenue - c.TotalCOGS - c.TotalSellingCost - c.TotalGACost - c.TotalFinancialCost
			assert.InDelta(t, pbt*(1-CorporateIncomeTaxRate), c.NetProfit, relTol(c.TotalRevenue+c.TotalCOGS), "trial %d: waterfall", trial)
			assert.Equal(t, c.ProfitBeforeTax-c.ProfitBeforeTax*CorporateIncomeTaxRate, c.NetProfit, "trial %d: net profit", trial)
			assert.Equal(t, c.CorporateIncomeTax+c.VATPayable, c.TotalTaxPayable, "trial %d: tax payable", trial)

			if c.NetProfit > 0 {
				split := c.RetainedForProvision + c.RetainedForBusiness + c.Dividends
				assert.InDelta(t, c.NetProfit, split, relTol(c.NetProfit), "trial %d: distribution", trial)
			} else {
				assert.Zero(t, c.RetainedForProvision, "trial %d", trial)
				assert.Zero(t, c.RetainedForBusiness, "trial %d", trial)
				assert.Zero(t, c.Dividends, "trial %d", trial)
			}
		}
	}
}

func TestRecalculate_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := 0; trial < 50; trial++ {
		items, settings := randomPlan(rng)
		first := Recalculate(items, settings)
		second := Recalculate(items, settings)
		assert.Equal(t, first, second, "trial %d", trial)
	}
}
