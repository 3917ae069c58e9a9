package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizplan/internal/domain"
)

const tolerance = 1e-6

func striploin() domain.Product {
	return domain.Product{
		Code:                   "46-ALANA",
		NameEN:                 "Striploin C",
		NameVI:                 "Thăn ngoại",
		Brand:                  "Alana",
		Group:                  "Thịt trâu",
		DefaultWeightKg:        28000,
		DefaultPriceUSDPerTon:  4675,
		DefaultSellingPriceVND: 125000,
	}
}

func bareItem(id string, qty float64) domain.PlanLineItem {
	item := NewLineItem(striploin(), id, qty, 4675, 130000)
	item.UserInput.Costs = domain.CostInputs{ImportVATRate: 5}
	return item
}

func TestRecalculate_EmptyPlan(t *testing.T) {
	out := Recalculate(nil, DefaultSettings())
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestRecalculate_SingleContainerScenario(t *testing.T) {
	settings := domain.PlanSettings{ExchangeRateImport: 26356, ExchangeRateTax: 26154}
	out := Recalculate([]domain.PlanLineItem{bareItem("a", 28000)}, settings)
	require.Len(t, out, 1)
	c := out[0].Calculated

	assert.InDelta(t, 1, c.Containers, tolerance)
	assert.InDelta(t, 4.675, c.PriceUSDPerKg, tolerance)
	assert.InDelta(t, 130900, c.ImportValueUSD, tolerance)
	assert.InDelta(t, 3_450_000_400, c.ImportValueVND, 1e-3)
	assert.InDelta(t, 130900*26154*0.05, c.ImportVAT, 1e-3)
	assert.InDelta(t, 0, c.TotalClearanceAndLogisticsCost, tolerance)
	assert.InDelta(t, c.ImportValueVND, c.TotalCOGS, tolerance)

	revenue := 130000 / 1.05 * 28000
	assert.InDelta(t, revenue, c.TotalRevenue, 1e-3)
	assert.InDelta(t, revenue-3_450_000_400, c.GrossProfit, 0.01)
	assert.InDelta(t, 130000*28000, c.TotalRevenueInclVAT, tolerance)
	assert.InDelta(t, 4675*26356, c.PriceVNDPerTon, tolerance)
}

func TestPreTotals_StagedLoanInterest(t *testing.T) {
	item := NewLineItem(striploin(), "a", 28000, 4675, 130000)
	rates := Rates{Import: 26356, Tax: 26154}

	c := PreTotals(item, rates)

	daily := 0.08 / 365
	importVND := 130900.0 * 26356
	first := 10000.0 * 26356
	importVAT := 130900.0 * 26154 * 0.05

	assert.InDelta(t, first, c.LoanFirstTransferAmountVND, 1e-3)
	assert.InDelta(t, first*daily*30, c.LoanInterestCostFirstTransfer, 1e-3)
	assert.InDelta(t, importVND-first, c.LoanSecondTransferAmountVND, 1e-3)
	assert.InDelta(t, importVND*daily*20, c.LoanInterestCostSecondTransfer, 1e-3)
	assert.InDelta(t, importVAT*daily*20, c.LoanInterestCostVAT, 1e-3)
	assert.InDelta(t, c.LoanInterestCostFirstTransfer+c.LoanInterestCostSecondTransfer+c.LoanInterestCostVAT, c.ImportInterestCost, tolerance)

	assert.InDelta(t, 28000*1300, c.GeneralWarehouseCost, tolerance)
	assert.InDelta(t, 28000*20*150, c.PostClearanceStorageCost, tolerance)
	assert.InDelta(t, 5_000_000, c.PurchasingServiceFee, tolerance)

	logistics := c.GeneralWarehouseCost + c.ImportInterestCost + c.PostClearanceStorageCost + c.PurchasingServiceFee
	assert.InDelta(t, logistics, c.TotalClearanceAndLogisticsCost, 1e-3)
	assert.InDelta(t, importVND+logistics, c.TotalCOGS, 1e-3)
}

func TestPreTotals_SecondStageNeverNegative(t *testing.T) {
	item := bareItem("a", 1000)
	item.UserInput.Costs.LoanFirstTransferUSD = 1_000_000

	c := PreTotals(item, Rates{Import: 26000, Tax: 26000})

	assert.Zero(t, c.LoanSecondTransferAmountVND)
}

func TestRecalculate_ZeroQuantityItem(t *testing.T) {
	settings := DefaultSettings()
	out := Recalculate([]domain.PlanLineItem{bareItem("a", 0)}, settings)
	c := out[0].Calculated

	assert.Zero(t, c.Containers)
	assert.Zero(t, c.ImportValueUSD)
	assert.Zero(t, c.TotalRevenue)
	assert.Zero(t, c.COGSPerKg)
	assert.Zero(t, c.NetProfitMargin)
	for name, v := range map[string]float64{
		"sales":       c.SalesStaffSalary,
		"indirect":    c.IndirectStaffSalary,
		"rent":        c.Rent,
		"electricity": c.Electricity,
		"water":       c.Water,
		"stationery":  c.Stationery,
		"external":    c.ExternalServices,
		"other cash":  c.OtherCashExpenses,
		"financial":   c.FinancialValuationCost,
	} {
		assert.Zero(t, v, name)
	}
}

func TestRecalculate_ZeroDefaultWeight(t *testing.T) {
	item := bareItem("a", 5000)
	item.DefaultWeightKg = 0
	item.UserInput.Costs.PurchasingServiceFeeVNDPerContainer = 5_000_000

	c := Recalculate([]domain.PlanLineItem{item}, DefaultSettings())[0].Calculated

	assert.Zero(t, c.Containers)
	assert.Zero(t, c.PurchasingServiceFee)
}

func TestRecalculate_RentSplitByQuantity(t *testing.T) {
	settings := domain.PlanSettings{ExchangeRateImport: 26000, ExchangeRateTax: 26000, TotalMonthlyRent: 40000}
	items := []domain.PlanLineItem{bareItem("a", 1000), bareItem("b", 3000)}

	out := Recalculate(items, settings)

	assert.InDelta(t, 10000, out[0].Calculated.Rent, tolerance)
	assert.InDelta(t, 30000, out[1].Calculated.Rent, tolerance)
}

func TestRecalculate_SalesSalaryPoolFromPlanGrossProfit(t *testing.T) {
	settings := domain.PlanSettings{ExchangeRateImport: 26000, ExchangeRateTax: 26000, SalesSalaryRate: 20}
	items := []domain.PlanLineItem{bareItem("a", 1000), bareItem("b", 3000)}

	out := Recalculate(items, settings)

	pool := (out[0].Calculated.GrossProfit + out[1].Calculated.GrossProfit) * 0.20
	assert.InDelta(t, pool*0.25, out[0].Calculated.SalesStaffSalary, 1e-3)
	assert.InDelta(t, pool*0.75, out[1].Calculated.SalesStaffSalary, 1e-3)
	assert.InDelta(t, out[1].Calculated.SalesStaffSalary, out[1].Calculated.TotalSellingCost, tolerance)
}

func TestRecalculate_LossMakingItemKeepsNegativeTaxes(t *testing.T) {
	item := bareItem("a", 1000)
	item.UserInput.SellingPriceVNDPerKg = 1000
	settings := domain.PlanSettings{ExchangeRateImport: 26000, ExchangeRateTax: 26000}

	c := Recalculate([]domain.PlanLineItem{item}, settings)[0].Calculated

	require.Less(t, c.ProfitBeforeTax, 0.0)
	assert.InDelta(t, c.ProfitBeforeTax*CorporateIncomeTaxRate, c.CorporateIncomeTax, tolerance)
	assert.Less(t, c.CorporateIncomeTax, 0.0)
	assert.Less(t, c.VATPayable, 0.0)
	assert.Equal(t, c.OutputVAT-c.ImportVAT, c.VATPayable)
	assert.Zero(t, c.RetainedForProvision)
	assert.Zero(t, c.RetainedForBusiness)
	assert.Zero(t, c.Dividends)
}

func TestRecalculate_IgnoresIncomingCalculated(t *testing.T) {
	item := bareItem("a", 1000)
	clean := Recalculate([]domain.PlanLineItem{item}, DefaultSettings())

	item.Calculated = domain.Calculated{NetProfit: 42, Rent: 99, Dividends: 7}
	dirty := Recalculate([]domain.PlanLineItem{item}, DefaultSettings())

	assert.Equal(t, clean[0].Calculated, dirty[0].Calculated)
}

func TestRecalculate_DoesNotMutateInput(t *testing.T) {
	items := []domain.PlanLineItem{bareItem("a", 1000), bareItem("b", 2000)}

	_ = Recalculate(items, DefaultSettings())

	assert.Equal(t, domain.Calculated{}, items[0].Calculated)
	assert.Equal(t, domain.Calculated{}, items[1].Calculated)
}

func TestRecalculate_RemovedItemIsAbsentFromAllocation(t *testing.T) {
	settings := domain.PlanSettings{ExchangeRateImport: 26000, ExchangeRateTax: 26000, TotalMonthlyRent: 40000}
	items := []domain.PlanLineItem{bareItem("a", 1000), bareItem("b", 3000)}

	out := Recalculate(items[:1], settings)

	assert.InDelta(t, 40000, out[0].Calculated.Rent, tolerance)
}

func TestAllocate_ZeroTotalQuantity(t *testing.T) {
	assert.Zero(t, Allocate(40000, 0, Totals{}))
	assert.Zero(t, Allocate(40000, 10, Totals{QuantityKg: 0}))
}

func TestDailyIndirectSalary(t *testing.T) {
	s := DefaultSettings()
	assert.InDelta(t, 75_000_000.0/24, s.DailyIndirectSalary(), tolerance)

	s.WorkingDaysPerMonth = 0
	assert.Zero(t, s.DailyIndirectSalary())
}
