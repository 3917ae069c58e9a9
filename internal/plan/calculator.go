package plan

import "bizplan/internal/domain"

const (
	CorporateIncomeTaxRate = 0.20

	ProvisionRate       = 0.10
	BusinessCapitalRate = 0.60
	DividendRate        = 0.30

	DaysPerYear = 365
	KgPerTon    = 1000
)

// Rates is the part of PlanSettings the first pass depends on.
type Rates struct {
	Import float64
	Tax    float64
}

func RatesOf(settings domain.PlanSettings) Rates {
	return Rates{Import: settings.ExchangeRateImport, Tax: settings.ExchangeRateTax}
}

// Totals is the plan-wide reduction that feeds the second pass.
type Totals struct {
	GrossProfit float64 `json:"totalGrossProfit"`
	QuantityKg  float64 `json:"totalQuantityInKg"`
}

// PreTotals computes every figure of a line item that does not depend on the
// rest of the plan. The returned record has the second-pass fields zeroed.
func PreTotals(item domain.PlanLineItem, rates Rates) domain.Calculated {
	in := item.UserInput
	costs := in.Costs
	qty := in.QuantityKg
	vatRate := costs.ImportVATRate / 100

	containers := 0.0
	if qty > 0 && item.DefaultWeightKg > 0 {
		containers = qty / item.DefaultWeightKg
	}
	priceUSDPerKg := in.PriceUSDPerTon / KgPerTon
	importValueUSD := qty * priceUSDPerKg
	importValueVND := importValueUSD * rates.Import
	importVAT := qty * priceUSDPerKg * rates.Tax * vatRate

	dailyRate := (costs.LoanInterestRatePerYear / 100) / DaysPerYear
	firstAmount := costs.LoanFirstTransferUSD * rates.Import
	firstInterest := firstAmount * dailyRate * costs.LoanFirstTransferInterestDays
	secondAmount := 0.0
	if importValueVND > firstAmount {
		secondAmount = importValueVND - firstAmount
	}
	secondInterest := (firstAmount + secondAmount) * dailyRate * costs.PostClearanceStorageDays
	vatInterest := importVAT * dailyRate * costs.PostClearanceStorageDays
	importInterest := firstInterest + secondInterest + vatInterest

	warehouse := qty * costs.GeneralWarehouseRatePerKg
	storage := qty * costs.PostClearanceStorageDays * costs.PostClearanceStorageRatePerKgDay
	purchasingFee := containers * costs.PurchasingServiceFeeVNDPerContainer

	logistics := costs.CustomsFee + costs.QuarantineFee + costs.ContainerRentalFee + costs.PortStorageFee +
		warehouse + importInterest + storage +
		purchasingFee + costs.BuyerDeliveryFee + costs.OtherInternationalCosts

	sellingExclVAT := 0.0
	if divisor := 1 + vatRate; divisor != 0 {
		sellingExclVAT = in.SellingPriceVNDPerKg / divisor
	}
	revenue := sellingExclVAT * qty
	cogs := importValueVND + logistics

	return domain.Calculated{
		Containers:          containers,
		PriceUSDPerKg:       priceUSDPerKg,
		PriceVNDPerTon:      in.PriceUSDPerTon * rates.Import,
		ImportValueUSD:      importValueUSD,
		ImportValueVND:      importValueVND,
		ImportVAT:           importVAT,
		SellingPriceExclVAT: sellingExclVAT,
		TotalRevenueInclVAT: in.SellingPriceVNDPerKg * qty,
		TotalRevenue:        revenue,
		TotalCOGS:           cogs,
		GrossProfit:         revenue - cogs,

		GeneralWarehouseCost:           warehouse,
		LoanFirstTransferAmountVND:     firstAmount,
		LoanInterestCostFirstTransfer:  firstInterest,
		LoanSecondTransferAmountVND:    secondAmount,
		LoanInterestCostSecondTransfer: secondInterest,
		LoanInterestCostVAT:            vatInterest,
		ImportInterestCost:             importInterest,
		PostClearanceStorageCost:       storage,
		PurchasingServiceFee:           purchasingFee,
		OtherInternationalPurchaseCost: costs.OtherInternationalCosts,
		TotalClearanceAndLogisticsCost: logistics,
	}
}

// Aggregate folds first-pass results into plan totals. pre[i] belongs to items[i].
func Aggregate(items []domain.PlanLineItem, pre []domain.Calculated) Totals {
	var totals Totals
	for i, item := range items {
		totals.GrossProfit += pre[i].GrossProfit
		totals.QuantityKg += item.UserInput.QuantityKg
	}
	return totals
}

// Allocate splits a plan-wide amount by the item's share of total quantity.
func Allocate(amount, quantityKg float64, totals Totals) float64 {
	if totals.QuantityKg <= 0 {
		return 0
	}
	return amount * (quantityKg / totals.QuantityKg)
}

// PostTotals completes pre with the figures that depend on plan totals.
func PostTotals(item domain.PlanLineItem, pre domain.Calculated, totals Totals, settings domain.PlanSettings) domain.Calculated {
	calc := pre
	qty := item.UserInput.QuantityKg
	costs := item.UserInput.Costs
	vatRate := costs.ImportVATRate / 100

	alloc := func(amount float64) float64 { return Allocate(amount, qty, totals) }

	calc.SalesStaffSalary = alloc(totals.GrossProfit * (settings.SalesSalaryRate / 100))
	calc.IndirectStaffSalary = alloc(settings.TotalMonthlyIndirectSalary)
	calc.Rent = alloc(settings.TotalMonthlyRent)
	calc.Electricity = alloc(settings.TotalMonthlyElectricity)
	calc.Water = alloc(settings.TotalMonthlyWater)
	calc.Stationery = alloc(settings.TotalMonthlyStationery)
	calc.Depreciation = alloc(settings.TotalMonthlyDepreciation)
	calc.ExternalServices = alloc(settings.TotalMonthlyExternalServices)
	calc.OtherCashExpenses = alloc(settings.TotalMonthlyOtherCashExpenses)
	calc.FinancialValuationCost = alloc(settings.TotalMonthlyFinancialCost)

	calc.TotalSellingCost = calc.SalesStaffSalary + costs.OtherSellingCosts
	calc.TotalGACost = calc.IndirectStaffSalary + calc.Rent + calc.Electricity + calc.Water +
		calc.Stationery + calc.Depreciation + calc.ExternalServices + calc.OtherCashExpenses
	calc.TotalFinancialCost = calc.FinancialValuationCost

	calc.OutputVAT = calc.TotalRevenue * vatRate
	// Negative means a VAT credit; it is reported as is.
	calc.VATPayable = calc.OutputVAT - calc.ImportVAT
	if qty > 0 {
		calc.COGSPerKg = calc.TotalCOGS / qty
	}
	calc.TotalOperatingCost = calc.TotalSellingCost + calc.TotalGACost
	calc.TotalPreTaxCost = calc.TotalCOGS + calc.TotalOperatingCost + calc.TotalFinancialCost
	calc.ProfitBeforeTax = calc.TotalRevenue - calc.TotalPreTaxCost
	// Applied to losses too, which yields a tax benefit.
	calc.CorporateIncomeTax = calc.ProfitBeforeTax * CorporateIncomeTaxRate
	calc.NetProfit = calc.ProfitBeforeTax - calc.CorporateIncomeTax
	calc.TotalTaxPayable = calc.CorporateIncomeTax + calc.VATPayable
	if calc.TotalRevenue > 0 {
		calc.NetProfitMargin = calc.NetProfit / calc.TotalRevenue * 100
	}

	if calc.NetProfit > 0 {
		calc.RetainedForProvision = calc.NetProfit * ProvisionRate
		calc.RetainedForBusiness = calc.NetProfit * BusinessCapitalRate
		calc.Dividends = calc.NetProfit * DividendRate
	}
	return calc
}

// Recalculate derives Calculated for every item from scratch. Items are taken
// by value and a new slice is returned; whatever Calculated the caller passed
// in is ignored.
func Recalculate(items []domain.PlanLineItem, settings domain.PlanSettings) []domain.PlanLineItem {
	rates := RatesOf(settings)

	pre := make([]domain.Calculated, len(items))
	for i, item := range items {
		pre[i] = PreTotals(item, rates)
	}

	totals := Aggregate(items, pre)

	out := make([]domain.PlanLineItem, len(items))
	for i, item := range items {
		item.Calculated = PostTotals(item, pre[i], totals, settings)
		out[i] = item
	}
	return out
}
