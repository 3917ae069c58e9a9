package plan

import (
	"strings"

	"bizplan/internal/domain"
)

func DefaultSettings() domain.PlanSettings {
	return domain.PlanSettings{
		ExchangeRateImport:            26356,
		ExchangeRateTax:               26154,
		SalesSalaryRate:               20,
		TotalMonthlyIndirectSalary:    75_000_000,
		WorkingDaysPerMonth:           24,
		TotalMonthlyRent:              6_000_000,
		TotalMonthlyElectricity:       2_000_000,
		TotalMonthlyWater:             500_000,
		TotalMonthlyStationery:        500_000,
		TotalMonthlyDepreciation:      0,
		TotalMonthlyExternalServices:  1_000_000,
		TotalMonthlyOtherCashExpenses: 1_000_000,
		TotalMonthlyFinancialCost:     0,
	}
}

// DefaultCostInputs are the cost inputs a freshly added line item starts with.
func DefaultCostInputs() domain.CostInputs {
	return domain.CostInputs{
		GeneralWarehouseRatePerKg:           1300,
		LoanInterestRatePerYear:             8,
		LoanFirstTransferUSD:                10_000,
		LoanFirstTransferInterestDays:       30,
		PostClearanceStorageDays:            20,
		PostClearanceStorageRatePerKgDay:    150,
		ImportVATRate:                       5,
		PurchasingServiceFeeVNDPerContainer: 5 * domain.VNDPerMillion,
	}
}

// NewLineItem denormalizes product into a new line item with default costs.
func NewLineItem(product domain.Product, id string, quantityKg, priceUSDPerTon, sellingPriceVNDPerKg float64) domain.PlanLineItem {
	return domain.PlanLineItem{
		ID:      id,
		Product: product,
		UserInput: domain.UserInput{
			PriceUSDPerTon:       priceUSDPerTon,
			SellingPriceVNDPerKg: sellingPriceVNDPerKg,
			QuantityKg:           quantityKg,
			Costs:                DefaultCostInputs(),
		},
	}
}

// DisplayName is "group - nameVI", the form used in instructions and reports.
func DisplayName(p domain.Product) string {
	return strings.TrimSpace(p.Group + " - " + p.NameVI)
}

// FindItem resolves a free-text product name against the plan: exact
// "group - name", exact name, then the same two as substrings. Matching is
// case-insensitive. The second result is false when nothing matches.
func FindItem(items []domain.PlanLineItem, name string) (domain.PlanLineItem, bool) {
	products := make([]domain.Product, len(items))
	for i, item := range items {
		products[i] = item.Product
	}
	idx := MatchProduct(products, name)
	if idx < 0 {
		return domain.PlanLineItem{}, false
	}
	return items[idx], true
}

// MatchProduct returns the index of the best match for name, or -1.
func MatchProduct(products []domain.Product, name string) int {
	term := strings.ToLower(strings.TrimSpace(name))
	if term == "" {
		return -1
	}
	combined := func(p domain.Product) string { return strings.ToLower(DisplayName(p)) }
	vi := func(p domain.Product) string { return strings.ToLower(strings.TrimSpace(p.NameVI)) }

	matchers := []func(domain.Product) bool{
		func(p domain.Product) bool { return combined(p) == term },
		func(p domain.Product) bool { return vi(p) == term },
		func(p domain.Product) bool { return strings.Contains(combined(p), term) },
		func(p domain.Product) bool { return strings.Contains(vi(p), term) },
	}
	for _, match := range matchers {
		for i, p := range products {
			if match(p) {
				return i
			}
		}
	}
	return -1
}
