package plan

import "bizplan/internal/domain"

// CostBreakdown sums each cost line across the plan, grouped the way the
// report presents them.
type CostBreakdown struct {
	CustomsFee                     float64 `json:"customsFee"`
	QuarantineFee                  float64 `json:"quarantineFee"`
	ContainerRentalFee             float64 `json:"containerRentalFee"`
	PortStorageFee                 float64 `json:"portStorageFee"`
	GeneralWarehouseCost           float64 `json:"generalWarehouseCost"`
	ImportInterestCost             float64 `json:"importInterestCost"`
	PostClearanceStorageCost       float64 `json:"postClearanceStorageCost"`
	PurchasingServiceFee           float64 `json:"purchasingServiceFee"`
	BuyerDeliveryFee               float64 `json:"buyerDeliveryFee"`
	OtherInternationalPurchaseCost float64 `json:"otherInternationalPurchaseCost"`

	SalesStaffSalary  float64 `json:"salesStaffSalary"`
	OtherSellingCosts float64 `json:"otherSellingCosts"`

	IndirectStaffSalary float64 `json:"indirectStaffSalary"`
	Rent                float64 `json:"rent"`
	Electricity         float64 `json:"electricity"`
	Water               float64 `json:"water"`
	Stationery          float64 `json:"stationery"`
	Depreciation        float64 `json:"depreciation"`
	ExternalServices    float64 `json:"externalServices"`
	OtherCashExpenses   float64 `json:"otherCashExpenses"`

	FinancialValuationCost float64 `json:"financialValuationCost"`
}

type Summary struct {
	ItemCount                      int     `json:"itemCount"`
	TotalQuantityKg                float64 `json:"totalQuantityInKg"`
	ImportValueVND                 float64 `json:"importValueVND"`
	TotalClearanceAndLogisticsCost float64 `json:"totalClearanceAndLogisticsCost"`
	TotalRevenue                   float64 `json:"totalRevenue"`
	TotalCOGS                      float64 `json:"totalCOGS"`
	GrossProfit                    float64 `json:"grossProfit"`
	TotalSellingCost               float64 `json:"totalSellingCost"`
	TotalGACost                    float64 `json:"totalGaCost"`
	TotalFinancialCost             float64 `json:"totalFinancialCost"`
	ImportInterestCost             float64 `json:"importInterestCost"`
	ProfitBeforeTax                float64 `json:"profitBeforeTax"`
	CorporateIncomeTax             float64 `json:"corporateIncomeTax"`
	NetProfit                      float64 `json:"netProfit"`
	ImportVAT                      float64 `json:"importVAT"`
	OutputVAT                      float64 `json:"outputVAT"`
	VATPayable                     float64 `json:"vatPayable"`
	TotalTaxPayable                float64 `json:"totalTaxPayable"`
	NetProfitMargin                float64 `json:"netProfitMargin"`
	AvgPostClearanceStorageDays    float64 `json:"avgPostClearanceStorageDays"`

	Costs CostBreakdown `json:"costs"`
}

// TotalCost is logistics plus selling, G&A and financial cost.
func (s Summary) TotalCost() float64 {
	return s.TotalClearanceAndLogisticsCost + s.TotalSellingCost + s.TotalGACost + s.TotalFinancialCost
}

func (s Summary) OperatingCost() float64 {
	return s.TotalSellingCost + s.TotalGACost
}

// ShareOfRevenue returns amount as a percentage of total revenue, 0 when there is no revenue.
func (s Summary) ShareOfRevenue(amount float64) float64 {
	if s.TotalRevenue <= 0 {
		return 0
	}
	return amount / s.TotalRevenue * 100
}

// Summarize sums already recalculated items.
func Summarize(items []domain.PlanLineItem) Summary {
	s := Summary{ItemCount: len(items)}
	storageDays := 0.0
	for _, item := range items {
		c := item.Calculated
		in := item.UserInput

		s.TotalQuantityKg += in.QuantityKg
		s.ImportValueVND += c.ImportValueVND
		s.TotalClearanceAndLogisticsCost += c.TotalClearanceAndLogisticsCost
		s.TotalRevenue += c.TotalRevenue
		s.TotalCOGS += c.TotalCOGS
		s.GrossProfit += c.GrossProfit
		s.TotalSellingCost += c.TotalSellingCost
		s.TotalGACost += c.TotalGACost
		s.TotalFinancialCost += c.TotalFinancialCost
		s.ImportInterestCost += c.ImportInterestCost
		s.ProfitBeforeTax += c.ProfitBeforeTax
		s.CorporateIncomeTax += c.CorporateIncomeTax
		s.NetProfit += c.NetProfit
		s.ImportVAT += c.ImportVAT
		s.OutputVAT += c.OutputVAT
		s.VATPayable += c.VATPayable
		s.TotalTaxPayable += c.TotalTaxPayable
		storageDays += in.Costs.PostClearanceStorageDays

		s.Costs.CustomsFee += in.Costs.CustomsFee
		s.Costs.QuarantineFee += in.Costs.QuarantineFee
		s.Costs.ContainerRentalFee += in.Costs.ContainerRentalFee
		s.Costs.PortStorageFee += in.Costs.PortStorageFee
		s.Costs.GeneralWarehouseCost += c.GeneralWarehouseCost
		s.Costs.ImportInterestCost += c.ImportInterestCost
		s.Costs.PostClearanceStorageCost += c.PostClearanceStorageCost
		s.Costs.PurchasingServiceFee += c.PurchasingServiceFee
		s.Costs.BuyerDeliveryFee += in.Costs.BuyerDeliveryFee
		s.Costs.OtherInternationalPurchaseCost += c.OtherInternationalPurchaseCost
		s.Costs.SalesStaffSalary += c.SalesStaffSalary
		s.Costs.OtherSellingCosts += in.Costs.OtherSellingCosts
		s.Costs.IndirectStaffSalary += c.IndirectStaffSalary
		s.Costs.Rent += c.Rent
		s.Costs.Electricity += c.Electricity
		s.Costs.Water += c.Water
		s.Costs.Stationery += c.Stationery
		s.Costs.Depreciation += c.Depreciation
		s.Costs.ExternalServices += c.ExternalServices
		s.Costs.OtherCashExpenses += c.OtherCashExpenses
		s.Costs.FinancialValuationCost += c.FinancialValuationCost
	}
	if len(items) > 0 {
		s.AvgPostClearanceStorageDays = storageDays / float64(len(items))
	}
	if s.TotalRevenue > 0 {
		s.NetProfitMargin = s.NetProfit / s.TotalRevenue * 100
	}
	return s
}
