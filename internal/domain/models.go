package domain

import (
	"encoding/json"
	"time"
)

// VNDPerMillion converts the persisted "millions per container" purchasing fee
// into VND. It is applied only when CostInputs crosses the JSON boundary.
const VNDPerMillion = 1_000_000

type Product struct {
	Code                   string  `json:"code"`
	NameEN                 string  `json:"nameEN"`
	NameVI                 string  `json:"nameVI"`
	Brand                  string  `json:"brand"`
	Group                  string  `json:"group"`
	DefaultWeightKg        float64 `json:"defaultWeightKg"`
	DefaultPriceUSDPerTon  float64 `json:"defaultPriceUSDPerTon"`
	DefaultSellingPriceVND float64 `json:"defaultSellingPriceVND"`
}

type CostInputs struct {
	CustomsFee                          float64
	QuarantineFee                       float64
	ContainerRentalFee                  float64
	PortStorageFee                      float64
	GeneralWarehouseRatePerKg           float64
	LoanInterestRatePerYear             float64
	LoanFirstTransferUSD                float64
	LoanFirstTransferInterestDays       float64
	PostClearanceStorageDays            float64
	PostClearanceStorageRatePerKgDay    float64
	ImportVATRate                       float64
	PurchasingServiceFeeVNDPerContainer float64
	BuyerDeliveryFee                    float64
	OtherInternationalCosts             float64
	OtherSellingCosts                   float64
}

type costInputsJSON struct {
	CustomsFee                            float64 `json:"customsFee"`
	QuarantineFee                         float64 `json:"quarantineFee"`
	ContainerRentalFee                    float64 `json:"containerRentalFee"`
	PortStorageFee                        float64 `json:"portStorageFee"`
	GeneralWarehouseCostRatePerKg         float64 `json:"generalWarehouseCostRatePerKg"`
	LoanInterestRatePerYear               float64 `json:"loanInterestRatePerYear"`
	LoanFirstTransferUSD                  float64 `json:"loanFirstTransferUSD"`
	LoanFirstTransferInterestDays         float64 `json:"loanFirstTransferInterestDays"`
	PostClearanceStorageDays              float64 `json:"postClearanceStorageDays"`
	PostClearanceStorageRatePerKgDay      float64 `json:"postClearanceStorageRatePerKgDay"`
	ImportVatRate                         float64 `json:"importVatRate"`
	PurchasingServiceFeeInMillionsPerCont float64 `json:"purchasingServiceFeeInMillionsPerCont"`
	BuyerDeliveryFee                      float64 `json:"buyerDeliveryFee"`
	OtherInternationalCosts               float64 `json:"otherInternationalCosts"`
	OtherSellingCosts                     float64 `json:"otherSellingCosts"`
}

func (c CostInputs) MarshalJSON() ([]byte, error) {
	return json.Marshal(costInputsJSON{
		CustomsFee:                            c.CustomsFee,
		QuarantineFee:                         c.QuarantineFee,
		ContainerRentalFee:                    c.ContainerRentalFee,
		PortStorageFee:                        c.PortStorageFee,
		GeneralWarehouseCostRatePerKg:         c.GeneralWarehouseRatePerKg,
		LoanInterestRatePerYear:               c.LoanInterestRatePerYear,
		LoanFirstTransferUSD:                  c.LoanFirstTransferUSD,
		LoanFirstTransferInterestDays:         c.LoanFirstTransferInterestDays,
		PostClearanceStorageDays:              c.PostClearanceStorageDays,
		PostClearanceStorageRatePerKgDay:      c.PostClearanceStorageRatePerKgDay,
		ImportVatRate:                         c.ImportVATRate,
		PurchasingServiceFeeInMillionsPerCont: c.PurchasingServiceFeeVNDPerContainer / VNDPerMillion,
		BuyerDeliveryFee:                      c.BuyerDeliveryFee,
		OtherInternationalCosts:               c.OtherInternationalCosts,
		OtherSellingCosts:                     c.OtherSellingCosts,
	})
}

func (c *CostInputs) UnmarshalJSON(data []byte) error {
	var raw costInputsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = CostInputs{
		CustomsFee:                          raw.CustomsFee,
		QuarantineFee:                       raw.QuarantineFee,
		ContainerRentalFee:                  raw.ContainerRentalFee,
		PortStorageFee:                      raw.PortStorageFee,
		GeneralWarehouseRatePerKg:           raw.GeneralWarehouseCostRatePerKg,
		LoanInterestRatePerYear:             raw.LoanInterestRatePerYear,
		LoanFirstTransferUSD:                raw.LoanFirstTransferUSD,
		LoanFirstTransferInterestDays:       raw.LoanFirstTransferInterestDays,
		PostClearanceStorageDays:            raw.PostClearanceStorageDays,
		PostClearanceStorageRatePerKgDay:    raw.PostClearanceStorageRatePerKgDay,
		ImportVATRate:                       raw.ImportVatRate,
		PurchasingServiceFeeVNDPerContainer: raw.PurchasingServiceFeeInMillionsPerCont * VNDPerMillion,
		BuyerDeliveryFee:                    raw.BuyerDeliveryFee,
		OtherInternationalCosts:             raw.OtherInternationalCosts,
		OtherSellingCosts:                   raw.OtherSellingCosts,
	}
	return nil
}

type UserInput struct {
	PriceUSDPerTon       float64    `json:"priceUSDPerTon"`
	SellingPriceVNDPerKg float64    `json:"sellingPriceVNDPerKg"`
	QuantityKg           float64    `json:"quantityInKg"`
	Costs                CostInputs `json:"costs"`
}

// Calculated holds every derived figure of a line item. It is overwritten as a
// whole by plan.Recalculate and never edited by hand.
type Calculated struct {
	Containers           float64 `json:"containers"`
	PriceUSDPerKg        float64 `json:"priceUSDPerKg"`
	PriceVNDPerTon       float64 `json:"priceVNDPerTon"`
	ImportValueUSD       float64 `json:"importValueUSD"`
	ImportValueVND       float64 `json:"importValueVND"`
	ImportVAT            float64 `json:"importVAT"`
	OutputVAT            float64 `json:"outputVAT"`
	VATPayable           float64 `json:"vatPayable"`
	SellingPriceExclVAT  float64 `json:"sellingPriceExclVAT"`
	TotalRevenueInclVAT  float64 `json:"totalRevenueInclVAT"`
	TotalRevenue         float64 `json:"totalRevenue"`
	TotalCOGS            float64 `json:"totalCOGS"`
	COGSPerKg            float64 `json:"cogsPerKg"`
	GrossProfit          float64 `json:"grossProfit"`

	GeneralWarehouseCost           float64 `json:"generalWarehouseCost"`
	LoanFirstTransferAmountVND     float64 `json:"loanFirstTransferAmountVND"`
	LoanInterestCostFirstTransfer  float64 `json:"loanInterestCostFirstTransfer"`
	LoanSecondTransferAmountVND    float64 `json:"loanSecondTransferAmountVND"`
	LoanInterestCostSecondTransfer float64 `json:"loanInterestCostSecondTransfer"`
	LoanInterestCostVAT            float64 `json:"loanInterestCostVat"`
	ImportInterestCost             float64 `json:"importInterestCost"`
	PostClearanceStorageCost       float64 `json:"postClearanceStorageCost"`
	PurchasingServiceFee           float64 `json:"purchasingServiceFee"`
	OtherInternationalPurchaseCost float64 `json:"otherInternationalPurchaseCost"`
	TotalClearanceAndLogisticsCost float64 `json:"totalClearanceAndLogisticsCost"`

	SalesStaffSalary float64 `json:"salesStaffSalary"`
	TotalSellingCost float64 `json:"totalSellingCost"`

	IndirectStaffSalary float64 `json:"indirectStaffSalary"`
	Rent                float64 `json:"rent"`
	Electricity         float64 `json:"electricity"`
	Water               float64 `json:"water"`
	Stationery          float64 `json:"stationery"`
	Depreciation        float64 `json:"depreciation"`
	ExternalServices    float64 `json:"externalServices"`
	OtherCashExpenses   float64 `json:"otherCashExpenses"`
	TotalGACost         float64 `json:"totalGaCost"`

	FinancialValuationCost float64 `json:"financialValuationCost"`
	TotalFinancialCost     float64 `json:"totalFinancialCost"`

	TotalOperatingCost float64 `json:"totalOperatingCost"`
	TotalPreTaxCost    float64 `json:"totalPreTaxCost"`
	ProfitBeforeTax    float64 `json:"profitBeforeTax"`
	CorporateIncomeTax float64 `json:"corporateIncomeTax"`
	NetProfit          float64 `json:"netProfit"`
	NetProfitMargin    float64 `json:"netProfitMargin"`
	TotalTaxPayable    float64 `json:"totalTaxPayable"`

	RetainedForProvision float64 `json:"retainedForProvision"`
	RetainedForBusiness  float64 `json:"retainedForBusiness"`
	Dividends            float64 `json:"dividends"`
}

// PlanLineItem is one product's presence in a plan. The catalog fields are
// copied when the item is added, so later catalog edits do not reach it.
type PlanLineItem struct {
	ID string `json:"id"`
	Product
	UserInput  UserInput  `json:"userInput"`
	Calculated Calculated `json:"calculated"`
}

type PlanSettings struct {
	ExchangeRateImport            float64 `json:"exchangeRateImport"`
	ExchangeRateTax               float64 `json:"exchangeRateTax"`
	SalesSalaryRate               float64 `json:"salesSalaryRate"`
	TotalMonthlyIndirectSalary    float64 `json:"totalMonthlyIndirectSalary"`
	WorkingDaysPerMonth           float64 `json:"workingDaysPerMonth"`
	TotalMonthlyRent              float64 `json:"totalMonthlyRent"`
	TotalMonthlyElectricity       float64 `json:"totalMonthlyElectricity"`
	TotalMonthlyWater             float64 `json:"totalMonthlyWater"`
	TotalMonthlyStationery        float64 `json:"totalMonthlyStationery"`
	TotalMonthlyDepreciation      float64 `json:"totalMonthlyDepreciation"`
	TotalMonthlyExternalServices  float64 `json:"totalMonthlyExternalServices"`
	TotalMonthlyOtherCashExpenses float64 `json:"totalMonthlyOtherCashExpenses"`
	TotalMonthlyFinancialCost     float64 `json:"totalMonthlyFinancialCost"`
}

// DailyIndirectSalary is a display figure only; nothing in the calculation reads it.
func (s PlanSettings) DailyIndirectSalary() float64 {
	if s.WorkingDaysPerMonth == 0 {
		return 0
	}
	return s.TotalMonthlyIndirectSalary / s.WorkingDaysPerMonth
}

// SavedPlan stores raw line items. Calculated fields are stripped before
// saving and re-derived on load.
type SavedPlan struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"createdAt"`
	PlanItems []PlanLineItem `json:"planItems"`
	Settings  PlanSettings   `json:"settings"`
}

type SavedPlanHeader struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	ItemCount int       `json:"itemCount"`
}

type MeetingDetails struct {
	TimeAndPlace string `json:"timeAndPlace"`
	Attendees    string `json:"attendees"`
	Chair        string `json:"chair"`
	Topic        string `json:"topic"`
}

// StripCalculated returns copies of items with Calculated zeroed.
func StripCalculated(items []PlanLineItem) []PlanLineItem {
	out := make([]PlanLineItem, len(items))
	for i, item := range items {
		item.Calculated = Calculated{}
		out[i] = item
	}
	return out
}
