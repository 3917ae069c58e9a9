package plan

import (
	"fmt"
	"strings"

	"bizplan/internal/domain"
)

// Field names one settable UserInput value.
type Field int

const (
	FieldQuantityKg Field = iota + 1
	FieldPriceUSDPerTon
	FieldSellingPriceVNDPerKg
	FieldCustomsFee
	FieldQuarantineFee
	FieldContainerRentalFee
	FieldPortStorageFee
	FieldGeneralWarehouseRatePerKg
	FieldLoanInterestRatePerYear
	FieldLoanFirstTransferUSD
	FieldLoanFirstTransferInterestDays
	FieldPostClearanceStorageDays
	FieldPostClearanceStorageRatePerKgDay
	FieldImportVATRate
	FieldPurchasingServiceFeeVNDPerContainer
	FieldBuyerDeliveryFee
	FieldOtherInternationalCosts
	FieldOtherSellingCosts
)

type fieldSpec struct {
	key      string
	localKey string
	ptr      func(*domain.UserInput) *float64
}

var fieldSpecs = map[Field]fieldSpec{
	FieldQuantityKg:                          {"quantity_kg", "so_luong_kg", func(u *domain.UserInput) *float64 { return &u.QuantityKg }},
	FieldPriceUSDPerTon:                      {"price_usd_per_ton", "gia_mua_usd", func(u *domain.UserInput) *float64 { return &u.PriceUSDPerTon }},
	FieldSellingPriceVNDPerKg:                {"selling_price_vnd_per_kg", "gia_ban_vnd", func(u *domain.UserInput) *float64 { return &u.SellingPriceVNDPerKg }},
	FieldCustomsFee:                          {"customs_fee", "phi_hai_quan", func(u *domain.UserInput) *float64 { return &u.Costs.CustomsFee }},
	FieldQuarantineFee:                       {"quarantine_fee", "phi_kiem_dich", func(u *domain.UserInput) *float64 { return &u.Costs.QuarantineFee }},
	FieldContainerRentalFee:                  {"container_rental_fee", "phi_thue_cont", func(u *domain.UserInput) *float64 { return &u.Costs.ContainerRentalFee }},
	FieldPortStorageFee:                      {"port_storage_fee", "phi_luu_kho_cang", func(u *domain.UserInput) *float64 { return &u.Costs.PortStorageFee }},
	FieldGeneralWarehouseRatePerKg:           {"general_warehouse_rate_per_kg", "don_gia_nhap_kho", func(u *domain.UserInput) *float64 { return &u.Costs.GeneralWarehouseRatePerKg }},
	FieldLoanInterestRatePerYear:             {"loan_interest_rate_per_year", "lai_suat_vay", func(u *domain.UserInput) *float64 { return &u.Costs.LoanInterestRatePerYear }},
	FieldLoanFirstTransferUSD:                {"loan_first_transfer_usd", "tien_vay_lan_1_usd", func(u *domain.UserInput) *float64 { return &u.Costs.LoanFirstTransferUSD }},
	FieldLoanFirstTransferInterestDays:       {"loan_first_transfer_interest_days", "ngay_lai_lan_1", func(u *domain.UserInput) *float64 { return &u.Costs.LoanFirstTransferInterestDays }},
	FieldPostClearanceStorageDays:            {"post_clearance_storage_days", "so_ngay_luu_kho", func(u *domain.UserInput) *float64 { return &u.Costs.PostClearanceStorageDays }},
	FieldPostClearanceStorageRatePerKgDay:    {"post_clearance_storage_rate_per_kg_day", "don_gia_luu_kho", func(u *domain.UserInput) *float64 { return &u.Costs.PostClearanceStorageRatePerKgDay }},
	FieldImportVATRate:                       {"import_vat_rate", "thue_suat_vat", func(u *domain.UserInput) *float64 { return &u.Costs.ImportVATRate }},
	FieldPurchasingServiceFeeVNDPerContainer: {"purchasing_service_fee_vnd_per_container", "phi_dich_vu_mua_hang", func(u *domain.UserInput) *float64 { return &u.Costs.PurchasingServiceFeeVNDPerContainer }},
	FieldBuyerDeliveryFee:                    {"buyer_delivery_fee", "phi_vc_den_kho_mua", func(u *domain.UserInput) *float64 { return &u.Costs.BuyerDeliveryFee }},
	FieldOtherInternationalCosts:             {"other_international_costs", "chi_phi_quoc_te_khac", func(u *domain.UserInput) *float64 { return &u.Costs.OtherInternationalCosts }},
	FieldOtherSellingCosts:                   {"other_selling_costs", "chi_phi_ban_hang_khac", func(u *domain.UserInput) *float64 { return &u.Costs.OtherSellingCosts }},
}

func (f Field) String() string {
	if spec, ok := fieldSpecs[f]; ok {
		return spec.key
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// LocalKey is the Vietnamese key the assistant uses for the field.
func (f Field) LocalKey() string {
	return fieldSpecs[f].localKey
}

func (f Field) Get(in domain.UserInput) float64 {
	spec, ok := fieldSpecs[f]
	if !ok {
		return 0
	}
	return *spec.ptr(&in)
}

// Set returns a copy of in with the field replaced.
func (f Field) Set(in domain.UserInput, value float64) domain.UserInput {
	if spec, ok := fieldSpecs[f]; ok {
		*spec.ptr(&in) = value
	}
	return in
}

// ParseField accepts either the English or the Vietnamese key.
func ParseField(raw string) (Field, error) {
	key := normalizeKey(raw)
	for field, spec := range fieldSpecs {
		if spec.key == key || spec.localKey == key {
			return field, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", raw)
}

// Fields lists every settable field in declaration order.
func Fields() []Field {
	out := make([]Field, 0, len(fieldSpecs))
	for f := FieldQuantityKg; f <= FieldOtherSellingCosts; f++ {
		out = append(out, f)
	}
	return out
}

// Setting names one PlanSettings value.
type Setting int

const (
	SettingExchangeRateImport Setting = iota + 1
	SettingExchangeRateTax
	SettingSalesSalaryRate
	SettingTotalMonthlyIndirectSalary
	SettingWorkingDaysPerMonth
	SettingTotalMonthlyRent
	SettingTotalMonthlyElectricity
	SettingTotalMonthlyWater
	SettingTotalMonthlyStationery
	SettingTotalMonthlyDepreciation
	SettingTotalMonthlyExternalServices
	SettingTotalMonthlyOtherCashExpenses
	SettingTotalMonthlyFinancialCost
)

type settingSpec struct {
	key      string
	localKey string
	ptr      func(*domain.PlanSettings) *float64
}

var settingSpecs = map[Setting]settingSpec{
	SettingExchangeRateImport:            {"exchange_rate_import", "ty_gia_nhap_khau", func(s *domain.PlanSettings) *float64 { return &s.ExchangeRateImport }},
	SettingExchangeRateTax:               {"exchange_rate_tax", "ty_gia_thue", func(s *domain.PlanSettings) *float64 { return &s.ExchangeRateTax }},
	SettingSalesSalaryRate:               {"sales_salary_rate", "ty_le_luong_ban_hang", func(s *domain.PlanSettings) *float64 { return &s.SalesSalaryRate }},
	SettingTotalMonthlyIndirectSalary:    {"total_monthly_indirect_salary", "tong_luong_gian_tiep", func(s *domain.PlanSettings) *float64 { return &s.TotalMonthlyIndirectSalary }},
	SettingWorkingDaysPerMonth:           {"working_days_per_month", "so_ngay_lam_viec", func(s *domain.PlanSettings) *float64 { return &s.WorkingDaysPerMonth }},
	SettingTotalMonthlyRent:              {"total_monthly_rent", "chi_phi_thue_nha", func(s *domain.PlanSettings) *float64 { return &s.TotalMonthlyRent }},
	SettingTotalMonthlyElectricity:       {"total_monthly_electricity", "chi_phi_dien", func(s *domain.PlanSettings) *float64 { return &s.TotalMonthlyElectricity }},
	SettingTotalMonthlyWater:             {"total_monthly_water", "chi_phi_nuoc", func(s *domain.PlanSettings) *float64 { return &s.TotalMonthlyWater }},
	SettingTotalMonthlyStationery:        {"total_monthly_stationery", "chi_phi_vpp", func(s *domain.PlanSettings) *float64 { return &s.TotalMonthlyStationery }},
	SettingTotalMonthlyDepreciation:      {"total_monthly_depreciation", "chi_phi_khau_hao", func(s *domain.PlanSettings) *float64 { return &s.TotalMonthlyDepreciation }},
	SettingTotalMonthlyExternalServices:  {"total_monthly_external_services", "chi_phi_dich_vu_ngoai", func(s *domain.PlanSettings) *float64 { return &s.TotalMonthlyExternalServices }},
	SettingTotalMonthlyOtherCashExpenses: {"total_monthly_other_cash_expenses", "chi_phi_tien_mat_khac", func(s *domain.PlanSettings) *float64 { return &s.TotalMonthlyOtherCashExpenses }},
	SettingTotalMonthlyFinancialCost:     {"total_monthly_financial_cost", "chi_phi_tai_chinh", func(s *domain.PlanSettings) *float64 { return &s.TotalMonthlyFinancialCost }},
}

func (s Setting) String() string {
	if spec, ok := settingSpecs[s]; ok {
		return spec.key
	}
	return fmt.Sprintf("setting(%d)", int(s))
}

func (s Setting) LocalKey() string {
	return settingSpecs[s].localKey
}

func (s Setting) Get(settings domain.PlanSettings) float64 {
	spec, ok := settingSpecs[s]
	if !ok {
		return 0
	}
	return *spec.ptr(&settings)
}

func (s Setting) Set(settings domain.PlanSettings, value float64) domain.PlanSettings {
	if spec, ok := settingSpecs[s]; ok {
		*spec.ptr(&settings) = value
	}
	return settings
}

func ParseSetting(raw string) (Setting, error) {
	key := normalizeKey(raw)
	for setting, spec := range settingSpecs {
		if spec.key == key || spec.localKey == key {
			return setting, nil
		}
	}
	return 0, fmt.Errorf("unknown setting %q", raw)
}

func Settings() []Setting {
	out := make([]Setting, 0, len(settingSpecs))
	for s := SettingExchangeRateImport; s <= SettingTotalMonthlyFinancialCost; s++ {
		out = append(out, s)
	}
	return out
}

func normalizeKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", "_")
	return strings.ReplaceAll(key, " ", "_")
}
