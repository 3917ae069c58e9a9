package report

import (
	"fmt"

	"bizplan/internal/money"
	"bizplan/internal/plan"
)

// StatementRow is one line of the business-plan income statement.
type StatementRow struct {
	Label   string  `json:"label"`
	Code    string  `json:"code"`
	Formula string  `json:"formula"`
	Amount  float64 `json:"amount"`
	Share   string  `json:"share"`
	Bold    bool    `json:"bold"`
	Sub     bool    `json:"sub"`
}

// Statement is the income statement with every figure keyed by its row code.
type Statement struct {
	Rows       []StatementRow     `json:"rows"`
	NetRevenue float64            `json:"netRevenue"`
	ByCode     map[string]float64 `json:"-"`
}

// BuildStatement lays out rows 01 to 80. Items the business does not plan
// (deductions, financial income, other income and cost, deferred tax) are 0.
func BuildStatement(s plan.Summary) Statement {
	const (
		deductions      = 0.0
		financialIncome = 0.0
		otherIncome     = 0.0
		otherCost       = 0.0
		deferredCIT     = 0.0
	)
	gross := s.TotalRevenue
	net := gross - deductions
	grossProfit := net - s.TotalCOGS
	operating := grossProfit + (financialIncome - s.TotalFinancialCost) - s.TotalSellingCost - s.TotalGACost
	otherProfit := otherIncome - otherCost
	pbt := operating + otherProfit
	cit := pbt * plan.CorporateIncomeTaxRate
	netProfit := pbt - cit - deferredCIT
	totalTax := cit + s.VATPayable

	citLabel := fmt.Sprintf("%.0f%%", plan.CorporateIncomeTaxRate*100)

	rows := []StatementRow{
		{Label: "1. Doanh thu bán hàng và cung cấp dịch vụ", Code: "01", Formula: "Tổng hợp", Amount: gross, Bold: true},
		{Label: "2. Các khoản giảm trừ doanh thu", Code: "02", Amount: deductions},
		{Label: "3. Doanh thu thuần về bán hàng và cung cấp dịch vụ (10 = 01 - 02)", Code: "10", Formula: "[01] - [02]", Amount: net},
		{Label: "4. Giá vốn hàng bán", Code: "11", Formula: "Tổng hợp", Amount: s.TotalCOGS, Bold: true},
		{Label: "5. Lợi nhuận gộp về bán hàng và cung cấp dịch vụ (20 = 10 - 11)", Code: "20", Formula: "[10] - [11]", Amount: grossProfit, Bold: true},
		{Label: "6. Doanh thu hoạt động tài chính", Code: "21", Amount: financialIncome},
		{Label: "7. Chi phí tài chính", Code: "22", Formula: "Tổng hợp", Amount: s.TotalFinancialCost},
		{Label: "8. Chi phí lãi vay đã tính vào giá vốn", Code: "23", Formula: "Tổng hợp", Amount: s.ImportInterestCost, Sub: true},
		{Label: "9. Chi phí bán hàng", Code: "25", Formula: "Tổng hợp", Amount: s.TotalSellingCost},
		{Label: "10. Chi phí quản lý doanh nghiệp", Code: "26", Formula: "Tổng hợp", Amount: s.TotalGACost},
		{Label: "11. Lợi nhuận thuần từ hoạt động kinh doanh (30 = 20 + (21 - 22) - 25 - 26)", Code: "30", Formula: "[20] + ([21]-[22]) - [25] - [26]", Amount: operating, Bold: true},
		{Label: "12. Thu nhập khác", Code: "31", Amount: otherIncome},
		{Label: "13. Chi phí khác", Code: "32", Amount: otherCost},
		{Label: "14. Lợi nhuận khác (40 = 31 - 32)", Code: "40", Formula: "[31] - [32]", Amount: otherProfit},
		{Label: "15. Tổng lợi nhuận kế toán trước thuế (50 = 30 + 40)", Code: "50", Formula: "[30] + [40]", Amount: pbt, Bold: true},
		{Label: "16. Chi phí thuế TNDN hiện hành (" + citLabel + " x 50)", Code: "51", Formula: "[50] x " + citLabel, Amount: cit},
		{Label: "17. Chi phí thuế TNDN hoãn lại", Code: "52", Amount: deferredCIT},
		{Label: "18. Lợi nhuận sau thuế thu nhập doanh nghiệp (60 = 50 - 51 - 52)", Code: "60", Formula: "[50] - [51] - [52]", Amount: netProfit, Bold: true},
		{Label: "19. Thuế GTGT phải nộp nhà nước", Code: "70", Formula: "Tổng hợp", Amount: s.VATPayable},
		{Label: "20. Tổng thuế phải nộp cho nhà nước", Code: "80", Formula: "[51] + [70]", Amount: totalTax, Bold: true},
	}

	byCode := make(map[string]float64, len(rows))
	for i := range rows {
		rows[i].Share = money.Share(rows[i].Amount, net)
		byCode[rows[i].Code] = rows[i].Amount
	}
	return Statement{Rows: rows, NetRevenue: net, ByCode: byCode}
}

// CostRow is one line of the cost summary table.
type CostRow struct {
	No     string  `json:"no"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Share  string  `json:"share"`
	Note   string  `json:"note"`
	Bold   bool    `json:"bold"`
	Sub    bool    `json:"sub"`
}

// BuildCostRows groups plan costs the way they are booked: clearance and
// logistics (inside COGS), selling, G&A and financial. The last row is the total.
func BuildCostRows(s plan.Summary) []CostRow {
	c := s.Costs
	storageNote := fmt.Sprintf("(Lưu kho ~%.0f ngày)", s.AvgPostClearanceStorageDays)

	head := func(no, label string, amount float64) CostRow {
		return CostRow{No: no, Label: label, Amount: amount, Bold: true}
	}
	sub := func(no, label string, amount float64) CostRow {
		return CostRow{No: no, Label: label, Amount: amount, Sub: true}
	}

	rows := []CostRow{
		head("1", "Chi phí Thông quan & Vận hành (Được tính vào giá vốn)", s.TotalClearanceAndLogisticsCost),
		sub("1.1", "Phí Hải quan", c.CustomsFee),
		sub("1.2", "Phí kiểm dịch", c.QuarantineFee),
		sub("1.3", "Phí thuê Cont", c.ContainerRentalFee),
		sub("1.4", "Phí lưu kho bãi cảng", c.PortStorageFee),
		sub("1.5", "Chi phí chung nhập kho", c.GeneralWarehouseCost),
		sub("1.6", "Lãi vay nhập hàng", c.ImportInterestCost),
		sub("1.7", "Phí lưu kho sau TQ", c.PostClearanceStorageCost),
		sub("1.8", "DV mua hàng", c.PurchasingServiceFee),
		sub("1.9", "Phí VC đến bên mua", c.BuyerDeliveryFee),
		sub("1.10", "Chi phí khác", c.OtherInternationalPurchaseCost),

		head("2", "Chi phí Bán hàng", s.TotalSellingCost),
		sub("2.1", "Lương nhân viên bán hàng", c.SalesStaffSalary),
		sub("2.2", "Chi phí khác", c.OtherSellingCosts),

		head("3", "Chi phí Quản lý doanh nghiệp", s.TotalGACost),
		sub("3.1", "Lương nhân viên gián tiếp", c.IndirectStaffSalary),
		sub("3.2", "Thuê nhà", c.Rent),
		sub("3.3", "Điện", c.Electricity),
		sub("3.4", "Nước", c.Water),
		sub("3.5", "VPP", c.Stationery),
		sub("3.6", "Khấu hao TSCĐ", c.Depreciation),
		sub("3.7", "Dịch vụ mua ngoài", c.ExternalServices),
		sub("3.8", "Chi phí tiền khác", c.OtherCashExpenses),

		head("4", "Chi phí Tài chính", s.TotalFinancialCost),
		sub("4.1", "Chi phí tài sản, định giá...", c.FinancialValuationCost),

		{Label: "Tổng Cộng", Amount: s.TotalCost(), Bold: true},
	}
	rows[7].Note = storageNote

	for i := range rows {
		rows[i].Share = "0.00%"
		if s.TotalRevenue > 0 {
			rows[i].Share = money.Percent(s.ShareOfRevenue(rows[i].Amount))
		}
	}
	return rows
}
