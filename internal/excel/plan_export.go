package excel

import (
	"fmt"
	"io"

	"bizplan/internal/domain"
	"bizplan/internal/money"
	"bizplan/internal/plan"

	"github.com/xuri/excelize/v2"
)

const (
	PlanSheet     = "Phương án"
	SettingsSheet = "Thiết lập"

	numFmtThousands = 3 // #,##0
	numFmtDecimal2  = 4 // #,##0.00
)

type planColumn struct {
	title string
	value func(domain.PlanLineItem) any
	total func(plan.Summary) any
	fmtID int
}

var planColumns = []planColumn{
	{"Mã", func(i domain.PlanLineItem) any { return i.Code }, func(plan.Summary) any { return "TỔNG CỘNG" }, 0},
	{"Sản phẩm", func(i domain.PlanLineItem) any { return plan.DisplayName(i.Product) }, nil, 0},
	{"Thương hiệu", func(i domain.PlanLineItem) any { return i.Brand }, nil, 0},
	{"Số lượng (kg)", func(i domain.PlanLineItem) any { return i.UserInput.QuantityKg }, func(s plan.Summary) any { return s.TotalQuantityKg }, numFmtThousands},
	{"Số cont", func(i domain.PlanLineItem) any { return money.Round(i.Calculated.Containers, 2) }, nil, numFmtDecimal2},
	{"Giá mua (USD/tấn)", func(i domain.PlanLineItem) any { return i.UserInput.PriceUSDPerTon }, nil, numFmtDecimal2},
	{"Giá bán (VND/kg)", func(i domain.PlanLineItem) any { return i.UserInput.SellingPriceVNDPerKg }, nil, numFmtThousands},
	{"Doanh thu", vnd(func(c domain.Calculated) float64 { return c.TotalRevenue }), sum(func(s plan.Summary) float64 { return s.TotalRevenue }), numFmtThousands},
	{"Giá vốn", vnd(func(c domain.Calculated) float64 { return c.TotalCOGS }), sum(func(s plan.Summary) float64 { return s.TotalCOGS }), numFmtThousands},
	{"Giá vốn/kg", vnd(func(c domain.Calculated) float64 { return c.COGSPerKg }), nil, numFmtThousands},
	{"Lợi nhuận gộp", vnd(func(c domain.Calculated) float64 { return c.GrossProfit }), sum(func(s plan.Summary) float64 { return s.GrossProfit }), numFmtThousands},
	{"CP bán hàng", vnd(func(c domain.Calculated) float64 { return c.TotalSellingCost }), sum(func(s plan.Summary) float64 { return s.TotalSellingCost }), numFmtThousands},
	{"CP quản lý", vnd(func(c domain.Calculated) float64 { return c.TotalGACost }), sum(func(s plan.Summary) float64 { return s.TotalGACost }), numFmtThousands},
	{"CP tài chính", vnd(func(c domain.Calculated) float64 { return c.TotalFinancialCost }), sum(func(s plan.Summary) float64 { return s.TotalFinancialCost }), numFmtThousands},
	{"LN trước thuế", vnd(func(c domain.Calculated) float64 { return c.ProfitBeforeTax }), sum(func(s plan.Summary) float64 { return s.ProfitBeforeTax }), numFmtThousands},
	{"Thuế TNDN", vnd(func(c domain.Calculated) float64 { return c.CorporateIncomeTax }), sum(func(s plan.Summary) float64 { return s.CorporateIncomeTax }), numFmtThousands},
	{"LN sau thuế", vnd(func(c domain.Calculated) float64 { return c.NetProfit }), sum(func(s plan.Summary) float64 { return s.NetProfit }), numFmtThousands},
	{"Thuế GTGT phải nộp", vnd(func(c domain.Calculated) float64 { return c.VATPayable }), sum(func(s plan.Summary) float64 { return s.VATPayable }), numFmtThousands},
	{"Tỷ suất LN ròng (%)", func(i domain.PlanLineItem) any { return money.Round(i.Calculated.NetProfitMargin, 2) }, func(s plan.Summary) any { return money.Round(s.NetProfitMargin, 2) }, numFmtDecimal2},
}

func vnd(pick func(domain.Calculated) float64) func(domain.PlanLineItem) any {
	return func(i domain.PlanLineItem) any { return money.Round(pick(i.Calculated), 0) }
}

func sum(pick func(plan.Summary) float64) func(plan.Summary) any {
	return func(s plan.Summary) any { return money.Round(pick(s), 0) }
}

// WritePlan writes recalculated items as a workbook with one row per item, a
// totals row and a settings sheet.
func WritePlan(w io.Writer, items []domain.PlanLineItem, settings domain.PlanSettings) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", PlanSheet); err != nil {
		return fmt.Errorf("rename plan sheet: %w", err)
	}
	if err := writePlanSheet(file, items); err != nil {
		return err
	}
	if err := writeSettingsSheet(file, settings); err != nil {
		return err
	}
	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writePlanSheet(file *excelize.File, items []domain.PlanLineItem) error {
	header := make([]any, len(planColumns))
	for i, col := range planColumns {
		header[i] = col.title
	}
	if err := file.SetSheetRow(PlanSheet, "A1", &header); err != nil {
		return fmt.Errorf("write plan header: %w", err)
	}

	for r, item := range items {
		row := make([]any, len(planColumns))
		for i, col := range planColumns {
			row[i] = col.value(item)
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := file.SetSheetRow(PlanSheet, cell, &row); err != nil {
			return fmt.Errorf("write plan row %d: %w", r+2, err)
		}
	}

	summary := plan.Summarize(items)
	totalRow := len(items) + 2
	totals := make([]any, len(planColumns))
	for i, col := range planColumns {
		if col.total != nil {
			totals[i] = col.total(summary)
		}
	}
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	if err := file.SetSheetRow(PlanSheet, cell, &totals); err != nil {
		return fmt.Errorf("write totals row: %w", err)
	}

	return stylePlanSheet(file, totalRow)
}

func stylePlanSheet(file *excelize.File, totalRow int) error {
	bold, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(planColumns))
	if err := file.SetCellStyle(PlanSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, col := range planColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if col.fmtID == 0 {
			continue
		}
		style, err := file.NewStyle(&excelize.Style{NumFmt: col.fmtID})
		if err != nil {
			return fmt.Errorf("create number style: %w", err)
		}
		if err := file.SetCellStyle(PlanSheet, fmt.Sprintf("%s2", name), fmt.Sprintf("%s%d", name, totalRow), style); err != nil {
			return fmt.Errorf("style column %s: %w", name, err)
		}
	}

	totalStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: numFmtThousands})
	if err != nil {
		return fmt.Errorf("create totals style: %w", err)
	}
	if err := file.SetCellStyle(PlanSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), totalStyle); err != nil {
		return fmt.Errorf("style totals row: %w", err)
	}

	if err := file.SetColWidth(PlanSheet, "B", "B", 36); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := file.SetColWidth(PlanSheet, "D", lastCol, 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return file.SetPanes(PlanSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeSettingsSheet(file *excelize.File, settings domain.PlanSettings) error {
	if _, err := file.NewSheet(SettingsSheet); err != nil {
		return fmt.Errorf("create settings sheet: %w", err)
	}
	header := []any{"Thông số", "Khóa", "Giá trị"}
	if err := file.SetSheetRow(SettingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write settings header: %w", err)
	}
	for i, s := range plan.Settings() {
		row := []any{s.LocalKey(), s.String(), s.Get(settings)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := file.SetSheetRow(SettingsSheet, cell, &row); err != nil {
			return fmt.Errorf("write setting %s: %w", s, err)
		}
	}
	next := len(plan.Settings()) + 2
	row := []any{"luong_gian_tiep_theo_ngay", "daily_indirect_salary", money.Round(settings.DailyIndirectSalary(), 0)}
	if err := file.SetSheetRow(SettingsSheet, fmt.Sprintf("A%d", next), &row); err != nil {
		return fmt.Errorf("write daily indirect salary: %w", err)
	}
	return file.SetColWidth(SettingsSheet, "A", "B", 36)
}
