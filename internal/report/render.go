package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"bizplan/internal/domain"
	"bizplan/internal/money"
	"bizplan/internal/plan"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html.tmpl").
		Funcs(template.FuncMap{
			"vnd":         money.VND,
			"pct":         money.Percent,
			"displayName": plan.DisplayName,
			"inc":         func(i int) int { return i + 1 },
		}).
		ParseFS(templateFS, "templates/report.html.tmpl"),
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))

// Options are the parts of a report that do not come from the plan itself.
type Options struct {
	PlanName    string
	GeneratedAt time.Time
	// AnalysisMarkdown is the optional AI narrative. Raw HTML inside it is dropped.
	AnalysisMarkdown string
}

type detailRow struct {
	Label string
	Value string
	Total bool
}

type detailBlock struct {
	Title string
	Rows  []detailRow
}

type itemDetail struct {
	Title    string
	NameEN   string
	Brand    string
	Sections [][]detailBlock
}

type view struct {
	Title       string
	PlanName    string
	GeneratedAt string
	Statement   Statement
	CostBody    []CostRow
	CostTotal   CostRow
	Items       []domain.PlanLineItem
	Summary     plan.Summary
	Details     []itemDetail
	Analysis    template.HTML
}

// Render writes the static HTML report for already recalculated items.
func Render(w io.Writer, items []domain.PlanLineItem, settings domain.PlanSettings, opts Options) error {
	summary := plan.Summarize(items)
	costs := BuildCostRows(summary)

	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	v := view{
		Title:       "Báo cáo Kế hoạch Kinh doanh",
		PlanName:    opts.PlanName,
		GeneratedAt: generatedAt.Format("15:04:05 02/01/2006"),
		Statement:   BuildStatement(summary),
		CostBody:    costs[:len(costs)-1],
		CostTotal:   costs[len(costs)-1],
		Items:       items,
		Summary:     summary,
		Details:     make([]itemDetail, 0, len(items)),
	}
	for _, item := range items {
		v.Details = append(v.Details, buildDetail(item, settings))
	}

	if opts.AnalysisMarkdown != "" {
		analysis, err := MarkdownToHTML(opts.AnalysisMarkdown)
		if err != nil {
			return err
		}
		v.Analysis = analysis
	}

	if err := reportTemplate.Execute(w, v); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// MarkdownToHTML converts AI output for embedding. goldmark's default
// renderer omits raw HTML, so the result is safe to mark as trusted.
func MarkdownToHTML(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func buildDetail(item domain.PlanLineItem, settings domain.PlanSettings) itemDetail {
	c := item.Calculated
	in := item.UserInput
	vatLabel := money.Percent(in.Costs.ImportVATRate)

	row := func(label string, v float64) detailRow { return detailRow{Label: label, Value: money.VND(v)} }
	total := func(label string, v float64) detailRow { return detailRow{Label: label, Value: money.VND(v), Total: true} }
	minus := func(label string, v float64) detailRow { return detailRow{Label: label, Value: "-" + money.VND(v)} }

	operating := c.TotalOperatingCost + c.TotalFinancialCost

	return itemDetail{
		Title:  fmt.Sprintf("%s (%s)", plan.DisplayName(item.Product), item.Code),
		NameEN: item.NameEN,
		Brand:  item.Brand,
		Sections: [][]detailBlock{
			{
				{Title: "Chi phí nhập khẩu & Thuế", Rows: []detailRow{
					row("Số lượng (Kg)", in.QuantityKg),
					{Label: "Giá (USD)/Kg", Value: fmt.Sprintf("%.3f", c.PriceUSDPerKg)},
					row("Tỷ giá USD/VNĐ", settings.ExchangeRateImport),
					row("Giá nhập (USD)", c.ImportValueUSD),
					total("Giá nhập (VNĐ)", c.ImportValueVND),
					{Label: "Thuế suất GTGT", Value: vatLabel},
					row("Tỷ giá USD/VNĐ tính thuế", settings.ExchangeRateTax),
					total("Thuế GTGT nhập khẩu", c.ImportVAT),
				}},
				{Title: "Chi phí Thông quan & Vận hành", Rows: []detailRow{
					row("1.1 Phí Hải quan", in.Costs.CustomsFee),
					row("1.2 Phí kiểm dịch", in.Costs.QuarantineFee),
					row("1.3 Phí thuê Cont", in.Costs.ContainerRentalFee),
					row("1.4 Phí lưu kho bãi cảng", in.Costs.PortStorageFee),
					row("1.5 Chi phí chung nhập kho", c.GeneralWarehouseCost),
					row("1.6 Lãi vay nhập hàng", c.ImportInterestCost),
					row("1.7 Phí lưu kho sau TQ", c.PostClearanceStorageCost),
					row("1.8 DV mua hàng", c.PurchasingServiceFee),
					row("1.9 Phí VC đến bên mua", in.Costs.BuyerDeliveryFee),
					row("1.10 Chi phí khác", c.OtherInternationalPurchaseCost),
					total("Tổng Chi phí TQ & Kho", c.TotalClearanceAndLogisticsCost),
				}},
				{Title: "Giá vốn & Doanh thu", Rows: []detailRow{
					row("Giá nhập (VNĐ)", c.ImportValueVND),
					row("Tổng Chi phí TQ & Kho", c.TotalClearanceAndLogisticsCost),
					total("Tổng giá vốn hàng bán", c.TotalCOGS),
					total("Giá vốn/kg", c.COGSPerKg),
					row("Giá bán/kg (có VAT)", in.SellingPriceVNDPerKg),
					row("Giá bán/kg (ko VAT)", c.SellingPriceExclVAT),
					total("Tổng doanh thu", c.TotalRevenue),
					row("Thuế GTGT đầu ra ("+vatLabel+")", c.OutputVAT),
					total("Thuế GTGT phải nộp", c.VATPayable),
				}},
			},
			{
				{Title: "Chi phí Hoạt động", Rows: []detailRow{
					row("CP Bán hàng", c.TotalSellingCost),
					row("CP Quản lý DN", c.TotalGACost),
					row("CP Tài chính", c.TotalFinancialCost),
					total("Tổng chi phí hoạt động", operating),
				}},
				{Title: "Phân tích Lợi nhuận", Rows: []detailRow{
					row("Doanh thu", c.TotalRevenue),
					minus("Giá vốn hàng bán", c.TotalCOGS),
					total("Lợi nhuận gộp", c.GrossProfit),
					minus("Tổng chi phí hoạt động", operating),
					total("Lợi nhuận trước thuế", c.ProfitBeforeTax),
					minus("Thuế TNDN (20%)", c.CorporateIncomeTax),
					total("Lãi ròng", c.NetProfit),
				}},
				{Title: "Phân chia Lợi nhuận", Rows: []detailRow{
					row("Trích lập dự phòng (10%)", c.RetainedForProvision),
					row("Bổ sung vốn KD (60%)", c.RetainedForBusiness),
					row("Chia cổ đông (30%)", c.Dividends),
				}},
			},
		},
	}
}
