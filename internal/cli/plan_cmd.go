package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bizplan/internal/money"
	"bizplan/internal/plan"
	"bizplan/internal/service"
)

func newRecalcCmd(app *App) *cobra.Command {
	var summaryOnly bool

	cmd := &cobra.Command{
		Use:   "recalc <draft.json|->",
		Short: "Recalculate a draft and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := readDraft(cmd, args[0])
			if err != nil {
				return err
			}
			result := service.Calculate(draft)
			if summaryOnly {
				return printSummary(cmd.OutOrStdout(), result.Summary)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "Print the plan summary as a table instead of JSON")
	return cmd
}

func newApplyCmd(app *App) *cobra.Command {
	var commandsPath string
	var draftOnly bool

	cmd := &cobra.Command{
		Use:   "apply <draft.json|->",
		Short: "Apply edit commands to a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := readDraft(cmd, args[0])
			if err != nil {
				return err
			}
			var specs []service.CommandSpec
			if err := readJSON(cmd, commandsPath, &specs); err != nil {
				return err
			}
			result, err := app.Service.ApplyCommands(cmd.Context(), draft, specs)
			if err != nil {
				return err
			}
			for _, o := range result.Outcomes {
				if !o.OK {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", o.Command, o.Message)
				}
			}
			if draftOnly {
				return writeJSON(cmd.OutOrStdout(), result.Draft)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&commandsPath, "commands", "", "JSON file with the command list")
	cmd.Flags().BoolVar(&draftOnly, "draft-only", false, "Print only the edited draft")
	_ = cmd.MarkFlagRequired("commands")
	return cmd
}

func newReportCmd(app *App) *cobra.Command {
	var out, name string
	var withAnalysis bool

	cmd := &cobra.Command{
		Use:   "report <draft.json|->",
		Short: "Render the HTML business-plan report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := readDraft(cmd, args[0])
			if err != nil {
				return err
			}
			opts := service.ReportOptions{PlanName: name, WithAnalysis: withAnalysis}
			return writeOutput(cmd, out, func(w io.Writer) error {
				return app.Service.WriteReport(cmd.Context(), w, draft, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&name, "name", "", "Plan name shown under the title")
	cmd.Flags().BoolVar(&withAnalysis, "analysis", false, "Include the AI analysis section")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <draft.json|->",
		Short: "Export the recalculated plan as xlsx",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := readDraft(cmd, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, func(w io.Writer) error {
				return app.Service.WriteWorkbook(w, draft)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func printSummary(w io.Writer, s plan.Summary) error {
	profit := func(v float64) string {
		if v < 0 {
			return styleLoss.Render(money.VND(v))
		}
		return money.VND(v)
	}
	rows := [][]string{
		{"Số sản phẩm", fmt.Sprint(s.ItemCount)},
		{"Sản lượng (kg)", money.VND(s.TotalQuantityKg)},
		{"Doanh thu thuần", money.VND(s.TotalRevenue)},
		{"Giá vốn hàng bán", money.VND(s.TotalCOGS)},
		{"Lợi nhuận gộp", profit(s.GrossProfit)},
		{"Chi phí bán hàng", money.VND(s.TotalSellingCost)},
		{"Chi phí quản lý doanh nghiệp", money.VND(s.TotalGACost)},
		{"Chi phí tài chính", money.VND(s.TotalFinancialCost)},
		{"Lợi nhuận trước thuế", profit(s.ProfitBeforeTax)},
		{"Thuế TNDN", money.VND(s.CorporateIncomeTax)},
		{"Lợi nhuận sau thuế", profit(s.NetProfit)},
		{"Biên lợi nhuận ròng", money.Percent(s.NetProfitMargin)},
		{"Tổng thuế phải nộp", money.VND(s.TotalTaxPayable)},
	}
	_, err := io.WriteString(w, renderTable([]string{"CHỈ TIÊU", "GIÁ TRỊ (VND)"}, rows))
	return err
}
