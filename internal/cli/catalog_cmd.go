package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bizplan/internal/money"
	"bizplan/internal/plan"
)

func newCatalogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and load the product catalog",
	}

	cmd.AddCommand(
		newCatalogListCmd(app),
		newCatalogExportCmd(app),
		newCatalogImportCmd(app),
		newCatalogSeedCmd(app),
	)

	return cmd
}

func newCatalogListCmd(app *App) *cobra.Command {
	var brand, group string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog products, optionally filtered by brand or group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := plan.Filter{By: plan.FilterAll}
			switch {
			case brand != "" && group != "":
				return fmt.Errorf("use either --brand or --group, not both")
			case brand != "":
				filter = plan.Filter{By: plan.FilterBrand, Value: brand}
			case group != "":
				filter = plan.Filter{By: plan.FilterGroup, Value: group}
			}

			c, err := app.Service.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			products := c.Select(filter)
			if len(products) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching products.")
				return nil
			}
			rows := make([][]string, 0, len(products))
			for _, p := range products {
				rows = append(rows, []string{
					p.Code, p.NameVI, p.Brand, p.Group,
					money.VND(p.DefaultPriceUSDPerTon), money.VND(p.DefaultWeightKg),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderTable([]string{"CODE", "NAME", "BRAND", "GROUP", "USD/TON", "KG/CONT"}, rows))
			fmt.Fprintln(out, styleDim.Render(fmt.Sprintf("%d of %d products", len(products), c.Len())))
			return nil
		},
	}

	cmd.Flags().StringVar(&brand, "brand", "", "Only products of this brand")
	cmd.Flags().StringVar(&group, "group", "", "Only products of this group, e.g. \"Thịt gà\"")
	return cmd
}

func newCatalogExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the catalog as JSON (builtin when no database is configured)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := app.Service.ExportCatalog(cmd.Context())
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, func(w io.Writer) error {
				return writeJSON(w, products)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	return cmd
}

// Import and seed need DATABASE_URL.
func newCatalogImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Upsert products from a spreadsheet into the database catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			result, err := app.Service.ImportCatalog(cmd.Context(), strings.ToLower(filepath.Base(args[0])), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows, %d created, %d updated\n",
				result.FileName, result.TotalRows, result.Created, result.Updated)
			return nil
		},
	}
}

func newCatalogSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the builtin catalog into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app.Service.SeedCatalog(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog already has products, nothing seeded.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products\n", n)
			return nil
		},
	}
}
