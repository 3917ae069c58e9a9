package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"bizplan/internal/domain"
	"bizplan/internal/service"
)

func newPlansCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Manage saved plans",
	}

	cmd.AddCommand(
		newPlansListCmd(app),
		newPlansSaveCmd(app),
		newPlansShowCmd(app),
		newPlansRenameCmd(app),
		newPlansDeleteCmd(app),
		newPlansImportCmd(app),
	)

	return cmd
}

func newPlansListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved plans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := app.Service.ListPlans(cmd.Context())
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved plans.")
				return nil
			}
			rows := make([][]string, 0, len(plans))
			for _, p := range plans {
				rows = append(rows, []string{p.ID, p.Name, fmt.Sprint(p.ItemCount), p.CreatedAt.Local().Format("02/01/2006 15:04")})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"ID", "NAME", "ITEMS", "CREATED"}, rows))
			return nil
		},
	}
}

func newPlansSaveCmd(app *App) *cobra.Command {
	var name, id string

	cmd := &cobra.Command{
		Use:   "save <draft.json|->",
		Short: "Validate and save a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := readDraft(cmd, args[0])
			if err != nil {
				return err
			}
			saved, err := app.Service.SavePlan(cmd.Context(), service.SavePlanInput{ID: id, Name: name, Draft: draft})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved plan %q (%s) with %d items\n", saved.Name, saved.ID, len(saved.PlanItems))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Plan name")
	cmd.Flags().StringVar(&id, "id", "", "Overwrite an existing plan")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newPlansShowCmd(app *App) *cobra.Command {
	var raw, summaryOnly bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved plan, recalculated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if raw {
				saved, err := app.Service.GetPlan(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), saved)
			}
			loaded, err := app.Service.LoadPlan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if summaryOnly {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", loaded.Name)
				return printSummary(cmd.OutOrStdout(), loaded.Summary)
			}
			return writeJSON(cmd.OutOrStdout(), loaded)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the stored plan without calculated figures (importable)")
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "Print only the summary table")
	return cmd
}

func newPlansRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a saved plan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Service.RenamePlan(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed plan %s to %q\n", args[0], args[1])
			return nil
		},
	}
}

func newPlansDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Service.DeletePlan(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan %s\n", args[0])
			return nil
		},
	}
}

func newPlansImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <plan.json|->",
		Short: "Import a plan exported with 'plans show --raw'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p domain.SavedPlan
			if err := readJSON(cmd, args[0], &p); err != nil {
				return err
			}
			saved, err := app.Service.ImportPlan(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported plan %q as %s\n", saved.Name, saved.ID)
			return nil
		},
	}
}
