// Package cli implements planctl, the operator tool for recalculating,
// reporting and storing business plans from the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bizplan/internal/plan"
	"bizplan/internal/service"
)

// App holds what the commands run against. Plans are stored wherever the
// service's PlanStore points, usually the local SQLite file.
type App struct {
	Service *service.Service
}

// NewRootCmd creates the top-level "planctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "planctl",
		Short:         "Recalculate, report and store import business plans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRecalcCmd(app),
		newApplyCmd(app),
		newReportCmd(app),
		newExportCmd(app),
		newPlansCmd(app),
		newCatalogCmd(app),
		newAnalyzeCmd(app),
		newAssistCmd(app),
	)

	return root
}

// readDraft decodes a draft from path, or stdin when path is "-". A saved
// plan export is accepted too since it carries the same two fields.
func readDraft(cmd *cobra.Command, path string) (plan.Draft, error) {
	var draft plan.Draft
	if err := readJSON(cmd, path, &draft); err != nil {
		return plan.Draft{}, err
	}
	return draft, nil
}

func readJSON(cmd *cobra.Command, path string, out any) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOutput sends render's output to path, or to the command's stdout when
// path is empty or "-".
func writeOutput(cmd *cobra.Command, path string, render func(io.Writer) error) error {
	if path == "" || path == "-" {
		return render(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}
