package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <draft.json|->",
		Short: "Ask Gemini for a Markdown analysis of the plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := readDraft(cmd, args[0])
			if err != nil {
				return err
			}
			analysis, err := app.Service.Analyze(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), analysis)
			return nil
		},
	}
}

func newAssistCmd(app *App) *cobra.Command {
	var draftOnly bool

	cmd := &cobra.Command{
		Use:   "assist <draft.json|-> <instruction...>",
		Short: "Edit a draft with a free-text instruction",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := readDraft(cmd, args[0])
			if err != nil {
				return err
			}
			result, err := app.Service.Assist(cmd.Context(), strings.Join(args[1:], " "), draft)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), result.Reply)
			for _, o := range result.Outcomes {
				status := "ok"
				if !o.OK {
					status = "failed"
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s: %s\n", status, o.Command, o.Message)
			}
			if draftOnly {
				return writeJSON(cmd.OutOrStdout(), result.Draft)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVar(&draftOnly, "draft-only", false, "Print only the edited draft")
	return cmd
}
