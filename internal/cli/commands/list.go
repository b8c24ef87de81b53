package commands

import (
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <table>",
		Short: "Print the rows of a configured table",
		Long: `Print all rows of a configured table, ordered by primary key.

Output adapts to the environment:
  - Terminal: styled table
  - Piped: markdown

Use --output to override: auto, text, markdown, json, csv`,
		Example: `  # Print the pages table
  tablekit list pages

  # Export as CSV
  tablekit list pages --output csv`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			names := make([]string, 0, len(ConfigFrom(cmd.Context()).Tables))
			for _, t := range ConfigFrom(cmd.Context()).Tables {
				names = append(names, t.Name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ts, err := cmdCtx.Registry.Get(args[0])
			if err != nil {
				return err
			}
			rows, err := cmdCtx.Store.ListRows(cmd.Context(), ts)
			if err != nil {
				return err
			}
			return renderRows(cmdCtx.Renderer, ts, rows)
		},
	}
}
