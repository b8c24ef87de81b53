package commands

import (
	"github.com/spf13/cobra"

	"github.com/tablekit/tablekit/internal/tui"
)

// NewEditCommand creates the edit command, the interactive shell. Running
// the bare root command is equivalent.
func NewEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the interactive table editor",
		Long: `Open the interactive editor over the configured tables.

Pick a table, browse its rows, and add, modify, or delete rows through
guided forms. All edits are validated against the table schema before
they reach the database.`,
		RunE: RunEdit,
	}
}

// RunEdit launches the interactive shell; the root command calls this
// directly when invoked without a subcommand.
func RunEdit(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cmdCtx.Logger.Debug("starting interactive shell",
		"driver", cmdCtx.Cfg.Database.Driver,
		"tables", cmdCtx.Registry.Len())
	return tui.Run(cmdCtx.Registry, cmdCtx.Store, cmdCtx.Logger)
}
