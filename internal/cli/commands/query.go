package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL against the configured database",
		Long: `Run ad-hoc SQL against the configured database.

Useful for inspecting the data behind the editor without leaving the
terminal. When invoked without arguments on a terminal, enters an
interactive REPL with history and table-name completion.`,
		Example: `  # Run a query directly
  tablekit query "SELECT * FROM pages"

  # Pipe SQL in
  echo "SELECT count(*) FROM pages" | tablekit query

  # Interactive mode
  tablekit query`,
		RunE: runQuery,
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var sqlQuery string
	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case !isatty.IsTerminal(os.Stdin.Fd()):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		return runQueryREPL(cmd, cmdCtx)
	}

	return executeAndRender(cmd.Context(), cmdCtx, sqlQuery)
}

func executeAndRender(ctx context.Context, cmdCtx *CommandContext, sqlQuery string) error {
	rows, err := cmdCtx.Store.DB().QueryContext(ctx, sqlQuery)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return renderResults(cmdCtx.Renderer.Writer(), rows, cmdCtx.Renderer.EffectiveMode())
}
