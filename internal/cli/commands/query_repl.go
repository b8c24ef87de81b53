package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func runQueryREPL(cmd *cobra.Command, cmdCtx *CommandContext) error {
	ctx := cmd.Context()
	r := cmdCtx.Renderer

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tablekit> ",
		HistoryFile:     historyFile(),
		AutoComplete:    newTableCompleter(cmdCtx),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r.Printf("tablekit query REPL (%s)\n", cmdCtx.Cfg.Database.Driver)
	r.Println("Type .help for commands, .quit to exit")
	r.Println()

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt("tablekit> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if line == ".quit" || line == ".exit" {
				break
			}
			handleDotCommand(cmdCtx, line)
			continue
		}

		// Accumulate multi-line SQL until a trailing semicolon.
		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString(" ")
			rl.SetPrompt("     ...> ")
			continue
		}
		rl.SetPrompt("tablekit> ")

		query := strings.TrimSuffix(buf.String(), ";")
		buf.Reset()

		if err := executeAndRender(ctx, cmdCtx, query); err != nil {
			r.Errorf("%v", err)
		}
		r.Println()
	}

	return nil
}

func handleDotCommand(cmdCtx *CommandContext, line string) {
	r := cmdCtx.Renderer
	parts := strings.Fields(line)

	switch strings.ToLower(parts[0]) {
	case ".help":
		printREPLHelp(r.Writer())

	case ".tables":
		for _, ts := range cmdCtx.Registry.Tables() {
			r.Printf("%s", ts.Name)
			if ts.DisplayName != "" {
				r.Printf("  (%s)", ts.DisplayName)
			}
			r.Println()
		}

	case ".schema":
		if len(parts) < 2 {
			r.Errorf("Usage: .schema <table>")
			return
		}
		ts, err := cmdCtx.Registry.Get(parts[1])
		if err != nil {
			r.Errorf("%v", err)
			return
		}
		if err := renderColumnSpecs(r, ts); err != nil {
			r.Errorf("%v", err)
		}

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		r.Errorf("Unknown command: %s (type .help for commands)", parts[0])
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List the configured tables
  .schema <name>  Show column specs for a table
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for configured table names
`
	_, _ = fmt.Fprintln(w, help)
}

// historyFile returns the per-user history path, or empty to disable
// persistence when no cache directory is available.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "tablekit")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "query_history")
}

// newTableCompleter completes configured table names and dot-commands.
func newTableCompleter(cmdCtx *CommandContext) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, ts := range cmdCtx.Registry.Tables() {
		items = append(items, readline.PcItem(ts.Name))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}
