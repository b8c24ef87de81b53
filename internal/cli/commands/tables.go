package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tablekit/tablekit/internal/cli/output"
	"github.com/tablekit/tablekit/internal/schema"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the configured tables and their columns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return renderJSON(r.Writer(), tablesJSON(cmdCtx.Registry.Tables()))
			}

			styles := r.Styles()
			for _, ts := range cmdCtx.Registry.Tables() {
				r.Println(styles.Header.Render(ts.Title()) +
					styles.Muted.Render(fmt.Sprintf("  (%s, actions: %s)", ts.Name, joinActions(ts.Actions))))
				if err := renderColumnSpecs(r, ts); err != nil {
					return err
				}
				r.Println()
			}
			return nil
		},
	}
}

func renderColumnSpecs(r *output.Renderer, ts schema.TableSchema) error {
	cols := []string{"column", "type", "nullable", "default"}
	rows := make([][]string, len(ts.Columns))
	for i, c := range ts.Columns {
		name := c.Name
		if c.PrimaryKey {
			name += " (PK)"
		}
		nullable := "no"
		if c.Nullable {
			nullable = "yes"
		}
		rows[i] = []string{name, string(c.Type), nullable, c.Default}
	}
	if r.EffectiveMode() == output.ModeMarkdown || r.EffectiveMode() == output.ModeCSV {
		return renderMarkdown(r.Writer(), cols, rows)
	}
	return renderTable(r.Writer(), cols, rows)
}

type tableJSON struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name,omitempty"`
	Actions     []string     `json:"actions"`
	Columns     []columnJSON `json:"columns"`
}

type columnJSON struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
	Default    string `json:"default,omitempty"`
}

func tablesJSON(tables []schema.TableSchema) []tableJSON {
	out := make([]tableJSON, len(tables))
	for i, ts := range tables {
		t := tableJSON{Name: ts.Name, DisplayName: ts.DisplayName}
		for _, a := range ts.Actions {
			t.Actions = append(t.Actions, string(a))
		}
		for _, c := range ts.Columns {
			t.Columns = append(t.Columns, columnJSON{
				Name:       c.Name,
				Type:       string(c.Type),
				Nullable:   c.Nullable,
				PrimaryKey: c.PrimaryKey,
				Default:    c.Default,
			})
		}
		out[i] = t
	}
	return out
}

func joinActions(actions []schema.Action) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}
