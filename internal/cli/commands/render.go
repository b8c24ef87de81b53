package commands

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tablekit/tablekit/internal/cli/output"
	"github.com/tablekit/tablekit/internal/editor"
	"github.com/tablekit/tablekit/internal/schema"
	"github.com/tablekit/tablekit/internal/store"
)

// renderRows writes table rows from the store in the renderer's effective
// mode. Columns come from the schema so the order is stable.
func renderRows(r *output.Renderer, ts schema.TableSchema, rows []store.Row) error {
	cols := ts.ColumnNames()

	switch r.EffectiveMode() {
	case output.ModeJSON:
		ordered := make([]map[string]any, len(rows))
		for i, row := range rows {
			m := make(map[string]any, len(cols))
			for _, c := range cols {
				m[c] = row[c]
			}
			ordered[i] = m
		}
		return renderJSON(r.Writer(), ordered)
	case output.ModeCSV:
		return renderCSV(r.Writer(), cols, cells(cols, rows))
	case output.ModeMarkdown:
		return renderMarkdown(r.Writer(), cols, cells(cols, rows))
	default:
		return renderTable(r.Writer(), cols, cells(cols, rows))
	}
}

func cells(cols []string, rows []store.Row) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		line := make([]string, len(cols))
		for j, c := range cols {
			line[j] = editor.Format(row[c])
		}
		out[i] = line
	}
	return out
}

// renderResults drains raw query results and writes them in the given mode.
func renderResults(w io.Writer, rows *sql.Rows, mode output.Mode) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	var data [][]string
	var objects []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}

		line := make([]string, len(cols))
		obj := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			line[i] = editor.Format(v)
			obj[col] = v
		}
		data = append(data, line)
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	switch mode {
	case output.ModeJSON:
		return renderJSON(w, objects)
	case output.ModeCSV:
		return renderCSV(w, cols, data)
	case output.ModeMarkdown:
		return renderMarkdown(w, cols, data)
	default:
		return renderTable(w, cols, data)
	}
}

func renderTable(w io.Writer, cols []string, rows [][]string) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, line := range rows {
		row := make(table.Row, len(line))
		for i, cell := range line {
			row[i] = cell
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderCSV(w io.Writer, cols []string, rows [][]string) error {
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))
	for _, line := range rows {
		escaped := make([]string, len(line))
		for i, cell := range line {
			escaped[i] = escapeCSV(cell)
		}
		_, _ = fmt.Fprintln(w, strings.Join(escaped, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, cols []string, rows [][]string) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, line := range rows {
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(line, " | "))
	}
	return nil
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
