package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tablekit/tablekit/internal/editor"
	"github.com/tablekit/tablekit/internal/schema"
	"github.com/tablekit/tablekit/internal/store"
)

// formModel is the field-entry screen: one text input per column, walked
// with tab/up/down, submitted with enter on the last field or ctrl+s.
type formModel struct {
	table  schema.TableSchema
	op     editor.Op
	pkRaw  string // formatted primary key of the row being modified
	inputs []textinput.Model
	// editable[i] is false for the pinned primary key field on modify
	editable []bool
	focus    int
	styles   appStyles
}

// newInsertForm builds an empty form prefilled with column defaults.
func newInsertForm(table schema.TableSchema, styles appStyles) formModel {
	f := formModel{table: table, op: editor.OpInsert, styles: styles}
	for _, col := range table.Columns {
		in := newFieldInput(col)
		if col.Default != "" {
			in.SetValue(col.Default)
		}
		f.inputs = append(f.inputs, in)
		f.editable = append(f.editable, true)
	}
	f.focusField(0)
	return f
}

// newUpdateForm builds a form prefilled with the current row; the primary
// key field is shown but pinned.
func newUpdateForm(table schema.TableSchema, row store.Row, styles appStyles) formModel {
	f := formModel{table: table, op: editor.OpUpdate, styles: styles}
	for _, col := range table.Columns {
		in := newFieldInput(col)
		if v, ok := row[col.Name]; ok && v != nil {
			in.SetValue(editor.Format(v))
		}
		if col.PrimaryKey {
			f.pkRaw = in.Value()
		}
		f.inputs = append(f.inputs, in)
		f.editable = append(f.editable, !col.PrimaryKey)
	}
	f.focusField(f.firstEditable())
	return f
}

func newFieldInput(col schema.ColumnSpec) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 0
	in.Placeholder = col.Info()
	return in
}

func (f *formModel) firstEditable() int {
	for i, ok := range f.editable {
		if ok {
			return i
		}
	}
	return 0
}

func (f *formModel) focusField(i int) {
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	f.focus = i
	f.inputs[i].Focus()
}

// step moves focus by delta, skipping pinned fields and wrapping around.
func (f *formModel) step(delta int) {
	n := len(f.inputs)
	i := f.focus
	for range n {
		i = (i + delta + n) % n
		if f.editable[i] {
			f.focusField(i)
			return
		}
	}
}

// atLastField reports whether focus sits on the last editable field.
func (f *formModel) atLastField() bool {
	for i := len(f.inputs) - 1; i >= 0; i-- {
		if f.editable[i] {
			return f.focus == i
		}
	}
	return false
}

// fields collects the raw input values keyed by column name. Pinned fields
// are excluded; the primary key travels separately for updates.
func (f *formModel) fields() map[string]string {
	out := make(map[string]string, len(f.inputs))
	for i, col := range f.table.Columns {
		if !f.editable[i] {
			continue
		}
		out[col.Name] = f.inputs[i].Value()
	}
	return out
}

// request validates the current input and builds the edit request.
func (f *formModel) request() (editor.EditRequest, error) {
	if f.op == editor.OpUpdate {
		return editor.BuildUpdate(f.table, f.pkRaw, f.fields())
	}
	return editor.BuildInsert(f.table, f.fields())
}

func (f formModel) update(msg tea.Msg) (formModel, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f formModel) view() string {
	var b strings.Builder
	verb := "Add row to"
	if f.op == editor.OpUpdate {
		verb = "Modify row in"
	}
	b.WriteString(f.styles.Label.Render(fmt.Sprintf("%s %s", verb, f.table.Title())))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, col := range f.table.Columns {
		if len(col.Name) > labelWidth {
			labelWidth = len(col.Name)
		}
	}
	for i, col := range f.table.Columns {
		label := fmt.Sprintf("%-*s", labelWidth, col.Name)
		if f.editable[i] {
			b.WriteString(f.styles.Label.Render(label))
		} else {
			b.WriteString(f.styles.LabelMuted.Render(label))
		}
		b.WriteString("  ")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(f.styles.Help.Render("tab/↑↓ move · enter/ctrl+s submit · esc cancel"))
	return b.String()
}
