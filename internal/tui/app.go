// Package tui is the interactive shell: a bubbletea program that walks the
// user from the table list through row listing, action choice and field
// entry, and dispatches validated edits to the data access layer.
//
// One synchronous database round trip happens per confirmed action; every
// operational failure is shown as a transient status message and returns
// the shell to the previous navigable state. Only an explicit quit (or a
// startup failure before the program runs) terminates the process.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tablekit/tablekit/internal/editor"
	"github.com/tablekit/tablekit/internal/schema"
	"github.com/tablekit/tablekit/internal/store"
)

// view is the shell's current screen.
type view int

const (
	viewTables view = iota
	viewRows
	viewActions
	viewForm
	viewConfirm
)

// rowsLoadedMsg carries the result of a row listing round trip.
type rowsLoadedMsg struct {
	table string
	rows  []store.Row
	err   error
}

// editDoneMsg carries the result of an applied edit.
type editDoneMsg struct {
	op  editor.Op
	err error
}

// tableItem adapts a registry schema to the bubbles list.
type tableItem struct {
	schema schema.TableSchema
}

func (i tableItem) Title() string { return i.schema.Title() }

func (i tableItem) Description() string {
	names := i.schema.ColumnNames()
	if len(names) > 4 {
		names = append(names[:4:4], "…")
	}
	return strings.Join(names, ", ")
}

func (i tableItem) FilterValue() string { return i.schema.Title() }

// Model is the interactive shell's state machine.
type Model struct {
	registry *schema.Registry
	store    store.Store
	logger   *slog.Logger
	styles   appStyles

	view    view
	tables  list.Model
	rows    table.Model
	rowData []store.Row
	current schema.TableSchema

	actions   []schema.Action
	actionIdx int

	form formModel

	status    string
	statusErr bool

	width  int
	height int
}

// New builds the shell over the given registry and store.
func New(registry *schema.Registry, st store.Store, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	styles := newAppStyles()

	items := make([]list.Item, 0, registry.Len())
	for _, t := range registry.Tables() {
		items = append(items, tableItem{schema: t})
	}
	delegate := list.NewDefaultDelegate()
	tables := list.New(items, delegate, 0, 0)
	tables.Title = "Tables"
	tables.SetShowStatusBar(false)
	tables.SetFilteringEnabled(false)
	tables.SetShowHelp(false)

	return Model{
		registry: registry,
		store:    st,
		logger:   logger,
		styles:   styles,
		view:     viewTables,
		tables:   tables,
	}
}

// Run starts the shell on the alternate screen and blocks until quit.
func Run(registry *schema.Registry, st store.Store, logger *slog.Logger) error {
	p := tea.NewProgram(New(registry, st, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// loadRows lists the current table's rows in a command so the update loop
// stays pure.
func (m Model) loadRows() tea.Cmd {
	st, tbl := m.store, m.current
	return func() tea.Msg {
		rows, err := st.ListRows(context.Background(), tbl)
		return rowsLoadedMsg{table: tbl.Name, rows: rows, err: err}
	}
}

// applyEdit dispatches a validated edit request to the store.
func (m Model) applyEdit(req editor.EditRequest) tea.Cmd {
	st := m.store
	return func() tea.Msg {
		return editDoneMsg{op: req.Op, err: req.Apply(context.Background(), st)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.tables.SetSize(msg.Width-4, msg.Height-6)
		m.rows.SetWidth(msg.Width - 4)
		if msg.Height > 10 {
			m.rows.SetHeight(msg.Height - 8)
		}
		return m, nil

	case rowsLoadedMsg:
		if msg.table != m.current.Name {
			return m, nil
		}
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.rowData = msg.rows
		m.rows.SetRows(displayRows(m.current, msg.rows))
		if c := m.rows.Cursor(); c >= len(msg.rows) && len(msg.rows) > 0 {
			m.rows.SetCursor(len(msg.rows) - 1)
		}
		return m, nil

	case editDoneMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus(fmt.Sprintf("%s ok", msg.op), false)
		}
		m.view = viewRows
		return m, m.loadRows()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.clearStatus()
		switch m.view {
		case viewTables:
			return m.updateTables(msg)
		case viewRows:
			return m.updateRows(msg)
		case viewActions:
			return m.updateActions(msg)
		case viewForm:
			return m.updateForm(msg)
		case viewConfirm:
			return m.updateConfirm(msg)
		}
	}

	return m, nil
}

func (m Model) updateTables(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter":
		item, ok := m.tables.SelectedItem().(tableItem)
		if !ok {
			return m, nil
		}
		m.current = item.schema
		m.rows = newRowTable(m.current, m.width, m.height)
		m.rowData = nil
		m.view = viewRows
		return m, m.loadRows()
	}
	var cmd tea.Cmd
	m.tables, cmd = m.tables.Update(msg)
	return m, cmd
}

func (m Model) updateRows(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.view = viewTables
		return m, nil
	case "r":
		return m, m.loadRows()
	case "enter":
		m.actions = m.current.Actions
		m.actionIdx = 0
		m.view = viewActions
		return m, nil
	}
	var cmd tea.Cmd
	m.rows, cmd = m.rows.Update(msg)
	return m, cmd
}

func (m Model) updateActions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.view = viewRows
		return m, nil
	case "up", "k", "left", "h":
		if m.actionIdx > 0 {
			m.actionIdx--
		}
		return m, nil
	case "down", "j", "right", "l":
		if m.actionIdx < len(m.actions)-1 {
			m.actionIdx++
		}
		return m, nil
	case "enter":
		return m.startAction(m.actions[m.actionIdx])
	}
	return m, nil
}

func (m Model) startAction(action schema.Action) (tea.Model, tea.Cmd) {
	switch action {
	case schema.ActionAdd:
		m.form = newInsertForm(m.current, m.styles)
		m.view = viewForm
		return m, textinput.Blink
	case schema.ActionModify:
		row, ok := m.selectedRow()
		if !ok {
			m.setStatus("no row selected", true)
			m.view = viewRows
			return m, nil
		}
		m.form = newUpdateForm(m.current, row, m.styles)
		m.view = viewForm
		return m, textinput.Blink
	case schema.ActionDelete:
		if _, ok := m.selectedRow(); !ok {
			m.setStatus("no row selected", true)
			m.view = viewRows
			return m, nil
		}
		m.view = viewConfirm
		return m, nil
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewActions
		return m, nil
	case "tab", "down":
		m.form.step(1)
		return m, nil
	case "shift+tab", "up":
		m.form.step(-1)
		return m, nil
	case "ctrl+s":
		return m.submitForm()
	case "enter":
		if m.form.atLastField() {
			return m.submitForm()
		}
		m.form.step(1)
		return m, nil
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

// submitForm validates the form input; a validation failure returns to the
// row list with a transient message, per the row-edit contract.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	req, err := m.form.request()
	if err != nil {
		m.setStatus(err.Error(), true)
		m.view = viewRows
		return m, nil
	}
	return m, m.applyEdit(req)
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		row, ok := m.selectedRow()
		if !ok {
			m.view = viewRows
			return m, nil
		}
		pkCol, _ := m.current.PrimaryKey()
		req, err := editor.BuildDelete(m.current, editor.Format(row[pkCol.Name]))
		if err != nil {
			m.setStatus(err.Error(), true)
			m.view = viewRows
			return m, nil
		}
		return m, m.applyEdit(req)
	case "n", "esc", "q":
		m.view = viewRows
		return m, nil
	}
	return m, nil
}

func (m Model) selectedRow() (store.Row, bool) {
	i := m.rows.Cursor()
	if i < 0 || i >= len(m.rowData) {
		return nil, false
	}
	return m.rowData[i], true
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
	if isErr {
		m.logger.Debug("shell status", "error", text)
	}
}

// clearStatus drops the transient message; called on every key event so a
// message survives exactly until the next interaction.
func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

// View implements tea.Model.
func (m Model) View() string {
	var body string
	switch m.view {
	case viewTables:
		body = m.tables.View() + "\n" + m.styles.Help.Render("enter open · q quit")
	case viewRows:
		body = m.viewRowList()
	case viewActions:
		body = m.viewActionMenu()
	case viewForm:
		body = m.form.view()
	case viewConfirm:
		body = m.viewConfirmPrompt()
	}

	title := m.styles.TitleBar.Render("tablekit")
	status := ""
	if m.status != "" {
		if m.statusErr {
			status = m.styles.StatusErr.Render(m.status)
		} else {
			status = m.styles.StatusOK.Render(m.status)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, body, status)
}

func (m Model) viewRowList() string {
	header := m.styles.Label.Render(m.current.Title()) +
		m.styles.LabelMuted.Render(fmt.Sprintf("  %d rows", len(m.rowData)))
	help := m.styles.Help.Render("enter actions · r refresh · esc back")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.rows.View(), help)
}

func (m Model) viewActionMenu() string {
	var b strings.Builder
	b.WriteString(m.styles.Label.Render(m.current.Title() + " actions"))
	b.WriteString("\n\n")
	for i, a := range m.actions {
		style := m.styles.Action
		if i == m.actionIdx {
			style = m.styles.ActionSel
		}
		b.WriteString(style.Render(string(a)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("enter choose · esc back"))
	return b.String()
}

func (m Model) viewConfirmPrompt() string {
	row, ok := m.selectedRow()
	target := ""
	if ok {
		if pkCol, has := m.current.PrimaryKey(); has {
			target = fmt.Sprintf(" %s=%s", pkCol.Name, editor.Format(row[pkCol.Name]))
		}
	}
	prompt := fmt.Sprintf("Delete row%s from %s? (y/n)", target, m.current.Title())
	return m.styles.Pane.Render(m.styles.Label.Render(prompt))
}

// newRowTable builds the bubbles table for a schema, sizing columns from
// the header names.
func newRowTable(ts schema.TableSchema, width, height int) table.Model {
	cols := make([]table.Column, len(ts.Columns))
	per := 0
	if len(ts.Columns) > 0 && width > 0 {
		per = (width - 6) / len(ts.Columns)
	}
	for i, c := range ts.Columns {
		w := len(c.Name) + 2
		if per > w {
			w = per
		}
		cols[i] = table.Column{Title: c.Name, Width: w}
	}

	h := 10
	if height > 12 {
		h = height - 8
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(h),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderBottom(true)
	s.Selected = s.Selected.Reverse(true)
	t.SetStyles(s)
	return t
}

// displayRows formats fetched rows for the bubbles table.
func displayRows(ts schema.TableSchema, rows []store.Row) []table.Row {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		cells := make(table.Row, len(ts.Columns))
		for j, c := range ts.Columns {
			cells[j] = editor.Format(r[c.Name])
		}
		out[i] = cells
	}
	return out
}
