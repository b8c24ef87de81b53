package tui

import "github.com/charmbracelet/lipgloss"

// appStyles keeps the shell's lipgloss styles in one place so the panes
// stay visually consistent.
type appStyles struct {
	TitleBar    lipgloss.Style
	Pane        lipgloss.Style
	FocusedPane lipgloss.Style
	Action      lipgloss.Style
	ActionSel   lipgloss.Style
	Label       lipgloss.Style
	LabelMuted  lipgloss.Style
	StatusOK    lipgloss.Style
	StatusErr   lipgloss.Style
	Help        lipgloss.Style
}

func newAppStyles() appStyles {
	border := lipgloss.RoundedBorder()
	return appStyles{
		TitleBar: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("25")).
			Padding(0, 1),
		Pane: lipgloss.NewStyle().
			Border(border).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		FocusedPane: lipgloss.NewStyle().
			Border(border).
			BorderForeground(lipgloss.Color("45")).
			Padding(0, 1),
		Action: lipgloss.NewStyle().Padding(0, 2),
		ActionSel: lipgloss.NewStyle().Padding(0, 2).
			Reverse(true),
		Label:      lipgloss.NewStyle().Bold(true),
		LabelMuted: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusOK:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		StatusErr:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Help:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}
