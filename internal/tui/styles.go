package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle lipgloss.Style
	statsStyle  lipgloss.Style
	labelStyle  lipgloss.Style
	valueStyle  lipgloss.Style
	activeStyle lipgloss.Style
	graphStyle  lipgloss.Style
	canvasStyle lipgloss.Style
	helpStyle   lipgloss.Style
	alertStyle  lipgloss.Style
	menuStyle   lipgloss.Style
)

func applyTheme(t Theme) {
	headerStyle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	statsStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Faint).Padding(1, 2).Width(44)
	labelStyle = lipgloss.NewStyle().Foreground(t.Muted).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(t.Text)
	activeStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	graphStyle = lipgloss.NewStyle().Foreground(t.Secondary)
	canvasStyle = lipgloss.NewStyle().Padding(0, 1)
	helpStyle = lipgloss.NewStyle().Foreground(t.Faint).MarginTop(1)
	alertStyle = lipgloss.NewStyle().Foreground(t.Alert)
	menuStyle = lipgloss.NewStyle().Foreground(t.Dim)
}

func init() { applyTheme(CurrentTheme) }
