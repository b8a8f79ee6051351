package tui

import "github.com/charmbracelet/lipgloss"

// Theme is one color scheme for the live view.
type Theme struct {
	Name      string
	Primary   lipgloss.Color // headers
	Secondary lipgloss.Color // waveform traces
	Accent    lipgloss.Color // selection
	Text      lipgloss.Color // values
	Muted     lipgloss.Color // labels
	Dim       lipgloss.Color // menus
	Faint     lipgloss.Color // borders, help line
	Alert     lipgloss.Color
}

var (
	// ThemeMonitor is the default: bedside-monitor colors from the
	// ANSI-256 palette, readable on any dark terminal.
	ThemeMonitor = Theme{
		Name:      "monitor",
		Primary:   lipgloss.Color("86"),
		Secondary: lipgloss.Color("49"),
		Accent:    lipgloss.Color("205"),
		Text:      lipgloss.Color("252"),
		Muted:     lipgloss.Color("245"),
		Dim:       lipgloss.Color("242"),
		Faint:     lipgloss.Color("240"),
		Alert:     lipgloss.Color("203"),
	}

	// ThemePhosphor renders everything in green, old-oscilloscope style.
	ThemePhosphor = Theme{
		Name:      "phosphor",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#00aa00"),
		Dim:       lipgloss.Color("#008800"),
		Faint:     lipgloss.Color("#005500"),
		Alert:     lipgloss.Color("#ff0000"),
	}

	// ThemeMono is grayscale with a single blue accent.
	ThemeMono = Theme{
		Name:      "mono",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Dim:       lipgloss.Color("#777777"),
		Faint:     lipgloss.Color("#555555"),
		Alert:     lipgloss.Color("#ff0000"),
	}

	CurrentTheme = ThemeMonitor

	Themes = []Theme{ThemeMonitor, ThemePhosphor, ThemeMono}
)

// GetTheme looks a theme up by name, falling back to the monitor theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeMonitor
}

// SetTheme switches the active color scheme. The package styles rebuild
// immediately, so the next rendered frame picks it up.
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
	applyTheme(CurrentTheme)
}

// ThemeNames lists the selectable theme names.
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
