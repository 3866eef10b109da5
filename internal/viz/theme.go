package viz

import "github.com/charmbracelet/lipgloss"

// Theme is a display palette.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Normal  lipgloss.Color
	Caution lipgloss.Color
	Warning lipgloss.Color
}

var (
	ThemeGlass = Theme{
		Name:    "glass",
		Primary: lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ff00ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Normal:  lipgloss.Color("#00ff88"),
		Caution: lipgloss.Color("#ffaa00"),
		Warning: lipgloss.Color("#ff4444"),
	}

	ThemeRetro = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Normal:  lipgloss.Color("#88ff88"),
		Caution: lipgloss.Color("#ffff00"),
		Warning: lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Normal:  lipgloss.Color("#00ff00"),
		Caution: lipgloss.Color("#ffaa00"),
		Warning: lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeGlass, ThemeRetro, ThemeMinimal}
)

// GetTheme returns the named theme, or glass.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeGlass
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

type styles struct {
	header   lipgloss.Style
	panel    lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	selected lipgloss.Style
	normal   lipgloss.Style
	caution  lipgloss.Style
	warning  lipgloss.Style
	graph    lipgloss.Style
	help     lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		label:    lipgloss.NewStyle().Foreground(t.Muted).Width(18),
		value:    lipgloss.NewStyle().Foreground(t.Text),
		selected: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		normal:   lipgloss.NewStyle().Foreground(t.Normal),
		caution:  lipgloss.NewStyle().Foreground(t.Caution).Bold(true),
		warning:  lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		graph:    lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 0),
		help:     lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
	}
}
