package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the layout view.
type Theme struct {
	Name   string
	Canvas lipgloss.Color
	Header lipgloss.Color
	Label  lipgloss.Color
	Value  lipgloss.Color
	Active lipgloss.Color
	Chart  lipgloss.Color
	Muted  lipgloss.Color
	Good   lipgloss.Color
	Warn   lipgloss.Color
}

var (
	ThemeNeon = Theme{
		Name:   "neon",
		Canvas: lipgloss.Color("#00ffff"),
		Header: lipgloss.Color("#ff00ff"),
		Label:  lipgloss.Color("245"),
		Value:  lipgloss.Color("252"),
		Active: lipgloss.Color("#ffff00"),
		Chart:  lipgloss.Color("49"),
		Muted:  lipgloss.Color("240"),
		Good:   lipgloss.Color("#00ff88"),
		Warn:   lipgloss.Color("#ff8800"),
	}

	ThemeRetro = Theme{
		Name:   "retro",
		Canvas: lipgloss.Color("#00ff00"),
		Header: lipgloss.Color("#88ff88"),
		Label:  lipgloss.Color("#00aa00"),
		Value:  lipgloss.Color("#00ff00"),
		Active: lipgloss.Color("#ffff00"),
		Chart:  lipgloss.Color("#00cc00"),
		Muted:  lipgloss.Color("#005500"),
		Good:   lipgloss.Color("#88ff88"),
		Warn:   lipgloss.Color("#ffff00"),
	}

	ThemePaper = Theme{
		Name:   "paper",
		Canvas: lipgloss.Color("#ffffff"),
		Header: lipgloss.Color("#0088ff"),
		Label:  lipgloss.Color("#888888"),
		Value:  lipgloss.Color("#dddddd"),
		Active: lipgloss.Color("#0088ff"),
		Chart:  lipgloss.Color("#cccccc"),
		Muted:  lipgloss.Color("#666666"),
		Good:   lipgloss.Color("#00cc66"),
		Warn:   lipgloss.Color("#ffaa00"),
	}

	Themes = []Theme{ThemeNeon, ThemeRetro, ThemePaper}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// next returns the theme after t in Themes.
func (t Theme) next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
