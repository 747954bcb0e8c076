package render

import "github.com/charmbracelet/lipgloss"

// Theme defines colors and icons for terminal rendering.
type Theme struct {
	Name    string
	Primary lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons defines the status markers for a theme.
type ThemeIcons struct {
	Pass string
	Fail string
	Warn string
	Info string
}

// ThemeNames lists the names accepted by ThemeByName.
var ThemeNames = []string{"default", "orca", "mono"}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme() Theme {
	return Theme{
		Name:    "default",
		Primary: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // blue
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),  // green
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")), // gray
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons:   ThemeIcons{Pass: "✓", Fail: "✗", Warn: "⚠", Info: "●"},
	}
}

// OrcaTheme returns a muted theme for long benchmark sessions.
func OrcaTheme() Theme {
	return Theme{
		Name:    "orca",
		Primary: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("108")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("179")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("167")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons:   ThemeIcons{Pass: "✓", Fail: "✗", Warn: "!", Info: "·"},
	}
}

// MonoTheme returns a theme without colors, used for NO_COLOR and pipes.
func MonoTheme() Theme {
	return Theme{
		Name:    "mono",
		Primary: lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle(),
		Bold:    lipgloss.NewStyle(),
		Icons:   ThemeIcons{Pass: "+", Fail: "x", Warn: "!", Info: "*"},
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "orca":
		return OrcaTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}

// ResolveTheme picks the named theme unless color is disabled.
func ResolveTheme(name string, noColor bool) Theme {
	if noColor {
		return MonoTheme()
	}
	return ThemeByName(name)
}
