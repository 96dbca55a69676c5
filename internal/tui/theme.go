package tui

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

// Theme names accepted by ThemeNamed.
const (
	ThemeDefault = "default"
	ThemeMono    = "mono"
)

// Theme holds the palette used to render every screen.
type Theme struct {
	Name          string
	Accent        color.Color
	Text          color.Color
	Muted         color.Color
	Dim           color.Color
	Selected      color.Color
	Error         color.Color
	MarkdownStyle string
}

// DefaultTheme returns the colored palette.
func DefaultTheme() Theme {
	return Theme{
		Name:          ThemeDefault,
		Accent:        lipgloss.Color("62"),
		Text:          lipgloss.Color("252"),
		Muted:         lipgloss.Color("241"),
		Dim:           lipgloss.Color("239"),
		Selected:      lipgloss.Color("212"),
		Error:         lipgloss.Color("203"),
		MarkdownStyle: "dark",
	}
}

// MonoTheme returns a palette without colors for plain terminals.
func MonoTheme() Theme {
	return Theme{
		Name:          ThemeMono,
		Accent:        lipgloss.NoColor{},
		Text:          lipgloss.NoColor{},
		Muted:         lipgloss.NoColor{},
		Dim:           lipgloss.NoColor{},
		Selected:      lipgloss.NoColor{},
		Error:         lipgloss.NoColor{},
		MarkdownStyle: "notty",
	}
}

// ThemeNamed resolves a configured theme name.
func ThemeNamed(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ThemeDefault:
		return DefaultTheme(), nil
	case ThemeMono:
		return MonoTheme(), nil
	default:
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}
}

// styles are the lipgloss styles derived from one theme.
type styles struct {
	title    lipgloss.Style
	text     lipgloss.Style
	muted    lipgloss.Style
	dim      lipgloss.Style
	accent   lipgloss.Style
	selected lipgloss.Style
	errText  lipgloss.Style
	cursor   lipgloss.Style
	box      lipgloss.Style
	helpLine lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Text),
		text:     lipgloss.NewStyle().Foreground(t.Text),
		muted:    lipgloss.NewStyle().Foreground(t.Muted),
		dim:      lipgloss.NewStyle().Foreground(t.Dim),
		accent:   lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		selected: lipgloss.NewStyle().Bold(true).Foreground(t.Selected),
		errText:  lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		cursor:   lipgloss.NewStyle().Reverse(true),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Accent).
			Padding(0, 1),
		helpLine: lipgloss.NewStyle().
			Foreground(t.Muted).
			BorderTop(true).
			BorderForeground(t.Dim).
			Padding(0, 1),
	}
}
