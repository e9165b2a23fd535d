package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

type ThemeName string

const (
	ThemePorcelain ThemeName = "porcelain"
	ThemeMidnight  ThemeName = "midnight"
)

type Theme struct {
	Name ThemeName

	// Colors
	TextPrimary lipgloss.AdaptiveColor
	TextMuted   lipgloss.AdaptiveColor
	TextFaint   lipgloss.AdaptiveColor

	Accent   lipgloss.AdaptiveColor
	Success  lipgloss.AdaptiveColor
	Error    lipgloss.AdaptiveColor
	Border   lipgloss.AdaptiveColor
	BorderHi lipgloss.AdaptiveColor

	// Styles
	TopBar      lipgloss.Style
	TopBarTitle lipgloss.Style
	TopBarBadge lipgloss.Style
	TopBarMeta  lipgloss.Style

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneTitle   lipgloss.Style
	PaneTitleF  lipgloss.Style
	PaneDivider lipgloss.Style
	Footer      lipgloss.Style
	InputBox    lipgloss.Style
	InputBoxF   lipgloss.Style
	Spinner     lipgloss.Style

	RoleYou lipgloss.Style
	RoleAI  lipgloss.Style
	Muted   lipgloss.Style
	Err     lipgloss.Style

	Chip    lipgloss.Style
	ChipSel lipgloss.Style

	SidebarItem lipgloss.Style
	SidebarSel  lipgloss.Style

	WelcomeTitle   lipgloss.Style
	WelcomeTagline lipgloss.Style
}

// ResolveTheme maps a configured theme name onto a palette. "system"
// falls back to the adaptive porcelain palette, which follows the
// terminal's light/dark background.
func ResolveTheme(name string) Theme {
	if os.Getenv("TALINO_NO_COLOR") == "1" {
		return newNoColorTheme()
	}
	switch ThemeName(name) {
	case ThemeMidnight:
		return newMidnightTheme()
	case ThemePorcelain:
		return newPorcelainTheme()
	default:
		return newPorcelainTheme()
	}
}

func (t Theme) fill() Theme {
	t.TopBar = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.TopBarTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.TopBarBadge = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.TopBarMeta = lipgloss.NewStyle().Foreground(t.TextMuted)

	t.Pane = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.PaneFocused = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.BorderHi).Padding(0, 1)
	t.PaneTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextMuted)
	t.PaneTitleF = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.PaneDivider = lipgloss.NewStyle().Foreground(t.Border)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.InputBox = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.InputBoxF = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.BorderHi).Padding(0, 1)
	t.Spinner = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)

	t.RoleYou = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.RoleAI = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.Muted = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.Err = lipgloss.NewStyle().Bold(true).Foreground(t.Error)

	t.Chip = lipgloss.NewStyle().Foreground(t.TextMuted).Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.ChipSel = lipgloss.NewStyle().Foreground(t.TextPrimary).Border(lipgloss.RoundedBorder()).BorderForeground(t.BorderHi).Padding(0, 1)

	t.SidebarItem = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.SidebarSel = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)

	t.WelcomeTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.WelcomeTagline = lipgloss.NewStyle().Italic(true).Foreground(t.Accent)
	return t
}

func newPorcelainTheme() Theme {
	return Theme{
		Name:        ThemePorcelain,
		TextPrimary: lipgloss.AdaptiveColor{Light: "#1d2433", Dark: "#f2f2f2"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#4a5568", Dark: "#c7c7c7"},
		TextFaint:   lipgloss.AdaptiveColor{Light: "#718096", Dark: "#9aa0a6"},
		Accent:      lipgloss.AdaptiveColor{Light: "#1f6feb", Dark: "#7aa2ff"},
		Success:     lipgloss.AdaptiveColor{Light: "#0f766e", Dark: "#46d1b7"},
		Error:       lipgloss.AdaptiveColor{Light: "#b42318", Dark: "#ff7a7a"},
		Border:      lipgloss.AdaptiveColor{Light: "#cbd5e0", Dark: "#3a3a3a"},
		BorderHi:    lipgloss.AdaptiveColor{Light: "#1f6feb", Dark: "#7aa2ff"},
	}.fill()
}

func newMidnightTheme() Theme {
	return Theme{
		Name:        ThemeMidnight,
		TextPrimary: lipgloss.AdaptiveColor{Light: "#111827", Dark: "#eaeaea"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#374151", Dark: "#b7b7b7"},
		TextFaint:   lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#8d8d8d"},
		Accent:      lipgloss.AdaptiveColor{Light: "#0ea5e9", Dark: "#5cc8ff"},
		Success:     lipgloss.AdaptiveColor{Light: "#059669", Dark: "#46d1b7"},
		Error:       lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#ff7a7a"},
		Border:      lipgloss.AdaptiveColor{Light: "#9ca3af", Dark: "#2a2a2a"},
		BorderHi:    lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#7aa2ff"},
	}.fill()
}

func newNoColorTheme() Theme {
	mono := lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}
	dim := lipgloss.AdaptiveColor{Light: "#333333", Dark: "#dddddd"}
	return Theme{
		Name:        "no-color",
		TextPrimary: mono,
		TextMuted:   dim,
		TextFaint:   dim,
		Accent:      mono,
		Success:     mono,
		Error:       mono,
		Border:      dim,
		BorderHi:    mono,
	}.fill()
}
