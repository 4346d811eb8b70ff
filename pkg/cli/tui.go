package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors used for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
	Warn    lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Warn:    lipgloss.Color("#f2cc60"),
	Error:   lipgloss.Color("#ff6b6b"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Help    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Help:    lipgloss.NewStyle().Foreground(t.Dim),
		Success: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(t.Warn),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(t.Error),
	}
}

// DefaultStyles are the styles of DefaultTheme.
var DefaultStyles = NewStyles(DefaultTheme)

// Field is one labeled line of a Details block.
type Field struct {
	Label string
	Value string
}

// Details renders a titled block of aligned label/value lines. Fields with
// an empty value are skipped.
func Details(s Styles, title string, fields ...Field) string {
	width := 0
	for _, f := range fields {
		if f.Value != "" {
			width = max(width, lipgloss.Width(f.Label))
		}
	}

	var b strings.Builder
	b.WriteString(s.Title.Render(title))
	b.WriteByte('\n')
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		pad := strings.Repeat(" ", width-lipgloss.Width(f.Label))
		b.WriteString("  ")
		b.WriteString(s.Label.Render(f.Label + ":"))
		b.WriteString(pad)
		b.WriteString(" ")
		b.WriteString(f.Value)
		b.WriteByte('\n')
	}
	return b.String()
}
