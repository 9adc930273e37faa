package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary     = lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#60a5fa"}
	muted       = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	border      = lipgloss.AdaptiveColor{Light: "#d1d5db", Dark: "#4b5563"}
	success     = lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#4ade80"}
	destructive = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"}
)

// Styles holds the lipgloss styles of the business table.
type Styles struct {
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Active  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Dialog  lipgloss.Style
	Field   lipgloss.Style
	Focused lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(primary).
			Bold(true).
			Padding(0, 2),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Active: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			Underline(true),
		Success: lipgloss.NewStyle().
			Foreground(success).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(destructive).
			Bold(true),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2),
		Field: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		Focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 1),
	}
}
