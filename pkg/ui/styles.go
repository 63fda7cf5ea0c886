package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Edge sign colors, matching the snapshot renderer
	ColorPositive = lipgloss.AdaptiveColor{Light: "#D32F2F", Dark: "#FF6E6E"}
	ColorNegative = lipgloss.AdaptiveColor{Light: "#1976D2", Dark: "#6EA8FF"}
)

// clusterColors tints cluster ids; ids wrap around.
var clusterColors = []lipgloss.AdaptiveColor{
	{Light: "#00897B", Dark: "#8DD3C7"},
	{Light: "#9E9D24", Dark: "#FFFFB3"},
	{Light: "#5E35B1", Dark: "#BEBADA"},
	{Light: "#E53935", Dark: "#FB8072"},
	{Light: "#1E88E5", Dark: "#80B1D3"},
	{Light: "#FB8C00", Dark: "#FDB462"},
	{Light: "#7CB342", Dark: "#B3DE69"},
	{Light: "#D81B60", Dark: "#FCCDE5"},
	{Light: "#8E24AA", Dark: "#BC80BD"},
}

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES
// ══════════════════════════════════════════════════════════════════════════════

var (
	// PanelStyle is the default style for unfocused panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight).
			Padding(0, 1)

	// FocusedPanelStyle marks the control panel
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	ActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorBgHighlight)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorDanger)
)

// RenderClusterBadge returns a colored cluster id, or a dot without clusters.
func RenderClusterBadge(id int) string {
	if id <= 0 {
		return MutedStyle.Render("·")
	}
	c := clusterColors[(id-1)%len(clusterColors)]
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render("●")
}

// RenderWeight colors a weight by sign.
func RenderWeight(w float64, s string) string {
	c := ColorPositive
	if w < 0 {
		c = ColorNegative
	}
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// RenderSlider draws pos in [0, 1] as a bar of the given width.
func RenderSlider(pos float64, width int) string {
	if width < 3 {
		width = 3
	}
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	filled := int(pos*float64(width) + 0.5)
	return lipgloss.NewStyle().Foreground(ColorPrimary).Render(strings.Repeat("█", filled)) +
		MutedStyle.Render(strings.Repeat("░", width-filled))
}
