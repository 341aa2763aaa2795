package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/led-repair/internal/theme"
)

// Layout manages the header / content / status bar split of the terminal.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the title on the left and the signed-in operator on
// the right.
func (l Layout) RenderHeader(title, operator string) string {
	return l.spread(theme.HeaderStyle, theme.HeaderStyle.Render(title), theme.HeaderStyle.Render(operator))
}

// RenderStatusBar renders keyboard hints on the left and a transient
// message, if any, on the right. Errors are shown in the error color.
func (l Layout) RenderStatusBar(hints, message string, isErr bool) string {
	left := theme.StatusBarStyle.Render(hints)
	right := ""
	if message != "" {
		style := theme.StatusBarStyle
		if isErr {
			style = style.Foreground(theme.ColorRed).Bold(true)
		}
		right = style.Render(message)
	}
	return l.spread(theme.StatusBarStyle, left, right)
}

func (l Layout) spread(bar lipgloss.Style, left, right string) string {
	gap := max(l.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(bar.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderWithFrame stacks the header, content and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
