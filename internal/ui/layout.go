package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gugverein/portal/internal/theme"
)

// Layout manages the terminal frame: header, content area, status bar,
// and the toast overlay anchored above the status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
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

// RenderHeader renders the top bar with the portal title on the left
// and the signed-in member on the right.
func (l Layout) RenderHeader(title, identity string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Align(lipgloss.Right).Render(identity)

	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderStatusBar renders the bottom bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes the full terminal view. A non-empty overlay
// (the toast stack) replaces the bottom lines of the content area so
// toasts sit just above the status bar without shifting the layout.
func (l Layout) RenderWithFrame(header, content, overlay, statusBar string) string {
	if overlay != "" {
		content = composeOverlay(content, overlay, l.ContentHeight(), l.Width)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}

// composeOverlay pads/clips content to height lines and replaces its
// tail with the right-aligned overlay lines.
func composeOverlay(content, overlay string, height, width int) string {
	lines := strings.Split(content, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	overlayLines := strings.Split(overlay, "\n")
	if len(overlayLines) > height {
		overlayLines = overlayLines[len(overlayLines)-height:]
	}

	offset := height - len(overlayLines)
	for i, ol := range overlayLines {
		lines[offset+i] = lipgloss.PlaceHorizontal(width, lipgloss.Right, ol)
	}

	return strings.Join(lines, "\n")
}
