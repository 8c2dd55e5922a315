// Package theme holds the terminal styles used by the readcheck CLI.
package theme

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#2563EB") // Blue
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#F43F5E") // Rose
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// Rule returns a horizontal separator of width w.
func Rule(w int) string {
	return lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", w))
}

// Verdict renders a correct/incorrect mark.
func Verdict(ok bool) string {
	if ok {
		return Correct.Render("✓")
	}
	return Incorrect.Render("✗")
}

// Score renders "correct/total (pct%)" colored by how well it went.
func Score(correct, total, pct int) string {
	style := Incorrect
	switch {
	case pct >= 80:
		style = Correct
	case pct >= 50:
		style = lipgloss.NewStyle().Foreground(Warning).Bold(true)
	}
	return style.Render(fmt.Sprintf("%d/%d (%d%%)", correct, total, pct))
}
