package ui

import "github.com/charmbracelet/lipgloss"

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolPending  = "○"
	SymbolProgress = "◐"
	SymbolComplete = "●"
	SymbolSkipped  = "⊘"
)

// StatusSymbol maps a process status to a glyph, for output where the
// backend's own icon is missing.
func StatusSymbol(status string) string {
	switch status {
	case "running":
		return SymbolComplete
	case "started":
		return SymbolProgress
	case "disabled":
		return SymbolSkipped
	case "error":
		return SymbolFail
	default:
		return SymbolPending
	}
}

// StatusColor maps a process status to its semantic color.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "running":
		return ColorSuccess
	case "started":
		return ColorWarning
	case "error":
		return ColorError
	case "stopped", "disabled":
		return ColorMuted
	default:
		return ColorPrimary
	}
}
