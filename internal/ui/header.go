package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version string // e.g. "v0.3.0"
	Tagline string // optional
	Detail  string // optional muted line, e.g. the backend URL
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders the branded header used by one-shot commands.
func RenderHeader(info HeaderInfo) string {
	var out strings.Builder

	out.WriteString(lipgloss.NewStyle().Foreground(ColorInfo).Bold(true).Render("procdash"))
	if info.Version != "" {
		out.WriteString(" ")
		out.WriteString(lipgloss.NewStyle().Foreground(ColorSecondary).Render(info.Version))
	}
	out.WriteString("\n")

	if info.Tagline != "" {
		out.WriteString(info.Tagline)
		out.WriteString("\n")
	}
	if info.Detail != "" {
		out.WriteString(lipgloss.NewStyle().Foreground(ColorMuted).Render(info.Detail))
		out.WriteString("\n")
	}

	out.WriteString(lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat("━", HeaderWidth)))
	out.WriteString("\n")
	return out.String()
}
