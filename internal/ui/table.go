package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableStyle provides consistent styling for tables across the CLI.
type TableStyle struct {
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
}

// DefaultTableStyle returns the default table styling.
func DefaultTableStyle() TableStyle {
	return TableStyle{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		Cell:     lipgloss.NewStyle().Foreground(ColorPrimary),
		Selected: lipgloss.NewStyle().Foreground(ColorPrimary).Background(ColorMuted),
		Border:   lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-focused Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	st := DefaultTableStyle()
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = st.Cell
	// Nothing is focused in CLI output, so the cursor row must look like the rest.
	s.Selected = st.Cell.Bold(false)

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}

// ProcessTableRow is one process in the one-shot status table. Values are
// preformatted by the caller.
type ProcessTableRow struct {
	Status string
	Icon   string
	Name   string
	Type   string
	Pid    string
	Uptime string
	CPU    string
	Mem    string
	Net    string
	Trend  []float64 // optional CPU history for the sparkline column
	Hung   bool
}

// SparklineWidth is the width of the CPU trend column in the status table.
const SparklineWidth = 12

// RenderProcessTable renders the status table printed by 'procdash status'.
// The trend column only appears when some row carries history.
func RenderProcessTable(rows []ProcessTableRow, netTitle string) string {
	if len(rows) == 0 {
		return "No processes reported"
	}

	withTrend := false
	for _, r := range rows {
		if len(r.Trend) > 1 {
			withTrend = true
			break
		}
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	warnStyle := lipgloss.NewStyle().Foreground(ColorWarning)

	header := "  " + padRight("", 2) +
		padRight("NAME", 22) +
		padRight("TYPE", 6) +
		padRight("STATUS", 10) +
		padRight("PID", 8) +
		padRight("UPTIME", 12) +
		padRight("CPU", 8) +
		padRight("MEM", 11) +
		padRight(netTitle, 12)
	if withTrend {
		header += "TREND"
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(strings.TrimRight(header, " ")))
	sb.WriteString("\n")

	for _, r := range rows {
		statusStyle := lipgloss.NewStyle().Foreground(StatusColor(r.Status))
		icon := r.Icon
		if icon == "" || icon == r.Status {
			icon = StatusSymbol(r.Status)
		}

		name := r.Name
		if r.Hung {
			name = warnStyle.Render(name + " (hung)")
		}

		line := "  " + padRight(statusStyle.Render(icon), 2) +
			padRight(name, 22) +
			padRight(mutedStyle.Render(r.Type), 6) +
			padRight(statusStyle.Render(r.Status), 10) +
			padRight(r.Pid, 8) +
			padRight(r.Uptime, 12) +
			padRight(r.CPU, 8) +
			padRight(r.Mem, 11) +
			padRight(r.Net, 12)
		if withTrend {
			line += RenderSparkline(r.Trend, SparklineWidth)
		}
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteString("\n")
	}

	return sb.String()
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
