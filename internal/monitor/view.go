package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// trendCellWidth is the inline trend width, in terminal cells.
const trendCellWidth = 8

// Table column indexes.
const (
	colIcon = iota
	colName
	colType
	colStatus
	colPid
	colStarted
	colUptime
	colCPU
	colGPU
	colMem
	colNet
	colIO
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	var body string
	switch {
	case m.viewMode == ViewEditor && m.editorView != nil:
		body = m.editorView.view()
	case m.viewMode == ViewDetail && m.viewportReady:
		body = m.detailViewport.View()
	case m.viewMode == ViewDetail:
		body = m.renderDetailContent()
	default:
		body = m.renderTable()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		body,
		m.renderFooter(),
	)
}

// renderHeader renders the snapshot status line and any poll error.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render("procdash")
	if m.label != "" {
		title += LabelStyle.Render(" " + m.label)
	}

	h := m.header
	stats := LabelStyle.Render(fmt.Sprintf(" | updated %s | version %s | net %s",
		h.Updated, h.Version, h.Net()))

	line := title + stats
	if m.poller.InFlight() {
		line += " " + m.spinner.View()
	}

	out := HeaderStyle.Render(line)
	if m.pollErr != "" {
		out += "\n" + HeaderErrorStyle.Render("✗ backend unreachable: "+m.pollErr)
	}
	if h.NetDebug != HeaderPlaceholder {
		out += "\n" + FooterStyle.Render("net debug: "+h.NetDebug)
	}
	return out
}

// renderTable renders the process table.
func (m Model) renderTable() string {
	if len(m.rows) == 0 {
		if m.snap == nil {
			return LabelStyle.Render("Waiting for the first snapshot...")
		}
		return LabelStyle.Render("No processes reported")
	}

	unit := m.header.Unit
	headers := []string{"", "NAME", "TYPE", "STATUS", "PID", "STARTED", "UPTIME",
		"CPU", "GPU", "MEM", "NET " + unit + "/s", "IO " + unit + "/s"}

	graphs := m.showGraphs && m.wide()
	data := make([][]string, 0, len(m.rows))
	for _, r := range m.rows {
		data = append(data, m.tableRow(r, graphs))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if row < 0 || row >= len(m.rows) {
				return CellStyle
			}
			r := m.rows[row]
			st := rowStyle(r, row == m.selected)
			if r.Disabled {
				return st
			}
			switch col {
			case colStatus:
				return st.Foreground(StatusColor(r.Status))
			case colCPU:
				return st.Foreground(MetricColor(r.Metrics[ChannelCPU].Raw))
			case colGPU:
				return st.Foreground(MetricColor(r.Metrics[ChannelGPU].Raw))
			}
			return st
		})

	return t.Render()
}

// tableRow renders the cells of one row. Metric cells show the animated
// label, followed by an inline trend when graphs are on.
func (m Model) tableRow(r Row, graphs bool) []string {
	name := r.Name
	if r.Hung {
		name += " (hung)"
	}

	cells := []string{
		r.Icon,
		name,
		orDefault(r.Type, CellPlaceholder),
		string(r.Status),
		r.Pid(m.anim),
		r.StartedAt,
		r.Uptime,
	}
	for _, c := range Channels {
		cell := r.Metrics[c]
		text := cell.Label(m.anim)
		if graphs {
			text += " " + RenderTrendCells(cell.Samples, trendCellWidth, 1, lipgloss.Color(ChannelColor(c)))
		}
		cells = append(cells, text)
	}
	return cells
}

// renderFooter renders the notice line, any pending confirmation and the
// key hints.
func (m Model) renderFooter() string {
	var lines []string

	if m.pending != "" {
		lines = append(lines, NoticeErrorStyle.Render(fmt.Sprintf("%s? press y to confirm, any other key to cancel", m.pending)))
	}
	if m.notice != nil {
		style := NoticeInfoStyle
		if m.notice.Level == NoticeError {
			style = NoticeErrorStyle
		}
		lines = append(lines, style.Render(m.notice.Text)+FooterStyle.Render("(esc to dismiss)"))
	}

	hints := m.help.ShortHelpView(m.keys.ShortHelp())
	status := fmt.Sprintf("sort: %s | %s", m.sortOrder, updatedAgo(m.SecondsSinceUpdate()))
	lines = append(lines, FooterStyle.Render(hints+"  "+status))

	return strings.Join(lines, "\n")
}

func updatedAgo(secs int) string {
	switch secs {
	case 0:
		return "just now"
	case 1:
		return "1s ago"
	default:
		return fmt.Sprintf("%ds ago", secs)
	}
}
