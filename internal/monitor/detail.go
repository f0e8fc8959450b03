package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/procdash/internal/backend"
)

// Detail view styles
var (
	detailContainerStyle = lipgloss.NewStyle().
				Padding(0, 2)

	detailSectionStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder).
				Padding(0, 1)

	detailTitleStyle = lipgloss.NewStyle().
				Foreground(ColorTextPrimary).
				Bold(true)
)

// Detail trend size, in terminal cells.
const (
	detailTrendWidth  = 40
	detailTrendHeight = 3
)

// renderDetailContent renders the expanded view of the selected process:
// identity, one trend per channel with its tooltip, and the action buttons.
func (m Model) renderDetailContent() string {
	row, ok := m.SelectedRow()
	if !ok {
		return LabelStyle.Render("No process selected")
	}

	var b strings.Builder
	b.WriteString(m.renderDetailHeader(row))
	b.WriteString("\n\n")

	for _, c := range Channels {
		b.WriteString(m.renderDetailChannel(row, c))
		b.WriteString("\n")
	}

	b.WriteString(renderActionButtons(row))
	b.WriteString("\n")
	b.WriteString(FooterStyle.Render("esc back | ↑↓ switch process"))

	return detailContainerStyle.Render(b.String())
}

func (m Model) renderDetailHeader(row Row) string {
	title := detailTitleStyle.Render(row.Icon + " " + row.Name)
	status := StatusStyle(row.Status).Render(string(row.Status))
	if row.Hung {
		status += " " + HungCellStyle.Render("hung")
	}

	lines := []string{
		title + "  " + status,
		field("type", orDefault(row.Type, CellPlaceholder)) +
			field("pid", row.Pid(m.anim)) +
			field("started", row.StartedAt) +
			field("uptime", row.Uptime),
	}
	if row.Target != "" {
		lines = append(lines, field("target", row.Target))
	}
	if row.Error != "" {
		lines = append(lines, NoticeErrorStyle.Render(row.Error))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDetailChannel(row Row, c Channel) string {
	cell := row.Metrics[c]
	trend := RenderTrendCells(cell.Samples, detailTrendWidth, detailTrendHeight, lipgloss.Color(ChannelColor(c)))

	head := fmt.Sprintf("%s %s", strings.ToUpper(c.String()), ValueStyle.Render(cell.Label(m.anim)))
	if cell.Detail != "" {
		head += "  " + LabelStyle.Render(cell.Detail)
	}
	return detailSectionStyle.Render(head + "\n" + trend)
}

func field(label, value string) string {
	return LabelStyle.Render(label+": ") + ValueStyle.Render(value) + "  "
}

// renderActionButtons renders the row's actions; unavailable ones are dimmed.
func renderActionButtons(row Row) string {
	keys := map[backend.Action]string{
		backend.ActionOpenFolder: "o",
		backend.ActionStart:      "s",
		backend.ActionStop:       "x",
		backend.ActionRestart:    "r",
	}
	parts := make([]string, 0, len(row.Actions))
	for _, a := range row.Actions {
		label := fmt.Sprintf("[%s] %s", keys[a.Action], a.Action)
		if a.Enabled {
			parts = append(parts, ButtonStyle.Render(label))
		} else {
			parts = append(parts, ButtonDisabledStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
