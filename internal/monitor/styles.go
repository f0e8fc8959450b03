package monitor

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/procdash/internal/backend"
)

// Dashboard palette.
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent    = lipgloss.Color("#FF2E97")
	ColorAccentDim = lipgloss.Color("#BF40FF")
)

// Trend colors, one per channel. The same hex values go into exported SVG.
var channelColors = [numChannels]string{
	ChannelCPU: "#67e8f9",
	ChannelGPU: "#fca5a5",
	ChannelMem: "#a7f3d0",
	ChannelNet: "#c4b5fd",
	ChannelIO:  "#f9d46b",
}

// ChannelColor returns the hex trend color for c.
func ChannelColor(c Channel) string {
	if c < 0 || c >= numChannels {
		return string(ColorTextSecondary)
	}
	return channelColors[c]
}

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	HeaderErrorStyle = lipgloss.NewStyle().
				Foreground(ColorCritical).
				Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true).
				Padding(0, 1)

	CellStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Padding(0, 1)

	SelectedCellStyle = CellStyle.
				Background(ColorBorder)

	// Hung rows are tinted; disabled rows are dimmed.
	HungCellStyle = CellStyle.
			Foreground(ColorWarning)

	DisabledCellStyle = CellStyle.
				Foreground(ColorTextMuted).
				Faint(true)

	NoticeInfoStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy).
			Padding(0, 1)

	NoticeErrorStyle = lipgloss.NewStyle().
				Foreground(ColorCritical).
				Bold(true).
				Padding(0, 1)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorAccentDim).
			Padding(0, 1)

	ButtonDisabledStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted).
				Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

// StatusColor maps a process status to its indicator color.
func StatusColor(s backend.Status) lipgloss.Color {
	switch s {
	case backend.StatusRunning:
		return ColorHealthy
	case backend.StatusStarted:
		return ColorWarning
	case backend.StatusError:
		return ColorCritical
	case backend.StatusStopped, backend.StatusDisabled:
		return ColorTextMuted
	}
	return ColorTextSecondary
}

// StatusStyle returns the style for a status label.
func StatusStyle(s backend.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(StatusColor(s))
}

// rowStyle picks the cell style for a table row.
func rowStyle(r Row, selected bool) lipgloss.Style {
	var st lipgloss.Style
	switch {
	case r.Disabled:
		st = DisabledCellStyle
	case r.Hung:
		st = HungCellStyle
	default:
		st = CellStyle
	}
	if selected {
		st = st.Background(ColorBorder)
	}
	return st
}

// Thresholds for percentage labels (cpu, gpu).
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// MetricColor colors a percentage: healthy below 70, warning below 90,
// critical above.
func MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorCritical
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return ColorHealthy
	}
}
