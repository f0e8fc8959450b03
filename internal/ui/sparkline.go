package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// Percent thresholds for sparkline coloring, matching the dashboard.
const (
	SparkWarnPercent     = 70
	SparkCriticalPercent = 90
)

// RenderSparkline draws the most recent width values as block characters,
// scaled between the window's min and max. Non-finite values count as zero.
// The color follows the last value against the percent thresholds.
func RenderSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	vals := make([]float64, len(data))
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		vals[i] = v
	}

	minVal, maxVal := vals[0], vals[0]
	for _, v := range vals {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}

	var sb strings.Builder
	sb.Grow(len(vals) * 3)

	numLevels := len(sparklineBlockRunes)
	valueRange := maxVal - minVal
	for _, v := range vals {
		level := numLevels / 2
		if valueRange > 0 {
			level = int((v - minVal) / valueRange * float64(numLevels-1))
			level = max(0, min(level, numLevels-1))
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}

	color := thresholdColor(vals[len(vals)-1])
	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}

func thresholdColor(percent float64) lipgloss.Color {
	switch {
	case percent >= SparkCriticalPercent:
		return ColorError
	case percent >= SparkWarnPercent:
		return ColorWarning
	default:
		return ColorSuccess
	}
}
