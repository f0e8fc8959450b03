package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille character rendering for terminal trends.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty); dot n sets bit n-1.

const brailleBase = '\u2800'

// trendBlocks are block characters for 8-level vertical resolution (lowest to highest).
var trendBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps [row][col] of a braille cell to its bit offset.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// RenderTrendCells renders samples as a width x height braille area chart:
// the same evenly spaced geometry as TrendGeometry, filled down to the
// baseline. Values clamp to [0,100].
func RenderTrendCells(samples []float64, width, height int, color lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(string(brailleBase), width))
	}

	dotCols := width * 2
	totalDots := height * 4
	levels := spreadSamples(samples, dotCols)

	for col, v := range levels {
		if v < 0 {
			continue
		}
		dotHeight := clampInt(int(v/100*float64(totalDots)+0.5), totalDots)
		// Keep nonzero samples visible as at least one dot.
		if dotHeight == 0 && v > 0 {
			dotHeight = 1
		}
		charCol, subCol := col/2, col%2
		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - dot/4
			subRow := 3 - dot%4
			grid[row][charCol] |= rune(1 << brailleDots[subRow][subCol])
		}
	}

	style := lipgloss.NewStyle().Foreground(color)
	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = style.Render(string(row))
	}
	return strings.Join(lines, "\n")
}

// RenderTrendBlocks is the single-row fallback using block characters,
// one per column, for narrow layouts.
func RenderTrendBlocks(samples []float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}

	var b strings.Builder
	for _, v := range spreadSamples(samples, width) {
		if v < 0 {
			b.WriteRune(' ')
			continue
		}
		idx := clampInt(int(v/100*float64(len(trendBlocks)-1)+0.5), len(trendBlocks)-1)
		b.WriteRune(trendBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Render(b.String())
}

// spreadSamples lays samples across cols columns the way TrendGeometry lays
// them across the viewport: first sample at column 0, last at the right edge,
// linear interpolation between. Values are clamped to [0,100]. Columns with
// no data (only possible with a single sample) are -1.
func spreadSamples(samples []float64, cols int) []float64 {
	out := make([]float64, cols)
	for i := range out {
		out[i] = -1
	}
	if len(samples) == 0 || cols == 0 {
		return out
	}
	if len(samples) == 1 {
		out[0] = clampPercent(samples[0])
		return out
	}

	data := samples
	if len(data) > cols {
		data = resampleData(data, cols)
	}
	if cols == 1 {
		out[0] = clampPercent(data[len(data)-1])
		return out
	}

	scale := float64(len(data)-1) / float64(cols-1)
	for col := range out {
		pos := float64(col) * scale
		idx := int(pos)
		if idx >= len(data)-1 {
			out[col] = clampPercent(data[len(data)-1])
			continue
		}
		frac := pos - float64(idx)
		out[col] = clampPercent(data[idx]*(1-frac) + data[idx+1]*frac)
	}
	return out
}

// clampInt clamps an integer to [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// resampleData downsamples by taking the max of each bucket so spikes survive.
// Inputs no longer than targetSize are returned unchanged.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) <= targetSize || targetSize <= 0 {
		return data
	}

	result := make([]float64, targetSize)
	bucketSize := float64(len(data)) / float64(targetSize)
	for i := 0; i < targetSize; i++ {
		start := int(float64(i) * bucketSize)
		end := min(int(float64(i+1)*bucketSize), len(data))
		if start >= end {
			start = end - 1
		}

		maxVal := data[start]
		for j := start + 1; j < end; j++ {
			maxVal = max(maxVal, data[j])
		}
		result[i] = maxVal
	}
	return result
}
