package monitor

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Plain output keeps assertions about runes simple.
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestSpreadSamples(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		cols    int
		want    []float64
	}{
		{"empty", nil, 3, []float64{-1, -1, -1}},
		{"single sample at left", []float64{40}, 3, []float64{40, -1, -1}},
		{"endpoints pinned", []float64{0, 100}, 3, []float64{0, 50, 100}},
		{"clamped", []float64{-10, 200}, 2, []float64{0, 100}},
		{"one column keeps newest", []float64{10, 20, 30}, 1, []float64{30}},
		{"downsample keeps peaks", []float64{0, 90, 0, 0, 10, 0}, 3, []float64{90, 0, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := spreadSamples(tt.samples, tt.cols)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestResampleData(t *testing.T) {
	assert.Equal(t, []float64{1, 2}, resampleData([]float64{1, 2}, 5), "short input unchanged")
	assert.Equal(t, []float64{5, 9}, resampleData([]float64{1, 5, 9, 3}, 2))
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 0, clampInt(-3, 10))
	assert.Equal(t, 10, clampInt(30, 10))
	assert.Equal(t, 4, clampInt(4, 10))
}

func TestRenderTrendCells_Shape(t *testing.T) {
	out := RenderTrendCells([]float64{10, 50, 90}, 8, 2, lipgloss.Color("#67e8f9"))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, 8, utf8.RuneCountInString(l))
	}
}

func TestRenderTrendCells_FullAndEmpty(t *testing.T) {
	full := RenderTrendCells([]float64{100, 100}, 2, 1, lipgloss.Color("#fff"))
	assert.Equal(t, "⣿⣿", full)

	zero := RenderTrendCells([]float64{0, 0}, 2, 1, lipgloss.Color("#fff"))
	assert.Equal(t, strings.Repeat(string(brailleBase), 2), zero)

	assert.Empty(t, RenderTrendCells([]float64{1}, 0, 1, lipgloss.Color("#fff")))
}

func TestRenderTrendCells_SmallValuesStayVisible(t *testing.T) {
	out := RenderTrendCells([]float64{1, 1}, 1, 1, lipgloss.Color("#fff"))
	assert.NotEqual(t, string(brailleBase), out)
}

func TestRenderTrendCells_RisingLineFillsRight(t *testing.T) {
	out := RenderTrendCells([]float64{0, 100}, 4, 1, lipgloss.Color("#fff"))
	runes := []rune(out)
	require.Len(t, runes, 4)
	assert.Greater(t, runes[3], runes[0])
}

func TestRenderTrendBlocks(t *testing.T) {
	out := RenderTrendBlocks([]float64{0, 100}, 3, lipgloss.Color("#fff"))
	assert.Equal(t, "▁▅█", out)

	assert.Equal(t, "▅  ", RenderTrendBlocks([]float64{50}, 3, lipgloss.Color("#fff")))
	assert.Empty(t, RenderTrendBlocks(nil, 0, lipgloss.Color("#fff")))
}
