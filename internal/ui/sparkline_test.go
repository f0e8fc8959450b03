package ui

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSparkline_Empty(t *testing.T) {
	assert.Empty(t, RenderSparkline(nil, 10))
	assert.Empty(t, RenderSparkline([]float64{}, 10))
	assert.Empty(t, RenderSparkline([]float64{50, 60}, 0))
	assert.Empty(t, RenderSparkline([]float64{50, 60}, -5))
}

func TestRenderSparkline_OneBlockPerPoint(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		width int
		want  int
	}{
		{"single value", []float64{50}, 10, 1},
		{"increasing", []float64{0, 25, 50, 75, 100}, 10, 5},
		{"truncated to width", []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, 5, 5},
		{"negative values", []float64{-50, -25, 0, 25, 50}, 10, 5},
		{"large values", []float64{1000, 5000, 10000}, 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripANSI(RenderSparkline(tt.data, tt.width))
			assert.Len(t, []rune(got), tt.want)
		})
	}
}

func TestRenderSparkline_ScalesBetweenMinAndMax(t *testing.T) {
	runes := []rune(stripANSI(RenderSparkline([]float64{0, 50, 100}, 10)))

	assert.Equal(t, '▁', runes[0])
	assert.Equal(t, '█', runes[2])
}

func TestRenderSparkline_FlatSeriesUsesMiddleLevel(t *testing.T) {
	got := stripANSI(RenderSparkline([]float64{42, 42, 42}, 10))
	assert.Equal(t, strings.Repeat("▅", 3), got)
}

func TestRenderSparkline_NonFiniteCountsAsZero(t *testing.T) {
	runes := []rune(stripANSI(RenderSparkline([]float64{math.NaN(), 100, math.Inf(1)}, 10)))

	assert.Len(t, runes, 3)
	assert.Equal(t, '▁', runes[0])
	assert.Equal(t, '█', runes[1])
	assert.Equal(t, '▁', runes[2])
}

func TestThresholdColor(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, string(ColorSuccess)},
		{69.9, string(ColorSuccess)},
		{70, string(ColorWarning)},
		{89.9, string(ColorWarning)},
		{90, string(ColorError)},
		{100, string(ColorError)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, string(thresholdColor(tt.percent)), "percent %.1f", tt.percent)
	}
}

func stripANSI(s string) string {
	var result strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}
