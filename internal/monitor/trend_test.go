package monitor

import (
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendGeometry(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    []Point
	}{
		{name: "empty", samples: nil, want: nil},
		{name: "single sample", samples: []float64{50}, want: []Point{{0, 13}}},
		{name: "two samples span the width", samples: []float64{0, 100}, want: []Point{{0, 26}, {90, 0}}},
		{name: "clamped vertically", samples: []float64{-20, 150, 50}, want: []Point{{0, 26}, {45, 0}, {90, 13}}},
		{name: "NaN sits on the baseline", samples: []float64{math.NaN(), 0}, want: []Point{{0, 26}, {90, 26}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrendGeometry(tt.samples)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.InDelta(t, tt.want[i].X, got[i].X, 1e-9)
				assert.InDelta(t, tt.want[i].Y, got[i].Y, 1e-9)
			}
		})
	}
}

func TestTrendGeometry_LastSampleAtRightEdge(t *testing.T) {
	for n := 2; n <= DefaultHistorySize; n++ {
		samples := make([]float64, n)
		pts := TrendGeometry(samples)
		assert.InDelta(t, TrendWidth, pts[n-1].X, 1e-9, "n=%d", n)
		for i := 1; i < n; i++ {
			assert.InDelta(t, TrendWidth/float64(n-1), pts[i].X-pts[i-1].X, 1e-9)
		}
	}
}

func TestTrendArea(t *testing.T) {
	area := TrendArea(TrendGeometry([]float64{50}))
	assert.Equal(t, []Point{{0, 26}, {0, 13}, {90, 26}}, area)
}

var numberRe = regexp.MustCompile(`-?\d+(\.\d+)?`)

func TestRenderTrendSVG_SingleSampleIsFinite(t *testing.T) {
	svg := RenderTrendSVG([]float64{42}, "#67e8f9")

	assert.NotContains(t, svg, "NaN")
	assert.NotContains(t, svg, "Inf")
	assert.Contains(t, svg, `<polygon points="0.00,26.00 0.00,15.08 90.00,26.00"`)
	assert.Contains(t, svg, `<polyline points="0.00,15.08"`)
	assert.NotEmpty(t, numberRe.FindAllString(svg, -1))
}

func TestRenderTrendSVG_Structure(t *testing.T) {
	svg := RenderTrendSVG([]float64{0, 50, 100}, "#fca5a5")

	assert.True(t, strings.HasPrefix(svg, `<svg viewBox="0 0 90 26" width="90" height="26"`))
	assert.Contains(t, svg, `stop-opacity="0.55"`)
	assert.Contains(t, svg, `stop-opacity="0"`)
	assert.Contains(t, svg, `stroke="#fca5a5" stroke-width="2"`)
	assert.Contains(t, svg, `points="0.00,26.00 45.00,13.00 90.00,0.00"`)
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
}

func TestRenderTrendSVG_UniqueGradientIDs(t *testing.T) {
	idRe := regexp.MustCompile(`id="(grad-\d+)"`)
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		svg := RenderTrendSVG([]float64{1, 2}, "#fff")
		m := idRe.FindStringSubmatch(svg)
		require.Len(t, m, 2)
		assert.False(t, seen[m[1]], "gradient id %s reused", m[1])
		seen[m[1]] = true
		assert.Contains(t, svg, "url(#"+m[1]+")")
	}
}

func TestRenderTrendSVG_EscapesColor(t *testing.T) {
	svg := RenderTrendSVG([]float64{1, 2}, `"><script>`)
	assert.NotContains(t, svg, "<script>")
}
