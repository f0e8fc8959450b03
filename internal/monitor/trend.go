package monitor

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync/atomic"
)

// Trend viewport in SVG user units.
const (
	TrendWidth  = 90.0
	TrendHeight = 26.0
)

// Point is a vertex in trend viewport coordinates (y grows downward).
type Point struct {
	X, Y float64
}

// TrendGeometry maps samples onto the trend viewport. Points are evenly
// spaced so the newest sample sits on the right edge once there are two or
// more; a single sample lands at x=0. Values are clamped to [0,100] for the
// vertical scale only.
func TrendGeometry(samples []float64) []Point {
	if len(samples) == 0 {
		return nil
	}
	step := TrendWidth / float64(max(len(samples), 2)-1)

	pts := make([]Point, len(samples))
	for i, v := range samples {
		pts[i] = Point{
			X: float64(i) * step,
			Y: TrendHeight - clampPercent(v)/100*TrendHeight,
		}
	}
	return pts
}

// TrendArea closes the line geometry down to the baseline for the fill.
func TrendArea(line []Point) []Point {
	area := make([]Point, 0, len(line)+2)
	area = append(area, Point{0, TrendHeight})
	area = append(area, line...)
	area = append(area, Point{TrendWidth, TrendHeight})
	return area
}

// gradientSeq numbers SVG gradients process-wide so ids never collide when
// many trends share one document.
var gradientSeq atomic.Uint64

func nextGradientID() string {
	return "grad-" + strconv.FormatUint(gradientSeq.Add(1)-1, 10)
}

// RenderTrendSVG renders samples as a self-contained <svg>: a vertical
// gradient fill under the line plus the stroked line itself.
func RenderTrendSVG(samples []float64, color string) string {
	id := nextGradientID()
	line := formatPoints(TrendGeometry(samples))
	area := formatPoints(TrendArea(TrendGeometry(samples)))
	c := html.EscapeString(color)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg viewBox="0 0 %g %g" width="%g" height="%g" class="spark">`,
		TrendWidth, TrendHeight, TrendWidth, TrendHeight)
	fmt.Fprintf(&b, `<defs><linearGradient id="%s" x1="0" y1="0" x2="0" y2="1">`, id)
	fmt.Fprintf(&b, `<stop offset="0%%" stop-color="%s" stop-opacity="0.55"/>`, c)
	fmt.Fprintf(&b, `<stop offset="100%%" stop-color="%s" stop-opacity="0"/>`, c)
	b.WriteString(`</linearGradient></defs>`)
	fmt.Fprintf(&b, `<polygon points="%s" fill="url(#%s)"/>`, area, id)
	fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`, line, c)
	b.WriteString(`</svg>`)
	return b.String()
}

func formatPoints(pts []Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = strconv.FormatFloat(p.X, 'f', 2, 64) + "," + strconv.FormatFloat(p.Y, 'f', 2, 64)
	}
	return strings.Join(parts, " ")
}

func clampPercent(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
