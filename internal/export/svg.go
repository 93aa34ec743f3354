// Package export renders stored runs as standalone SVG images.
package export

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/coldsim/internal/particles"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// bounds returns the range of v padded by 10% on each side. A degenerate
// range is widened to unit length.
func bounds(v []float64) (lo, hi float64) {
	lo, hi = floats.Min(v), floats.Max(v)
	span := hi - lo
	if span == 0 {
		span = 1
		lo -= 0.5
		hi += 0.5
	}
	return lo - span*0.1, hi + span*0.1
}

// ParticlesSVG draws the x-z projection of the particle positions of e as
// a scatter plot. An empty ensemble yields an empty string.
func ParticlesSVG(e *particles.Ensemble, width, height int) string {
	x := e.Positions()
	if len(x) == 0 {
		return ""
	}

	xs := make([]float64, len(x))
	zs := make([]float64, len(x))
	for i, p := range x {
		xs[i], zs[i] = p.X, p.Z
	}
	minX, maxX := bounds(xs)
	minZ, maxZ := bounds(zs)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	sb.WriteString(`<g fill="#00ff88">` + "\n")
	for i := range xs {
		cx := (xs[i] - minX) / (maxX - minX) * float64(width)
		cy := float64(height) - (zs[i]-minZ)/(maxZ-minZ)*float64(height)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="1.5"/>`+"\n", cx, cy)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesSVG draws values against times as a polyline. Fewer than two
// points or mismatched lengths yield an empty string.
func SeriesSVG(times, values []float64, width, height int, stroke string) string {
	if len(times) < 2 || len(times) != len(values) {
		return ""
	}

	minT, maxT := bounds(times)
	minV, maxV := bounds(values)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i := range times {
		x := (times[i] - minT) / (maxT - minT) * float64(width)
		y := float64(height) - (values[i]-minV)/(maxV-minV)*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(`"/>` + "\n</svg>")
	return sb.String()
}
