package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/coldsim/internal/particles"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

var ErrTooFewPtcls = errors.New("analysis: at least two particles are required")

// ParseAxis maps "x", "y" or "z" to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("analysis: unknown axis %q", s)
}

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

func (a Axis) component(v r3.Vec) float64 {
	switch a {
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	}
	return v.X
}

// PhasePortrait2D holds the phase space coordinates of an ensemble along
// one axis.
type PhasePortrait2D struct {
	Axis Axis
	X, V []float64
}

func PhasePortrait(e *particles.Ensemble, axis Axis) *PhasePortrait2D {
	x, v := e.Positions(), e.Velocities()
	p := &PhasePortrait2D{
		Axis: axis,
		X:    make([]float64, len(x)),
		V:    make([]float64, len(v)),
	}
	for i := range x {
		p.X[i] = axis.component(x[i])
		p.V[i] = axis.component(v[i])
	}
	return p
}

// Moments are the first and second order phase space moments along one
// axis.
type Moments struct {
	N         int
	MeanX     float64
	MeanV     float64
	RMSX      float64
	RMSV      float64
	CovXV     float64
	Emittance float64
}

// ComputeMoments returns the moments of e along axis. The emittance is
// sqrt(var(x)var(v) - cov(x,v)^2), clamped at zero against round-off.
func ComputeMoments(e *particles.Ensemble, axis Axis) (Moments, error) {
	p := PhasePortrait(e, axis)
	m := Moments{N: len(p.X)}
	if m.N < 2 {
		return m, ErrTooFewPtcls
	}

	var varX, varV float64
	m.MeanX, varX = stat.MeanVariance(p.X, nil)
	m.MeanV, varV = stat.MeanVariance(p.V, nil)
	m.RMSX = math.Sqrt(varX)
	m.RMSV = math.Sqrt(varV)
	m.CovXV = stat.Covariance(p.X, p.V, nil)
	m.Emittance = math.Sqrt(math.Max(0, varX*varV-m.CovXV*m.CovXV))
	return m, nil
}

// PhasePortraitToASCII plots the portrait with position on the horizontal
// axis and velocity on the vertical axis.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.X) == 0 {
		return ""
	}

	minX, maxX := padded(portrait.X)
	minY, maxY := padded(portrait.V)
	rangeX, rangeY := maxX-minX, maxY-minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i := range portrait.X {
		col := int((portrait.X[i] - minX) / rangeX * float64(width-1))
		row := height - 1 - int((portrait.V[i]-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Axes where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

func padded(v []float64) (lo, hi float64) {
	lo, hi = floats.Min(v), floats.Max(v)
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - span*0.1, hi + span*0.1
}
