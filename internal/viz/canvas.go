package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates. The canvas size in
// sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Count returns the number of lit sub-pixels.
func (c *Canvas) Count() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for bits := r - brailleBlank; bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps a rectangle of world coordinates onto a canvas. The
// vertical world axis points up.
type Viewport struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Pixel converts world coordinates to canvas sub-pixel coordinates.
func (v Viewport) Pixel(c *Canvas, x, y float64) (int, int, bool) {
	if x < v.MinX || x > v.MaxX || y < v.MinY || y > v.MaxY {
		return 0, 0, false
	}
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	px := int((x - v.MinX) / (v.MaxX - v.MinX) * w)
	py := int((v.MaxY - y) / (v.MaxY - v.MinY) * h)
	return px, py, true
}

// Plot lights the sub-pixel at world coordinates (x, y) if it is inside the
// viewport.
func (v Viewport) Plot(c *Canvas, x, y float64) {
	if px, py, ok := v.Pixel(c, x, y); ok {
		c.Set(px, py)
	}
}

// ClipSegment clips the segment from (x0, y0) to (x1, y1) to the viewport
// using the Liang-Barsky algorithm. ok is false when no part of the segment
// is visible.
func (v Viewport) ClipSegment(x0, y0, x1, y1 float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	dx, dy := x1-x0, y1-y0
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{x0 - v.MinX, v.MaxX - x0, y0 - v.MinY, v.MaxY - y0}

	t0, t1 := 0.0, 1.0
	for i := range p {
		if p[i] == 0 {
			if q[i] < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q[i] / p[i]
		if p[i] < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, r)
		}
	}

	cx0, cy0 = v.clamp(x0+t0*dx, y0+t0*dy)
	cx1, cy1 = v.clamp(x0+t1*dx, y0+t1*dy)
	return cx0, cy0, cx1, cy1, true
}

// clamp pulls round-off just outside the viewport back onto its edge.
func (v Viewport) clamp(x, y float64) (float64, float64) {
	return math.Min(math.Max(x, v.MinX), v.MaxX), math.Min(math.Max(y, v.MinY), v.MaxY)
}
