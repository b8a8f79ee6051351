package tui

import "strings"

// Braille cell dot layout:
// 1 4
// 2 5
// 3 6
// 7 8
// Unicode offset 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille pixel grid. Each character cell holds 2x4 dots, so
// the drawable area is (Width*2) x (Height*4) subpixels.
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
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
	return c
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// Set lights the subpixel at (x, y). Out-of-range points are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// DrawLine draws a subpixel line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
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

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// PlotArea maps data coordinates onto a canvas. Y grows upward in data
// space and downward on screen; the projection flips it.
type PlotArea struct {
	canvas                 *Canvas
	MinX, MaxX, MinY, MaxY float64
}

func NewPlotArea(c *Canvas, minX, maxX, minY, maxY float64) *PlotArea {
	if maxX <= minX {
		maxX = minX + 1
	}
	if maxY <= minY {
		maxY = minY + 1
	}
	return &PlotArea{canvas: c, MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}
}

func (p *PlotArea) project(x, y float64) (int, int) {
	w := float64(p.canvas.Width*2 - 1)
	h := float64(p.canvas.Height*4 - 1)
	px := int((x - p.MinX) / (p.MaxX - p.MinX) * w)
	py := int(h - (y-p.MinY)/(p.MaxY-p.MinY)*h)
	return px, py
}

func (p *PlotArea) Point(x, y float64) {
	px, py := p.project(x, y)
	p.canvas.Set(px, py)
}

// Polyline connects consecutive samples. The two slices share an index
// space; the shorter one bounds the walk.
func (p *PlotArea) Polyline(xs, ys []float64) {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n == 0 {
		return
	}
	prevX, prevY := p.project(xs[0], ys[0])
	p.canvas.Set(prevX, prevY)
	for i := 1; i < n; i++ {
		px, py := p.project(xs[i], ys[i])
		p.canvas.DrawLine(prevX, prevY, px, py)
		prevX, prevY = px, py
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
