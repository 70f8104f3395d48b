// Package render rasterizes a diagram scene onto a terminal character
// grid. The same compositor backs the interactive canvas widget and
// the plain-text exporter; only the transform and overlay options
// differ.
package render

import (
	"math"
	"strings"

	"github.com/travisdwitt/erdling/internal/canvas"
	"github.com/travisdwitt/erdling/internal/geometry"
)

// One terminal cell covers this many scene units at zoom 1. The 1:2
// ratio matches typical terminal glyph proportions, so squares on the
// canvas stay roughly square on screen.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

// Grid is a fixed-size character raster with a parallel foreground
// color layer. Out-of-range writes are silently clipped.
type Grid struct {
	W, H   int
	cells  [][]rune
	colors [][]string
}

// NewGrid allocates a grid filled with spaces.
func NewGrid(w, h int) *Grid {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	g := &Grid{W: w, H: h}
	g.cells = make([][]rune, h)
	g.colors = make([][]string, h)
	for y := range g.cells {
		g.cells[y] = make([]rune, w)
		g.colors[y] = make([]string, w)
		for x := range g.cells[y] {
			g.cells[y][x] = ' '
		}
	}
	return g
}

// Set writes one cell. Color is a hex foreground, empty for the
// terminal default.
func (g *Grid) Set(x, y int, ch rune, color string) {
	if x < 0 || x >= g.W || y < 0 || y >= g.H {
		return
	}
	g.cells[y][x] = ch
	g.colors[y][x] = color
}

// Rune returns the character at a cell, or space when out of range.
func (g *Grid) Rune(x, y int) rune {
	if x < 0 || x >= g.W || y < 0 || y >= g.H {
		return ' '
	}
	return g.cells[y][x]
}

// Color returns the hex foreground at a cell, empty for default.
func (g *Grid) Color(x, y int) string {
	if x < 0 || x >= g.W || y < 0 || y >= g.H {
		return ""
	}
	return g.colors[y][x]
}

// Line returns one row as a string.
func (g *Grid) Line(y int) string {
	if y < 0 || y >= g.H {
		return strings.Repeat(" ", g.W)
	}
	return string(g.cells[y])
}

// Lines returns every row.
func (g *Grid) Lines() []string {
	lines := make([]string, g.H)
	for y := 0; y < g.H; y++ {
		lines[y] = g.Line(y)
	}
	return lines
}

// Transform maps scene coordinates to grid cells through the view's
// zoom and scroll.
type Transform struct {
	Zoom   float64
	Scroll geometry.Point
}

// Cell returns the grid cell containing a scene point.
func (t Transform) Cell(p geometry.Point) (int, int) {
	x := (p.X*t.Zoom - t.Scroll.X) / CellWidth
	y := (p.Y*t.Zoom - t.Scroll.Y) / CellHeight
	return int(math.Floor(x)), int(math.Floor(y))
}

// ScenePoint returns the scene position at the center of a grid cell,
// the inverse used to route pointer input.
func (t Transform) ScenePoint(cx, cy int) geometry.Point {
	vx := (float64(cx) + 0.5) * CellWidth
	vy := (float64(cy) + 0.5) * CellHeight
	return geometry.Point{
		X: (vx + t.Scroll.X) / t.Zoom,
		Y: (vy + t.Scroll.Y) / t.Zoom,
	}
}

// Options selects the interactive overlays. The text exporter leaves
// everything off.
type Options struct {
	// ShowSelection draws selected shapes with '#' borders.
	ShowSelection bool
	// Band is an in-progress rubber-band rect in scene coordinates.
	Band *geometry.Rect
}

// DrawScene composites the scene onto the grid: connections first so
// shapes draw over them, shapes in placement order so later placements
// end up on top, then the rubber band over everything.
func DrawScene(g *Grid, scene *canvas.Scene, t Transform, opts Options) {
	theme := scene.Theme()

	for _, conn := range scene.Connections() {
		drawConnection(g, t, conn, theme.Connection())
	}
	for _, sh := range scene.Shapes() {
		drawShape(g, t, sh, opts.ShowSelection)
	}
	if opts.Band != nil {
		drawBand(g, t, *opts.Band, theme.SelectedBorder())
	}
}

func drawShape(g *Grid, t Transform, sh *canvas.Shape, showSelection bool) {
	x0, y0 := t.Cell(geometry.Point{X: sh.X, Y: sh.Y})
	x1, y1 := t.Cell(geometry.Point{X: sh.X + sh.W, Y: sh.Y + sh.H})
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	corner, horizontal, vertical := '+', '-', '|'
	if showSelection && sh.Selected {
		corner, horizontal, vertical = '#', '#', '#'
	}
	borderColor := sh.BorderColor

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			switch {
			case (y == y0 || y == y1) && (x == x0 || x == x1):
				g.Set(x, y, corner, borderColor)
			case y == y0 || y == y1:
				g.Set(x, y, horizontal, borderColor)
			case x == x0 || x == x1:
				g.Set(x, y, vertical, borderColor)
			}
		}
	}

	// Interior text: title, separator, then column rows, clipped to
	// whatever fits. Zooming in makes more rows visible.
	innerW := x1 - x0 - 1
	if innerW < 1 {
		return
	}
	row := y0 + 1
	if row >= y1 {
		return
	}
	writeClipped(g, x0+1, row, innerW, sh.Title, sh.TextColor)
	row++
	if len(sh.Rows) > 0 && row < y1 {
		for x := x0 + 1; x < x1; x++ {
			g.Set(x, row, '-', sh.SeparatorColor)
		}
		row++
	}
	for _, text := range sh.Rows {
		if row >= y1 {
			break
		}
		writeClipped(g, x0+1, row, innerW, text, sh.TextColor)
		row++
	}
}

// writeClipped draws text starting at a cell, truncated to width.
func writeClipped(g *Grid, x, y, width int, text string, color string) {
	if y < 0 || y >= g.H || width < 1 {
		return
	}
	runes := []rune(text)
	if len(runes) > width {
		runes = runes[:width]
	}
	for i, r := range runes {
		g.Set(x+i, y, r, color)
	}
}

// drawConnection routes an L-shaped line between the facing edge
// midpoints: horizontal run first, one corner, then vertical.
func drawConnection(g *Grid, t Transform, conn *canvas.Connection, color string) {
	srcPt, dstPt := conn.Endpoints()
	x0, y0 := t.Cell(srcPt)
	x1, y1 := t.Cell(dstPt)

	if y0 == y1 {
		hline(g, x0, x1, y0, color)
		return
	}
	if x0 == x1 {
		vline(g, y0, y1, x0, color)
		return
	}

	hline(g, x0, x1, y0, color)
	vline(g, y0, y1, x1, color)
	g.Set(x1, y0, cornerRune(x0, y0, x1, y1), color)
}

func hline(g *Grid, x0, x1, y int, color string) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		g.Set(x, y, '─', color)
	}
}

func vline(g *Grid, y0, y1, x int, color string) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		g.Set(x, y, '│', color)
	}
}

// cornerRune picks the elbow glyph for a horizontal-then-vertical turn
// at (x1, y0).
func cornerRune(x0, y0, x1, y1 int) rune {
	if x1 > x0 {
		if y1 > y0 {
			return '┐'
		}
		return '┘'
	}
	if y1 > y0 {
		return '┌'
	}
	return '└'
}

// drawBand sprinkles the rubber-band outline over empty cells only, so
// shapes stay readable underneath.
func drawBand(g *Grid, t Transform, band geometry.Rect, color string) {
	x0, y0 := t.Cell(geometry.Point{X: band.X, Y: band.Y})
	x1, y1 := t.Cell(geometry.Point{X: band.Right(), Y: band.Bottom()})

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if y != y0 && y != y1 && x != x0 && x != x1 {
				continue
			}
			if g.Rune(x, y) == ' ' {
				g.Set(x, y, '.', color)
			}
		}
	}
}
