package main

import (
	"image/color"
	"math"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/render"
)

// cell is one character cell of the canvas.
type cell struct {
	r  rune
	fg color.Color
	bg color.Color
}

// cellCanvas is a render.Painter over a grid of character cells. One
// diagram unit is one cell; origin is the diagram point shown at cell
// (0, 0).
type cellCanvas struct {
	w, h   int
	origin geom.Point
	bg     color.Color
	cells  []cell
}

var _ render.Painter = (*cellCanvas)(nil)

func newCellCanvas(w, h int, origin geom.Point, bg color.Color) *cellCanvas {
	if bg == nil {
		bg = color.Black
	}
	c := &cellCanvas{w: w, h: h, origin: origin, bg: bg, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i] = cell{r: ' ', bg: bg}
	}
	return c
}

func (c *cellCanvas) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return nil
	}
	return &c.cells[y*c.w+x]
}

// toCell returns the cell containing p.
func (c *cellCanvas) toCell(p geom.Point) (int, int) {
	return int(math.Floor(p.X - c.origin.X)), int(math.Floor(p.Y - c.origin.Y))
}

// span returns the cells whose centres lie inside r.
func (c *cellCanvas) span(r geom.Rect) (x0, y0, x1, y1 int) {
	x0 = int(math.Ceil(r.X - c.origin.X - 0.5))
	y0 = int(math.Ceil(r.Y - c.origin.Y - 0.5))
	x1 = int(math.Ceil(r.Right()-c.origin.X-0.5)) - 1
	y1 = int(math.Ceil(r.Bottom()-c.origin.Y-0.5)) - 1
	return
}

func (c *cellCanvas) set(x, y int, r rune, fg color.Color) {
	if cl := c.at(x, y); cl != nil {
		cl.r = r
		cl.fg = fg
	}
}

func (c *cellCanvas) MeasureText(s string) geom.Size {
	return geom.Size{W: float64(utf8.RuneCountInString(s)), H: 1}
}

// FillRect paints the background of the covered cells. Opaque fills clear
// the cells; translucent ones tint them and keep their text.
func (c *cellCanvas) FillRect(r geom.Rect, _ float64, col color.Color) {
	n := color.NRGBAModel.Convert(col).(color.NRGBA)
	if n.A == 0 {
		return
	}
	x0, y0, x1, y1 := c.span(r)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			cl := c.at(x, y)
			if cl == nil {
				continue
			}
			if n.A == 255 {
				*cl = cell{r: ' ', bg: col}
				continue
			}
			cl.bg = blend(cl.bg, n)
		}
	}
}

func blend(under color.Color, over color.NRGBA) color.Color {
	u := color.NRGBAModel.Convert(under).(color.NRGBA)
	a := float64(over.A) / 255
	mix := func(b, f uint8) uint8 { return uint8(math.Round(float64(b)*(1-a) + float64(f)*a)) }
	return color.NRGBA{R: mix(u.R, over.R), G: mix(u.G, over.G), B: mix(u.B, over.B), A: 255}
}

// boxGlyphs are the corner and edge runes of a rectangle outline:
// top-left, top-right, bottom-left, bottom-right, horizontal, vertical.
type boxGlyphs [6]rune

var (
	boxSquare  = boxGlyphs{'┌', '┐', '└', '┘', '─', '│'}
	boxRounded = boxGlyphs{'╭', '╮', '╰', '╯', '─', '│'}
	boxDashed  = boxGlyphs{'┌', '┐', '└', '┘', '┄', '┆'}
)

func (c *cellCanvas) StrokeRect(r geom.Rect, radius float64, col color.Color, style render.StrokeStyle) {
	g := boxSquare
	switch {
	case style == render.Dashed:
		g = boxDashed
	case radius > 0:
		g = boxRounded
	}
	x0, y0, x1, y1 := c.span(r)
	if x1 < x0 || y1 < y0 {
		return
	}
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, g[4], col)
		c.set(x, y1, g[4], col)
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, g[5], col)
		c.set(x1, y, g[5], col)
	}
	c.set(x0, y0, g[0], col)
	c.set(x1, y0, g[1], col)
	c.set(x0, y1, g[2], col)
	c.set(x1, y1, g[3], col)
}

func (c *cellCanvas) Line(a, b geom.Point, col color.Color, style render.StrokeStyle) {
	x0, y0 := c.toCell(a)
	x1, y1 := c.toCell(b)
	dashed := style == render.Dashed

	switch {
	case y0 == y1:
		ch := '─'
		if dashed {
			ch = '┄'
		}
		for x := min(x0, x1); x <= max(x0, x1); x++ {
			c.set(x, y0, ch, col)
		}
	case x0 == x1:
		ch := '│'
		if dashed {
			ch = '┆'
		}
		for y := min(y0, y1); y <= max(y0, y1); y++ {
			c.set(x0, y, ch, col)
		}
	default:
		c.bresenham(x0, y0, x1, y1, func(i, x, y int) {
			if !dashed || i%2 == 0 {
				c.set(x, y, '·', col)
			}
		})
	}
}

func (c *cellCanvas) bresenham(x0, y0, x1, y1 int, plot func(i, x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for i := 0; ; i++ {
		plot(i, x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *cellCanvas) Cubic(p0, p1, p2, p3 geom.Point, col color.Color) {
	pts := geom.SampleCubic(p0, p1, p2, p3, 8)
	for i := 1; i < len(pts); i++ {
		x0, y0 := c.toCell(pts[i-1])
		x1, y1 := c.toCell(pts[i])
		c.bresenham(x0, y0, x1, y1, func(_, x, y int) { c.set(x, y, '·', col) })
	}
}

// Polygon draws an arrowhead glyph just behind the first point, pointing
// away from the centroid of the others. Every polygon a diagram paints is
// a marker with its tip first.
func (c *cellCanvas) Polygon(pts []geom.Point, col color.Color) {
	if len(pts) == 0 {
		return
	}
	tip := pts[0]
	var cx, cy float64
	for _, p := range pts[1:] {
		cx += p.X
		cy += p.Y
	}
	dir := geom.V(1, 0)
	if n := len(pts) - 1; n > 0 {
		dir = tip.Sub(geom.Pt(cx/float64(n), cy/float64(n)))
	}
	if dir.Len() == 0 {
		dir = geom.V(1, 0)
	}
	x, y := c.toCell(tip.Add(dir.Norm().Scale(-0.5)))
	c.set(x, y, arrowGlyph(dir), col)
}

func arrowGlyph(d geom.Vec) rune {
	ax, ay := math.Abs(d.X), math.Abs(d.Y)
	switch {
	case ax > 2*ay && d.X > 0:
		return '▶'
	case ax > 2*ay:
		return '◀'
	case ay > 2*ax && d.Y > 0:
		return '▼'
	case ay > 2*ax:
		return '▲'
	case d.X > 0 && d.Y > 0:
		return '◢'
	case d.X < 0 && d.Y > 0:
		return '◣'
	case d.X > 0:
		return '◥'
	default:
		return '◤'
	}
}

func (c *cellCanvas) Text(center geom.Point, s string, col color.Color) {
	n := utf8.RuneCountInString(s)
	x := int(math.Floor(center.X - c.origin.X - float64(n)/2 + 0.5))
	y := int(math.Floor(center.Y - c.origin.Y))
	for _, r := range s {
		c.set(x, y, r, col)
		x++
	}
}

// flush copies the canvas to the screen with its top-left at (sx, sy).
func (c *cellCanvas) flush(s tcell.Screen, sx, sy int) {
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			cl := c.cells[y*c.w+x]
			style := tcell.StyleDefault.Background(tcell.FromImageColor(cl.bg))
			if cl.fg != nil {
				style = style.Foreground(tcell.FromImageColor(cl.fg))
			}
			s.SetContent(sx+x, sy+y, cl.r, nil, style)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
