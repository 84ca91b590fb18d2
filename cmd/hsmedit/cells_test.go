package main

import (
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/render"
)

var red = color.NRGBA{R: 255, A: 255}

func runeAt(c *cellCanvas, x, y int) rune { return c.at(x, y).r }

func TestFillRectCoversCellCentres(t *testing.T) {
	c := newCellCanvas(10, 5, geom.Pt(0, 0), nil)
	c.FillRect(geom.R(1, 1, 3, 2), 0, red)

	for y := 0; y < 5; y++ {
		for x := 0; x < 10; x++ {
			inside := x >= 1 && x <= 3 && y >= 1 && y <= 2
			if inside {
				assert.Equal(t, color.Color(red), c.at(x, y).bg, "cell %d,%d", x, y)
			} else {
				assert.Equal(t, color.Color(color.Black), c.at(x, y).bg, "cell %d,%d", x, y)
			}
		}
	}
}

func TestFillRectOrigin(t *testing.T) {
	c := newCellCanvas(10, 5, geom.Pt(10, 20), nil)
	c.FillRect(geom.R(10, 20, 1, 1), 0, red)
	assert.Equal(t, color.Color(red), c.at(0, 0).bg)
	assert.Equal(t, color.Color(color.Black), c.at(1, 0).bg)
}

func TestTranslucentFillKeepsText(t *testing.T) {
	c := newCellCanvas(10, 3, geom.Pt(0, 0), color.White)
	c.Text(geom.Pt(5, 1.5), "abc", color.Black)
	c.FillRect(geom.R(0, 0, 10, 3), 0, color.NRGBA{R: 255, A: 128})

	assert.Equal(t, 'b', runeAt(c, 5, 1))
	bg := color.NRGBAModel.Convert(c.at(5, 1).bg).(color.NRGBA)
	assert.Equal(t, uint8(255), bg.R)
	assert.InDelta(t, 127, int(bg.G), 1)

	// Opaque fills clear the cell
	c.FillRect(geom.R(0, 0, 10, 3), 0, red)
	assert.Equal(t, ' ', runeAt(c, 5, 1))
}

func TestStrokeRectGlyphs(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		style  render.StrokeStyle
		corner rune
		horiz  rune
		vert   rune
	}{
		{"square", 0, render.Solid, '┌', '─', '│'},
		{"rounded", 1, render.Solid, '╭', '─', '│'},
		{"dashed", 0, render.Dashed, '┌', '┄', '┆'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCellCanvas(6, 4, geom.Pt(0, 0), nil)
			c.StrokeRect(geom.R(0, 0, 4, 3), tt.radius, red, tt.style)
			assert.Equal(t, tt.corner, runeAt(c, 0, 0))
			assert.Equal(t, tt.horiz, runeAt(c, 1, 0))
			assert.Equal(t, tt.horiz, runeAt(c, 2, 2))
			assert.Equal(t, tt.vert, runeAt(c, 0, 1))
			assert.Equal(t, tt.vert, runeAt(c, 3, 1))
			assert.Equal(t, ' ', runeAt(c, 1, 1))
			assert.Equal(t, ' ', runeAt(c, 4, 0))
		})
	}

	c := newCellCanvas(6, 4, geom.Pt(0, 0), nil)
	c.StrokeRect(geom.R(0, 0, 4, 3), 0, red, render.Solid)
	assert.Equal(t, '┐', runeAt(c, 3, 0))
	assert.Equal(t, '└', runeAt(c, 0, 2))
	assert.Equal(t, '┘', runeAt(c, 3, 2))
}

func TestLine(t *testing.T) {
	c := newCellCanvas(8, 8, geom.Pt(0, 0), nil)
	c.Line(geom.Pt(0.5, 1.5), geom.Pt(4.5, 1.5), red, render.Solid)
	for x := 0; x <= 4; x++ {
		assert.Equal(t, '─', runeAt(c, x, 1))
	}
	assert.Equal(t, ' ', runeAt(c, 5, 1))

	c.Line(geom.Pt(6.5, 6.5), geom.Pt(6.5, 2.5), red, render.Dashed)
	for y := 2; y <= 6; y++ {
		assert.Equal(t, '┆', runeAt(c, 6, y))
	}

	c.Line(geom.Pt(0.5, 3.5), geom.Pt(3.5, 6.5), red, render.Solid)
	for i := 0; i <= 3; i++ {
		assert.Equal(t, '·', runeAt(c, i, 3+i))
	}
}

func TestPolygonArrow(t *testing.T) {
	c := newCellCanvas(8, 5, geom.Pt(0, 0), nil)
	c.Polygon([]geom.Point{geom.Pt(5.5, 2.5), geom.Pt(4.5, 2), geom.Pt(4.5, 3)}, red)
	assert.Equal(t, '▶', runeAt(c, 5, 2))
}

func TestArrowGlyph(t *testing.T) {
	tests := []struct {
		dir  geom.Vec
		want rune
	}{
		{geom.V(1, 0), '▶'},
		{geom.V(-1, 0), '◀'},
		{geom.V(0, 1), '▼'},
		{geom.V(0, -1), '▲'},
		{geom.V(1, 1), '◢'},
		{geom.V(-1, 1), '◣'},
		{geom.V(1, -1), '◥'},
		{geom.V(-1, -1), '◤'},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, arrowGlyph(tt.dir), "dir %v", tt.dir)
	}
}

func TestTextCentred(t *testing.T) {
	c := newCellCanvas(10, 3, geom.Pt(0, 0), nil)
	c.Text(geom.Pt(5, 1.5), "abc", red)
	assert.Equal(t, 'a', runeAt(c, 4, 1))
	assert.Equal(t, 'b', runeAt(c, 5, 1))
	assert.Equal(t, 'c', runeAt(c, 6, 1))

	// Clipped at the edge
	c.Text(geom.Pt(0, 0.5), "wxyz", red)
	assert.Equal(t, 'y', runeAt(c, 0, 0))
	assert.Equal(t, 'z', runeAt(c, 1, 0))
}

func TestMeasureText(t *testing.T) {
	c := newCellCanvas(1, 1, geom.Pt(0, 0), nil)
	assert.Equal(t, geom.Size{W: 4, H: 1}, c.MeasureText("état"))
}

func TestFlush(t *testing.T) {
	s := tcell.NewSimulationScreen("")
	require.NoError(t, s.Init())
	defer s.Fini()
	s.SetSize(12, 6)

	c := newCellCanvas(6, 4, geom.Pt(0, 0), color.White)
	c.StrokeRect(geom.R(0, 0, 4, 3), 0, red, render.Solid)
	c.flush(s, 2, 1)

	r, _, style, _ := s.GetContent(2, 1)
	assert.Equal(t, '┌', r)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(255, 255, 255), bg)

	r, _, _, _ = s.GetContent(5, 3)
	assert.Equal(t, '┘', r)
}
