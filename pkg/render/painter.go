// Package render draws diagram frames. The layout core only produces
// geometry; a Painter turns that geometry into pixels, markup or cells.
package render

import (
	"image/color"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
)

// StrokeStyle selects solid or dashed outlines.
type StrokeStyle int

const (
	Solid StrokeStyle = iota
	Dashed
)

// Painter is the immediate-mode drawing surface a frame is painted onto.
// All coordinates are diagram units.
type Painter interface {
	geom.Measurer

	FillRect(r geom.Rect, radius float64, c color.Color)
	StrokeRect(r geom.Rect, radius float64, c color.Color, style StrokeStyle)
	Line(a, b geom.Point, c color.Color, style StrokeStyle)
	Cubic(p0, p1, p2, p3 geom.Point, c color.Color)
	Polygon(pts []geom.Point, c color.Color)
	// Text draws s centred on center.
	Text(center geom.Point, s string, c color.Color)
}

// Dash pattern in diagram units.
const (
	DashOn  = 6.0
	DashOff = 4.0
)

// Outline returns the closed outline of r as a polyline, with each corner
// replaced by a sampled quarter curve when radius is positive. The first
// point is repeated at the end.
func Outline(r geom.Rect, radius float64) []geom.Point {
	radius = clampRadius(r, radius)
	if radius <= 0 {
		return []geom.Point{
			r.Min(), geom.Pt(r.Right(), r.Y), r.Max(), geom.Pt(r.X, r.Bottom()), r.Min(),
		}
	}

	corners := []struct {
		at      geom.Point
		in, out geom.Vec
	}{
		{geom.Pt(r.Right(), r.Y), geom.V(1, 0), geom.V(0, 1)},
		{r.Max(), geom.V(0, 1), geom.V(-1, 0)},
		{geom.Pt(r.X, r.Bottom()), geom.V(-1, 0), geom.V(0, -1)},
		{r.Min(), geom.V(0, -1), geom.V(1, 0)},
	}
	pts := []geom.Point{geom.Pt(r.X+radius, r.Y)}
	for _, c := range corners {
		s, c1, c2, e := geom.RoundCorner(c.at, c.in, c.out, radius)
		pts = append(pts, geom.SampleCubic(s, c1, c2, e, 6)...)
	}
	return append(pts, pts[0])
}

func clampRadius(r geom.Rect, radius float64) float64 {
	if m := r.W / 2; radius > m {
		radius = m
	}
	if m := r.H / 2; radius > m {
		radius = m
	}
	return radius
}

// Dashes splits a polyline into the visible runs of an on/off dash
// pattern. The pattern continues across vertices.
func Dashes(pts []geom.Point, on, off float64) [][2]geom.Point {
	if on <= 0 || len(pts) < 2 {
		return nil
	}
	var out [][2]geom.Point
	drawing := true
	left := on
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		seg := a.Dist(b)
		if seg == 0 {
			continue
		}
		dir := b.Sub(a).Scale(1 / seg)
		pos := 0.0
		for pos < seg {
			step := left
			if pos+step > seg {
				step = seg - pos
			}
			if drawing {
				out = append(out, [2]geom.Point{a.Add(dir.Scale(pos)), a.Add(dir.Scale(pos + step))})
			}
			pos += step
			left -= step
			if left <= 0 {
				drawing = !drawing
				if drawing {
					left = on
				} else {
					left = off
				}
			}
		}
	}
	return out
}

// StrokePolyline draws consecutive points with Line, honouring style.
func StrokePolyline(p Painter, pts []geom.Point, c color.Color, style StrokeStyle) {
	if style == Dashed {
		for _, d := range Dashes(pts, DashOn, DashOff) {
			p.Line(d[0], d[1], c, Solid)
		}
		return
	}
	for i := 1; i < len(pts); i++ {
		p.Line(pts[i-1], pts[i], c, Solid)
	}
}
