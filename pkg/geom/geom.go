// Package geom provides the 2D primitives shared by the layout, routing
// and rendering packages: points, vectors, sizes and axis-aligned rectangles.
//
// Rectangles are stored by their top-left corner and full extent. Screen
// coordinates are assumed: X grows right, Y grows down.
package geom

import "math"

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Vec is a displacement between two points.
type Vec struct {
	X, Y float64
}

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{x, y} }

// V is shorthand for Vec{x, y}.
func V(x, y float64) Vec { return Vec{x, y} }

// Add returns p translated by v.
func (p Point) Add(v Vec) Point { return Point{p.X + v.X, p.Y + v.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Vec { return Vec{p.X - q.X, p.Y - q.Y} }

// Mid returns the midpoint between p and q.
func (p Point) Mid(q Point) Point { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(q.X-p.X, q.Y-p.Y) }

// Add returns the sum of two vectors.
func (v Vec) Add(w Vec) Vec { return Vec{v.X + w.X, v.Y + w.Y} }

// Scale returns v multiplied by s.
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Len returns the length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Norm returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec) Norm() Vec {
	l := v.Len()
	if l < 1e-9 {
		return v
	}
	return Vec{v.X / l, v.Y / l}
}

// Perp returns v rotated a quarter turn.
func (v Vec) Perp() Vec { return Vec{-v.Y, v.X} }

// Max returns the component-wise maximum of two sizes.
func (s Size) Max(o Size) Size { return Size{math.Max(s.W, o.W), math.Max(s.H, o.H)} }

// Grow returns s enlarged by d on each axis.
func (s Size) Grow(d Size) Size { return Size{s.W + d.W, s.H + d.H} }

// Rect represents an axis-aligned rectangle.
type Rect struct {
	X, Y float64 // Top-left
	W, H float64 // Full width and height
}

// R is shorthand for Rect{x, y, w, h}.
func R(x, y, w, h float64) Rect { return Rect{x, y, w, h} }

// RectAt builds a rectangle from a top-left corner and a size.
func RectAt(p Point, s Size) Rect { return Rect{p.X, p.Y, s.W, s.H} }

// RectAround builds a rectangle of the given size centred on c.
func RectAround(c Point, s Size) Rect { return Rect{c.X - s.W/2, c.Y - s.H/2, s.W, s.H} }

// Min returns the top-left corner.
func (r Rect) Min() Point { return Point{r.X, r.Y} }

// Max returns the bottom-right corner.
func (r Rect) Max() Point { return Point{r.X + r.W, r.Y + r.H} }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Size returns the rectangle's extent.
func (r Rect) Size() Size { return Size{r.W, r.H} }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Empty reports whether the rectangle has zero or negative area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Translate returns r moved by v.
func (r Rect) Translate(v Vec) Rect { return Rect{r.X + v.X, r.Y + v.Y, r.W, r.H} }

// Inset shrinks r by d on every side. The result may be empty.
func (r Rect) Inset(d float64) Rect { return Rect{r.X + d, r.Y + d, r.W - 2*d, r.H - 2*d} }

// Contains checks if a point is inside the rectangle (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W &&
		p.Y >= r.Y && p.Y <= r.Y+r.H
}

// ContainsRect reports whether o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.Right(), o.Right())
	maxY := math.Max(r.Bottom(), o.Bottom())
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// Overlap returns the overlap area between two rectangles.
// Returns 0 if they don't overlap.
func Overlap(a, b Rect) float64 {
	overlapX := math.Min(a.Right(), b.Right()) - math.Max(a.X, b.X)
	overlapY := math.Min(a.Bottom(), b.Bottom()) - math.Max(a.Y, b.Y)
	if overlapX <= 0 || overlapY <= 0 {
		return 0
	}
	return overlapX * overlapY
}

// ClosestBoundaryPoint returns the point on the rectangle's outline
// nearest to p. Points inside the rectangle are pushed to the nearest edge.
func (r Rect) ClosestBoundaryPoint(p Point) Point {
	x := clamp(p.X, r.X, r.Right())
	y := clamp(p.Y, r.Y, r.Bottom())
	if !r.Contains(p) {
		return Point{x, y}
	}

	// Inside: snap to whichever edge is closest
	dl := p.X - r.X
	dr := r.Right() - p.X
	dt := p.Y - r.Y
	db := r.Bottom() - p.Y
	switch math.Min(math.Min(dl, dr), math.Min(dt, db)) {
	case dl:
		return Point{r.X, y}
	case dr:
		return Point{r.Right(), y}
	case dt:
		return Point{x, r.Y}
	default:
		return Point{x, r.Bottom()}
	}
}

// ClampPoint limits p to lie within [lo, hi] on both axes.
// ok is false when the bounds are inverted on either axis, in which case
// p is returned untouched.
func ClampPoint(p, lo, hi Point) (Point, bool) {
	if lo.X > hi.X || lo.Y > hi.Y {
		return p, false
	}
	return Point{clamp(p.X, lo.X, hi.X), clamp(p.Y, lo.Y, hi.Y)}, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Measurer reports the extent of rendered text. Hosts supply it from their
// text layout engine; the layout passes use it to size leaf nodes and labels.
type Measurer interface {
	MeasureText(s string) Size
}

// MeasureFunc adapts a function to the Measurer interface.
type MeasureFunc func(s string) Size

// MeasureText calls f(s).
func (f MeasureFunc) MeasureText(s string) Size { return f(s) }

// FixedMeasurer approximates text as a run of equal-width glyphs.
type FixedMeasurer struct {
	CharWidth  float64
	LineHeight float64
}

// MeasureText returns rune count × CharWidth by LineHeight.
func (m FixedMeasurer) MeasureText(s string) Size {
	n := 0
	for range s {
		n++
	}
	return Size{float64(n) * m.CharWidth, m.LineHeight}
}
