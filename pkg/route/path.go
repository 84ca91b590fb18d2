package route

import (
	"math"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
)

// SegmentKind distinguishes straight runs from rounded corners.
type SegmentKind int

const (
	Line SegmentKind = iota
	Cubic
)

// Segment is one piece of a path. C1 and C2 are only used by cubics.
type Segment struct {
	Kind     SegmentKind
	From, To geom.Point
	C1, C2   geom.Point
}

// Arrow is the filled head drawn at the end of a path.
type Arrow struct {
	Tip, Left, Right geom.Point
}

// Polygon returns the head's three corners.
func (a Arrow) Polygon() []geom.Point { return []geom.Point{a.Tip, a.Left, a.Right} }

// Path is a routed run from one point to another ending in an arrow.
type Path struct {
	Segments []Segment
	Head     Arrow
}

// Start returns the first point of the path.
func (p Path) Start() geom.Point {
	if len(p.Segments) == 0 {
		return geom.Point{}
	}
	return p.Segments[0].From
}

// End returns the last point of the path.
func (p Path) End() geom.Point {
	if len(p.Segments) == 0 {
		return geom.Point{}
	}
	return p.Segments[len(p.Segments)-1].To
}

// Points flattens the path, sampling each cubic with n steps.
func (p Path) Points(n int) []geom.Point {
	var pts []geom.Point
	for i, s := range p.Segments {
		if i == 0 {
			pts = append(pts, s.From)
		}
		if s.Kind == Cubic {
			pts = append(pts, geom.SampleCubic(s.From, s.C1, s.C2, s.To, n)[1:]...)
			continue
		}
		pts = append(pts, s.To)
	}
	return pts
}

// endDirection is the unit tangent at the end of the path.
func (p Path) endDirection() geom.Vec {
	for i := len(p.Segments) - 1; i >= 0; i-- {
		s := p.Segments[i]
		var d geom.Vec
		if s.Kind == Cubic {
			d = geom.CubicTangent(s.From, s.C1, s.C2, s.To, 1)
		} else {
			d = s.To.Sub(s.From)
		}
		if d.Len() > 1e-9 {
			return d.Norm()
		}
	}
	return geom.V(1, 0)
}

// Direct is a straight run from a to b.
func Direct(a, b geom.Point) Path {
	return Path{Segments: simplify([]Segment{{Kind: Line, From: a, To: b}})}
}

// Orthogonal is an L-shaped run from a to b. It goes horizontally first
// when the horizontal distance dominates, vertically first otherwise. The
// corner is rounded with a cubic of the given radius, shrunk to fit the
// shorter leg.
func Orthogonal(a, b geom.Point, radius float64) Path {
	dx, dy := b.X-a.X, b.Y-a.Y
	if math.Abs(dx) < 1e-9 || math.Abs(dy) < 1e-9 {
		return Direct(a, b)
	}

	corner := geom.Pt(a.X, b.Y)
	if math.Abs(dx) >= math.Abs(dy) {
		corner = geom.Pt(b.X, a.Y)
	}

	r := math.Min(radius, math.Min(math.Abs(dx), math.Abs(dy)))
	if r <= 0 {
		return Path{Segments: simplify([]Segment{
			{Kind: Line, From: a, To: corner},
			{Kind: Line, From: corner, To: b},
		})}
	}

	in := corner.Sub(a).Norm()
	out := b.Sub(corner).Norm()
	start, c1, c2, end := geom.RoundCorner(corner, in, out, r)
	return Path{Segments: simplify([]Segment{
		{Kind: Line, From: a, To: start},
		{Kind: Cubic, From: start, C1: c1, C2: c2, To: end},
		{Kind: Line, From: end, To: b},
	})}
}

// simplify drops zero-length straight runs.
func simplify(segs []Segment) []Segment {
	out := segs[:0]
	for _, s := range segs {
		if s.Kind == Line && s.From.Dist(s.To) < 1e-9 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// withArrow attaches an arrowhead whose tip is the end of the path.
func withArrow(p Path, length, width float64) Path {
	if len(p.Segments) == 0 {
		return p
	}
	dir := p.endDirection()
	tip := p.End()
	base := tip.Add(dir.Scale(-length))
	side := dir.Perp().Scale(width / 2)
	p.Head = Arrow{Tip: tip, Left: base.Add(side), Right: base.Add(side.Scale(-1))}
	return p
}
