// Bézier evaluation for edge rendering.
// Routed edges are made of straight runs joined by single cubic corners.

package geom

// Kappa is the control-point distance, as a fraction of the radius, that
// makes a cubic Bézier approximate a quarter circle.
const Kappa = 0.552

// QuadBezier evaluates a quadratic Bézier curve at t ∈ [0,1].
func QuadBezier(p0, p1, p2 Point, t float64) Point {
	mt := 1 - t
	return Point{
		X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
		Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
	}
}

// CubicBezier evaluates a cubic Bézier curve at t ∈ [0,1].
func CubicBezier(p0, p1, p2, p3 Point, t float64) Point {
	mt := 1 - t
	mt2 := mt * mt
	mt3 := mt2 * mt
	t2 := t * t
	t3 := t2 * t

	return Point{
		X: mt3*p0.X + 3*mt2*t*p1.X + 3*mt*t2*p2.X + t3*p3.X,
		Y: mt3*p0.Y + 3*mt2*t*p1.Y + 3*mt*t2*p2.Y + t3*p3.Y,
	}
}

// CubicTangent computes the derivative of a cubic Bézier at t.
func CubicTangent(p0, p1, p2, p3 Point, t float64) Vec {
	mt := 1 - t
	mt2 := mt * mt
	t2 := t * t

	return Vec{
		X: 3*mt2*(p1.X-p0.X) + 6*mt*t*(p2.X-p1.X) + 3*t2*(p3.X-p2.X),
		Y: 3*mt2*(p1.Y-p0.Y) + 6*mt*t*(p2.Y-p1.Y) + 3*t2*(p3.Y-p2.Y),
	}
}

// SampleCubic flattens a cubic Bézier into n+1 points including both ends.
func SampleCubic(p0, p1, p2, p3 Point, n int) []Point {
	if n < 1 {
		n = 1
	}
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, CubicBezier(p0, p1, p2, p3, float64(i)/float64(n)))
	}
	return pts
}

// RoundCorner returns the cubic that replaces the sharp corner at c between
// an incoming run ending at c (direction in) and an outgoing run leaving c
// (direction out). The curve starts radius before c and ends radius after it;
// each control point sits radius·Kappa along its run's tangent from that end.
// in and out must be unit vectors.
func RoundCorner(c Point, in, out Vec, radius float64) (start, c1, c2, end Point) {
	start = c.Add(in.Scale(-radius))
	end = c.Add(out.Scale(radius))
	c1 = start.Add(in.Scale(radius * Kappa))
	c2 = end.Add(out.Scale(-radius * Kappa))
	return start, c1, c2, end
}
