package geom

import (
	"math"
	"testing"
)

func TestQuadBezierEndpoints(t *testing.T) {
	p0, p1, p2 := Pt(0, 0), Pt(50, 100), Pt(100, 0)

	if got := QuadBezier(p0, p1, p2, 0); got != p0 {
		t.Errorf("t=0 should give start, got (%.1f, %.1f)", got.X, got.Y)
	}
	if got := QuadBezier(p0, p1, p2, 1); got != p2 {
		t.Errorf("t=1 should give end, got (%.1f, %.1f)", got.X, got.Y)
	}

	// Symmetric curve peaks halfway to the control point
	mid := QuadBezier(p0, p1, p2, 0.5)
	if mid.X != 50 || mid.Y != 50 {
		t.Errorf("Expected (50,50) at t=0.5, got (%.1f, %.1f)", mid.X, mid.Y)
	}
}

func TestCubicBezierEndpoints(t *testing.T) {
	p0, p1, p2, p3 := Pt(0, 0), Pt(0, 50), Pt(50, 100), Pt(100, 100)

	if got := CubicBezier(p0, p1, p2, p3, 0); got != p0 {
		t.Errorf("t=0 should give start, got %v", got)
	}
	if got := CubicBezier(p0, p1, p2, p3, 1); got != p3 {
		t.Errorf("t=1 should give end, got %v", got)
	}
}

func TestCubicTangent(t *testing.T) {
	// Straight line: tangent is constant and points along the line
	p0, p1, p2, p3 := Pt(0, 0), Pt(10, 0), Pt(20, 0), Pt(30, 0)

	for _, tt := range []float64{0, 0.25, 0.5, 1} {
		tan := CubicTangent(p0, p1, p2, p3, tt)
		if math.Abs(tan.Y) > 1e-9 || tan.X <= 0 {
			t.Errorf("t=%.2f: expected tangent along +X, got %v", tt, tan)
		}
	}
}

func TestSampleCubic(t *testing.T) {
	pts := SampleCubic(Pt(0, 0), Pt(0, 10), Pt(10, 10), Pt(10, 0), 8)
	if len(pts) != 9 {
		t.Fatalf("Expected 9 samples, got %d", len(pts))
	}
	if pts[0] != Pt(0, 0) || pts[8] != Pt(10, 0) {
		t.Errorf("Samples should include both ends, got %v .. %v", pts[0], pts[8])
	}
}

func TestRoundCornerApproximatesQuarterCircle(t *testing.T) {
	// Corner at origin: run heading +X turns to +Y
	radius := 10.0
	start, c1, c2, end := RoundCorner(Pt(0, 0), V(1, 0), V(0, 1), radius)

	if start != Pt(-10, 0) {
		t.Errorf("Start should be radius before the corner, got %v", start)
	}
	if end != Pt(0, 10) {
		t.Errorf("End should be radius after the corner, got %v", end)
	}
	if math.Abs(c1.X-(-10+radius*Kappa)) > 1e-9 || c1.Y != 0 {
		t.Errorf("First control point should lie on the incoming tangent, got %v", c1)
	}
	if c2.X != 0 || math.Abs(c2.Y-(10-radius*Kappa)) > 1e-9 {
		t.Errorf("Second control point should lie on the outgoing tangent, got %v", c2)
	}

	// Control points sit radius*(1-Kappa) from the corner itself
	for _, cp := range []Point{c1, c2} {
		if math.Abs(cp.Dist(Pt(0, 0))-radius*(1-Kappa)) > 1e-9 {
			t.Errorf("Control point %v should be %.3f from the corner", cp, radius*(1-Kappa))
		}
	}

	// The arc is centred at (-10, 10); the midpoint should be ~radius away
	mid := CubicBezier(start, c1, c2, end, 0.5)
	d := mid.Dist(Pt(-10, 10))
	if math.Abs(d-radius) > 0.05 {
		t.Errorf("Midpoint should be ~%.1f from arc centre, got %.3f", radius, d)
	}
}
