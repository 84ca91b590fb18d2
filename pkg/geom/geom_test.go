package geom

import (
	"math"
	"testing"
)

func TestRectContains(t *testing.T) {
	r := R(10, 20, 90, 60)

	if !r.Contains(Pt(50, 50)) {
		t.Error("Point (50,50) should be inside rect")
	}
	if !r.Contains(Pt(10, 20)) {
		t.Error("Top-left corner should be inside rect (edges inclusive)")
	}
	if r.Contains(Pt(5, 50)) {
		t.Error("Point (5,50) should be outside rect (left)")
	}
	if r.Contains(Pt(50, 81)) {
		t.Error("Point (50,81) should be outside rect (below)")
	}

	center := r.Center()
	if center.X != 55 || center.Y != 50 {
		t.Errorf("Expected center (55,50), got (%.1f,%.1f)", center.X, center.Y)
	}
}

func TestRectContainsRect(t *testing.T) {
	outer := R(0, 0, 100, 100)

	tests := []struct {
		name     string
		inner    Rect
		expected bool
	}{
		{"fully inside", R(10, 10, 20, 20), true},
		{"identical", R(0, 0, 100, 100), true},
		{"overflows right", R(90, 10, 20, 20), false},
		{"overflows top", R(10, -1, 20, 20), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := outer.ContainsRect(tc.inner); got != tc.expected {
				t.Errorf("ContainsRect(%v) = %v, expected %v", tc.inner, got, tc.expected)
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	a := R(0, 0, 10, 10)
	b := R(20, 5, 10, 10)

	u := a.Union(b)
	if u != R(0, 0, 30, 15) {
		t.Errorf("Expected union (0,0,30,15), got %v", u)
	}

	if got := (Rect{}).Union(b); got != b {
		t.Errorf("Union with empty rect should return the other, got %v", got)
	}
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected float64
	}{
		{
			name:     "No overlap - horizontally separated",
			a:        R(0, 0, 10, 10),
			b:        R(20, 0, 10, 10),
			expected: 0,
		},
		{
			name:     "Touching edges",
			a:        R(0, 0, 10, 10),
			b:        R(10, 0, 10, 10),
			expected: 0,
		},
		{
			name:     "Full overlap (same rect)",
			a:        R(0, 0, 10, 10),
			b:        R(0, 0, 10, 10),
			expected: 100,
		},
		{
			name:     "Partial overlap",
			a:        R(0, 0, 10, 10),
			b:        R(5, 5, 10, 10),
			expected: 25,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Overlap(tc.a, tc.b)
			if math.Abs(result-tc.expected) > 0.01 {
				t.Errorf("Expected overlap %.2f, got %.2f", tc.expected, result)
			}
		})
	}
}

func TestClosestBoundaryPoint(t *testing.T) {
	r := R(0, 0, 100, 50)

	tests := []struct {
		name     string
		p        Point
		expected Point
	}{
		{"right of rect", Pt(150, 25), Pt(100, 25)},
		{"above rect", Pt(40, -30), Pt(40, 0)},
		{"beyond corner", Pt(-10, 80), Pt(0, 50)},
		{"inside near left", Pt(5, 25), Pt(0, 25)},
		{"inside near bottom", Pt(50, 48), Pt(50, 50)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := r.ClosestBoundaryPoint(tc.p)
			if got != tc.expected {
				t.Errorf("ClosestBoundaryPoint(%v) = %v, expected %v", tc.p, got, tc.expected)
			}
		})
	}
}

func TestClampPoint(t *testing.T) {
	p, ok := ClampPoint(Pt(-5, 200), Pt(0, 0), Pt(100, 100))
	if !ok {
		t.Fatal("Expected clamp to succeed")
	}
	if p != Pt(0, 100) {
		t.Errorf("Expected (0,100), got %v", p)
	}

	// Inverted bounds leave the point alone
	p, ok = ClampPoint(Pt(-5, 200), Pt(50, 0), Pt(10, 100))
	if ok {
		t.Error("Expected inverted bounds to be reported")
	}
	if p != Pt(-5, 200) {
		t.Errorf("Point should be untouched on inverted bounds, got %v", p)
	}
}

func TestVecNorm(t *testing.T) {
	v := V(3, 4).Norm()
	if math.Abs(v.Len()-1) > 1e-9 {
		t.Errorf("Expected unit length, got %.6f", v.Len())
	}
	if z := (Vec{}).Norm(); z != (Vec{}) {
		t.Errorf("Zero vector should stay zero, got %v", z)
	}
}

func TestFixedMeasurer(t *testing.T) {
	m := FixedMeasurer{CharWidth: 7, LineHeight: 14}
	s := m.MeasureText("héllo")
	if s.W != 35 || s.H != 14 {
		t.Errorf("Expected 35x14 (runes, not bytes), got %.0fx%.0f", s.W, s.H)
	}
}
