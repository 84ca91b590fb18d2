package layout

import (
	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// Geometry is the absolute-coordinate view of a tree for one frame.
// It is a pass output: later passes read it instead of re-walking parents.
type Geometry struct {
	cfg   Config
	rects map[tree.NodeID]geom.Rect
}

// Compute resolves every node's absolute rectangle.
func Compute(t *tree.Tree, cfg Config) *Geometry {
	g := &Geometry{cfg: cfg, rects: make(map[tree.NodeID]geom.Rect, t.Len())}
	t.Walk(func(id tree.NodeID, _ int) bool {
		n, _ := t.Node(id)
		origin := g.Origin(n.Parent())
		g.rects[id] = geom.RectAt(origin.Add(geom.Vec(n.Position)), n.Size)
		return true
	})
	return g
}

// Rect returns the absolute rectangle of id.
func (g *Geometry) Rect(id tree.NodeID) (geom.Rect, bool) {
	r, ok := g.rects[id]
	return r, ok
}

// Content returns the absolute content rectangle of id.
func (g *Geometry) Content(id tree.NodeID) (geom.Rect, bool) {
	r, ok := g.rects[id]
	if !ok {
		return geom.Rect{}, false
	}
	return g.cfg.ContentRect(r), true
}

// Origin returns the absolute point that children of parent are positioned
// from. The canvas origin is used for None and for unknown ids.
func (g *Geometry) Origin(parent tree.NodeID) geom.Point {
	r, ok := g.rects[parent]
	if !ok {
		return geom.Point{}
	}
	return geom.Pt(r.X, r.Y+g.cfg.HeaderHeight)
}

// Bounds returns the union of every node rectangle.
func (g *Geometry) Bounds() geom.Rect {
	var b geom.Rect
	for _, r := range g.rects {
		b = b.Union(r)
	}
	return b
}

// Len returns the number of resolved rectangles.
func (g *Geometry) Len() int { return len(g.rects) }

// AbsolutePosition walks the parent chain of id and returns its absolute
// top-left corner. It does not depend on a computed Geometry, so it sees
// positions changed earlier in the same frame.
func AbsolutePosition(t *tree.Tree, cfg Config, id tree.NodeID) (geom.Point, bool) {
	n, ok := t.Node(id)
	if !ok {
		return geom.Point{}, false
	}
	p := n.Position
	for n.Parent() != tree.None {
		n, _ = t.Node(n.Parent())
		p = p.Add(geom.V(n.Position.X, n.Position.Y+cfg.HeaderHeight))
	}
	return p, true
}

// ContentOrigin returns the absolute origin for children of parent.
func ContentOrigin(t *tree.Tree, cfg Config, parent tree.NodeID) geom.Point {
	p, ok := AbsolutePosition(t, cfg, parent)
	if !ok {
		return geom.Point{}
	}
	return geom.Pt(p.X, p.Y+cfg.HeaderHeight)
}
