package interact

import (
	"math"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// Edges is the set of container edges a resize moves.
type Edges int

const (
	EdgeRight Edges = 1 << iota
	EdgeBottom

	EdgeNone   Edges = 0
	EdgeCorner       = EdgeRight | EdgeBottom
)

// ResizeZone reports which resize handle of r, if any, p is over. Handles
// extend threshold either side of the right and bottom edges.
func ResizeZone(r geom.Rect, p geom.Point, threshold float64) Edges {
	var e Edges
	if math.Abs(p.X-r.Right()) <= threshold && p.Y >= r.Y && p.Y <= r.Bottom()+threshold {
		e |= EdgeRight
	}
	if math.Abs(p.Y-r.Bottom()) <= threshold && p.X >= r.X && p.X <= r.Right()+threshold {
		e |= EdgeBottom
	}
	return e
}

// Resize is an in-progress resize of one explicit container.
type Resize struct {
	Node  tree.NodeID
	Edges Edges

	start    geom.Point
	initial  geom.Size
	original geom.Size
	min      geom.Size
}

// StartResize begins resizing id from the pointer position start. The
// container's current size becomes the starting bounds.
func StartResize(t *tree.Tree, id tree.NodeID, edges Edges, start geom.Point, minSize geom.Size) (*Resize, error) {
	n, ok := t.Node(id)
	if !ok {
		return nil, &tree.MissingNodeError{Node: id}
	}
	r := &Resize{
		Node:     id,
		Edges:    edges,
		start:    start,
		initial:  n.Size.Max(n.Bounds),
		original: n.Bounds,
		min:      minSize,
	}
	n.Bounds = r.initial
	return r, nil
}

// Update sets the bounds to the starting bounds plus the pointer's travel
// along the dragged edges, never below the minimum.
func (r *Resize) Update(t *tree.Tree, pointer geom.Point) bool {
	n, ok := t.Node(r.Node)
	if !ok {
		return false
	}
	n.Bounds = r.BoundsAt(pointer)
	return true
}

// BoundsAt computes the bounds for a pointer position.
func (r *Resize) BoundsAt(pointer geom.Point) geom.Size {
	b := r.initial
	d := pointer.Sub(r.start)
	if r.Edges&EdgeRight != 0 {
		b.W += d.X
	}
	if r.Edges&EdgeBottom != 0 {
		b.H += d.Y
	}
	return b.Max(r.min)
}

// Cancel restores the bounds the container had before the gesture.
func (r *Resize) Cancel(t *tree.Tree) {
	if n, ok := t.Node(r.Node); ok {
		n.Bounds = r.original
	}
}
