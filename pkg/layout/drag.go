package layout

import (
	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// Drag moves a node and its subtree by a pointer delta.
//
// Positions are computed from a snapshot taken at the start rather than
// by adding each tick's delta to the current position, so repeated small
// moves land exactly where one large move would. Descendants are stored
// relative to their parents; they are re-pinned to their snapshot offsets
// every tick, which moves them by exactly the same absolute delta as the
// dragged node.
type Drag struct {
	Node tree.NodeID

	origin geom.Point
	snap   map[tree.NodeID]geom.Point
	total  geom.Vec
}

// StartDrag snapshots id and every descendant.
func StartDrag(t *tree.Tree, id tree.NodeID) (*Drag, error) {
	n, ok := t.Node(id)
	if !ok {
		return nil, &tree.MissingNodeError{Node: id}
	}
	d := &Drag{
		Node:   id,
		origin: n.Position,
		snap:   make(map[tree.NodeID]geom.Point),
	}
	for _, c := range t.Descendants(id) {
		cn, _ := t.Node(c)
		d.snap[c] = cn.Position
	}
	return d, nil
}

// Apply adds delta to the accumulated drag and repositions the subtree.
// It returns false, changing nothing, if the node has been deleted.
func (d *Drag) Apply(t *tree.Tree, delta geom.Vec) bool {
	return d.MoveTo(t, d.total.Add(delta))
}

// MoveTo sets the accumulated drag to total and repositions the subtree.
func (d *Drag) MoveTo(t *tree.Tree, total geom.Vec) bool {
	n, ok := t.Node(d.Node)
	if !ok {
		return false
	}
	d.total = total
	n.Position = d.origin.Add(total)
	d.pin(t)
	return true
}

// Total returns the accumulated delta.
func (d *Drag) Total() geom.Vec { return d.total }

// Origin returns the dragged node's relative position at the start.
func (d *Drag) Origin() geom.Point { return d.origin }

// Cancel restores every snapshotted position.
func (d *Drag) Cancel(t *tree.Tree) {
	if n, ok := t.Node(d.Node); ok {
		n.Position = d.origin
	}
	d.total = geom.Vec{}
	d.pin(t)
}

// End clears the snapshot.
func (d *Drag) End() {
	d.snap = nil
}

// pin restores descendants to their snapshot offsets. Nodes deleted
// mid-drag are skipped.
func (d *Drag) pin(t *tree.Tree) {
	for id, p := range d.snap {
		if n, ok := t.Node(id); ok {
			n.Position = p
		}
	}
}
