package layout

import (
	"sort"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

const (
	// OrderStep spaces traversal indices so boosts fit in between.
	OrderStep = 10
	// SelectionBoost is added to the selected node and its ancestors.
	SelectionBoost = 5
)

// Entry is one node's place in the paint order.
type Entry struct {
	ID    tree.NodeID
	Order int
	Depth int
}

// ZOrder returns every node in paint order, back to front. The traversal
// is depth-first from each root. Among siblings, the one on the path to
// the selected node is visited last, so the selection and its ancestor
// chain paint above their siblings; those nodes also carry SelectionBoost.
func ZOrder(t *tree.Tree) []Entry {
	onPath := make(map[tree.NodeID]bool)
	for id := t.Selected(); id != tree.None; {
		onPath[id] = true
		p, ok := t.ParentOf(id)
		if !ok {
			break
		}
		id = p
	}

	entries := make([]Entry, 0, t.Len())
	var visit func(id tree.NodeID, depth int)
	visit = func(id tree.NodeID, depth int) {
		order := len(entries) * OrderStep
		if onPath[id] {
			order += SelectionBoost
		}
		entries = append(entries, Entry{ID: id, Order: order, Depth: depth})
		for _, c := range pathLast(t.ChildrenOf(id), onPath) {
			visit(c, depth+1)
		}
	}
	for _, r := range pathLast(t.Roots(), onPath) {
		visit(r, 0)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Order < entries[j].Order
	})
	return entries
}

// pathLast moves the (at most one) sibling on the selection path to the end.
func pathLast(ids []tree.NodeID, onPath map[tree.NodeID]bool) []tree.NodeID {
	for i, id := range ids {
		if onPath[id] {
			out := append(ids[:i:i], ids[i+1:]...)
			return append(out, id)
		}
	}
	return ids
}

// HitTest returns the topmost node whose rectangle contains p, or None.
func HitTest(g *Geometry, order []Entry, p geom.Point) tree.NodeID {
	return HitTestWhere(g, order, p, nil)
}

// HitTestWhere is HitTest restricted to nodes accepted by keep.
func HitTestWhere(g *Geometry, order []Entry, p geom.Point, keep func(tree.NodeID) bool) tree.NodeID {
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i].ID
		if keep != nil && !keep(id) {
			continue
		}
		if r, ok := g.Rect(id); ok && r.Contains(p) {
			return id
		}
	}
	return tree.None
}
