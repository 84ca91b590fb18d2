package interact

import (
	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/layout"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// Drop is the result of releasing a dragged node.
type Drop struct {
	Node tree.NodeID
	// Zone is the container to move into, or None to detach to a root.
	Zone tree.NodeID
	// Absolute is the node's absolute top-left at release, which the
	// reparent must preserve.
	Absolute geom.Point
}

// DropZone returns the container whose content rectangle holds p, testing
// topmost containers first. The dragged node and its descendants are never
// candidates. None means the canvas.
func DropZone(t *tree.Tree, g *layout.Geometry, order []layout.Entry, dragged tree.NodeID, p geom.Point) tree.NodeID {
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i].ID
		if id == dragged || t.IsAncestor(dragged, id) || !t.IsContainer(id) {
			continue
		}
		if content, ok := g.Content(id); ok && content.Contains(p) {
			return id
		}
	}
	return tree.None
}

// ValidDrop reports whether dropping node into zone changes its parent.
func ValidDrop(t *tree.Tree, node, zone tree.NodeID) bool {
	n, ok := t.Node(node)
	if !ok {
		return false
	}
	return n.Parent() != zone
}
