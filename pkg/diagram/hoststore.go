package diagram

import (
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// hostStore is the kind machines' view of a diagram. It reads and flags
// nodes on the tree directly, but deletions go through the diagram so the
// node's transitions and machine go with it and its children keep their
// place on screen.
type hostStore struct {
	*tree.Tree
	d *Diagram
}

func (h hostStore) Delete(id tree.NodeID) error {
	return h.d.removeNode(id)
}

func (h hostStore) CreateChild(parent tree.NodeID) (tree.NodeID, error) {
	id, err := h.Tree.CreateChild(parent)
	if err != nil {
		return tree.None, err
	}
	h.d.observe(id)
	h.d.nodeLog(id).Debug("default child created", "parent", parent)
	return id, nil
}
