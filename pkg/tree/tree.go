// Package tree holds the diagram's node hierarchy.
//
// Nodes live in an arena keyed by NodeID. Each node stores only its parent;
// the ordered child lists are a secondary index maintained by the Tree, so
// the hierarchy has a single source of truth. Roots are indexed under None.
package tree

import (
	"fmt"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
)

// NodeID is a stable handle for a node. The zero value means "no node".
type NodeID uint64

// None is the absent node id.
const None NodeID = 0

// Kind is the cached visual classification of a node. The kind state
// machine is the source of truth; Kind is its projection.
type Kind int

const (
	KindLeaf   Kind = iota // No children
	KindParent             // Container (exclusive or parallel)
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindParent:
		return "parent"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is a single diagram node.
type Node struct {
	ID   NodeID
	Name string
	Kind Kind

	// Position is the top-left corner relative to the parent's content
	// origin (or the canvas for roots).
	Position geom.Point
	Size     geom.Size

	// Explicit containers keep Bounds as a lower limit on their size and
	// can be resized by hand.
	Explicit bool
	Bounds   geom.Size

	Parallel bool
	Initial  NodeID

	parent NodeID
}

// Parent returns the id of the containing node, or None for roots.
func (n *Node) Parent() NodeID { return n.parent }

// Rect returns the node's rectangle in its parent's content coordinates.
func (n *Node) Rect() geom.Rect { return geom.RectAt(n.Position, n.Size) }

// Tree is the arena of nodes plus the child index.
type Tree struct {
	nodes    map[NodeID]*Node
	children map[NodeID][]NodeID
	next     NodeID

	// Transient UI flags; at most one node holds each.
	selected NodeID
	dragging NodeID
	resizing NodeID
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{
		nodes:    make(map[NodeID]*Node),
		children: make(map[NodeID][]NodeID),
		next:     1,
	}
}

// Add creates a node under parent (None for a root) and returns its id.
func (t *Tree) Add(parent NodeID, name string) (NodeID, error) {
	id := t.next
	if err := t.Insert(id, parent, name); err != nil {
		return None, err
	}
	return id, nil
}

// Insert creates a node with a caller-chosen id. It is used when restoring
// a saved diagram; parents must be inserted before their children.
func (t *Tree) Insert(id, parent NodeID, name string) error {
	if id == None {
		return fmt.Errorf("insert: invalid node id 0")
	}
	if _, exists := t.nodes[id]; exists {
		return fmt.Errorf("insert: node %d already exists", id)
	}
	if parent != None {
		if _, ok := t.nodes[parent]; !ok {
			return missing(parent)
		}
	}

	t.nodes[id] = &Node{ID: id, Name: name, parent: parent}
	t.children[parent] = append(t.children[parent], id)
	if id >= t.next {
		t.next = id + 1
	}
	return nil
}

// Node returns the node for id.
func (t *Tree) Node(id NodeID) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Has reports whether id is in the tree.
func (t *Tree) Has(id NodeID) bool {
	_, ok := t.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// ParentOf returns the parent of id. ok is false for roots and missing ids.
func (t *Tree) ParentOf(id NodeID) (NodeID, bool) {
	n, ok := t.nodes[id]
	if !ok || n.parent == None {
		return None, false
	}
	return n.parent, true
}

// ChildrenOf returns the children of id in insertion order.
// ChildrenOf(None) returns the roots.
func (t *Tree) ChildrenOf(id NodeID) []NodeID {
	kids := t.children[id]
	if len(kids) == 0 {
		return nil
	}
	out := make([]NodeID, len(kids))
	copy(out, kids)
	return out
}

// HasChildren reports whether id has at least one child.
func (t *Tree) HasChildren(id NodeID) bool { return len(t.children[id]) > 0 }

// Roots returns the parentless nodes in insertion order.
func (t *Tree) Roots() []NodeID { return t.ChildrenOf(None) }

// DepthOf returns the number of ancestors of id (roots are 0), or -1 when
// id is not in the tree.
func (t *Tree) DepthOf(id NodeID) int {
	n, ok := t.nodes[id]
	if !ok {
		return -1
	}
	depth := 0
	for n.parent != None {
		n = t.nodes[n.parent]
		depth++
	}
	return depth
}

// IsAncestor reports whether anc is a strict ancestor of id.
func (t *Tree) IsAncestor(anc, id NodeID) bool {
	n, ok := t.nodes[id]
	if !ok || anc == None {
		return false
	}
	for n.parent != None {
		if n.parent == anc {
			return true
		}
		n = t.nodes[n.parent]
	}
	return false
}

// Descendants returns every node below id in depth-first pre-order.
func (t *Tree) Descendants(id NodeID) []NodeID {
	var out []NodeID
	var visit func(NodeID)
	visit = func(p NodeID) {
		for _, c := range t.children[p] {
			out = append(out, c)
			visit(c)
		}
	}
	if t.Has(id) {
		visit(id)
	}
	return out
}

// Walk visits every node depth-first from each root in insertion order.
// Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	var visit func(NodeID, int)
	visit = func(id NodeID, depth int) {
		if !fn(id, depth) {
			return
		}
		for _, c := range t.children[id] {
			visit(c, depth+1)
		}
	}
	for _, r := range t.children[None] {
		visit(r, 0)
	}
}

// IDs returns all node ids in Walk order.
func (t *Tree) IDs() []NodeID {
	ids := make([]NodeID, 0, len(t.nodes))
	t.Walk(func(id NodeID, _ int) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// Reparent moves id under newParent (None detaches it to a root). It fails
// with *CycleError when newParent is id or one of its descendants, leaving
// the tree unchanged. Positions are not converted.
func (t *Tree) Reparent(id, newParent NodeID) error {
	n, ok := t.nodes[id]
	if !ok {
		return missing(id)
	}
	if newParent != None {
		if !t.Has(newParent) {
			return missing(newParent)
		}
		if newParent == id || t.IsAncestor(id, newParent) {
			return &CycleError{Node: id, Parent: newParent}
		}
	}
	if n.parent == newParent {
		return nil
	}

	old := n.parent
	t.unlink(old, id)
	if p, ok := t.nodes[old]; ok && p.Initial == id {
		p.Initial = None
	}
	n.parent = newParent
	t.children[newParent] = append(t.children[newParent], id)
	return nil
}

// Detach makes id a root.
func (t *Tree) Detach(id NodeID) error { return t.Reparent(id, None) }

// DetachChildrenOnDelete turns every child of id into a root and returns
// them. Children are never deleted along with their parent.
func (t *Tree) DetachChildrenOnDelete(id NodeID) []NodeID {
	kids := t.children[id]
	if len(kids) == 0 {
		return nil
	}
	for _, c := range kids {
		t.nodes[c].parent = None
	}
	t.children[None] = append(t.children[None], kids...)
	delete(t.children, id)
	if n, ok := t.nodes[id]; ok {
		n.Initial = None
	}
	return kids
}

// Delete removes id from the tree. Its children become roots.
func (t *Tree) Delete(id NodeID) error {
	n, ok := t.nodes[id]
	if !ok {
		return missing(id)
	}
	t.DetachChildrenOnDelete(id)
	t.unlink(n.parent, id)
	if p, ok := t.nodes[n.parent]; ok && p.Initial == id {
		p.Initial = None
	}
	delete(t.nodes, id)

	if t.selected == id {
		t.selected = None
	}
	if t.dragging == id {
		t.dragging = None
	}
	if t.resizing == id {
		t.resizing = None
	}
	return nil
}

func (t *Tree) unlink(parent, id NodeID) {
	kids := t.children[parent]
	for i, c := range kids {
		if c == id {
			t.children[parent] = append(kids[:i:i], kids[i+1:]...)
			break
		}
	}
	if len(t.children[parent]) == 0 {
		delete(t.children, parent)
	}
}

// SetKind updates the cached kind projection.
func (t *Tree) SetKind(id NodeID, k Kind) error {
	n, ok := t.nodes[id]
	if !ok {
		return missing(id)
	}
	n.Kind = k
	return nil
}

// IsContainer reports whether id should be laid out as a container: it is
// Parent-kind or it currently has children.
func (t *Tree) IsContainer(id NodeID) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	return n.Kind == KindParent || t.HasChildren(id)
}

// InitialChild returns the initial-child pointer of id.
func (t *Tree) InitialChild(id NodeID) NodeID {
	if n, ok := t.nodes[id]; ok {
		return n.Initial
	}
	return None
}

// SetInitialChild sets the initial-child pointer. child must be None or a
// current child of id.
func (t *Tree) SetInitialChild(id, child NodeID) error {
	n, ok := t.nodes[id]
	if !ok {
		return missing(id)
	}
	if child != None {
		c, ok := t.nodes[child]
		if !ok {
			return missing(child)
		}
		if c.parent != id {
			return fmt.Errorf("node %d is not a child of %d", child, id)
		}
	}
	n.Initial = child
	return nil
}

// IsParallel reports whether id is marked parallel.
func (t *Tree) IsParallel(id NodeID) bool {
	n, ok := t.nodes[id]
	return ok && n.Parallel
}

// SetParallel marks or unmarks id as parallel.
func (t *Tree) SetParallel(id NodeID, on bool) error {
	n, ok := t.nodes[id]
	if !ok {
		return missing(id)
	}
	n.Parallel = on
	return nil
}

// CreateChild adds a default-named child below the last existing child.
func (t *Tree) CreateChild(parent NodeID) (NodeID, error) {
	var below geom.Point
	if kids := t.children[parent]; len(kids) > 0 {
		last := t.nodes[kids[len(kids)-1]]
		below = geom.Pt(last.Position.X, last.Position.Y+last.Size.H)
	}
	id, err := t.Add(parent, fmt.Sprintf("State %d", t.next))
	if err != nil {
		return None, err
	}
	t.nodes[id].Position = below
	return id, nil
}

// Select marks id as the selected node, clearing any previous selection.
// Select(None) clears the selection.
func (t *Tree) Select(id NodeID) {
	if id != None && !t.Has(id) {
		return
	}
	t.selected = id
}

// Selected returns the selected node or None.
func (t *Tree) Selected() NodeID { return t.selected }

// SetDragging marks id as the node being dragged (None clears).
func (t *Tree) SetDragging(id NodeID) {
	if id != None && !t.Has(id) {
		return
	}
	t.dragging = id
}

// Dragging returns the node being dragged or None.
func (t *Tree) Dragging() NodeID { return t.dragging }

// SetResizing marks id as the node being resized (None clears).
func (t *Tree) SetResizing(id NodeID) {
	if id != None && !t.Has(id) {
		return
	}
	t.resizing = id
}

// Resizing returns the node being resized or None.
func (t *Tree) Resizing() NodeID { return t.resizing }

// Clone returns a deep copy of the tree, transient flags included.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes:    make(map[NodeID]*Node, len(t.nodes)),
		children: make(map[NodeID][]NodeID, len(t.children)),
		next:     t.next,
		selected: t.selected,
		dragging: t.dragging,
		resizing: t.resizing,
	}
	for id, n := range t.nodes {
		cp := *n
		c.nodes[id] = &cp
	}
	for id, kids := range t.children {
		c.children[id] = append([]NodeID(nil), kids...)
	}
	return c
}
