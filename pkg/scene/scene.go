// Package scene saves and loads diagrams.
//
// A Scene is a plain recursive description of a diagram: nodes nest under
// their parents and keep their ids, so transitions can refer to them.
// Transient editor state (selection, drag and resize flags) is not saved.
package scene

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ha1tch/hsm-toolkit/pkg/diagram"
	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/route"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// Version is the scene format version written by this package.
const Version = 1

// Node kinds as written in a scene.
const (
	KindLeaf     = "leaf"
	KindParent   = "parent"
	KindParallel = "parallel"
)

// Scene is a saved diagram.
type Scene struct {
	Version     int          `json:"version"`
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name,omitempty"`
	Roots       []Node       `json:"roots"`
	Transitions []Transition `json:"transitions"`
}

// Node is a saved node and its subtree.
type Node struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Explicit bool    `json:"explicit,omitempty"`
	Bounds   *Size   `json:"bounds,omitempty"`
	Initial  uint64  `json:"initial,omitempty"`
	Children []Node  `json:"children,omitempty"`
}

// Size is a saved width and height.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Transition is a saved transition.
type Transition struct {
	ID     uint64  `json:"id"`
	Source uint64  `json:"source"`
	Target uint64  `json:"target"`
	Label  string  `json:"label"`
	Offset *Offset `json:"label_offset,omitempty"`
}

// Offset is a saved label offset.
type Offset struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// FromDiagram captures d's nodes and transitions.
func FromDiagram(d *diagram.Diagram) *Scene {
	s := &Scene{
		Version:     Version,
		ID:          d.ID.String(),
		Name:        d.Name,
		Roots:       []Node{},
		Transitions: []Transition{},
	}
	t := d.Tree()
	for _, id := range t.Roots() {
		s.Roots = append(s.Roots, captureNode(t, id))
	}
	for _, tr := range d.Transitions().All() {
		st := Transition{
			ID:     uint64(tr.ID),
			Source: uint64(tr.Source),
			Target: uint64(tr.Target),
			Label:  tr.Label,
		}
		if tr.LabelOffset != (geom.Vec{}) {
			st.Offset = &Offset{DX: tr.LabelOffset.X, DY: tr.LabelOffset.Y}
		}
		s.Transitions = append(s.Transitions, st)
	}
	return s
}

func captureNode(t *tree.Tree, id tree.NodeID) Node {
	n, _ := t.Node(id)
	out := Node{
		ID:       uint64(id),
		Name:     n.Name,
		Kind:     kindOf(t, n),
		X:        n.Position.X,
		Y:        n.Position.Y,
		Width:    n.Size.W,
		Height:   n.Size.H,
		Explicit: n.Explicit,
		Initial:  uint64(n.Initial),
	}
	if n.Bounds != (geom.Size{}) {
		out.Bounds = &Size{Width: n.Bounds.W, Height: n.Bounds.H}
	}
	for _, c := range t.ChildrenOf(id) {
		out.Children = append(out.Children, captureNode(t, c))
	}
	return out
}

func kindOf(t *tree.Tree, n *tree.Node) string {
	switch {
	case n.Parallel:
		return KindParallel
	case t.IsContainer(n.ID):
		return KindParent
	default:
		return KindLeaf
	}
}

// Diagram rebuilds a diagram from the scene. opts are applied after the
// scene's own id, name, tree and transitions.
func (s *Scene) Diagram(opts ...diagram.Option) (*diagram.Diagram, error) {
	if s.Version != Version {
		return nil, fmt.Errorf("scene: unsupported version %d", s.Version)
	}

	t := tree.New()
	var initials []*Node
	var insert func(parent tree.NodeID, nodes []Node) error
	insert = func(parent tree.NodeID, nodes []Node) error {
		for i := range nodes {
			sn := &nodes[i]
			if err := restoreNode(t, parent, sn); err != nil {
				return err
			}
			if sn.Initial != 0 {
				initials = append(initials, sn)
			}
			if err := insert(tree.NodeID(sn.ID), sn.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(tree.None, s.Roots); err != nil {
		return nil, err
	}
	for _, sn := range initials {
		if err := t.SetInitialChild(tree.NodeID(sn.ID), tree.NodeID(sn.Initial)); err != nil {
			return nil, fmt.Errorf("scene: node %d initial: %w", sn.ID, err)
		}
	}

	set := route.NewSet()
	for _, st := range s.Transitions {
		for _, end := range []uint64{st.Source, st.Target} {
			if !t.Has(tree.NodeID(end)) {
				return nil, fmt.Errorf("scene: transition %d: %w", st.ID, &tree.MissingNodeError{Node: tree.NodeID(end)})
			}
		}
		tr := route.Transition{
			ID:     route.TransitionID(st.ID),
			Source: tree.NodeID(st.Source),
			Target: tree.NodeID(st.Target),
			Label:  st.Label,
		}
		if st.Offset != nil {
			tr.LabelOffset = geom.V(st.Offset.DX, st.Offset.DY)
		}
		if _, exists := set.Get(tr.ID); exists {
			return nil, fmt.Errorf("scene: duplicate transition id %d", st.ID)
		}
		set.Restore(tr)
	}

	base := []diagram.Option{
		diagram.WithName(s.Name),
		diagram.WithTree(t),
		diagram.WithTransitions(set),
	}
	if s.ID != "" {
		id, err := uuid.Parse(s.ID)
		if err != nil {
			return nil, fmt.Errorf("scene: id: %w", err)
		}
		base = append(base, diagram.WithID(id))
	}
	return diagram.New(append(base, opts...)...), nil
}

func restoreNode(t *tree.Tree, parent tree.NodeID, sn *Node) error {
	id := tree.NodeID(sn.ID)
	if err := t.Insert(id, parent, sn.Name); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	n, _ := t.Node(id)
	n.Position = geom.Pt(sn.X, sn.Y)
	n.Size = geom.Size{W: sn.Width, H: sn.Height}
	n.Explicit = sn.Explicit
	if sn.Bounds != nil {
		n.Bounds = geom.Size{W: sn.Bounds.Width, H: sn.Bounds.Height}
	}

	switch sn.Kind {
	case KindLeaf:
		if len(sn.Children) > 0 {
			return fmt.Errorf("scene: leaf node %d has children", sn.ID)
		}
		n.Kind = tree.KindLeaf
	case KindParent, KindParallel:
		if len(sn.Children) == 0 {
			return fmt.Errorf("scene: %s node %d has no children", sn.Kind, sn.ID)
		}
		n.Kind = tree.KindParent
		n.Parallel = sn.Kind == KindParallel
	default:
		return fmt.Errorf("scene: node %d: unknown kind %q", sn.ID, sn.Kind)
	}
	return nil
}

// Count returns the number of nodes in the scene.
func (s *Scene) Count() int {
	var count func([]Node) int
	count = func(nodes []Node) int {
		n := len(nodes)
		for _, c := range nodes {
			n += count(c.Children)
		}
		return n
	}
	return count(s.Roots)
}

// Depth returns the depth of the deepest node; roots are at depth 1.
func (s *Scene) Depth() int {
	var depth func([]Node) int
	depth = func(nodes []Node) int {
		best := 0
		for _, c := range nodes {
			if d := 1 + depth(c.Children); d > best {
				best = d
			}
		}
		return best
	}
	return depth(s.Roots)
}
