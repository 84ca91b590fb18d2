package layout

import (
	"math"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// LabelBox is a transition label that a container must make room for.
// Rect is relative to the container's content origin.
type LabelBox struct {
	Container tree.NodeID
	Rect      geom.Rect
}

var defaultMeasurer = geom.FixedMeasurer{CharWidth: 8, LineHeight: 16}

// Size recomputes every node's size bottom-up. Leaves are measured from
// their name; containers fit their children and the labels assigned to
// them. The pass repeats over the nodes not yet sized until none are left,
// a node being ready once all of its children are sized. It returns the
// number of sweeps taken.
func Size(t *tree.Tree, cfg Config, m geom.Measurer, labels []LabelBox) int {
	if m == nil {
		m = defaultMeasurer
	}
	byContainer := make(map[tree.NodeID][]geom.Rect)
	for _, lb := range labels {
		byContainer[lb.Container] = append(byContainer[lb.Container], lb.Rect)
	}

	// Reverse pre-order visits children before parents, so a well-formed
	// tree settles in one sweep.
	pending := t.IDs()
	for i, j := 0, len(pending)-1; i < j; i, j = i+1, j-1 {
		pending[i], pending[j] = pending[j], pending[i]
	}

	sized := make(map[tree.NodeID]bool, len(pending))
	sweeps := 0
	for len(pending) > 0 {
		sweeps++
		var next []tree.NodeID
		progress := false
		for _, id := range pending {
			n, ok := t.Node(id)
			if !ok {
				continue
			}
			if !ready(t, id, sized) {
				next = append(next, id)
				continue
			}
			n.Size = fit(t, n, cfg, m, byContainer[id])
			sized[id] = true
			progress = true
		}
		if !progress {
			break
		}
		pending = next
	}
	return sweeps
}

func ready(t *tree.Tree, id tree.NodeID, sized map[tree.NodeID]bool) bool {
	for _, c := range t.ChildrenOf(id) {
		if !sized[c] {
			return false
		}
	}
	return true
}

func fit(t *tree.Tree, n *tree.Node, cfg Config, m geom.Measurer, labels []geom.Rect) geom.Size {
	if !t.IsContainer(n.ID) {
		text := m.MeasureText(n.Name)
		s := geom.Size{W: text.W + 2*cfg.Padding, H: text.H + 2*cfg.Padding}.Max(cfg.MinLeaf)
		if n.Explicit {
			s = s.Max(n.Bounds)
		}
		return s
	}

	var right, bottom float64
	for _, c := range t.ChildrenOf(n.ID) {
		child, _ := t.Node(c)
		r := child.Rect()
		right = math.Max(right, r.Right()+cfg.Margin+cfg.ExtraMargin)
		bottom = math.Max(bottom, r.Bottom()+cfg.Margin+cfg.ExtraMargin)
	}
	// Labels get the plain margin only. The router clamps labels to that
	// distance from the content edge, so a clamped label must not grow
	// its container.
	for _, r := range labels {
		right = math.Max(right, r.Right()+cfg.Margin)
		bottom = math.Max(bottom, r.Bottom()+cfg.Margin)
	}

	// The name must fit in the header too.
	title := m.MeasureText(n.Name).W + 2*cfg.Padding

	s := geom.Size{
		W: math.Max(right, title),
		H: cfg.HeaderHeight + bottom,
	}.Max(cfg.MinContainer)
	if n.Explicit {
		s = s.Max(n.Bounds)
	}
	return s
}
