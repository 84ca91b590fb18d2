// Package route computes how transitions are drawn: which container a
// transition's label belongs to, where the label sits, and the two arrowed
// paths from the source to the label and from the label to the target.
package route

import (
	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/layout"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// Style selects the path shape.
type Style int

const (
	StyleOrthogonal Style = iota // L-shaped with a rounded corner
	StyleDirect                  // Single straight run
)

// Config configures edge drawing.
type Config struct {
	Style        Style
	CornerRadius float64
	ArrowLength  float64
	ArrowWidth   float64

	// LabelPadding is added around the measured label text.
	LabelPadding geom.Size

	// Self-transitions place their label beside the node's right edge.
	SelfLoopOffset  float64 // Distance from the edge to the label centre
	SelfLoopSpacing float64 // Extra distance per additional self-loop
	SelfLoopPort    float64 // Port offset from the centre, as a fraction of height
}

// DefaultConfig returns pixel-canvas edge settings.
func DefaultConfig() Config {
	return Config{
		Style:           StyleOrthogonal,
		CornerRadius:    10,
		ArrowLength:     10,
		ArrowWidth:      8,
		LabelPadding:    geom.Size{W: 12, H: 6},
		SelfLoopOffset:  40,
		SelfLoopSpacing: 18,
		SelfLoopPort:    0.35,
	}
}

// TerminalConfig returns edge settings for character-cell hosts.
func TerminalConfig() Config {
	return Config{
		Style:           StyleOrthogonal,
		CornerRadius:    0,
		ArrowLength:     1,
		ArrowWidth:      1,
		LabelPadding:    geom.Size{W: 2, H: 0},
		SelfLoopOffset:  6,
		SelfLoopSpacing: 3,
		SelfLoopPort:    0.35,
	}
}

// Edge is the routed form of one transition for one frame.
type Edge struct {
	ID     TransitionID
	Source tree.NodeID
	Target tree.NodeID
	Label  string

	// Container is the node whose content area holds the label.
	Container tree.NodeID
	// LabelRect is the absolute label pill.
	LabelRect geom.Rect
	// LocalLabel is LabelRect relative to the container's content origin.
	LocalLabel geom.Rect
	// Default is the label centre before the user's offset was applied.
	Default geom.Point
	// Clamped reports that the label was pulled back inside the container.
	Clamped bool

	In  Path // Source to label
	Out Path // Label to target
}

// LabelBoxes converts routed edges into the sizing pass's label input.
func LabelBoxes(edges []Edge) []layout.LabelBox {
	boxes := make([]layout.LabelBox, 0, len(edges))
	for _, e := range edges {
		boxes = append(boxes, layout.LabelBox{Container: e.Container, Rect: e.LocalLabel})
	}
	return boxes
}

// ContainingAncestor returns the node whose content area a label for a
// transition between a and b must stay in. The shallower endpoint is
// "higher" (the source wins ties). A parent-to-child transition belongs to
// the parent; anything else belongs to the parent of the higher endpoint,
// or to the higher endpoint itself when it is a root.
func ContainingAncestor(t *tree.Tree, source, target tree.NodeID) (tree.NodeID, bool) {
	ds, dt := t.DepthOf(source), t.DepthOf(target)
	if ds < 0 || dt < 0 {
		return tree.None, false
	}
	higher, other := source, target
	if dt < ds {
		higher, other = target, source
	}
	if p, ok := t.ParentOf(other); ok && p == higher {
		return higher, true
	}
	if p, ok := t.ParentOf(higher); ok {
		return p, true
	}
	return higher, true
}

// DefaultLabelPosition is the midpoint between the closest boundary points
// of the two rectangles.
func DefaultLabelPosition(a, b geom.Rect) geom.Point {
	pa := a.ClosestBoundaryPoint(b.Center())
	pb := b.ClosestBoundaryPoint(pa)
	return pa.Mid(pb)
}

// ClampLabel keeps a label of the given size, centred at p, inside content
// with margin to spare. ok is false, and p is returned unchanged, when
// content is too small to hold it.
func ClampLabel(p geom.Point, size geom.Size, content geom.Rect, margin float64) (geom.Point, bool) {
	half := geom.V(size.W/2+margin, size.H/2+margin)
	lo := content.Min().Add(half)
	hi := content.Max().Add(half.Scale(-1))
	return geom.ClampPoint(p, lo, hi)
}

// Router routes every transition once per frame. It keeps the label-drag
// gesture and the last default label positions between frames.
type Router struct {
	cfg     Config
	layout  layout.Config
	measure geom.Measurer

	defaults map[TransitionID]geom.Point
	drag     labelDrag
}

type labelDrag struct {
	id  TransitionID
	pos geom.Point
}

// NewRouter creates a router. A nil measurer falls back to fixed-width text.
func NewRouter(cfg Config, lc layout.Config, m geom.Measurer) *Router {
	if m == nil {
		m = geom.FixedMeasurer{CharWidth: 8, LineHeight: 16}
	}
	return &Router{
		cfg:      cfg,
		layout:   lc,
		measure:  m,
		defaults: make(map[TransitionID]geom.Point),
	}
}

// Config returns the router's edge settings.
func (r *Router) Config() Config { return r.cfg }

// LabelSize returns the pill size for a label.
func (r *Router) LabelSize(label string) geom.Size {
	return r.measure.MeasureText(label).Grow(r.cfg.LabelPadding)
}

// Route resolves every transition whose endpoints are both in g. The
// resolved label centre is written back to each transition.
func (r *Router) Route(t *tree.Tree, g *layout.Geometry, set *Set) []Edge {
	loops := make(map[tree.NodeID]int)
	edges := make([]Edge, 0, set.Len())

	for _, tr := range set.All() {
		src, okS := g.Rect(tr.Source)
		dst, okT := g.Rect(tr.Target)
		container, okC := ContainingAncestor(t, tr.Source, tr.Target)
		if !okS || !okT || !okC {
			continue
		}

		e := Edge{
			ID:        tr.ID,
			Source:    tr.Source,
			Target:    tr.Target,
			Label:     tr.Label,
			Container: container,
		}
		size := r.LabelSize(tr.Label)

		self := tr.Source == tr.Target
		if self {
			e.Default = r.selfLoopAnchor(src, size, loops[tr.Source])
			loops[tr.Source]++
		} else {
			e.Default = DefaultLabelPosition(src, dst)
		}
		r.defaults[tr.ID] = e.Default

		pos := e.Default.Add(tr.LabelOffset)
		if r.drag.id == tr.ID {
			pos = r.drag.pos
		} else if content, ok := g.Content(container); ok {
			if clamped, ok := ClampLabel(pos, size, content, r.layout.Margin); ok {
				e.Clamped = clamped != pos
				pos = clamped
			}
		}
		tr.LabelPosition = pos

		e.LabelRect = geom.RectAround(pos, size)
		origin := g.Origin(container)
		e.LocalLabel = e.LabelRect.Translate(geom.Point{}.Sub(origin))

		if self {
			e.In, e.Out = r.selfLoopPaths(src, e.LabelRect)
		} else {
			e.In, e.Out = r.paths(src, dst, e.LabelRect)
		}
		edges = append(edges, e)
	}
	return edges
}

func (r *Router) paths(src, dst, label geom.Rect) (Path, Path) {
	c := label.Center()
	from := src.ClosestBoundaryPoint(c)
	to := dst.ClosestBoundaryPoint(c)
	return r.path(from, label.ClosestBoundaryPoint(from)),
		r.path(label.ClosestBoundaryPoint(to), to)
}

func (r *Router) selfLoopAnchor(node geom.Rect, size geom.Size, index int) geom.Point {
	off := r.cfg.SelfLoopOffset + float64(index)*r.cfg.SelfLoopSpacing
	return geom.Pt(node.Right()+off+size.W/2, node.Center().Y)
}

func (r *Router) selfLoopPaths(node, label geom.Rect) (Path, Path) {
	dy := node.H * r.cfg.SelfLoopPort
	out := geom.Pt(node.Right(), node.Center().Y-dy)
	back := geom.Pt(node.Right(), node.Center().Y+dy)
	return r.path(out, label.ClosestBoundaryPoint(out)),
		r.path(label.ClosestBoundaryPoint(back), back)
}

func (r *Router) path(a, b geom.Point) Path {
	var p Path
	if r.cfg.Style == StyleDirect {
		p = Direct(a, b)
	} else {
		p = Orthogonal(a, b, r.cfg.CornerRadius)
	}
	return withArrow(p, r.cfg.ArrowLength, r.cfg.ArrowWidth)
}

// BeginLabelDrag starts dragging the label of id from its current centre.
// Automatic placement and clamping are suspended for that label until the
// drag ends.
func (r *Router) BeginLabelDrag(id TransitionID, at geom.Point) {
	r.drag = labelDrag{id: id, pos: at}
}

// MoveLabel moves the dragged label's centre.
func (r *Router) MoveLabel(pos geom.Point) {
	if r.drag.id != 0 {
		r.drag.pos = pos
	}
}

// DraggingLabel returns the transition whose label is being dragged, or 0.
func (r *Router) DraggingLabel() TransitionID { return r.drag.id }

// EndLabelDrag stores the dragged placement as the transition's offset
// from its default position. It returns false if there was no drag or the
// transition no longer exists.
func (r *Router) EndLabelDrag(set *Set) bool {
	d := r.drag
	r.drag = labelDrag{}
	if d.id == 0 {
		return false
	}
	tr, ok := set.Get(d.id)
	if !ok {
		return false
	}
	def, ok := r.defaults[d.id]
	if !ok {
		def = tr.LabelPosition.Add(tr.LabelOffset.Scale(-1))
	}
	tr.LabelOffset = d.pos.Sub(def)
	tr.LabelPosition = d.pos
	return true
}

// CancelLabelDrag abandons the drag, leaving the stored offset untouched.
func (r *Router) CancelLabelDrag() {
	r.drag = labelDrag{}
}

// HitLabel returns the topmost label containing p, or 0.
func HitLabel(edges []Edge, p geom.Point) TransitionID {
	for i := len(edges) - 1; i >= 0; i-- {
		if edges[i].LabelRect.Contains(p) {
			return edges[i].ID
		}
	}
	return 0
}

// Compact drops cached state for transitions no longer in set.
func (r *Router) Compact(set *Set) int {
	n := 0
	for id := range r.defaults {
		if _, ok := set.Get(id); !ok {
			delete(r.defaults, id)
			n++
		}
	}
	if _, ok := set.Get(r.drag.id); r.drag.id != 0 && !ok {
		r.drag = labelDrag{}
	}
	return n
}
