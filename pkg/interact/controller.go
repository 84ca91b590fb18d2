package interact

import (
	"fmt"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/layout"
	"github.com/ha1tch/hsm-toolkit/pkg/route"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// Gesture identifies the active interaction.
type Gesture int

const (
	GestureNone Gesture = iota
	GestureDrag
	GestureResize
	GestureLabel
	GestureConnect
)

func (g Gesture) String() string {
	switch g {
	case GestureNone:
		return "none"
	case GestureDrag:
		return "drag"
	case GestureResize:
		return "resize"
	case GestureLabel:
		return "label"
	case GestureConnect:
		return "connect"
	default:
		return fmt.Sprintf("Gesture(%d)", int(g))
	}
}

// Config holds hit-testing tolerances.
type Config struct {
	// ResizeThreshold is how far from a container's right or bottom edge
	// a press still grabs the resize handle.
	ResizeThreshold float64
	// DeadZone is the pointer travel below which a press and release is
	// a click.
	DeadZone float64
}

// DefaultConfig returns pixel tolerances.
func DefaultConfig() Config {
	return Config{ResizeThreshold: 6, DeadZone: 3}
}

// TerminalConfig returns tolerances for character-cell hosts.
func TerminalConfig() Config {
	return Config{ResizeThreshold: 0.5, DeadZone: 0}
}

// View is the frame state the controller reads. Geometry, Order and Edges
// come from the previous frame, which is what the user is looking at.
type View struct {
	Tree        *tree.Tree
	Layout      layout.Config
	Geometry    *layout.Geometry
	Order       []layout.Entry
	Edges       []route.Edge
	Router      *route.Router
	Transitions *route.Set
}

// Outcome is the structural change a frame's input asks for. The host
// applies it before the layout passes run.
type Outcome struct {
	Drop    *Drop
	Connect *Connect
	// Cancelled is the gesture abandoned this frame, if any.
	Cancelled Gesture
}

// Controller runs at most one gesture at a time.
type Controller struct {
	cfg     Config
	gesture Gesture

	drag      *layout.Drag
	dragStart geom.Point
	hover     tree.NodeID

	resize *Resize

	label route.TransitionID
	grab  geom.Vec

	wizard Wizard
}

// NewController creates an idle controller.
func NewController(cfg Config) *Controller {
	return &Controller{cfg: cfg}
}

// Gesture returns the active gesture.
func (c *Controller) Gesture() Gesture { return c.gesture }

// Hover returns the drop zone under the dragged node, or None.
func (c *Controller) Hover() tree.NodeID { return c.hover }

// Wizard returns the transition wizard state.
func (c *Controller) Wizard() Wizard { return c.wizard }

// BeginConnect starts the transition wizard from source. It fails if
// another gesture is active or source does not exist.
func (c *Controller) BeginConnect(t *tree.Tree, source tree.NodeID, at geom.Point) bool {
	if c.gesture != GestureNone || !t.Has(source) {
		return false
	}
	c.wizard.begin(source, at)
	c.gesture = GestureConnect
	return true
}

// Update advances the active gesture, or starts one on a primary press.
func (c *Controller) Update(in Snapshot, v View) Outcome {
	if in.KeyPressed(KeyEscape) || in.SecondaryPressed {
		g := c.Cancel(v)
		if g == GestureNone && in.KeyPressed(KeyEscape) {
			v.Tree.Select(tree.None)
		}
		return Outcome{Cancelled: g}
	}

	switch c.gesture {
	case GestureDrag:
		return c.updateDrag(in, v)
	case GestureResize:
		c.updateResize(in, v)
		return Outcome{}
	case GestureLabel:
		c.updateLabel(in, v)
		return Outcome{}
	case GestureConnect:
		return c.updateConnect(in, v)
	}

	if in.Pressed && v.Geometry != nil {
		c.press(in.Pointer, v)
	}
	return Outcome{}
}

// Cancel abandons the active gesture and restores what it changed.
func (c *Controller) Cancel(v View) Gesture {
	g := c.gesture
	switch g {
	case GestureDrag:
		c.drag.Cancel(v.Tree)
		c.endDrag(v.Tree)
	case GestureResize:
		c.resize.Cancel(v.Tree)
		c.endResize(v.Tree)
	case GestureLabel:
		if v.Router != nil {
			v.Router.CancelLabelDrag()
		}
		c.label = 0
	case GestureConnect:
		c.wizard.reset()
	}
	c.gesture = GestureNone
	return g
}

func (c *Controller) press(p geom.Point, v View) {
	t := v.Tree

	// Resize handles take precedence over dragging the node under them.
	for i := len(v.Order) - 1; i >= 0; i-- {
		id := v.Order[i].ID
		n, ok := t.Node(id)
		if !ok || !n.Explicit {
			continue
		}
		r, ok := v.Geometry.Rect(id)
		if !ok {
			continue
		}
		if e := ResizeZone(r, p, c.cfg.ResizeThreshold); e != EdgeNone {
			rs, err := StartResize(t, id, e, p, v.Layout.MinContainer)
			if err != nil {
				return
			}
			c.resize = rs
			c.gesture = GestureResize
			t.Select(id)
			t.SetResizing(id)
			return
		}
	}

	if v.Router != nil {
		if id := route.HitLabel(v.Edges, p); id != 0 {
			for _, e := range v.Edges {
				if e.ID == id {
					center := e.LabelRect.Center()
					c.label = id
					c.grab = center.Sub(p)
					v.Router.BeginLabelDrag(id, center)
					c.gesture = GestureLabel
					return
				}
			}
		}
	}

	id := layout.HitTest(v.Geometry, v.Order, p)
	t.Select(id)
	if id == tree.None {
		return
	}
	d, err := layout.StartDrag(t, id)
	if err != nil {
		return
	}
	c.drag = d
	c.dragStart = p
	c.hover = tree.None
	c.gesture = GestureDrag
	t.SetDragging(id)
}

func (c *Controller) updateDrag(in Snapshot, v View) Outcome {
	t := v.Tree
	id := c.drag.Node
	if !c.drag.MoveTo(t, in.Pointer.Sub(c.dragStart)) {
		c.endDrag(t)
		return Outcome{}
	}
	abs, _ := layout.AbsolutePosition(t, v.Layout, id)
	if v.Geometry != nil {
		c.hover = DropZone(t, v.Geometry, v.Order, id, abs)
	}
	if in.Down && !in.Released {
		return Outcome{}
	}

	moved := c.drag.Total() != geom.Vec{}
	zone := c.hover
	c.endDrag(t)
	if !moved || !ValidDrop(t, id, zone) {
		return Outcome{}
	}
	return Outcome{Drop: &Drop{Node: id, Zone: zone, Absolute: abs}}
}

func (c *Controller) endDrag(t *tree.Tree) {
	if c.drag != nil {
		c.drag.End()
	}
	c.drag = nil
	c.hover = tree.None
	c.gesture = GestureNone
	t.SetDragging(tree.None)
}

func (c *Controller) updateResize(in Snapshot, v View) {
	if !c.resize.Update(v.Tree, in.Pointer) || !in.Down || in.Released {
		c.endResize(v.Tree)
	}
}

func (c *Controller) endResize(t *tree.Tree) {
	c.resize = nil
	c.gesture = GestureNone
	t.SetResizing(tree.None)
}

func (c *Controller) updateLabel(in Snapshot, v View) {
	if v.Router == nil {
		c.gesture = GestureNone
		return
	}
	v.Router.MoveLabel(in.Pointer.Add(c.grab))
	if in.Down && !in.Released {
		return
	}
	if v.Transitions != nil {
		v.Router.EndLabelDrag(v.Transitions)
	} else {
		v.Router.CancelLabelDrag()
	}
	c.label = 0
	c.gesture = GestureNone
}

func (c *Controller) updateConnect(in Snapshot, v View) Outcome {
	source := c.wizard.source
	if !v.Tree.Has(source) {
		c.wizard.reset()
		c.gesture = GestureNone
		return Outcome{Cancelled: GestureConnect}
	}
	c.wizard.pointer = in.Pointer
	if !in.Pressed {
		return Outcome{}
	}

	c.wizard.reset()
	c.gesture = GestureNone
	var target tree.NodeID
	if v.Geometry != nil {
		target = layout.HitTest(v.Geometry, v.Order, in.Pointer)
	}
	if target == tree.None {
		return Outcome{Cancelled: GestureConnect}
	}
	return Outcome{Connect: &Connect{Source: source, Target: target}}
}
