package diagram

import (
	"context"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/interact"
	"github.com/ha1tch/hsm-toolkit/pkg/layout"
	"github.com/ha1tch/hsm-toolkit/pkg/logging"
	"github.com/ha1tch/hsm-toolkit/pkg/route"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// Frame is the output of one pass of the pipeline.
type Frame struct {
	Number uint64

	Geometry *layout.Geometry
	Order    []layout.Entry
	Edges    []route.Edge

	// Outcome is what this frame's input asked for.
	Outcome interact.Outcome
	// Constrained lists the nodes the constraint pass moved.
	Constrained []tree.NodeID
	// Sweeps is the number of sizing sweeps taken.
	Sweeps int
}

// Bounds returns the area covered by nodes and labels.
func (f *Frame) Bounds() geom.Rect {
	b := f.Geometry.Bounds()
	for _, e := range f.Edges {
		b = b.Union(e.LabelRect)
	}
	return b
}

// Last returns the most recent frame, or nil before the first.
func (d *Diagram) Last() *Frame { return d.last }

// view is what the controller sees: the last frame the user was shown.
func (d *Diagram) view() interact.View {
	v := interact.View{
		Tree:        d.tree,
		Layout:      d.cfg.Layout,
		Router:      d.router,
		Transitions: d.transitions,
	}
	if d.last != nil {
		v.Geometry = d.last.Geometry
		v.Order = d.last.Order
		v.Edges = d.last.Edges
	}
	return v
}

// Frame runs one pass of the pipeline. Input is interpreted against the
// previous frame's geometry. Structural changes it asks for are applied
// before layout, so the returned frame already reflects them. Sizing reads
// the previous frame's label placements; a label that moved settles on the
// next frame.
func (d *Diagram) Frame(in interact.Snapshot) *Frame {
	d.frames++
	f := &Frame{Number: d.frames}

	f.Outcome = d.ctrl.Update(in, d.view())
	d.apply(f.Outcome)

	f.Constrained = layout.Constrain(d.tree, d.cfg.Layout)

	var labels []layout.LabelBox
	if d.last != nil {
		labels = route.LabelBoxes(d.last.Edges)
	}
	f.Sweeps = layout.Size(d.tree, d.cfg.Layout, d.measure, labels)

	f.Geometry = layout.Compute(d.tree, d.cfg.Layout)
	f.Edges = d.router.Route(d.tree, f.Geometry, d.transitions)
	f.Order = layout.ZOrder(d.tree)

	d.last = f
	return f
}

// Layout runs a frame with no input.
func (d *Diagram) Layout() *Frame { return d.Frame(interact.Snapshot{}) }

func (d *Diagram) apply(out interact.Outcome) {
	if out.Cancelled != interact.GestureNone {
		ctx := logging.WithGesture(context.Background(), out.Cancelled.String())
		logging.LogWith(ctx, d.log).Debug("gesture cancelled")
	}
	if drop := out.Drop; drop != nil {
		if err := d.reparentAt(drop.Node, drop.Zone, drop.Absolute); err != nil {
			d.nodeLog(drop.Node).Warn("drop rejected", "zone", drop.Zone, "err", err)
		}
	}
	if c := out.Connect; c != nil {
		if _, err := d.Connect(c.Source, c.Target, d.cfg.DefaultLabel); err != nil {
			d.log.Warn("connect rejected", "source", c.Source, "target", c.Target, "err", err)
		}
	}
}
