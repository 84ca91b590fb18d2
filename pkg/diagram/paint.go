package diagram

import (
	"image/color"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/render"
	"github.com/ha1tch/hsm-toolkit/pkg/route"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// Paint draws the last frame back to front: nodes in z-order, the drop
// zone under a dragged node, transitions, then the wizard's preview line.
func (d *Diagram) Paint(p render.Painter) {
	f := d.last
	if f == nil {
		return
	}
	th := d.cfg.Theme

	for _, e := range f.Order {
		d.paintNode(p, f, e.ID)
	}

	if hover := d.ctrl.Hover(); hover != tree.None {
		if content, ok := f.Geometry.Content(hover); ok {
			p.FillRect(content, 0, th.DropZone)
		}
	}

	for _, e := range f.Edges {
		paintEdge(p, e, th)
	}

	if w := d.ctrl.Wizard(); w.Active() {
		if r, ok := f.Geometry.Rect(w.Source()); ok {
			from := r.ClosestBoundaryPoint(w.Pointer())
			p.Line(from, w.Pointer(), th.Preview, render.Dashed)
		}
	}
}

func (d *Diagram) paintNode(p render.Painter, f *Frame, id tree.NodeID) {
	n, ok := d.tree.Node(id)
	if !ok {
		return
	}
	r, ok := f.Geometry.Rect(id)
	if !ok {
		return
	}
	th := d.cfg.Theme
	radius := d.cfg.CornerRadius
	selected := d.tree.Selected() == id

	if d.tree.IsContainer(id) {
		border, style := th.ContainerBorder, render.Solid
		if n.Parallel {
			border, style = th.Parallel, render.Dashed
		}
		if selected {
			border = th.Selected
		}
		header := geom.R(r.X, r.Y, r.W, d.cfg.Layout.HeaderHeight)
		p.FillRect(r, radius, th.Container)
		p.FillRect(header, radius, th.Header)
		p.StrokeRect(r, radius, border, style)
		p.Text(header.Center(), n.Name, th.Text)
		if n.Explicit {
			paintResizeHandle(p, r, d.cfg.Interact.ResizeThreshold, border)
		}
	} else {
		border := th.LeafBorder
		if selected {
			border = th.Selected
		}
		p.FillRect(r, radius, th.Leaf)
		p.StrokeRect(r, radius, border, render.Solid)
		p.Text(r.Center(), n.Name, th.Text)
	}

	if parent := n.Parent(); parent != tree.None && d.tree.InitialChild(parent) == id {
		paintInitialMarker(p, r, d.cfg.Route.ArrowLength, th.Initial)
	}
}

// paintInitialMarker points an arrowhead at the left edge of the initial
// child.
func paintInitialMarker(p render.Painter, r geom.Rect, size float64, c color.Color) {
	tip := geom.Pt(r.X, r.Center().Y)
	p.Polygon([]geom.Point{
		tip,
		geom.Pt(tip.X-size, tip.Y-size/2),
		geom.Pt(tip.X-size, tip.Y+size/2),
	}, c)
}

func paintResizeHandle(p render.Painter, r geom.Rect, size float64, c color.Color) {
	corner := r.Max()
	p.Polygon([]geom.Point{
		corner,
		geom.Pt(corner.X-2*size, corner.Y),
		geom.Pt(corner.X, corner.Y-2*size),
	}, c)
}

func paintEdge(p render.Painter, e route.Edge, th render.Theme) {
	paintPath(p, e.In, th.Edge)
	paintPath(p, e.Out, th.Edge)

	pill := e.LabelRect.H / 2
	p.FillRect(e.LabelRect, pill, th.Label)
	p.StrokeRect(e.LabelRect, pill, th.Edge, render.Solid)
	p.Text(e.LabelRect.Center(), e.Label, th.Text)
}

func paintPath(p render.Painter, path route.Path, c color.Color) {
	for _, s := range path.Segments {
		if s.Kind == route.Cubic {
			p.Cubic(s.From, s.C1, s.C2, s.To, c)
			continue
		}
		p.Line(s.From, s.To, c, render.Solid)
	}
	if len(path.Segments) > 0 {
		p.Polygon(path.Head.Polygon(), c)
	}
}
