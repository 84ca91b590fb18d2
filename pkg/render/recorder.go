package render

import (
	"image/color"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
)

// OpKind names a recorded drawing call.
type OpKind string

const (
	OpFillRect   OpKind = "fill-rect"
	OpStrokeRect OpKind = "stroke-rect"
	OpLine       OpKind = "line"
	OpCubic      OpKind = "cubic"
	OpPolygon    OpKind = "polygon"
	OpText       OpKind = "text"
)

// Op is one recorded call.
type Op struct {
	Kind   OpKind
	Rect   geom.Rect
	Radius float64
	Points []geom.Point
	Text   string
	Color  color.Color
	Style  StrokeStyle
}

// Recorder is a Painter that keeps the calls it receives. Hosts use it to
// replay a frame; tests use it to inspect one.
type Recorder struct {
	Measurer geom.Measurer
	Ops      []Op
}

// MeasureText implements geom.Measurer.
func (r *Recorder) MeasureText(s string) geom.Size {
	if r.Measurer == nil {
		return geom.FixedMeasurer{CharWidth: 1, LineHeight: 1}.MeasureText(s)
	}
	return r.Measurer.MeasureText(s)
}

func (r *Recorder) FillRect(rect geom.Rect, radius float64, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFillRect, Rect: rect, Radius: radius, Color: c})
}

func (r *Recorder) StrokeRect(rect geom.Rect, radius float64, c color.Color, style StrokeStyle) {
	r.Ops = append(r.Ops, Op{Kind: OpStrokeRect, Rect: rect, Radius: radius, Color: c, Style: style})
}

func (r *Recorder) Line(a, b geom.Point, c color.Color, style StrokeStyle) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, Points: []geom.Point{a, b}, Color: c, Style: style})
}

func (r *Recorder) Cubic(p0, p1, p2, p3 geom.Point, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpCubic, Points: []geom.Point{p0, p1, p2, p3}, Color: c})
}

func (r *Recorder) Polygon(pts []geom.Point, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpPolygon, Points: append([]geom.Point(nil), pts...), Color: c})
}

func (r *Recorder) Text(center geom.Point, s string, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Points: []geom.Point{center}, Text: s, Color: c})
}

// Replay issues the recorded calls on p.
func (r *Recorder) Replay(p Painter) {
	for _, op := range r.Ops {
		switch op.Kind {
		case OpFillRect:
			p.FillRect(op.Rect, op.Radius, op.Color)
		case OpStrokeRect:
			p.StrokeRect(op.Rect, op.Radius, op.Color, op.Style)
		case OpLine:
			p.Line(op.Points[0], op.Points[1], op.Color, op.Style)
		case OpCubic:
			p.Cubic(op.Points[0], op.Points[1], op.Points[2], op.Points[3], op.Color)
		case OpPolygon:
			p.Polygon(op.Points, op.Color)
		case OpText:
			p.Text(op.Points[0], op.Text, op.Color)
		}
	}
}

// Count returns how many recorded calls have kind k.
func (r *Recorder) Count(k OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}
