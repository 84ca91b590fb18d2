package diagram

import (
	"fmt"
	"io"

	"github.com/ha1tch/hsm-toolkit/pkg/render"
)

// frame returns the last frame, laying out first if there is none.
func (d *Diagram) frame() *Frame {
	if d.last == nil {
		return d.Layout()
	}
	return d.last
}

// RenderPNG paints the current frame and writes it as PNG. The diagram
// should be sized with the PNG font measurer for labels to fit exactly.
func (d *Diagram) RenderPNG(w io.Writer, opts render.PNGOptions) error {
	f := d.frame()
	p, err := render.NewPNG(f.Bounds(), opts)
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	d.Paint(p)
	if err := p.Encode(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// RenderSVG paints the current frame as an SVG document.
func (d *Diagram) RenderSVG(opts render.SVGOptions) string {
	f := d.frame()
	if opts.Measurer == nil {
		opts.Measurer = d.measure
	}
	if opts.Title == "" {
		opts.Title = d.Name
	}
	s := render.NewSVG(f.Bounds(), opts)
	d.Paint(s)
	return s.String()
}
