package render

import (
	"fmt"
	"html"
	"image/color"
	"math"
	"strings"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
)

// SVGOptions controls native SVG rendering.
type SVGOptions struct {
	Padding    float64     // padding around the drawing
	FontSize   float64     // label font size
	LineWidth  float64     // stroke width
	Title      string      // document title
	Background color.Color // nil for transparent
	// Measurer sizes text. Defaults to an estimate of 0.6em per glyph.
	Measurer geom.Measurer
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Padding:    20,
		FontSize:   13,
		LineWidth:  1.5,
		Background: color.White,
	}
}

// SVG is a Painter that writes SVG markup.
type SVG struct {
	sb     strings.Builder
	bounds geom.Rect
	opts   SVGOptions
}

// NewSVG creates a painter sized to show bounds.
func NewSVG(bounds geom.Rect, opts SVGOptions) *SVG {
	if opts.FontSize == 0 {
		opts.FontSize = 13
	}
	if opts.LineWidth == 0 {
		opts.LineWidth = 1.5
	}
	if opts.Measurer == nil {
		opts.Measurer = geom.FixedMeasurer{CharWidth: opts.FontSize * 0.6, LineHeight: opts.FontSize * 1.2}
	}
	return &SVG{bounds: bounds, opts: opts}
}

// MeasureText implements geom.Measurer.
func (s *SVG) MeasureText(text string) geom.Size { return s.opts.Measurer.MeasureText(text) }

// FillRect fills r.
func (s *SVG) FillRect(r geom.Rect, radius float64, c color.Color) {
	s.sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" %s/>
`, r.X, r.Y, r.W, r.H, clampRadius(r, radius), paint("fill", c)))
}

// StrokeRect outlines r.
func (s *SVG) StrokeRect(r geom.Rect, radius float64, c color.Color, style StrokeStyle) {
	s.sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="none" %s/>
`, r.X, r.Y, r.W, r.H, clampRadius(r, radius), s.stroke(c, style)))
}

// Line draws a segment.
func (s *SVG) Line(a, b geom.Point, c color.Color, style StrokeStyle) {
	s.sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" %s/>
`, a.X, a.Y, b.X, b.Y, s.stroke(c, style)))
}

// Cubic draws a cubic Bézier.
func (s *SVG) Cubic(p0, p1, p2, p3 geom.Point, c color.Color) {
	s.sb.WriteString(fmt.Sprintf(`<path d="M%.1f,%.1f C%.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="none" %s/>
`, p0.X, p0.Y, p1.X, p1.Y, p2.X, p2.Y, p3.X, p3.Y, s.stroke(c, Solid)))
}

// Polygon fills pts.
func (s *SVG) Polygon(pts []geom.Point, c color.Color) {
	if len(pts) < 3 {
		return
	}
	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	s.sb.WriteString(fmt.Sprintf(`<polygon points="%s" %s/>
`, strings.Join(coords, " "), paint("fill", c)))
}

// Text draws s centred on center.
func (s *SVG) Text(center geom.Point, text string, c color.Color) {
	if text == "" {
		return
	}
	s.sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" %s>%s</text>
`, center.X, center.Y, paint("fill", c), html.EscapeString(text)))
}

func (s *SVG) stroke(c color.Color, style StrokeStyle) string {
	attr := fmt.Sprintf(`%s stroke-width="%.1f"`, paint("stroke", c), s.opts.LineWidth)
	if style == Dashed {
		attr += fmt.Sprintf(` stroke-dasharray="%g,%g"`, DashOn, DashOff)
	}
	return attr
}

// paint formats a colour attribute, adding an opacity for translucent
// colours.
func paint(attr string, c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0 {
		return fmt.Sprintf(`%s="none"`, attr)
	}
	out := fmt.Sprintf(`%s="#%02x%02x%02x"`, attr, n.R, n.G, n.B)
	if n.A < 255 {
		out += fmt.Sprintf(` %s-opacity="%.2f"`, attr, float64(n.A)/255)
	}
	return out
}

// String returns the complete SVG document.
func (s *SVG) String() string {
	pad := s.opts.Padding
	width := int(math.Ceil(s.bounds.W + 2*pad))
	height := int(math.Ceil(s.bounds.H + 2*pad))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="%g">
`, width, height, width, height, s.opts.FontSize))
	if s.opts.Title != "" {
		sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(s.opts.Title)))
	}
	if s.opts.Background != nil {
		sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" %s/>
`, width, height, paint("fill", s.opts.Background)))
	}
	sb.WriteString(fmt.Sprintf(`<g transform="translate(%.1f,%.1f)">
`, pad-s.bounds.X, pad-s.bounds.Y))
	sb.WriteString(s.sb.String())
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}
