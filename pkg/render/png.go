// Native PNG rendering of diagram frames.
// Draws at 4x and downsamples for smooth edges, like the SVG output would.

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
)

const supersample = 4

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	// Scale is output pixels per diagram unit.
	Scale      float64
	Padding    float64 // Output pixels around the drawing
	FontSize   float64 // Points, in diagram units
	LineWidth  float64 // Output pixels
	Background color.Color
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Scale:      1,
		Padding:    20,
		FontSize:   13,
		LineWidth:  1.5,
		Background: color.White,
	}
}

// FontMeasurer measures text with the Go Regular face. It implements
// geom.Measurer so leaf sizing matches what the PNG painter draws.
type FontMeasurer struct {
	face font.Face
}

// NewFontMeasurer returns a measurer for Go Regular at size points.
func NewFontMeasurer(size float64) (*FontMeasurer, error) {
	face, err := goRegular(size)
	if err != nil {
		return nil, err
	}
	return &FontMeasurer{face: face}, nil
}

// MeasureText returns the advance width and line height of s.
func (m *FontMeasurer) MeasureText(s string) geom.Size {
	w := font.MeasureString(m.face, s)
	return geom.Size{W: fixedToFloat(w), H: fixedToFloat(m.face.Metrics().Height)}
}

func goRegular(size float64) (font.Face, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone, // supersampled instead
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	return face, nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// PNG is a raster Painter. Drawing happens on a supersampled canvas;
// Encode downsamples and writes the image.
type PNG struct {
	img     *image.RGBA
	origin  geom.Point
	k       float64 // Canvas pixels per diagram unit
	pad     float64 // Canvas pixels
	line    float64 // Canvas pixels
	width   int
	height  int
	face    font.Face
	measure *FontMeasurer
}

// NewPNG creates a painter sized to show bounds.
func NewPNG(bounds geom.Rect, opts PNGOptions) (*PNG, error) {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 13
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = 1.5
	}
	if opts.Background == nil {
		opts.Background = color.White
	}

	width := int(math.Ceil(bounds.W*opts.Scale + 2*opts.Padding))
	height := int(math.Ceil(bounds.H*opts.Scale + 2*opts.Padding))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	measure, err := NewFontMeasurer(opts.FontSize)
	if err != nil {
		return nil, err
	}
	face, err := goRegular(opts.FontSize * opts.Scale * supersample)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, width*supersample, height*supersample))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	return &PNG{
		img:     img,
		origin:  bounds.Min(),
		k:       opts.Scale * supersample,
		pad:     opts.Padding * supersample,
		line:    opts.LineWidth * supersample,
		width:   width,
		height:  height,
		face:    face,
		measure: measure,
	}, nil
}

// Size returns the output image size in pixels.
func (p *PNG) Size() (int, int) { return p.width, p.height }

// Image returns the downsampled output image.
func (p *PNG) Image() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	draw.CatmullRom.Scale(out, out.Bounds(), p.img, p.img.Bounds(), draw.Src, nil)
	return out
}

// Encode writes the downsampled image as PNG.
func (p *PNG) Encode(w io.Writer) error {
	return png.Encode(w, p.Image())
}

// MeasureText implements geom.Measurer in diagram units.
func (p *PNG) MeasureText(s string) geom.Size { return p.measure.MeasureText(s) }

func (p *PNG) dev(q geom.Point) (float64, float64) {
	return (q.X-p.origin.X)*p.k + p.pad, (q.Y-p.origin.Y)*p.k + p.pad
}

// FillRect fills r, rounding the corners by radius.
func (p *PNG) FillRect(r geom.Rect, radius float64, c color.Color) {
	x0, y0 := p.dev(r.Min())
	x1, y1 := p.dev(r.Max())
	rad := clampRadius(r, radius) * p.k

	for y := int(math.Floor(y0)); y < int(math.Ceil(y1)); y++ {
		py := float64(y) + 0.5
		if py < y0 || py > y1 {
			continue
		}
		for x := int(math.Floor(x0)); x < int(math.Ceil(x1)); x++ {
			px := float64(x) + 0.5
			if px < x0 || px > x1 {
				continue
			}
			cx := math.Min(math.Max(px, x0+rad), x1-rad)
			cy := math.Min(math.Max(py, y0+rad), y1-rad)
			if math.Hypot(px-cx, py-cy) <= rad {
				p.plot(x, y, c)
			}
		}
	}
}

// StrokeRect outlines r.
func (p *PNG) StrokeRect(r geom.Rect, radius float64, c color.Color, style StrokeStyle) {
	StrokePolyline(p, Outline(r, radius), c, style)
}

// Line draws a thick segment from a to b.
func (p *PNG) Line(a, b geom.Point, c color.Color, style StrokeStyle) {
	if style == Dashed {
		StrokePolyline(p, []geom.Point{a, b}, c, Dashed)
		return
	}
	x1, y1 := p.dev(a)
	x2, y2 := p.dev(b)
	p.segment(x1, y1, x2, y2, c)
}

// segment draws in canvas pixels.
func (p *PNG) segment(x1, y1, x2, y2 float64, c color.Color) {
	dx := x2 - x1
	dy := y2 - y1
	half := p.line / 2

	dist := math.Sqrt(dx*dx + dy*dy)
	if dist < 1 {
		for ty := -half; ty <= half; ty++ {
			for tx := -half; tx <= half; tx++ {
				p.img.Set(int(x1+tx), int(y1+ty), c)
			}
		}
		return
	}

	perpX := -dy / dist
	perpY := dx / dist
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		cx := x1 + dx*t
		cy := y1 + dy*t
		for offset := -half; offset <= half; offset += 0.5 {
			p.img.Set(int(cx+perpX*offset), int(cy+perpY*offset), c)
		}
	}
}

// Cubic draws a sampled cubic Bézier.
func (p *PNG) Cubic(p0, p1, p2, p3 geom.Point, c color.Color) {
	StrokePolyline(p, geom.SampleCubic(p0, p1, p2, p3, 24), c, Solid)
}

// Polygon fills pts with the even-odd rule.
func (p *PNG) Polygon(pts []geom.Point, c color.Color) {
	if len(pts) < 3 {
		return
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i, q := range pts {
		xs[i], ys[i] = p.dev(q)
		minY = math.Min(minY, ys[i])
		maxY = math.Max(maxY, ys[i])
	}

	var hits []float64
	for y := int(math.Floor(minY)); y <= int(math.Ceil(maxY)); y++ {
		py := float64(y) + 0.5
		hits = hits[:0]
		for i := range xs {
			j := (i + 1) % len(xs)
			if (ys[i] <= py) == (ys[j] <= py) {
				continue
			}
			t := (py - ys[i]) / (ys[j] - ys[i])
			hits = append(hits, xs[i]+t*(xs[j]-xs[i]))
		}
		sort.Float64s(hits)
		for k := 0; k+1 < len(hits); k += 2 {
			for x := int(math.Ceil(hits[k] - 0.5)); float64(x)+0.5 <= hits[k+1]; x++ {
				p.plot(x, y, c)
			}
		}
	}
}

// Text draws s centred on center.
func (p *PNG) Text(center geom.Point, s string, c color.Color) {
	if s == "" {
		return
	}
	x, y := p.dev(center)
	width := font.MeasureString(p.face, s)
	m := p.face.Metrics()
	// Centre the ascent-descent box on y.
	baseline := y + (fixedToFloat(m.Ascent)-fixedToFloat(m.Descent))/2

	d := &font.Drawer{
		Dst:  p.img,
		Src:  image.NewUniform(c),
		Face: p.face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x*64) - width/2,
			Y: fixed.Int26_6(baseline * 64),
		},
	}
	d.DrawString(s)
}

// plot composites c over the canvas pixel.
func (p *PNG) plot(x, y int, c color.Color) {
	if !image.Pt(x, y).In(p.img.Rect) {
		return
	}
	sr, sg, sb, sa := c.RGBA()
	switch sa {
	case 0:
		return
	case 0xffff:
		p.img.Set(x, y, c)
		return
	}
	d := p.img.RGBAAt(x, y)
	a := 0xffff - sa
	over := func(dst uint8, src uint32) uint8 {
		return uint8((uint32(dst)*0x101*a/0xffff + src) >> 8)
	}
	p.img.SetRGBA(x, y, color.RGBA{
		R: over(d.R, sr),
		G: over(d.G, sg),
		B: over(d.B, sb),
		A: over(d.A, sa),
	})
}
