// Package layout derives node geometry from the tree: the bottom-up sizing
// pass, the top-left containment constraint, container drags and the
// paint/hit-test order.
//
// Node positions are relative to the parent's content origin, which sits
// HeaderHeight below the parent's top-left corner. Geometry converts the
// relative tree into absolute rectangles once per frame.
package layout

import "github.com/ha1tch/hsm-toolkit/pkg/geom"

// Config holds the spacing rules shared by every pass.
type Config struct {
	// Margin is the minimum gap between a container's content edge and
	// the top-left corner of each child.
	Margin float64
	// ExtraMargin is added on the right and bottom so children never sit
	// flush against the border.
	ExtraMargin float64
	// HeaderHeight is the title strip reserved at the top of containers.
	HeaderHeight float64

	MinContainer geom.Size
	MinLeaf      geom.Size

	// Padding surrounds a leaf's measured name.
	Padding float64
}

// DefaultConfig returns spacing suited to pixel canvases.
func DefaultConfig() Config {
	return Config{
		Margin:       12,
		ExtraMargin:  16,
		HeaderHeight: 24,
		MinContainer: geom.Size{W: 140, H: 90},
		MinLeaf:      geom.Size{W: 70, H: 32},
		Padding:      8,
	}
}

// TerminalConfig returns spacing for character-cell hosts, where one unit
// is one cell.
func TerminalConfig() Config {
	return Config{
		Margin:       1,
		ExtraMargin:  1,
		HeaderHeight: 1,
		MinContainer: geom.Size{W: 14, H: 5},
		MinLeaf:      geom.Size{W: 6, H: 3},
		Padding:      1,
	}
}

// ContentRect returns the part of a container rectangle below its header.
func (c Config) ContentRect(r geom.Rect) geom.Rect {
	return geom.R(r.X, r.Y+c.HeaderHeight, r.W, r.H-c.HeaderHeight)
}
