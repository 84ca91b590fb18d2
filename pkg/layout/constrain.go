package layout

import (
	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// Constrain pushes every child's top-left corner to at least Margin inside
// its parent's content area. The right and bottom edges are never clamped;
// the sizing pass grows the parent instead. Sizes are not touched. It
// returns the ids that were moved.
func Constrain(t *tree.Tree, cfg Config) []tree.NodeID {
	var moved []tree.NodeID
	t.Walk(func(id tree.NodeID, _ int) bool {
		n, _ := t.Node(id)
		if n.Parent() == tree.None {
			return true
		}
		p := ConstrainPoint(n.Position, cfg)
		if p != n.Position {
			n.Position = p
			moved = append(moved, id)
		}
		return true
	})
	return moved
}

// ConstrainPoint applies the top-left rule to a single relative position.
func ConstrainPoint(p geom.Point, cfg Config) geom.Point {
	if p.X < cfg.Margin {
		p.X = cfg.Margin
	}
	if p.Y < cfg.Margin {
		p.Y = cfg.Margin
	}
	return p
}
