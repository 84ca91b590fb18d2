package interact

import (
	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// Connect asks the host to create a transition.
type Connect struct {
	Source tree.NodeID
	Target tree.NodeID
}

// Wizard is the transition-creation gesture: it starts from a source node
// and waits for a click on the target.
type Wizard struct {
	source  tree.NodeID
	pointer geom.Point
}

// Active reports whether the wizard is waiting for a target.
func (w Wizard) Active() bool { return w.source != tree.None }

// Source returns the node the new transition starts from.
func (w Wizard) Source() tree.NodeID { return w.source }

// Pointer returns the last pointer position, the preview line's end.
func (w Wizard) Pointer() geom.Point { return w.pointer }

func (w *Wizard) begin(source tree.NodeID, at geom.Point) {
	w.source = source
	w.pointer = at
}

func (w *Wizard) reset() { *w = Wizard{} }
