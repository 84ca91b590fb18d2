package diagram

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ha1tch/hsm-toolkit/pkg/interact"
)

// Workspace holds several diagrams. Only the active one receives input;
// the others keep their last frame.
type Workspace struct {
	diagrams map[uuid.UUID]*Diagram
	order    []uuid.UUID
	active   uuid.UUID
}

// NewWorkspace creates an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{diagrams: make(map[uuid.UUID]*Diagram)}
}

// Add registers d. The first diagram added becomes active.
func (w *Workspace) Add(d *Diagram) error {
	if _, exists := w.diagrams[d.ID]; exists {
		return fmt.Errorf("diagram %s already in workspace", d.ID)
	}
	w.diagrams[d.ID] = d
	w.order = append(w.order, d.ID)
	if w.active == uuid.Nil {
		w.active = d.ID
	}
	return nil
}

// Get returns the diagram with the given id.
func (w *Workspace) Get(id uuid.UUID) (*Diagram, bool) {
	d, ok := w.diagrams[id]
	return d, ok
}

// Diagrams returns the diagrams in the order they were added.
func (w *Workspace) Diagrams() []*Diagram {
	out := make([]*Diagram, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.diagrams[id])
	}
	return out
}

// Len returns the number of diagrams.
func (w *Workspace) Len() int { return len(w.order) }

// Active returns the diagram receiving input, or nil.
func (w *Workspace) Active() *Diagram { return w.diagrams[w.active] }

// Activate switches input to id. A gesture in progress on the previously
// active diagram is cancelled first.
func (w *Workspace) Activate(id uuid.UUID) error {
	d, ok := w.diagrams[id]
	if !ok {
		return fmt.Errorf("no diagram %s", id)
	}
	if prev := w.Active(); prev != nil && prev != d {
		prev.CancelGesture()
	}
	w.active = id
	return nil
}

// Cycle activates the diagram after the active one, wrapping around.
func (w *Workspace) Cycle() *Diagram {
	if len(w.order) == 0 {
		return nil
	}
	next := 0
	for i, id := range w.order {
		if id == w.active {
			next = (i + 1) % len(w.order)
			break
		}
	}
	_ = w.Activate(w.order[next])
	return w.Active()
}

// Remove drops id. If it was active, the first remaining diagram becomes
// active.
func (w *Workspace) Remove(id uuid.UUID) bool {
	if _, ok := w.diagrams[id]; !ok {
		return false
	}
	delete(w.diagrams, id)
	for i, o := range w.order {
		if o == id {
			w.order = append(w.order[:i:i], w.order[i+1:]...)
			break
		}
	}
	if w.active == id {
		w.active = uuid.Nil
		if len(w.order) > 0 {
			w.active = w.order[0]
		}
	}
	return true
}

// Frame runs the active diagram's pipeline. It returns nil when the
// workspace is empty.
func (w *Workspace) Frame(in interact.Snapshot) *Frame {
	d := w.Active()
	if d == nil {
		return nil
	}
	return d.Frame(in)
}

// Compact compacts every diagram and returns the total dropped.
func (w *Workspace) Compact() int {
	n := 0
	for _, d := range w.diagrams {
		n += d.Compact()
	}
	return n
}
