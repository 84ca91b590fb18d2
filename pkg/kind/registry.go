package kind

import (
	"fmt"

	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// TransitionHook is called after a machine changes state and its entry
// effect has run.
type TransitionHook func(id tree.NodeID, from, to State, ev Event)

// Registry owns one Machine per node. Machines are created the first time
// a node is observed and dropped when the node is deleted.
type Registry struct {
	store    Store
	machines map[tree.NodeID]*Machine
	hooks    []TransitionHook
}

// NewRegistry creates a registry over the given store.
func NewRegistry(s Store) *Registry {
	return &Registry{
		store:    s,
		machines: make(map[tree.NodeID]*Machine),
	}
}

// OnTransition registers a hook called after every state change.
func (r *Registry) OnTransition(h TransitionHook) {
	r.hooks = append(r.hooks, h)
}

// Machine returns the machine for id, creating it from the store's flags
// on first use.
func (r *Registry) Machine(id tree.NodeID) (*Machine, error) {
	if m, ok := r.machines[id]; ok {
		return m, nil
	}
	if !r.store.Has(id) {
		return nil, &tree.MissingNodeError{Node: id}
	}
	m := &Machine{ID: id, State: Infer(r.store, id)}
	r.machines[id] = m
	return m, nil
}

// State returns the current state of id. ok is false if id is unknown to
// both the registry and the store.
func (r *Registry) State(id tree.NodeID) (State, bool) {
	m, err := r.Machine(id)
	if err != nil {
		return Leaf, false
	}
	return m.State, true
}

// Fire delivers ev to the machine for id. It reports whether the state
// changed. Self-loops are suppressed and return false with no effect.
// If the entry effect fails the previous state is restored.
func (r *Registry) Fire(id tree.NodeID, ev Event) (bool, error) {
	m, err := r.Machine(id)
	if err != nil {
		return false, err
	}

	to, ok := Next(m.State, ev)
	if !ok {
		return false, nil
	}

	// The new state is recorded before the entry effect so that events
	// raised by the effect itself (a Leaf entry deleting the last child)
	// see the target state and fold into self-loops.
	from := m.State
	m.State = to
	if err := enter(r.store, id, to); err != nil {
		m.State = from
		return false, fmt.Errorf("%s on node %d: %w", ev, id, err)
	}

	for _, h := range r.hooks {
		h(id, from, to, ev)
	}
	return true, nil
}

// Forget drops the machine for id.
func (r *Registry) Forget(id tree.NodeID) {
	delete(r.machines, id)
}

// Compact drops machines whose node no longer exists and returns how many
// were removed.
func (r *Registry) Compact() int {
	n := 0
	for id := range r.machines {
		if !r.store.Has(id) {
			delete(r.machines, id)
			n++
		}
	}
	return n
}

// Len returns the number of live machines.
func (r *Registry) Len() int { return len(r.machines) }
