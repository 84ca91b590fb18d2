package route

import (
	"sort"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// TransitionID identifies a transition within one diagram.
type TransitionID uint64

// Transition is a directed, labelled edge between two nodes, which need
// not share a parent.
type Transition struct {
	ID     TransitionID
	Source tree.NodeID
	Target tree.NodeID
	Label  string

	// LabelOffset is the user's adjustment from the default label
	// position. It survives node moves.
	LabelOffset geom.Vec
	// LabelPosition is the absolute label centre resolved by the last
	// routing pass.
	LabelPosition geom.Point
}

// Set is a diagram's transition list, kept in creation order.
type Set struct {
	byID map[TransitionID]*Transition
	next TransitionID
}

// NewSet creates an empty transition list.
func NewSet() *Set {
	return &Set{byID: make(map[TransitionID]*Transition), next: 1}
}

// Add creates a transition and returns its id.
func (s *Set) Add(source, target tree.NodeID, label string) TransitionID {
	id := s.next
	s.next++
	s.byID[id] = &Transition{ID: id, Source: source, Target: target, Label: label}
	return id
}

// Restore re-inserts a transition under its original id, replacing any
// transition with that id.
func (s *Set) Restore(tr Transition) {
	cp := tr
	s.byID[tr.ID] = &cp
	if tr.ID >= s.next {
		s.next = tr.ID + 1
	}
}

// Get returns the transition with the given id.
func (s *Set) Get(id TransitionID) (*Transition, bool) {
	tr, ok := s.byID[id]
	return tr, ok
}

// Remove deletes a transition and returns a copy of it.
func (s *Set) Remove(id TransitionID) (Transition, bool) {
	tr, ok := s.byID[id]
	if !ok {
		return Transition{}, false
	}
	delete(s.byID, id)
	return *tr, true
}

// All returns the transitions in creation order.
func (s *Set) All() []*Transition {
	out := make([]*Transition, 0, len(s.byID))
	for _, tr := range s.byID {
		out = append(out, tr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of transitions.
func (s *Set) Len() int { return len(s.byID) }

// Incident returns the transitions touching node, in creation order.
func (s *Set) Incident(node tree.NodeID) []*Transition {
	var out []*Transition
	for _, tr := range s.All() {
		if tr.Source == node || tr.Target == node {
			out = append(out, tr)
		}
	}
	return out
}

// RemoveIncident deletes every transition touching node and returns them.
func (s *Set) RemoveIncident(node tree.NodeID) []Transition {
	var out []Transition
	for _, tr := range s.Incident(node) {
		removed, _ := s.Remove(tr.ID)
		out = append(out, removed)
	}
	return out
}

// Prune deletes transitions with an endpoint for which exists returns
// false. It returns the number removed.
func (s *Set) Prune(exists func(tree.NodeID) bool) int {
	n := 0
	for id, tr := range s.byID {
		if !exists(tr.Source) || !exists(tr.Target) {
			delete(s.byID, id)
			n++
		}
	}
	return n
}
