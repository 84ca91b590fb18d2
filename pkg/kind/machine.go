// Package kind classifies diagram nodes as Leaf, Parent or Parallel.
//
// Each node gets a small state machine. Entering a state performs the
// structural bookkeeping that state needs (default child, initial-child
// pointer, parallel flag) through a Store supplied by the host.
package kind

import (
	"fmt"

	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// State is a node classification.
type State int

const (
	Leaf State = iota
	Parent
	Parallel
)

func (s State) String() string {
	switch s {
	case Leaf:
		return "Leaf"
	case Parent:
		return "Parent"
	case Parallel:
		return "Parallel"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// TreeKind projects a state onto the tree's cached kind.
func (s State) TreeKind() tree.Kind {
	if s == Leaf {
		return tree.KindLeaf
	}
	return tree.KindParent
}

// Event drives a state change.
type Event int

const (
	AddChildClicked Event = iota
	ChildAdded
	MakeParallelClicked
	MakeParentClicked
	MakeLeafClicked
	AllChildrenRemoved
)

func (e Event) String() string {
	switch e {
	case AddChildClicked:
		return "AddChildClicked"
	case ChildAdded:
		return "ChildAdded"
	case MakeParallelClicked:
		return "MakeParallelClicked"
	case MakeParentClicked:
		return "MakeParentClicked"
	case MakeLeafClicked:
		return "MakeLeafClicked"
	case AllChildrenRemoved:
		return "AllChildrenRemoved"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// ParseEvent maps an event name back to its value.
func ParseEvent(name string) (Event, error) {
	for e := AddChildClicked; e <= AllChildrenRemoved; e++ {
		if e.String() == name {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown kind event %q", name)
}

// Transitions lists, per source state, where each event leads.
// Events missing from a row leave the state unchanged.
var Transitions = map[State]map[Event]State{
	Leaf: {
		AddChildClicked:     Parent,
		ChildAdded:          Parent,
		MakeParentClicked:   Parent,
		MakeParallelClicked: Parallel,
	},
	Parent: {
		MakeParallelClicked: Parallel,
		MakeLeafClicked:     Leaf,
		AllChildrenRemoved:  Leaf,
	},
	Parallel: {
		MakeParentClicked:  Parent,
		MakeLeafClicked:    Leaf,
		AllChildrenRemoved: Leaf,
	},
}

// Next returns the state reached from s on e. The second result is false
// for self-loops, which the machine suppresses.
func Next(s State, e Event) (State, bool) {
	to, ok := Transitions[s][e]
	if !ok || to == s {
		return s, false
	}
	return to, true
}

// Store is the host's view of the node tree: the flags a classification
// reads and the structural edits its entry effects perform.
// *tree.Tree satisfies it.
type Store interface {
	Has(id tree.NodeID) bool
	HasChildren(id tree.NodeID) bool
	ChildrenOf(id tree.NodeID) []tree.NodeID
	InitialChild(id tree.NodeID) tree.NodeID
	SetInitialChild(id, child tree.NodeID) error
	IsParallel(id tree.NodeID) bool
	SetParallel(id tree.NodeID, on bool) error
	CreateChild(parent tree.NodeID) (tree.NodeID, error)
	Delete(id tree.NodeID) error
}

// Machine is the classification of one node.
type Machine struct {
	ID    tree.NodeID
	State State
}

// Infer derives a node's state from the store's flags.
func Infer(s Store, id tree.NodeID) State {
	switch {
	case s.IsParallel(id):
		return Parallel
	case s.HasChildren(id):
		return Parent
	default:
		return Leaf
	}
}

// enter runs the entry effect of st for id. Effects are idempotent.
func enter(s Store, id tree.NodeID, st State) error {
	switch st {
	case Parent:
		if err := s.SetParallel(id, false); err != nil {
			return err
		}
		first, err := ensureChild(s, id)
		if err != nil {
			return err
		}
		if !isChild(s, id, s.InitialChild(id)) {
			return s.SetInitialChild(id, first)
		}
		return nil

	case Parallel:
		if _, err := ensureChild(s, id); err != nil {
			return err
		}
		if err := s.SetInitialChild(id, tree.None); err != nil {
			return err
		}
		return s.SetParallel(id, true)

	case Leaf:
		if err := s.SetParallel(id, false); err != nil {
			return err
		}
		if err := s.SetInitialChild(id, tree.None); err != nil {
			return err
		}
		for _, c := range s.ChildrenOf(id) {
			if err := s.Delete(c); err != nil {
				return fmt.Errorf("remove child %d: %w", c, err)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown state %v", st)
}

// ensureChild returns the first child of id, creating one if there is none.
func ensureChild(s Store, id tree.NodeID) (tree.NodeID, error) {
	if kids := s.ChildrenOf(id); len(kids) > 0 {
		return kids[0], nil
	}
	c, err := s.CreateChild(id)
	if err != nil {
		return tree.None, fmt.Errorf("create default child of %d: %w", id, err)
	}
	return c, nil
}

func isChild(s Store, parent, child tree.NodeID) bool {
	if child == tree.None {
		return false
	}
	for _, c := range s.ChildrenOf(parent) {
		if c == child {
			return true
		}
	}
	return false
}
