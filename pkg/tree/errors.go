package tree

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching.
var (
	ErrCycle       = errors.New("reparent would create a cycle")
	ErrMissingNode = errors.New("node not found")
)

// CycleError reports a reparent that was rejected because Parent is the
// node itself or one of its descendants. The tree is left unchanged.
type CycleError struct {
	Node   NodeID
	Parent NodeID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cannot move node %d under %d: %v", e.Node, e.Parent, ErrCycle)
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// MissingNodeError reports an operation on an id that is no longer in the
// tree. Frame passes treat it as a no-op; deletions can race with gestures.
type MissingNodeError struct {
	Node NodeID
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("node %d: %v", e.Node, ErrMissingNode)
}

func (e *MissingNodeError) Unwrap() error { return ErrMissingNode }

func missing(id NodeID) error { return &MissingNodeError{Node: id} }
