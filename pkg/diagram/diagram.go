// Package diagram ties the layout core together. A Diagram owns a node
// tree, its transitions and the per-node kind machines, and runs the frame
// pipeline: input, structural changes, constraint, sizing, routing and
// paint order.
package diagram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/interact"
	"github.com/ha1tch/hsm-toolkit/pkg/kind"
	"github.com/ha1tch/hsm-toolkit/pkg/layout"
	"github.com/ha1tch/hsm-toolkit/pkg/logging"
	"github.com/ha1tch/hsm-toolkit/pkg/route"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// Diagram is one editable hierarchical diagram.
type Diagram struct {
	ID   uuid.UUID
	Name string

	cfg     Config
	log     *slog.Logger
	measure geom.Measurer

	tree        *tree.Tree
	transitions *route.Set
	kinds       *kind.Registry
	router      *route.Router
	ctrl        *interact.Controller

	last   *Frame
	frames uint64
}

// Option configures a Diagram.
type Option func(*Diagram)

// WithConfig replaces the default settings.
func WithConfig(cfg Config) Option {
	return func(d *Diagram) { d.cfg = cfg }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(d *Diagram) { d.log = l }
}

// WithMeasurer sets the text measurer used to size leaves and labels.
func WithMeasurer(m geom.Measurer) Option {
	return func(d *Diagram) { d.measure = m }
}

// WithID sets the diagram id instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(d *Diagram) { d.ID = id }
}

// WithName sets the display name.
func WithName(name string) Option {
	return func(d *Diagram) { d.Name = name }
}

// WithTree starts from an existing tree.
func WithTree(t *tree.Tree) Option {
	return func(d *Diagram) { d.tree = t }
}

// WithTransitions starts from an existing transition list.
func WithTransitions(s *route.Set) Option {
	return func(d *Diagram) { d.transitions = s }
}

// New creates a diagram. Without WithTree it starts empty.
func New(opts ...Option) *Diagram {
	d := &Diagram{
		ID:  uuid.New(),
		cfg: DefaultConfig(),
		log: logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.tree == nil {
		d.tree = tree.New()
	}
	if d.transitions == nil {
		d.transitions = route.NewSet()
	}
	if d.measure == nil {
		d.measure = geom.FixedMeasurer{CharWidth: 8, LineHeight: 16}
	}

	d.log = logging.LogWith(logging.WithDiagramID(context.Background(), d.ID.String()), d.log)
	d.kinds = kind.NewRegistry(hostStore{Tree: d.tree, d: d})
	d.kinds.OnTransition(d.projectKind)
	d.observe(d.tree.IDs()...)
	d.router = route.NewRouter(d.cfg.Route, d.cfg.Layout, d.measure)
	d.ctrl = interact.NewController(d.cfg.Interact)
	return d
}

// Config returns the diagram's settings.
func (d *Diagram) Config() Config { return d.cfg }

// Tree returns the node tree.
func (d *Diagram) Tree() *tree.Tree { return d.tree }

// Transitions returns the transition list.
func (d *Diagram) Transitions() *route.Set { return d.transitions }

// Controller returns the gesture controller.
func (d *Diagram) Controller() *interact.Controller { return d.ctrl }

// Measurer returns the text measurer.
func (d *Diagram) Measurer() geom.Measurer { return d.measure }

// Logger returns the diagram's logger.
func (d *Diagram) Logger() *slog.Logger { return d.log }

func (d *Diagram) nodeLog(id tree.NodeID) *slog.Logger {
	ctx := logging.WithNodeID(context.Background(), strconv.FormatUint(uint64(id), 10))
	return logging.LogWith(ctx, d.log)
}

// observe starts a kind machine for every id that lacks one. Machines
// classify from the tree as it is now, so a node must be observed before a
// structural edit changes what it would be classified as.
func (d *Diagram) observe(ids ...tree.NodeID) {
	for _, id := range ids {
		if id != tree.None {
			_, _ = d.kinds.Machine(id)
		}
	}
}

// projectKind keeps the tree's cached kind in step with the machines.
func (d *Diagram) projectKind(id tree.NodeID, from, to kind.State, ev kind.Event) {
	if err := d.tree.SetKind(id, to.TreeKind()); err != nil {
		return
	}
	d.nodeLog(id).Debug("kind changed", "from", from, "to", to, "event", ev)
}

// Kind returns the kind state of id.
func (d *Diagram) Kind(id tree.NodeID) (kind.State, bool) {
	return d.kinds.State(id)
}

// Fire delivers a kind event to id and reports whether its state changed.
func (d *Diagram) Fire(id tree.NodeID, ev kind.Event) (bool, error) {
	changed, err := d.kinds.Fire(id, ev)
	if err != nil {
		d.nodeLog(id).Warn("kind event failed", "event", ev, "err", err)
	}
	return changed, err
}

// AddNode creates a node named name at the relative position at. A
// non-root parent is told it gained a child.
func (d *Diagram) AddNode(parent tree.NodeID, name string, at geom.Point) (tree.NodeID, error) {
	d.observe(parent)
	id, err := d.tree.Add(parent, name)
	if err != nil {
		return tree.None, fmt.Errorf("add node: %w", err)
	}
	d.observe(id)
	n, _ := d.tree.Node(id)
	n.Position = at
	if parent != tree.None {
		if _, err := d.Fire(parent, kind.ChildAdded); err != nil {
			return id, err
		}
	}
	d.nodeLog(id).Debug("node added", "parent", parent, "name", name)
	return id, nil
}

// AddChild adds a default child to parent and returns it. A leaf becomes a
// container through its kind machine, whose entry effect creates the child.
func (d *Diagram) AddChild(parent tree.NodeID) (tree.NodeID, error) {
	st, ok := d.kinds.State(parent)
	if !ok {
		return tree.None, &tree.MissingNodeError{Node: parent}
	}
	if st == kind.Leaf {
		if _, err := d.Fire(parent, kind.AddChildClicked); err != nil {
			return tree.None, err
		}
		kids := d.tree.ChildrenOf(parent)
		if len(kids) == 0 {
			return tree.None, fmt.Errorf("add child: node %d has no children after %s", parent, kind.AddChildClicked)
		}
		return kids[len(kids)-1], nil
	}

	id, err := d.tree.CreateChild(parent)
	if err != nil {
		return tree.None, fmt.Errorf("add child: %w", err)
	}
	d.observe(id)
	if _, err := d.Fire(parent, kind.ChildAdded); err != nil {
		return id, err
	}
	d.nodeLog(id).Debug("child added", "parent", parent)
	return id, nil
}

// Rename changes a node's display name.
func (d *Diagram) Rename(id tree.NodeID, name string) error {
	n, ok := d.tree.Node(id)
	if !ok {
		return &tree.MissingNodeError{Node: id}
	}
	n.Name = name
	return nil
}

// DeleteNode removes id and its transitions. Its children become roots at
// the same absolute position. A parent left without children is told so.
func (d *Diagram) DeleteNode(id tree.NodeID) error {
	n, ok := d.tree.Node(id)
	if !ok {
		return &tree.MissingNodeError{Node: id}
	}
	parent := n.Parent()
	d.observe(parent)
	if err := d.removeNode(id); err != nil {
		return err
	}
	return d.settleParent(parent)
}

// removeNode deletes without raising kind events on the parent. Kind entry
// effects delete through here.
func (d *Diagram) removeNode(id tree.NodeID) error {
	if !d.tree.Has(id) {
		return &tree.MissingNodeError{Node: id}
	}
	kids := d.tree.ChildrenOf(id)
	abs := make(map[tree.NodeID]geom.Point, len(kids))
	for _, c := range kids {
		abs[c], _ = layout.AbsolutePosition(d.tree, d.cfg.Layout, c)
	}

	if err := d.tree.Delete(id); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	for c, p := range abs {
		if n, ok := d.tree.Node(c); ok {
			n.Position = p
		}
	}
	removed := d.transitions.RemoveIncident(id)
	d.kinds.Forget(id)
	d.nodeLog(id).Debug("node deleted", "orphans", len(kids), "transitions", len(removed))
	return nil
}

// settleParent raises AllChildrenRemoved on a container left empty, or
// repairs its initial-child pointer if that child just left.
func (d *Diagram) settleParent(parent tree.NodeID) error {
	if parent == tree.None || !d.tree.Has(parent) {
		return nil
	}
	if !d.tree.HasChildren(parent) {
		_, err := d.Fire(parent, kind.AllChildrenRemoved)
		return err
	}
	if st, _ := d.kinds.State(parent); st == kind.Parent && d.tree.InitialChild(parent) == tree.None {
		return d.tree.SetInitialChild(parent, d.tree.ChildrenOf(parent)[0])
	}
	return nil
}

// Reparent moves id under parent (None to detach) without moving it on
// screen. A cycle is rejected and leaves the tree unchanged.
func (d *Diagram) Reparent(id, parent tree.NodeID) error {
	abs, ok := layout.AbsolutePosition(d.tree, d.cfg.Layout, id)
	if !ok {
		return &tree.MissingNodeError{Node: id}
	}
	return d.reparentAt(id, parent, abs)
}

// Detach makes id a root.
func (d *Diagram) Detach(id tree.NodeID) error { return d.Reparent(id, tree.None) }

func (d *Diagram) reparentAt(id, parent tree.NodeID, abs geom.Point) error {
	n, ok := d.tree.Node(id)
	if !ok {
		return &tree.MissingNodeError{Node: id}
	}
	old := n.Parent()
	if old == parent {
		return nil
	}
	d.observe(old, parent)
	if err := d.tree.Reparent(id, parent); err != nil {
		var cycle *tree.CycleError
		if errors.As(err, &cycle) {
			d.nodeLog(id).Warn("reparent rejected", "parent", parent, "err", err)
		}
		return fmt.Errorf("reparent %d: %w", id, err)
	}

	n.Position = geom.Point(abs.Sub(layout.ContentOrigin(d.tree, d.cfg.Layout, parent)))
	d.nodeLog(id).Debug("reparented", "from", old, "to", parent)

	if parent != tree.None {
		if _, err := d.Fire(parent, kind.ChildAdded); err != nil {
			return err
		}
	}
	return d.settleParent(old)
}

// NormalizeRoots moves every root after the first into the first one,
// keeping absolute positions. Drops onto the canvas detach nodes; hosts
// that want a single root run this sweep afterwards. It returns how many
// nodes were moved.
func (d *Diagram) NormalizeRoots() (int, error) {
	roots := d.tree.Roots()
	if len(roots) < 2 {
		return 0, nil
	}
	primary := roots[0]
	moved := 0
	for _, id := range roots[1:] {
		if err := d.Reparent(id, primary); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

// Connect adds a transition from source to target.
func (d *Diagram) Connect(source, target tree.NodeID, label string) (route.TransitionID, error) {
	for _, id := range []tree.NodeID{source, target} {
		if !d.tree.Has(id) {
			return 0, &tree.MissingNodeError{Node: id}
		}
	}
	id := d.transitions.Add(source, target, label)
	d.log.Debug("transition added", "id", id, "source", source, "target", target, "label", label)
	return id, nil
}

// RemoveTransition deletes a transition and returns it for RestoreTransition.
func (d *Diagram) RemoveTransition(id route.TransitionID) (route.Transition, bool) {
	return d.transitions.Remove(id)
}

// RestoreTransition puts back a removed transition under its old id.
func (d *Diagram) RestoreTransition(tr route.Transition) error {
	for _, id := range []tree.NodeID{tr.Source, tr.Target} {
		if !d.tree.Has(id) {
			return &tree.MissingNodeError{Node: id}
		}
	}
	d.transitions.Restore(tr)
	return nil
}

// Relabel changes a transition's label.
func (d *Diagram) Relabel(id route.TransitionID, label string) bool {
	tr, ok := d.transitions.Get(id)
	if ok {
		tr.Label = label
	}
	return ok
}

// Select marks id as selected; None clears the selection.
func (d *Diagram) Select(id tree.NodeID) { d.tree.Select(id) }

// SetExplicitBounds turns manual sizing on or off for a container. Turning
// it on keeps the current size as the lower bound.
func (d *Diagram) SetExplicitBounds(id tree.NodeID, on bool) error {
	n, ok := d.tree.Node(id)
	if !ok {
		return &tree.MissingNodeError{Node: id}
	}
	n.Explicit = on
	if on && n.Bounds == (geom.Size{}) {
		n.Bounds = n.Size
	}
	return nil
}

// BeginConnect starts the transition wizard from source.
func (d *Diagram) BeginConnect(source tree.NodeID) bool {
	var at geom.Point
	if d.last != nil {
		if r, ok := d.last.Geometry.Rect(source); ok {
			at = r.Center()
		}
	}
	return d.ctrl.BeginConnect(d.tree, source, at)
}

// CancelGesture abandons the active gesture, restoring what it changed.
func (d *Diagram) CancelGesture() interact.Gesture {
	return d.ctrl.Cancel(d.view())
}

// Compact drops per-node and per-transition state left behind by
// deletions: kind machines, routing caches and transitions whose
// endpoints are gone. It returns the number of entries dropped.
func (d *Diagram) Compact() int {
	n := d.transitions.Prune(d.tree.Has)
	n += d.kinds.Compact()
	n += d.router.Compact(d.transitions)
	if n > 0 {
		d.log.Debug("compacted", "dropped", n)
	}
	return n
}
