package diagram

import (
	"bytes"
	"errors"
	"image/png"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/interact"
	"github.com/ha1tch/hsm-toolkit/pkg/kind"
	"github.com/ha1tch/hsm-toolkit/pkg/layout"
	"github.com/ha1tch/hsm-toolkit/pkg/logging"
	"github.com/ha1tch/hsm-toolkit/pkg/render"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Layout = layout.Config{
		Margin:       10,
		ExtraMargin:  5,
		HeaderHeight: 20,
		MinContainer: geom.Size{W: 50, H: 40},
		MinLeaf:      geom.Size{W: 20, H: 10},
		Padding:      2,
	}
	return cfg
}

func newTestDiagram(opts ...Option) *Diagram {
	base := []Option{
		WithConfig(testConfig()),
		WithMeasurer(geom.FixedMeasurer{CharWidth: 10, LineHeight: 10}),
	}
	return New(append(base, opts...)...)
}

func addNode(t *testing.T, d *Diagram, parent tree.NodeID, name string, x, y float64) tree.NodeID {
	t.Helper()
	id, err := d.AddNode(parent, name, geom.Pt(x, y))
	require.NoError(t, err)
	return id
}

// fixture lays out
//
//	R (0,0,135,104), content from y=20
//	  P (10,30,50,59), content (10,50,50,39)
//	    p1 (20,60,24,14)
//	  L (100,30,20,14)
func fixture(t *testing.T, opts ...Option) (d *Diagram, r, p, p1, l tree.NodeID) {
	t.Helper()
	d = newTestDiagram(opts...)
	r = addNode(t, d, tree.None, "R", 0, 0)
	p = addNode(t, d, r, "P", 10, 10)
	p1 = addNode(t, d, p, "p1", 10, 10)
	l = addNode(t, d, r, "L", 100, 10)
	d.Layout()
	return
}

func rectOf(t *testing.T, d *Diagram, id tree.NodeID) geom.Rect {
	t.Helper()
	r, ok := d.Last().Geometry.Rect(id)
	require.True(t, ok)
	return r
}

func press(x, y float64) interact.Snapshot {
	return interact.Snapshot{Pointer: geom.Pt(x, y), Down: true, Pressed: true}
}

func hold(x, y float64) interact.Snapshot {
	return interact.Snapshot{Pointer: geom.Pt(x, y), Down: true}
}

func release(x, y float64) interact.Snapshot {
	return interact.Snapshot{Pointer: geom.Pt(x, y), Released: true}
}

func TestFixtureGeometry(t *testing.T) {
	d, r, p, p1, l := fixture(t)

	assert.Equal(t, geom.R(0, 0, 135, 104), rectOf(t, d, r))
	assert.Equal(t, geom.R(10, 30, 50, 59), rectOf(t, d, p))
	assert.Equal(t, geom.R(20, 60, 24, 14), rectOf(t, d, p1))
	assert.Equal(t, geom.R(100, 30, 20, 14), rectOf(t, d, l))
	assert.Equal(t, 1, d.Last().Sweeps)

	st, _ := d.Kind(r)
	assert.Equal(t, kind.Parent, st)
	assert.Equal(t, p, d.Tree().InitialChild(r))
	assert.Equal(t, p1, d.Tree().InitialChild(p))
}

func TestAddChildOnLeaf(t *testing.T) {
	d := newTestDiagram()
	a := addNode(t, d, tree.None, "A", 0, 0)

	b, err := d.AddChild(a)
	require.NoError(t, err)

	st, _ := d.Kind(a)
	assert.Equal(t, kind.Parent, st)
	assert.Equal(t, []tree.NodeID{b}, d.Tree().ChildrenOf(a))
	assert.Equal(t, b, d.Tree().InitialChild(a))
	n, _ := d.Tree().Node(a)
	assert.Equal(t, tree.KindParent, n.Kind)

	c, err := d.AddChild(a)
	require.NoError(t, err)
	assert.Equal(t, []tree.NodeID{b, c}, d.Tree().ChildrenOf(a))
	assert.Equal(t, b, d.Tree().InitialChild(a), "initial child is kept")
}

func TestAddChildMissingNode(t *testing.T) {
	d := newTestDiagram()
	_, err := d.AddChild(42)
	var missing *tree.MissingNodeError
	assert.True(t, errors.As(err, &missing))
}

func TestDeleteChildrenUntilLeaf(t *testing.T) {
	d := newTestDiagram()
	a := addNode(t, d, tree.None, "A", 0, 0)
	b, err := d.AddChild(a)
	require.NoError(t, err)
	c, err := d.AddChild(a)
	require.NoError(t, err)
	_, err = d.Connect(b, c, "go")
	require.NoError(t, err)

	require.NoError(t, d.DeleteNode(b))
	assert.Equal(t, 0, d.Transitions().Len(), "incident transitions go with the node")
	assert.Equal(t, c, d.Tree().InitialChild(a), "initial child moves to a remaining child")

	require.NoError(t, d.DeleteNode(c))
	st, _ := d.Kind(a)
	assert.Equal(t, kind.Leaf, st)
	assert.False(t, d.Tree().HasChildren(a))
	assert.Equal(t, tree.None, d.Tree().InitialChild(a))
	n, _ := d.Tree().Node(a)
	assert.Equal(t, tree.KindLeaf, n.Kind)
}

func TestDeleteKeepsOrphansInPlace(t *testing.T) {
	d := newTestDiagram()
	root := addNode(t, d, tree.None, "root", 0, 0)
	a := addNode(t, d, root, "a", 10, 10)
	b := addNode(t, d, a, "b", 10, 10)

	require.NoError(t, d.DeleteNode(a))

	n, ok := d.Tree().Node(b)
	require.True(t, ok)
	assert.Equal(t, tree.None, n.Parent())
	assert.Equal(t, geom.Pt(20, 60), n.Position)

	st, _ := d.Kind(root)
	assert.Equal(t, kind.Leaf, st)
}

func TestMakeLeafDeletesChildrenKeepsGrandchildren(t *testing.T) {
	d := newTestDiagram()
	root := addNode(t, d, tree.None, "root", 0, 0)
	a := addNode(t, d, root, "a", 10, 10)
	b := addNode(t, d, a, "b", 10, 10)

	changed, err := d.Fire(root, kind.MakeLeafClicked)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.False(t, d.Tree().Has(a))
	n, ok := d.Tree().Node(b)
	require.True(t, ok)
	assert.Equal(t, tree.None, n.Parent())
	assert.Equal(t, geom.Pt(20, 60), n.Position)
}

func TestReparentKeepsAbsolutePosition(t *testing.T) {
	d := newTestDiagram()
	root := addNode(t, d, tree.None, "root", 0, 0)
	a := addNode(t, d, root, "A", 10, 10)
	b := addNode(t, d, root, "B", 100, 10)

	require.NoError(t, d.Reparent(b, a))

	n, _ := d.Tree().Node(b)
	assert.Equal(t, a, n.Parent())
	assert.Equal(t, geom.Pt(90, -20), n.Position)
	abs, _ := layout.AbsolutePosition(d.Tree(), d.Config().Layout, b)
	assert.Equal(t, geom.Pt(100, 30), abs)

	st, _ := d.Kind(a)
	assert.Equal(t, kind.Parent, st)
}

func TestReparentCycleLeavesTreeUnchanged(t *testing.T) {
	d := newTestDiagram()
	root := addNode(t, d, tree.None, "root", 0, 0)
	a := addNode(t, d, root, "A", 10, 10)
	b := addNode(t, d, a, "B", 10, 10)

	before := d.Tree().Clone()
	err := d.Reparent(a, b)

	var cycle *tree.CycleError
	require.True(t, errors.As(err, &cycle))
	assert.True(t, errors.Is(err, tree.ErrCycle))
	assert.Equal(t, before, d.Tree())
}

func TestFrameContainsChildren(t *testing.T) {
	d, _, _, _, _ := fixture(t)
	g := d.Last().Geometry
	cfg := d.Config().Layout

	d.Tree().Walk(func(id tree.NodeID, _ int) bool {
		parent, _ := g.Rect(id)
		for _, c := range d.Tree().ChildrenOf(id) {
			r, _ := g.Rect(c)
			assert.True(t, parent.ContainsRect(r))
			assert.LessOrEqual(t, r.Right()+cfg.Margin, parent.Right())
			assert.LessOrEqual(t, r.Bottom()+cfg.Margin, parent.Bottom())
		}
		return true
	})
}

func TestDragDropReparents(t *testing.T) {
	d, r, p, _, l := fixture(t)

	d.Frame(press(110, 37))
	assert.Equal(t, interact.GestureDrag, d.Controller().Gesture())
	assert.Equal(t, l, d.Tree().Selected())

	d.Frame(hold(30, 67))
	assert.Equal(t, p, d.Controller().Hover())

	f := d.Frame(release(30, 67))
	require.NotNil(t, f.Outcome.Drop)
	assert.Equal(t, p, f.Outcome.Drop.Zone)

	n, _ := d.Tree().Node(l)
	assert.Equal(t, p, n.Parent())
	assert.Equal(t, geom.Pt(10, 10), n.Position)
	assert.Equal(t, geom.Pt(20, 60), rectOf(t, d, l).Min())
	assert.Equal(t, []tree.NodeID{p}, d.Tree().ChildrenOf(r))
	assert.Equal(t, tree.None, d.Tree().Dragging())
}

func TestDragEscapeRestores(t *testing.T) {
	d, r, _, _, l := fixture(t)

	d.Frame(press(110, 37))
	d.Frame(hold(30, 67))
	f := d.Frame(interact.Snapshot{Pointer: geom.Pt(30, 67), Down: true, Keys: []interact.Key{interact.KeyEscape}})

	assert.Equal(t, interact.GestureDrag, f.Outcome.Cancelled)
	n, _ := d.Tree().Node(l)
	assert.Equal(t, r, n.Parent())
	assert.Equal(t, geom.Pt(100, 10), n.Position)
	assert.Equal(t, tree.None, d.Tree().Dragging())
	assert.Equal(t, interact.GestureNone, d.Controller().Gesture())
}

func TestDropOnCanvasDetachesThenNormalizes(t *testing.T) {
	d, r, _, _, l := fixture(t)

	d.Frame(press(110, 37))
	d.Frame(hold(-40, -3))
	assert.Equal(t, tree.None, d.Controller().Hover())

	f := d.Frame(release(-40, -3))
	require.NotNil(t, f.Outcome.Drop)
	assert.Equal(t, tree.None, f.Outcome.Drop.Zone)

	n, _ := d.Tree().Node(l)
	assert.Equal(t, tree.None, n.Parent())
	assert.Equal(t, geom.Pt(-50, -10), n.Position)
	assert.Equal(t, []tree.NodeID{r, l}, d.Tree().Roots())

	moved, err := d.NormalizeRoots()
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	assert.Equal(t, r, n.Parent())
	assert.Equal(t, geom.Pt(-50, -30), n.Position)

	d.Layout()
	assert.Equal(t, geom.Pt(10, 10), n.Position, "constraint pulls it back inside")
}

func TestResizeExplicitContainer(t *testing.T) {
	d, _, p, _, _ := fixture(t)
	require.NoError(t, d.SetExplicitBounds(p, true))
	n, _ := d.Tree().Node(p)
	assert.Equal(t, geom.Size{W: 50, H: 59}, n.Bounds)

	d.Frame(press(60, 60))
	assert.Equal(t, interact.GestureResize, d.Controller().Gesture())
	assert.Equal(t, p, d.Tree().Resizing())

	d.Frame(hold(90, 60))
	assert.Equal(t, geom.Size{W: 80, H: 59}, n.Size)
	d.Frame(release(90, 60))
	assert.Equal(t, tree.None, d.Tree().Resizing())
	assert.Equal(t, geom.Size{W: 80, H: 59}, n.Size)

	// Dragging far past the left never goes below the minimum.
	d.Frame(press(90, 60))
	d.Frame(hold(-200, 60))
	d.Frame(release(-200, 60))
	assert.Equal(t, 50.0, n.Size.W)
}

func TestWizardConnects(t *testing.T) {
	d, r, _, p1, l := fixture(t)

	require.True(t, d.BeginConnect(p1))
	f := d.Frame(press(110, 37))
	require.NotNil(t, f.Outcome.Connect)

	require.Equal(t, 1, d.Transitions().Len())
	tr := d.Transitions().All()[0]
	assert.Equal(t, p1, tr.Source)
	assert.Equal(t, l, tr.Target)
	assert.Equal(t, "event", tr.Label)

	require.Len(t, f.Edges, 1)
	assert.Equal(t, r, f.Edges[0].Container)
}

func TestWizardCancelledOnEmptySpace(t *testing.T) {
	d, _, _, p1, _ := fixture(t)

	require.True(t, d.BeginConnect(p1))
	f := d.Frame(press(500, 500))
	assert.Nil(t, f.Outcome.Connect)
	assert.Equal(t, interact.GestureConnect, f.Outcome.Cancelled)
	assert.Equal(t, 0, d.Transitions().Len())
}

func TestPaint(t *testing.T) {
	d, _, _, p1, l := fixture(t)
	_, err := d.Connect(p1, l, "go")
	require.NoError(t, err)
	d.Layout()

	var rec render.Recorder
	d.Paint(&rec)

	assert.Equal(t, 7, rec.Count(render.OpFillRect))
	assert.Equal(t, 5, rec.Count(render.OpText))
	assert.GreaterOrEqual(t, rec.Count(render.OpPolygon), 4)

	var texts []string
	for _, op := range rec.Ops {
		if op.Kind == render.OpText {
			texts = append(texts, op.Text)
		}
	}
	assert.ElementsMatch(t, []string{"R", "P", "p1", "L", "go"}, texts)
}

func TestPaintWizardPreview(t *testing.T) {
	d, _, _, p1, _ := fixture(t)
	require.True(t, d.BeginConnect(p1))
	d.Frame(interact.Snapshot{Pointer: geom.Pt(200, 200)})

	var rec render.Recorder
	d.Paint(&rec)

	found := false
	for _, op := range rec.Ops {
		if op.Kind == render.OpLine && op.Style == render.Dashed {
			found = true
			assert.Equal(t, geom.Pt(200, 200), op.Points[1])
			assert.Equal(t, d.Config().Theme.Preview, op.Color)
		}
	}
	assert.True(t, found)
}

func TestRemoveAndRestoreTransition(t *testing.T) {
	d, _, _, p1, l := fixture(t)
	id, err := d.Connect(p1, l, "go")
	require.NoError(t, err)

	tr, ok := d.RemoveTransition(id)
	require.True(t, ok)
	assert.Equal(t, 0, d.Transitions().Len())

	require.NoError(t, d.RestoreTransition(tr))
	got, ok := d.Transitions().Get(id)
	require.True(t, ok)
	assert.Equal(t, "go", got.Label)

	assert.True(t, d.Relabel(id, "stop"))
	assert.Equal(t, "stop", got.Label)
}

func TestConnectMissingNode(t *testing.T) {
	d, _, _, p1, _ := fixture(t)
	_, err := d.Connect(p1, 99, "x")
	assert.True(t, errors.Is(err, tree.ErrMissingNode))
}

func TestCompactDropsStaleState(t *testing.T) {
	d, _, _, p1, l := fixture(t)
	_, err := d.Connect(p1, l, "go")
	require.NoError(t, err)
	d.Layout()

	// Deleting behind the diagram's back leaves stale entries.
	require.NoError(t, d.Tree().Delete(l))
	assert.Greater(t, d.Compact(), 0)
	assert.Equal(t, 0, d.Transitions().Len())
	assert.Equal(t, 0, d.Compact())
}

func TestRenderExports(t *testing.T) {
	d, _, _, p1, l := fixture(t, WithName("demo"))
	_, err := d.Connect(p1, l, "go")
	require.NoError(t, err)
	d.Layout()

	svg := d.RenderSVG(render.DefaultSVGOptions())
	assert.Contains(t, svg, "<title>demo</title>")
	assert.Contains(t, svg, ">p1</text>")
	assert.Contains(t, svg, ">go</text>")

	var buf bytes.Buffer
	require.NoError(t, d.RenderPNG(&buf, render.DefaultPNGOptions()))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 135)
}

func TestLogsCarryDiagramID(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDiagram(WithLogger(logging.New(&buf, slog.LevelDebug)))
	addNode(t, d, tree.None, "root", 0, 0)

	out := buf.String()
	assert.Contains(t, out, "diagram_id="+d.ID.String())
	assert.Contains(t, out, "node added")
	assert.True(t, strings.Contains(out, "node_id=1"))
}

func TestAddNodeUnderLeafAssignsInitial(t *testing.T) {
	d := newTestDiagram()
	a := addNode(t, d, tree.None, "A", 0, 0)
	b := addNode(t, d, a, "B", 10, 10)
	c := addNode(t, d, a, "C", 40, 10)

	st, _ := d.Kind(a)
	assert.Equal(t, kind.Parent, st)
	assert.Equal(t, b, d.Tree().InitialChild(a))
	n, _ := d.Tree().Node(a)
	assert.Equal(t, tree.KindParent, n.Kind)
	assert.Equal(t, []tree.NodeID{b, c}, d.Tree().ChildrenOf(a), "no default child is created")
}

func TestReparentUpdatesBothKinds(t *testing.T) {
	d := newTestDiagram()
	x := addNode(t, d, tree.None, "X", 200, 200)
	y := addNode(t, d, tree.None, "Y", 0, 0)
	z := addNode(t, d, tree.None, "Z", 400, 0)

	require.NoError(t, d.Reparent(x, y))
	st, _ := d.Kind(y)
	assert.Equal(t, kind.Parent, st)
	assert.Equal(t, x, d.Tree().InitialChild(y))
	n, _ := d.Tree().Node(y)
	assert.Equal(t, tree.KindParent, n.Kind)

	require.NoError(t, d.Reparent(x, z))
	st, _ = d.Kind(y)
	assert.Equal(t, kind.Leaf, st)
	assert.Equal(t, tree.KindLeaf, n.Kind)
	assert.Equal(t, x, d.Tree().InitialChild(z))
}

func TestExistingTreeDemotesAfterLastChildDeleted(t *testing.T) {
	tr := tree.New()
	a, err := tr.Add(tree.None, "A")
	require.NoError(t, err)
	b, err := tr.Add(a, "B")
	require.NoError(t, err)
	require.NoError(t, tr.SetKind(a, tree.KindParent))
	require.NoError(t, tr.SetInitialChild(a, b))

	d := newTestDiagram(WithTree(tr))
	require.NoError(t, d.DeleteNode(b))

	st, _ := d.Kind(a)
	assert.Equal(t, kind.Leaf, st)
	n, _ := tr.Node(a)
	assert.Equal(t, tree.KindLeaf, n.Kind)
	assert.Equal(t, tree.None, tr.InitialChild(a))
}
