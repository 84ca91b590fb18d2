package scene

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/hsm-toolkit/pkg/diagram"
	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/kind"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// sample builds
//
//	R
//	  P
//	    p1
//	  L
//
// with p1 -go-> L. Ids are 1..4 in that order.
func sample(t *testing.T) *diagram.Diagram {
	t.Helper()
	d := diagram.New(diagram.WithName("sample"))
	r, err := d.AddNode(tree.None, "R", geom.Pt(0, 0))
	require.NoError(t, err)
	p, err := d.AddNode(r, "P", geom.Pt(10, 10))
	require.NoError(t, err)
	p1, err := d.AddNode(p, "p1", geom.Pt(10, 10))
	require.NoError(t, err)
	l, err := d.AddNode(r, "L", geom.Pt(150, 10))
	require.NoError(t, err)
	tid, err := d.Connect(p1, l, "go")
	require.NoError(t, err)
	tr, _ := d.Transitions().Get(tid)
	tr.LabelOffset = geom.V(3, -4)
	d.Layout()
	return d
}

func TestFromDiagram(t *testing.T) {
	d := sample(t)
	s := FromDiagram(d)

	assert.Equal(t, Version, s.Version)
	assert.Equal(t, d.ID.String(), s.ID)
	assert.Equal(t, "sample", s.Name)
	assert.Equal(t, 4, s.Count())
	assert.Equal(t, 3, s.Depth())

	require.Len(t, s.Roots, 1)
	root := s.Roots[0]
	assert.Equal(t, KindParent, root.Kind)
	assert.Equal(t, uint64(2), root.Initial)
	require.Len(t, root.Children, 2)
	assert.Equal(t, KindParent, root.Children[0].Kind)
	assert.Equal(t, KindLeaf, root.Children[1].Kind)
	assert.Equal(t, 150.0, root.Children[1].X)
	assert.Positive(t, root.Children[1].Width)

	require.Len(t, s.Transitions, 1)
	assert.Equal(t, Transition{ID: 1, Source: 3, Target: 4, Label: "go", Offset: &Offset{DX: 3, DY: -4}}, s.Transitions[0])
}

func TestSceneExcludesTransientFlags(t *testing.T) {
	d := sample(t)
	d.Select(3)
	data, err := Marshal(FromDiagram(d))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "selected")

	s, err := Unmarshal(data)
	require.NoError(t, err)
	loaded, err := s.Diagram()
	require.NoError(t, err)
	assert.Equal(t, tree.None, loaded.Tree().Selected())
}

func TestRoundTrip(t *testing.T) {
	d := sample(t)
	changed, err := d.Fire(2, kind.MakeParallelClicked)
	require.NoError(t, err)
	require.True(t, changed)
	orig := FromDiagram(d)
	assert.Equal(t, KindParallel, orig.Roots[0].Children[0].Kind)

	data, err := Marshal(orig)
	require.NoError(t, err)
	s, err := Unmarshal(data)
	require.NoError(t, err)

	loaded, err := s.Diagram()
	require.NoError(t, err)
	assert.Equal(t, d.ID, loaded.ID)
	assert.Equal(t, d.Name, loaded.Name)
	assert.Equal(t, orig, FromDiagram(loaded))

	st, ok := loaded.Kind(2)
	require.True(t, ok)
	assert.Equal(t, kind.Parallel, st)
	st, _ = loaded.Kind(1)
	assert.Equal(t, kind.Parent, st)
	st, _ = loaded.Kind(4)
	assert.Equal(t, kind.Leaf, st)

	f := loaded.Layout()
	for _, id := range []tree.NodeID{1, 2, 3, 4} {
		_, ok := f.Geometry.Rect(id)
		assert.True(t, ok, "node %d laid out", id)
	}
	assert.Len(t, f.Edges, 1)

	// New ids continue after the restored ones.
	id, err := loaded.AddNode(tree.None, "extra", geom.Pt(0, 0))
	require.NoError(t, err)
	assert.Equal(t, tree.NodeID(5), id)
	tid, err := loaded.Connect(4, 3, "back")
	require.NoError(t, err)
	assert.EqualValues(t, 2, tid)
}

func reload(t *testing.T, d *diagram.Diagram) *diagram.Diagram {
	t.Helper()
	data, err := Marshal(FromDiagram(d))
	require.NoError(t, err)
	s, err := Unmarshal(data)
	require.NoError(t, err)
	loaded, err := s.Diagram()
	require.NoError(t, err)
	return loaded
}

func TestDeleteLastChildAfterLoad(t *testing.T) {
	d := diagram.New()
	root, err := d.AddNode(tree.None, "R", geom.Pt(0, 0))
	require.NoError(t, err)
	child, err := d.AddChild(root)
	require.NoError(t, err)

	loaded := reload(t, d)
	st, _ := loaded.Kind(root)
	require.Equal(t, kind.Parent, st)

	require.NoError(t, loaded.DeleteNode(child))
	st, _ = loaded.Kind(root)
	assert.Equal(t, kind.Leaf, st)
	assert.Equal(t, KindLeaf, FromDiagram(loaded).Roots[0].Kind)

	again := reload(t, loaded)
	assert.Equal(t, 1, again.Tree().Len())
	st, _ = again.Kind(root)
	assert.Equal(t, kind.Leaf, st)
}

func TestDiagramOptionsApplyAfterScene(t *testing.T) {
	s := FromDiagram(sample(t))
	d, err := s.Diagram(diagram.WithName("renamed"))
	require.NoError(t, err)
	assert.Equal(t, "renamed", d.Name)
}

func TestUnmarshalRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing roots", `{"version":1}`},
		{"bad kind", `{"version":1,"roots":[{"id":1,"name":"a","kind":"blob","x":0,"y":0}]}`},
		{"zero id", `{"version":1,"roots":[{"id":0,"name":"a","kind":"leaf","x":0,"y":0}]}`},
		{"unknown field", `{"version":1,"roots":[],"colour":"red"}`},
		{"bad uuid", `{"version":1,"id":"nope","roots":[]}`},
		{"transition without label", `{"version":1,"roots":[],"transitions":[{"id":1,"source":1,"target":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestUnmarshalEmpty(t *testing.T) {
	s, err := Unmarshal([]byte(`{"version":1,"roots":[]}`))
	require.NoError(t, err)
	d, err := s.Diagram()
	require.NoError(t, err)
	assert.Equal(t, 0, d.Tree().Len())
}

func TestDiagramRejectsInconsistentScenes(t *testing.T) {
	leaf := func(id uint64) Node { return Node{ID: id, Name: "n", Kind: KindLeaf} }

	tests := []struct {
		name  string
		scene Scene
	}{
		{"version", Scene{Version: 2}},
		{"leaf with children", Scene{Version: 1, Roots: []Node{{ID: 1, Kind: KindLeaf, Children: []Node{leaf(2)}}}}},
		{"empty parent", Scene{Version: 1, Roots: []Node{{ID: 1, Kind: KindParent}}}},
		{"duplicate id", Scene{Version: 1, Roots: []Node{leaf(1), leaf(1)}}},
		{"initial not a child", Scene{Version: 1, Roots: []Node{{ID: 1, Kind: KindParent, Initial: 3, Children: []Node{leaf(2)}}, leaf(3)}}},
		{"duplicate transition", Scene{Version: 1, Roots: []Node{leaf(1)}, Transitions: []Transition{{ID: 1, Source: 1, Target: 1}, {ID: 1, Source: 1, Target: 1}}}},
		{"bad id", Scene{Version: 1, ID: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.scene.Diagram()
			assert.Error(t, err)
		})
	}
}

func TestDiagramMissingTransitionEndpoint(t *testing.T) {
	s := Scene{
		Version:     1,
		Roots:       []Node{{ID: 1, Name: "a", Kind: KindLeaf}},
		Transitions: []Transition{{ID: 1, Source: 1, Target: 9, Label: "x"}},
	}
	_, err := s.Diagram()
	var missing *tree.MissingNodeError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, tree.NodeID(9), missing.Node)
}

func TestArchive(t *testing.T) {
	s := FromDiagram(sample(t))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s, "<svg/>"))
	got, err := ReadBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, s, got)

	preview, err := ReadPreview(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", preview)

	buf.Reset()
	require.NoError(t, Write(&buf, s, ""))
	preview, err = ReadPreview(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Empty(t, preview)

	_, err = ReadBytes([]byte("not a zip"))
	assert.Error(t, err)
}

func TestArchiveFile(t *testing.T) {
	s := FromDiagram(sample(t))
	path := filepath.Join(t.TempDir(), "sample.hsm")
	require.NoError(t, WriteFile(path, s, ""))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.hsm"))
	assert.Error(t, err)
}

func TestGenerateDOT(t *testing.T) {
	d := sample(t)
	_, err := d.Connect(1, 4, "reset")
	require.NoError(t, err)
	dot := GenerateDOT(FromDiagram(d), "")

	assert.True(t, strings.HasPrefix(dot, "digraph HSM {\n"))
	assert.Contains(t, dot, "compound=true;")
	assert.Contains(t, dot, "label=\"sample\";")
	assert.Contains(t, dot, "    subgraph cluster_1 {\n")
	assert.Contains(t, dot, "        subgraph cluster_2 {\n")
	assert.Contains(t, dot, "            n3 [label=\"p1\"];\n")
	assert.Contains(t, dot, "__start_1 -> n2;")
	assert.Contains(t, dot, "__start_2 -> n3;")
	assert.Contains(t, dot, "    n3 -> n4 [label=\"go\"];\n")
	assert.Contains(t, dot, "    n1 -> n4 [label=\"reset\", ltail=cluster_1];\n")
	assert.True(t, strings.HasSuffix(dot, "}\n"))
}

func TestGenerateDOTEscapes(t *testing.T) {
	s := &Scene{
		Version: 1,
		Roots:   []Node{{ID: 1, Name: `say "hi" <now>`, Kind: KindLeaf}},
	}
	dot := GenerateDOT(s, "t")
	assert.Contains(t, dot, `n1 [label="say \"hi\" \<now\>"];`)
	assert.Contains(t, dot, `label="t";`)
}
