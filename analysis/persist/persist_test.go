// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package persist

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/wimkeir/graft-sub000/analysis"
	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
)

// demoGraph builds the demo program with every analysis run, so that all edge labels are present
func demoGraph(t *testing.T) (*cpg.Store, *analysis.AnalysisResult) {
	t.Helper()
	lp, err := analysis.LoadProgram("../testdata/demo.yaml")
	require.NoError(t, err)
	cfg, err := config.Load("../testdata/config.yaml")
	require.NoError(t, err)
	s, err := analysis.BuildGraph(lp.Program, cfg, nil)
	require.NoError(t, err)
	res, err := analysis.RunAnalyses(s)
	require.NoError(t, err)
	require.NotEmpty(t, res.Taint.Vulnerabilities)
	return s.Store, res
}

func assertSameStore(t *testing.T, expected, actual *cpg.Store) {
	t.Helper()
	require.Equal(t, expected.NumVertices(), actual.NumVertices())
	require.Equal(t, expected.NumEdges(), actual.NumEdges())
	for id := cpg.VertexID(1); id <= expected.MaxVertexID(); id++ {
		e, a := expected.Vertex(id), actual.Vertex(id)
		assert.Equal(t, e.Label, a.Label)
		assert.Equal(t, e.Kind, a.Kind)
		assert.Equal(t, e.Props, a.Props, "properties of %s", e)
	}
	for id := 1; id <= expected.NumEdges(); id++ {
		e, a := expected.Edge(cpg.EdgeID(id)), actual.Edge(cpg.EdgeID(id))
		assert.Equal(t, e.String(), a.String())
		assert.Equal(t, e.Props, a.Props, "properties of %s", e)
	}
	for _, l := range cpg.AllEdgeLabels {
		assert.Equal(t, expected.NumEdgesWith(l), actual.NumEdgesWith(l))
	}
	assert.Equal(t, expected.Methods(), actual.Methods())
}

func TestSnapshotRoundTrip(t *testing.T) {
	store, _ := demoGraph(t)

	var buf bytes.Buffer
	require.NoError(t, Save(store, &buf))
	restored, err := Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assertSameStore(t, store, restored)

	// the indexes are rebuilt
	assert.Equal(t, store.Vertices(cpg.AstNode, cpg.KindLocal).IDs(), restored.Vertices(cpg.AstNode, cpg.KindLocal).IDs())
	assert.Equal(t, store.VerticesWith(cpg.AstNode, cpg.PropName, "x").IDs(),
		restored.VerticesWith(cpg.AstNode, cpg.PropName, "x").IDs())

	var again bytes.Buffer
	require.NoError(t, Save(restored, &again))
	assert.Equal(t, buf.Bytes(), again.Bytes())
}

func TestSnapshotBytesAreStable(t *testing.T) {
	store := cpg.NewStore()
	props := cpg.Properties{}
	for i, k := range []string{"method", "stmt", "line", "code", "name", "type", "index", "value", "op", "signature"} {
		if i%2 == 0 {
			props[k] = k + "-value"
		} else {
			props[k] = i
		}
	}
	a := store.AddVertex(cpg.CfgNode, cpg.KindAssignStmt, props)
	b := store.AddVertex(cpg.AstNode, cpg.KindLocal, props)
	store.AddEdge(cpg.AstEdge, cpg.RoleTarget, a, b, props)

	var first bytes.Buffer
	require.NoError(t, Save(store, &first))
	for i := 0; i < 20; i++ {
		var again bytes.Buffer
		require.NoError(t, Save(store, &again))
		require.Equal(t, first.Bytes(), again.Bytes(), "save %d", i)
	}

	rec := splitProps(props)
	require.Len(t, rec.Strings, 5)
	require.Len(t, rec.Ints, 5)
	for i := 1; i < len(rec.Strings); i++ {
		assert.Less(t, rec.Strings[i-1].Key, rec.Strings[i].Key)
		assert.Less(t, rec.Ints[i-1].Key, rec.Ints[i].Key)
	}
	assert.Equal(t, props, rec.merged())
}

func TestSnapshotFile(t *testing.T) {
	store, _ := demoGraph(t)
	path := filepath.Join(t.TempDir(), "graph.msgpack")
	require.NoError(t, SaveFile(store, path))
	restored, err := LoadFile(path)
	require.NoError(t, err)
	assertSameStore(t, store, restored)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.msgpack"))
	assert.Error(t, err)
}

func TestLoadCorruptSnapshot(t *testing.T) {
	_, err := Load(strings.NewReader("not a snapshot"))
	assert.Error(t, err)

	encode := func(s snapshot) *bytes.Buffer {
		var buf bytes.Buffer
		require.NoError(t, msgpack.NewEncoder(&buf).Encode(s))
		return &buf
	}

	_, err = Load(encode(snapshot{Format: SnapshotFormat + 1}))
	assert.True(t, errors.Is(err, ErrCorruptSnapshot))

	gap := snapshot{Format: SnapshotFormat, Vertices: []vertexRecord{{ID: 2, Label: string(cpg.CfgNode)}}}
	_, err = Load(encode(gap))
	assert.True(t, errors.Is(err, ErrCorruptSnapshot))

	dangling := snapshot{
		Format:   SnapshotFormat,
		Vertices: []vertexRecord{{ID: 1, Label: string(cpg.CfgNode), Kind: string(cpg.KindEntry)}},
		Edges:    []edgeRecord{{ID: 1, Label: string(cpg.CfgEdge), From: 1, To: 5}},
	}
	_, err = Load(encode(dangling))
	assert.True(t, errors.Is(err, ErrCorruptSnapshot))
}

func TestSQLiteRoundTrip(t *testing.T) {
	store, res := demoGraph(t)
	path := filepath.Join(t.TempDir(), "graph.db")
	require.NoError(t, os.WriteFile(path, []byte("replaced"), 0600))

	require.NoError(t, WriteDB(path, store, res.Taint.Vulnerabilities))
	restored, err := ReadDB(path)
	require.NoError(t, err)
	assertSameStore(t, store, restored)

	vulns, err := ReadVulnerabilities(path)
	require.NoError(t, err)
	assert.Equal(t, res.Taint.Vulnerabilities, vulns)
}

func TestReadMissingDB(t *testing.T) {
	_, err := ReadDB(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

func TestWriteDOT(t *testing.T) {
	store, _ := demoGraph(t)

	var buf bytes.Buffer
	require.NoError(t, WriteDOT(store, DOTOptions{}, &buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "digraph cpg {"))
	assert.Equal(t, store.NumEdges(), strings.Count(out, " -> "))
	assert.Contains(t, out, "shape=box")
	assert.Contains(t, out, "shape=diamond")
	assert.Contains(t, out, "color=red")
	assert.Contains(t, out, "style=dashed")
}

func TestWriteDOTOfOneMethodCFG(t *testing.T) {
	store, _ := demoGraph(t)
	method := "<Demo: java.lang.String id(java.lang.String)>"
	opts := DOTOptions{Labels: []cpg.EdgeLabel{cpg.CfgEdge}, Method: method}

	expected := 0
	for _, e := range store.Edges(cpg.CfgEdge) {
		if store.Vertex(e.From).Method() == method {
			expected++
		}
	}
	require.Positive(t, expected)

	g := Multigraph(store, opts)
	assert.Equal(t, expected, g.Edges().Len())

	path := filepath.Join(t.TempDir(), "id.dot")
	require.NoError(t, DOTToFile(store, opts, path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expected, strings.Count(string(b), " -> "))
	assert.NotContains(t, string(b), "AstEdge")
}
