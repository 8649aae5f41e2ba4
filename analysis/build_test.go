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

package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/interproc"
	"github.com/wimkeir/graft-sub000/analysis/ir"
	"github.com/wimkeir/graft-sub000/analysis/pdg"
)

const (
	demoMain = "<Demo: void main()>"
	demoID   = "<Demo: java.lang.String id(java.lang.String)>"
)

func loadDemo(t *testing.T) (*ir.Program, *config.Config) {
	t.Helper()
	lp, err := LoadProgram("testdata/demo.yaml")
	require.NoError(t, err)
	cfg, err := config.Load("testdata/config.yaml")
	require.NoError(t, err)
	return lp.Program, cfg
}

// stmtOf returns the statement index of vertex v
func stmtOf(t *testing.T, s *cpg.Store, v cpg.VertexID) int {
	t.Helper()
	i, ok := s.Vertex(v).Props.Int(cpg.PropStmt)
	require.True(t, ok, "vertex %s has no statement index", s.Vertex(v))
	return i
}

func TestLoadProgram(t *testing.T) {
	lp, err := LoadProgram("testdata/demo.yaml")
	require.NoError(t, err)
	assert.Equal(t, "testdata/demo.yaml", lp.Filename)
	require.Len(t, lp.Program.Methods, 2)
	assert.Equal(t, demoMain, lp.Program.Methods[0].Name())
	assert.Equal(t, demoID, lp.Program.Methods[1].Name())
	assert.Len(t, lp.Program.Methods[0].Stmts, 10)
}

func TestLoadProgramErrors(t *testing.T) {
	for _, filename := range []string{"", "testdata/demo.go", "testdata/missing.yaml", "testdata/empty.yaml",
		"testdata/config.yaml"} {
		_, err := LoadProgram(filename)
		if assert.Error(t, err, filename) {
			assert.Contains(t, err.Error(), "could not load program")
		}
	}
}

func TestBuildGraph(t *testing.T) {
	p, cfg := loadDemo(t)
	s, err := BuildGraph(p, cfg, nil)
	require.NoError(t, err)

	assert.Empty(t, s.Skipped)
	assert.Empty(t, s.CheckError())
	require.Len(t, s.CFGs, 2)
	assert.Equal(t, []string{demoMain, demoID}, s.Store.Methods())
	assert.Positive(t, s.Dependences[demoMain].Edges)
	assert.Equal(t, 1, s.Dependences[demoID].Edges)

	// only id is defined in the program
	assert.Equal(t, 1, s.Links.Linked)
	assert.Equal(t, 4, s.Links.CountGaps(interproc.NoCallee))
	assert.Equal(t, 1, s.Store.NumEdgesWith(cpg.CallEdge))
	assert.Equal(t, 1, s.Store.NumEdgesWith(cpg.RetEdge))

	call := s.Store.Edges(cpg.CallEdge)[0]
	assert.Equal(t, 6, stmtOf(t, s.Store, call.From))
	assert.Equal(t, s.CFGs[demoID].Entry, call.To)
	ret := s.Store.Edges(cpg.RetEdge)[0]
	assert.Equal(t, s.CFGs[demoID].Exit, ret.From)
	assert.Equal(t, 7, stmtOf(t, s.Store, ret.To))
}

func TestBuildGraphSkipInterprocedural(t *testing.T) {
	p, cfg := loadDemo(t)
	cfg.SkipInterprocedural = true
	s, err := BuildGraph(p, cfg, nil)
	require.NoError(t, err)
	assert.Zero(t, s.Links.Linked)
	assert.Zero(t, s.Store.NumEdgesWith(cpg.CallEdge))
	assert.Zero(t, s.Store.NumEdgesWith(cpg.RetEdge))
}

func TestBuildGraphSkipsMalformedMethod(t *testing.T) {
	good := ir.NewMethodBuilder(ir.MustParseSignature("<A: void good()>"))
	good.Assign(ir.NewLocal("x", "int"), ir.NewConst("int", "1"))
	bad := ir.NewMethodBuilder(ir.MustParseSignature("<A: void bad()>"))
	bad.Add(&ir.Stmt{Kind: ir.ConditionalStmt, Cond: ir.NewLocal("c", "boolean"), ThenLen: 3})
	p := &ir.Program{Methods: []*ir.Method{bad.Build(), good.Build()}}

	cfg := config.NewDefault()
	cfg.ValidateGraph = true
	s, err := BuildGraph(p, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"<A: void bad()>"}, s.Skipped)
	assert.Len(t, s.CheckError(), 1)
	assert.Equal(t, []string{"<A: void good()>"}, s.Store.Methods())
	assert.NotContains(t, s.CFGs, "<A: void bad()>")
}

func TestBuildGraphInvariantViolation(t *testing.T) {
	b := ir.NewMethodBuilder(ir.MustParseSignature("<A: void main()>"))
	b.Assign(ir.NewLocal("x", "int"), ir.NewConst("int", "1"))
	b.Return(ir.NewLocal("x", "int"))
	m := b.Build()
	oracle := ir.DefTable{}
	oracle.Add("x", m.Ref(2), m.Ref(7))
	p := &ir.Program{Methods: []*ir.Method{m}, Oracle: oracle}

	_, err := BuildGraph(p, nil, nil)
	require.Error(t, err)
	var invariant *pdg.InvariantError
	require.True(t, errors.As(err, &invariant))
	assert.Equal(t, "x", invariant.Variable)
	assert.Equal(t, m.Ref(7), invariant.Def)
}

func TestBuildGraphWithoutProgram(t *testing.T) {
	_, err := BuildGraph(nil, nil, nil)
	assert.Error(t, err)
}

func TestRunAnalyses(t *testing.T) {
	p, cfg := loadDemo(t)
	s, err := BuildGraph(p, cfg, nil)
	require.NoError(t, err)
	res, err := RunAnalyses(s)
	require.NoError(t, err)

	require.NotNil(t, res.Taint)
	vulns := res.Taint.Vulnerabilities
	require.Len(t, vulns, 2)
	assert.Equal(t, "x", vulns[0].Variable)
	assert.Equal(t, 1, stmtOf(t, s.Store, vulns[0].Source))
	assert.Equal(t, 4, stmtOf(t, s.Store, vulns[0].Sink))
	assert.Equal(t, "y", vulns[1].Variable)
	assert.Equal(t, 1, stmtOf(t, s.Store, vulns[1].Source))
	assert.Equal(t, 8, stmtOf(t, s.Store, vulns[1].Sink))
	for _, v := range vulns {
		assert.Equal(t, demoMain, v.Method)
		assert.Equal(t, v.Source, v.Path[0])
		assert.Equal(t, v.Sink, v.Path[len(v.Path)-1])
	}
	assert.Equal(t, 2, res.Taint.Stats.Sinks)

	require.NotNil(t, res.Alias)
	assert.Equal(t, 1, res.Alias.EdgesAdded)
	assert.Equal(t, 1, s.Store.NumEdgesWith(cpg.MayAliasEdge))
}

func TestRunAnalysesSkipAlias(t *testing.T) {
	p, cfg := loadDemo(t)
	cfg.SkipAlias = true
	s, err := BuildGraph(p, cfg, nil)
	require.NoError(t, err)
	res, err := RunAnalyses(s)
	require.NoError(t, err)
	assert.Nil(t, res.Alias)
	assert.Zero(t, s.Store.NumEdgesWith(cpg.MayAliasEdge))
}
