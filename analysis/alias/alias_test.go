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

package alias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wimkeir/graft-sub000/analysis/controlflow"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/ir"
)

var (
	mainSig  = ir.MustParseSignature("<Demo: void main()>")
	otherSig = ir.MustParseSignature("<Demo: void other()>")
	newSig   = ir.MustParseSignature("<java.lang.Object: java.lang.Object create()>")
)

func obj(name string) *ir.Expr { return ir.NewLocal(name, "java.lang.Object") }

func build(t *testing.T, methods ...*ir.Method) *cpg.Store {
	t.Helper()
	s := cpg.NewStore()
	for _, m := range methods {
		_, err := controlflow.Build(s, m, nil)
		require.NoError(t, err)
	}
	return s
}

func TestIsReference(t *testing.T) {
	assert.True(t, IsReference("java.lang.String"))
	assert.True(t, IsReference("int[]"))
	assert.False(t, IsReference("int"))
	assert.False(t, IsReference("boolean"))
	assert.False(t, IsReference(""))
}

func TestCopiesAlias(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(obj("a"), ir.NewStaticCall(newSig))
	b.Assign(obj("b"), obj("a"))
	b.Assign(obj("c"), obj("b"))
	b.Assign(ir.NewLocal("i", "int"), ir.NewLocal("j", "int"))
	m := b.Build()
	s := build(t, m)

	res, err := Analyze(s, nil)
	require.NoError(t, err)
	a, bb, c := Var{m.Name(), "a"}, Var{m.Name(), "b"}, Var{m.Name(), "c"}
	assert.Equal(t, map[Var][]Var{bb: {a}, c: {bb}}, res.PointsTo)
	assert.Equal(t, []Var{bb, c}, res.Keys())
	assert.Equal(t, 2, res.EdgesAdded)
	assert.Equal(t, 0, res.Gaps)

	aliases, err := MayAlias(s, CanonicalLocal(s, bb))
	require.NoError(t, err)
	assert.ElementsMatch(t, []cpg.VertexID{CanonicalLocal(s, a), CanonicalLocal(s, c)}, aliases)
}

func TestAliasEdgesAreIdempotent(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(obj("x"), obj("y"))
	b.Assign(obj("y"), obj("x"))
	b.Assign(obj("x"), obj("y"))
	s := build(t, b.Build())

	first, err := Analyze(s, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.EdgesAdded)
	edges := s.Edges(cpg.MayAliasEdge)

	second, err := Analyze(s, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.EdgesAdded)
	assert.Equal(t, edges, s.Edges(cpg.MayAliasEdge))
	assert.Equal(t, first.PointsTo, second.PointsTo)
}

func TestVariablesAreMethodQualified(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(obj("x"), obj("y"))
	o := ir.NewMethodBuilder(otherSig)
	o.Assign(obj("y"), ir.NewStaticCall(newSig))
	main, other := b.Build(), o.Build()
	s := build(t, main, other)

	res, err := Analyze(s, nil)
	require.NoError(t, err)
	require.Len(t, res.PointsTo, 1)
	assert.Equal(t, []Var{{main.Name(), "y"}}, res.PointsTo[Var{main.Name(), "x"}])

	from := CanonicalLocal(s, Var{main.Name(), "x"})
	to := CanonicalLocal(s, Var{main.Name(), "y"})
	assert.True(t, s.HasEdge(cpg.MayAliasEdge, from, to))
	assert.NotEqual(t, CanonicalLocal(s, Var{other.Name(), "y"}), to)
}

func TestCanonicalLocalIsLowestID(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(obj("x"), ir.NewStaticCall(newSig))
	b.Assign(obj("x"), ir.NewStaticCall(newSig))
	m := b.Build()
	s := build(t, m)

	locals := s.VerticesWith(cpg.AstNode, cpg.PropName, "x").IDs()
	require.Len(t, locals, 2)
	assert.Equal(t, locals[0], CanonicalLocal(s, Var{m.Name(), "x"}))
	assert.Equal(t, cpg.NoVertex, CanonicalLocal(s, Var{m.Name(), "nope"}))
}

func TestLoopAssignmentsAlias(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.For(
		[]*ir.Stmt{ir.Assignment(obj("it"), obj("head"))},
		ir.NewLocal("more", "boolean"),
		[]*ir.Stmt{ir.Assignment(obj("it"), obj("next"))},
		nil)
	m := b.Build()
	s := build(t, m)

	res, err := Analyze(s, nil)
	require.NoError(t, err)
	assert.Equal(t, []Var{{m.Name(), "head"}, {m.Name(), "next"}}, res.PointsTo[Var{m.Name(), "it"}])
	assert.Equal(t, 2, res.EdgesAdded)
}
