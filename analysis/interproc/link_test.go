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

package interproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wimkeir/graft-sub000/analysis/controlflow"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/ir"
)

var (
	mainSig   = ir.MustParseSignature("<App: void main()>")
	helperSig = ir.MustParseSignature("<App: java.lang.String helper(int)>")
	getString = ir.MustParseSignature("<Lib: java.lang.String get()>")
	getObject = ir.MustParseSignature("<Lib: java.lang.Object get()>")
	printSig  = ir.MustParseSignature("<java.io.PrintStream: void println(java.lang.String)>")
)

func str(name string) *ir.Expr { return ir.NewLocal(name, "java.lang.String") }

func buildAll(t *testing.T, methods ...*ir.Method) (*cpg.Store, map[string]*controlflow.Result) {
	t.Helper()
	s := cpg.NewStore()
	results := map[string]*controlflow.Result{}
	for _, m := range methods {
		res, err := controlflow.Build(s, m, nil)
		require.NoError(t, err)
		results[m.Name()] = res
	}
	return s, results
}

func helper() *ir.Method {
	b := ir.NewMethodBuilder(helperSig)
	b.Identity("n", "int", 0)
	b.Assign(str("r"), ir.NewConst("java.lang.String", "\"ok\""))
	b.Return(str("r"))
	return b.Build()
}

func vertex(t *testing.T, res *controlflow.Result, i int) cpg.VertexID {
	t.Helper()
	v, ok := res.VertexOf(i)
	require.True(t, ok)
	return v
}

func TestLinkUniqueCallee(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("s"), ir.NewStaticCall(helperSig, ir.NewConst("int", "1"))) // 1
	b.Invoke(ir.NewStaticCall(printSig, str("s")))                           // 2
	main := b.Build()
	s, results := buildAll(t, main, helper())

	res := Link(s, nil)
	assert.Equal(t, 1, res.Linked)
	assert.Equal(t, 1, res.CountGaps(NoCallee))

	site := vertex(t, results[main.Name()], 1)
	callee := results[helperSig.String()]
	assert.Equal(t, []cpg.VertexID{callee.Entry}, Callees(s, site))
	assert.Equal(t, []cpg.VertexID{site}, CallSites(s, callee.Entry))
	assert.True(t, s.HasEdge(cpg.RetEdge, callee.Exit, vertex(t, results[main.Name()], 2)))
	assert.NotEqual(t, cpg.NoVertex, CallInto(s, site, callee.Entry))
	require.NoError(t, cpg.Validate(s))
}

func TestLinkIsIdempotent(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("s"), ir.NewStaticCall(helperSig, ir.NewConst("int", "1")))
	main := b.Build()
	s, _ := buildAll(t, main, helper())

	Link(s, nil)
	calls, rets := s.NumEdgesWith(cpg.CallEdge), s.NumEdgesWith(cpg.RetEdge)
	Link(s, nil)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rets)
	assert.Equal(t, calls, s.NumEdgesWith(cpg.CallEdge))
	assert.Equal(t, rets, s.NumEdgesWith(cpg.RetEdge))
}

func TestAmbiguousReturnTypeIsNotLinked(t *testing.T) {
	getS := ir.NewMethodBuilder(getString)
	getS.Return(ir.NewConst("java.lang.String", "\"a\""))
	getO := ir.NewMethodBuilder(getObject)
	getO.Return(ir.NewConst("java.lang.Object", "null"))

	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("s"), ir.NewStaticCall(getString))
	b.Invoke(ir.NewStaticCall(printSig, str("s")))
	s, _ := buildAll(t, b.Build(), getS.Build(), getO.Build())

	res := Link(s, nil)
	assert.Equal(t, 0, res.Linked)
	assert.Equal(t, 1, res.CountGaps(AmbiguousCallee))
	assert.Equal(t, 0, s.NumEdgesWith(cpg.CallEdge))
	assert.Equal(t, 0, s.NumEdgesWith(cpg.RetEdge))
	for _, g := range res.Gaps {
		if g.Kind == AmbiguousCallee {
			assert.Equal(t, 2, g.Candidates)
			assert.Equal(t, "Lib.get()", g.CallKey)
		}
	}
}

func TestCallInConditionHasNoReturnSite(t *testing.T) {
	isOk := ir.MustParseSignature("<App: boolean ok()>")
	ok := ir.NewMethodBuilder(isOk)
	ok.Return(ir.NewConst("boolean", "true"))

	b := ir.NewMethodBuilder(mainSig)
	b.If(ir.NewStaticCall(isOk), func(b *ir.MethodBuilder) {
		b.Invoke(ir.NewStaticCall(printSig, ir.NewConst("java.lang.String", "\"x\"")))
	})
	s, _ := buildAll(t, b.Build(), ok.Build())

	res := Link(s, nil)
	assert.Equal(t, 0, res.Linked)
	assert.Equal(t, 1, res.CountGaps(NoReturnSite))
	assert.Equal(t, 1, res.CountGaps(NoCallee))
}

func TestRecursiveCall(t *testing.T) {
	rec := ir.MustParseSignature("<App: void loop()>")
	b := ir.NewMethodBuilder(rec)
	b.Invoke(ir.NewStaticCall(rec)) // 1
	m := b.Build()
	s, results := buildAll(t, m)

	res := Link(s, nil)
	assert.Equal(t, 1, res.Linked)
	r := results[m.Name()]
	assert.True(t, s.HasEdge(cpg.CallEdge, vertex(t, r, 1), r.Entry))
	assert.True(t, s.HasEdge(cpg.RetEdge, r.Exit, r.Exit))
}

func TestGapKindString(t *testing.T) {
	assert.Equal(t, "ambiguous callee", AmbiguousCallee.String())
	assert.Equal(t, "GapKind(42)", GapKind(42).String())
}
