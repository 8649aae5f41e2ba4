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

package taint

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/controlflow"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/interproc"
	"github.com/wimkeir/graft-sub000/analysis/ir"
	"github.com/wimkeir/graft-sub000/analysis/pdg"
)

var (
	mainSig     = ir.MustParseSignature("<Demo: void main()>")
	sourceSig   = ir.MustParseSignature("<Demo: java.lang.String source()>")
	sinkSig     = ir.MustParseSignature("<Demo: void sink(java.lang.String)>")
	sanitizeSig = ir.MustParseSignature("<Demo: void sanitize(java.lang.String)>")
	readSig     = ir.MustParseSignature("<Demo: void read(java.lang.String)>")
)

func testSpec() *config.TaintSpec {
	return &config.TaintSpec{
		Sources: []config.Description{
			{Signature: sourceSig.String(), TaintsReturn: true},
			{Signature: readSig.String(), TaintedArgs: []int{0}},
		},
		Sinks:      []config.Description{{Signature: sinkSig.String()}},
		Sanitizers: []config.Description{{Signature: ".*sanitize.*"}},
	}
}

func str(name string) *ir.Expr { return ir.NewLocal(name, "java.lang.String") }

func source() *ir.Expr { return ir.NewStaticCall(sourceSig) }

func sink(b *ir.MethodBuilder, e *ir.Expr) { b.Invoke(ir.NewStaticCall(sinkSig, e)) }

func sanitize(b *ir.MethodBuilder, name string) { b.Invoke(ir.NewStaticCall(sanitizeSig, str(name))) }

func buildGraph(t *testing.T, methods ...*ir.Method) *cpg.Store {
	t.Helper()
	s := cpg.NewStore()
	for _, m := range methods {
		res, err := controlflow.Build(s, m, nil)
		require.NoError(t, err)
		_, err = pdg.Build(s, m, res, nil, nil)
		require.NoError(t, err)
	}
	interproc.Link(s, nil)
	require.NoError(t, cpg.Validate(s))
	return s
}

// at returns the vertex of statement i of method m
func at(t *testing.T, s *cpg.Store, m *ir.Method, i int) cpg.VertexID {
	t.Helper()
	for it := s.VerticesWith(cpg.CfgNode, cpg.PropMethod, m.Name()); it.HasNext(); {
		v := it.Next()
		if stmt, ok := v.Props.Int(cpg.PropStmt); ok && stmt == i {
			return v.ID
		}
	}
	require.Failf(t, "no vertex", "statement %d of %s", i, m.Name())
	return cpg.NoVertex
}

func analyze(t *testing.T, s *cpg.Store) *Result {
	t.Helper()
	res, err := AnalyzeProblem(s, testSpec(), 0, nil)
	require.NoError(t, err)
	return res
}

func TestScenarioVulnerable(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("x"), source()) // 1
	sink(b, str("x"))            // 2
	m := b.Build()
	s := buildGraph(t, m)

	res := analyze(t, s)
	require.Len(t, res.Vulnerabilities, 1)
	v := res.Vulnerabilities[0]
	assert.Equal(t, "x", v.Variable)
	assert.Equal(t, at(t, s, m, 1), v.Source)
	assert.Equal(t, at(t, s, m, 2), v.Sink)
	assert.Equal(t, []cpg.VertexID{v.Source, v.Sink}, v.Path)
	assert.Equal(t, 1, v.PathCount)
	assert.Equal(t, m.Name(), v.Method)
	assert.Equal(t, sourceSig.String(), v.SourceSignature)
	assert.Equal(t, sinkSig.String(), v.SinkSignature)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, 1, res.Stats.Sinks)
	assert.Equal(t, 1, res.Stats.Candidates)
}

func TestScenarioSanitized(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("x"), source()) // 1
	sanitize(b, "x")             // 2
	sink(b, str("x"))            // 3
	s := buildGraph(t, b.Build())

	res := analyze(t, s)
	assert.Empty(t, res.Vulnerabilities)
	assert.Equal(t, 1, res.Stats.Candidates)
	assert.Equal(t, 1, res.Stats.Sanitized)
}

func TestScenarioOneSafeBranch(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("x"), source())                                          // 1
	b.Assign(ir.NewLocal("c", "boolean"), ir.NewConst("boolean", "true")) // 2
	b.If(ir.NewLocal("c", "boolean"), func(b *ir.MethodBuilder) {         // 3
		sanitize(b, "x") // 4
	})
	sink(b, str("x")) // 5
	m := b.Build()
	s := buildGraph(t, m)

	res := analyze(t, s)
	require.Len(t, res.Vulnerabilities, 1)
	v := res.Vulnerabilities[0]
	assert.Equal(t, 1, v.PathCount)
	assert.NotContains(t, v.Path, at(t, s, m, 4))
	assert.Contains(t, v.Path, at(t, s, m, 3))
	assert.Equal(t, at(t, s, m, 5), v.Path[len(v.Path)-1])
	assert.Equal(t, 2, res.Stats.PathsExplored)
	assert.Equal(t, 1, res.Stats.Sanitized)
}

func TestSanitizerInsideSinkArgument(t *testing.T) {
	sanitized := ir.MustParseSignature("<Demo: java.lang.String sanitizeString(java.lang.String)>")
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("x"), source())
	sink(b, ir.NewStaticCall(sanitized, str("x")))
	s := buildGraph(t, b.Build())

	res := analyze(t, s)
	assert.Empty(t, res.Vulnerabilities)
	assert.Equal(t, 0, res.Stats.SunkVariables)
}

func TestSanitizedSourceAssignment(t *testing.T) {
	sanitized := ir.MustParseSignature("<Demo: java.lang.String sanitizeString(java.lang.String)>")
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("x"), ir.NewStaticCall(sanitized, source()))
	sink(b, str("x"))
	s := buildGraph(t, b.Build())

	res := analyze(t, s)
	assert.Empty(t, res.Vulnerabilities)
	assert.Equal(t, 1, res.Stats.SunkVariables)
	assert.Equal(t, 0, res.Stats.Candidates)
}

func TestReassignmentSeversTaint(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("x"), source())                                          // 1
	b.Assign(ir.NewLocal("c", "boolean"), ir.NewConst("boolean", "true")) // 2
	b.If(ir.NewLocal("c", "boolean"), func(b *ir.MethodBuilder) {         // 3
		b.Assign(str("x"), ir.NewConst("java.lang.String", "\"safe\"")) // 4
	})
	sink(b, str("x")) // 5
	m := b.Build()
	s := buildGraph(t, m)

	res := analyze(t, s)
	require.Len(t, res.Vulnerabilities, 1)
	assert.Equal(t, 1, res.Vulnerabilities[0].PathCount)
	assert.NotContains(t, res.Vulnerabilities[0].Path, at(t, s, m, 4))
	assert.Equal(t, 1, res.Stats.Severed)
}

func TestOverwrittenBeforeSink(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("x"), source())
	b.Assign(str("x"), ir.NewConst("java.lang.String", "\"safe\""))
	sink(b, str("x"))
	s := buildGraph(t, b.Build())

	res := analyze(t, s)
	assert.Empty(t, res.Vulnerabilities)
	assert.Equal(t, 0, res.Stats.Candidates)
}

func TestFlowThroughAssignments(t *testing.T) {
	concat := ir.MustParseSignature("<java.lang.String: java.lang.String concat(java.lang.String)>")
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("x"), source())                                       // 1
	b.Assign(str("y"), ir.NewInstanceCall(concat, str("x"), str("x"))) // 2
	b.Assign(str("z"), str("y"))                                       // 3
	sink(b, str("z"))                                                  // 4
	m := b.Build()
	s := buildGraph(t, m)

	res := analyze(t, s)
	require.Len(t, res.Vulnerabilities, 1)
	assert.Equal(t, "z", res.Vulnerabilities[0].Variable)
	assert.Equal(t, at(t, s, m, 1), res.Vulnerabilities[0].Source)
}

func TestWhileLoopTerminates(t *testing.T) {
	i := ir.NewLocal("i", "int")
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("x"), source())                                                        // 1
	b.Assign(i, ir.NewConst("int", "0"))                                                // 2
	b.While(ir.NewBinary("<", i, ir.NewConst("int", "10")), func(b *ir.MethodBuilder) { // 3
		sink(b, str("x"))                                          // 4
		b.Assign(i, ir.NewBinary("+", i, ir.NewConst("int", "1"))) // 5
	})
	m := b.Build()
	s := buildGraph(t, m)

	res := analyze(t, s)
	require.Len(t, res.Vulnerabilities, 1)
	v := res.Vulnerabilities[0]
	assert.Equal(t, 1, v.PathCount)
	assert.Equal(t, []cpg.VertexID{at(t, s, m, 1), at(t, s, m, 2), at(t, s, m, 3), at(t, s, m, 4)}, v.Path)
}

func TestTaintedLoopVariable(t *testing.T) {
	x := str("x")
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(x, source())                                            // 1
	b.While(ir.NewLocal("c", "boolean"), func(b *ir.MethodBuilder) { // 2
		sink(b, x)                                                                  // 3
		b.Assign(x, ir.NewBinary("+", x, ir.NewConst("java.lang.String", "\"a\""))) // 4
	})
	sink(b, x) // 5
	m := b.Build()
	s := buildGraph(t, m)

	res := analyze(t, s)
	require.Len(t, res.Vulnerabilities, 2)
	for _, v := range res.Vulnerabilities {
		assert.Equal(t, at(t, s, m, 1), v.Source)
		assert.GreaterOrEqual(t, v.PathCount, 1)
	}
	assert.Equal(t, at(t, s, m, 3), res.Vulnerabilities[0].Sink)
	assert.Equal(t, at(t, s, m, 5), res.Vulnerabilities[1].Sink)
}

func TestDirectSourceInSink(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	sink(b, source())
	m := b.Build()
	s := buildGraph(t, m)

	res := analyze(t, s)
	require.Len(t, res.Vulnerabilities, 1)
	v := res.Vulnerabilities[0]
	assert.Equal(t, v.Source, v.Sink)
	assert.Equal(t, []cpg.VertexID{at(t, s, m, 1)}, v.Path)
}

func TestArgumentTaintingSource(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("buf"), ir.NewConst("java.lang.String", "\"\"")) // 1
	b.Invoke(ir.NewStaticCall(readSig, str("buf")))               // 2
	sink(b, str("buf"))                                           // 3
	m := b.Build()
	s := buildGraph(t, m)

	res := analyze(t, s)
	require.Len(t, res.Vulnerabilities, 1)
	assert.Equal(t, at(t, s, m, 2), res.Vulnerabilities[0].Source)
	assert.Equal(t, readSig.String(), res.Vulnerabilities[0].SourceSignature)
}

func TestArgumentTaintingSourceDoesNotTaintResult(t *testing.T) {
	readInto := ir.MustParseSignature("<Demo: int readInto(java.lang.String)>")
	spec := testSpec()
	spec.Sources = append(spec.Sources, config.Description{Signature: readInto.String(), TaintedArgs: []int{0}})
	n := ir.NewLocal("n", "int")
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("buf"), ir.NewConst("java.lang.String", "\"a\"")) // 1
	b.Assign(n, ir.NewStaticCall(readInto, str("buf")))            // 2
	sink(b, n)                                                     // 3
	sink(b, str("buf"))                                            // 4
	m := b.Build()
	s := buildGraph(t, m)

	res, err := AnalyzeProblem(s, spec, 0, nil)
	require.NoError(t, err)
	require.Len(t, res.Vulnerabilities, 1)
	v := res.Vulnerabilities[0]
	assert.Equal(t, at(t, s, m, 2), v.Source)
	assert.Equal(t, at(t, s, m, 4), v.Sink)
	assert.Equal(t, "buf", v.Variable)
}

func callee(sig ir.Signature) *ir.Method {
	b := ir.NewMethodBuilder(sig)
	b.Identity("p", "java.lang.String", 0) // 1
	sink(b, str("p"))                      // 2
	return b.Build()
}

func TestInterproceduralLinked(t *testing.T) {
	helper := ir.MustParseSignature("<Demo: void helper(java.lang.String)>")
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("x"), source())                 // 1
	b.Invoke(ir.NewStaticCall(helper, str("x"))) // 2
	main := b.Build()
	h := callee(helper)
	s := buildGraph(t, main, h)

	res := analyze(t, s)
	require.Len(t, res.Vulnerabilities, 1)
	v := res.Vulnerabilities[0]
	assert.Equal(t, at(t, s, main, 1), v.Source)
	assert.Equal(t, at(t, s, h, 2), v.Sink)
	assert.Equal(t, h.Name(), v.Method)
	assert.Contains(t, v.Path, s.EntryOf(h.Name()))
	assert.Contains(t, v.Path, at(t, s, main, 2))
}

func TestInterproceduralAmbiguous(t *testing.T) {
	helper := ir.MustParseSignature("<Demo: void helper(java.lang.String)>")
	overload := ir.MustParseSignature("<Demo: int helper(java.lang.String)>")
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("x"), source())
	b.Invoke(ir.NewStaticCall(helper, str("x")))
	s := buildGraph(t, b.Build(), callee(helper), callee(overload))

	assert.Equal(t, 0, s.NumEdgesWith(cpg.CallEdge))
	res := analyze(t, s)
	assert.Empty(t, res.Vulnerabilities)
	assert.Equal(t, 2, res.Stats.Sinks)
}

func TestTaintedReturnValue(t *testing.T) {
	getSig := ir.MustParseSignature("<Demo: java.lang.String get()>")
	g := ir.NewMethodBuilder(getSig)
	g.Assign(str("r"), source()) // 1
	g.Return(str("r"))           // 2
	get := g.Build()

	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("y"), ir.NewStaticCall(getSig)) // 1
	sink(b, str("y"))                            // 2
	main := b.Build()
	s := buildGraph(t, main, get)

	res := analyze(t, s)
	require.Len(t, res.Vulnerabilities, 1)
	v := res.Vulnerabilities[0]
	assert.Equal(t, at(t, s, get, 1), v.Source)
	assert.Equal(t, at(t, s, main, 2), v.Sink)
	assert.Equal(t, []cpg.VertexID{at(t, s, get, 1), at(t, s, get, 2), s.ExitOf(get.Name()), at(t, s, main, 2)},
		v.Path)
}

func TestInvalidSourceDescription(t *testing.T) {
	s := cpg.NewStore()
	spec := &config.TaintSpec{Sources: []config.Description{{Signature: sourceSig.String()}}}
	_, err := AnalyzeProblem(s, spec, 0, nil)
	assert.True(t, errors.Is(err, config.ErrInvalidDescription))
}

func TestFingerprintIsStable(t *testing.T) {
	build := func(extra bool) *Result {
		var methods []*ir.Method
		if extra {
			other := ir.NewMethodBuilder(ir.MustParseSignature("<Demo: void other()>"))
			other.Assign(str("unused"), ir.NewConst("java.lang.String", "\"u\""))
			methods = append(methods, other.Build())
		}
		b := ir.NewMethodBuilder(mainSig)
		b.Assign(str("x"), source())
		sink(b, str("x"))
		methods = append(methods, b.Build())
		return analyze(t, buildGraph(t, methods...))
	}
	a, b := build(false), build(true)
	require.Len(t, a.Vulnerabilities, 1)
	require.Len(t, b.Vulnerabilities, 1)
	assert.NotEqual(t, a.Vulnerabilities[0].Source, b.Vulnerabilities[0].Source)
	assert.Equal(t, a.Vulnerabilities[0].ID, b.Vulnerabilities[0].ID)
}

func TestAnalyzeWritesReports(t *testing.T) {
	b := ir.NewMethodBuilder(mainSig)
	b.Assign(str("x"), source())
	sink(b, str("x"))
	s := buildGraph(t, b.Build())

	cfg := config.NewDefault()
	cfg.ReportPaths = true
	cfg.ReportsDir = t.TempDir()
	cfg.TaintTrackingProblems = []config.TaintSpec{*testSpec(), *testSpec()}
	logger := config.NewLogGroupWithLevel(config.ErrLevel)
	res, err := Analyze(s, cfg, logger)
	require.NoError(t, err)
	// both problems find the same pair
	require.Len(t, res.Vulnerabilities, 1)
	assert.Equal(t, 2, res.Stats.Sinks)

	files, err := filepath.Glob(filepath.Join(cfg.ReportsDir, "flow-*.out"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "Variable: x")
	assert.Contains(t, string(content), "Trace:")

	var buf bytes.Buffer
	require.NoError(t, res.WriteYAML(&buf))
	assert.True(t, strings.Contains(buf.String(), "variable: x"))
	assert.Contains(t, buf.String(), "paths-explored: 2")
}
