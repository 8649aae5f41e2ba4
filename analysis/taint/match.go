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
	"github.com/wimkeir/graft-sub000/analysis/astgraph"
	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/interproc"
	"github.com/wimkeir/graft-sub000/analysis/traversal"
)

// problem is the state of the analysis of one taint tracking problem.
type problem struct {
	store    *cpg.Store
	spec     *config.TaintSpec
	maxPaths int
	logger   *config.LogGroup
	stats    *Stats

	// matches caches the descriptions matching each signature
	sources    map[string]match
	sinks      map[string]match
	sanitizers map[string]match
}

type match struct {
	desc config.Description
	ok   bool
}

func newProblem(store *cpg.Store, spec *config.TaintSpec, maxPaths int, logger *config.LogGroup,
	stats *Stats) *problem {
	return &problem{
		store:      store,
		spec:       spec,
		maxPaths:   maxPaths,
		logger:     logger,
		stats:      stats,
		sources:    map[string]match{},
		sinks:      map[string]match{},
		sanitizers: map[string]match{},
	}
}

func cached(cache map[string]match, sig string, lookup func(string) (config.Description, bool)) (config.Description,
	bool) {
	if m, ok := cache[sig]; ok {
		return m.desc, m.ok
	}
	d, ok := lookup(sig)
	cache[sig] = match{desc: d, ok: ok}
	return d, ok
}

// source returns the source description matching the invocation vertex inv
func (p *problem) source(inv *cpg.Vertex) (config.Description, bool) {
	return cached(p.sources, inv.Props.String(cpg.PropSignature), p.spec.IsSource)
}

// sink returns the sink description matching the invocation vertex inv
func (p *problem) sink(inv *cpg.Vertex) (config.Description, bool) {
	return cached(p.sinks, inv.Props.String(cpg.PropSignature), p.spec.IsSink)
}

// sanitizer returns the sanitizer description matching the invocation vertex inv
func (p *problem) sanitizer(inv *cpg.Vertex) (config.Description, bool) {
	return cached(p.sanitizers, inv.Props.String(cpg.PropSignature), p.spec.IsSanitizer)
}

// isSanitizerCall returns true if the edge leads to an invocation of a sanitizer
func (p *problem) isSanitizerCall(e *cpg.Edge) bool {
	return p.isSanitizer(e.To)
}

// isSanitizer returns true if v is an invocation of a sanitizer
func (p *problem) isSanitizer(v cpg.VertexID) bool {
	vertex := p.store.Vertex(v)
	if vertex.Kind != cpg.KindInvokeExpr {
		return false
	}
	_, ok := p.sanitizer(vertex)
	return ok
}

// sourceCallAt returns the first invocation of a source under the CFG vertex v, or nil.
func (p *problem) sourceCallAt(v cpg.VertexID) *cpg.Vertex {
	for _, inv := range astgraph.InvokesUnder(p.store, v) {
		if _, ok := p.source(inv); ok {
			return inv
		}
	}
	return nil
}

// isOrigin is the stopping condition of the backward walks. A statement is an origin when the value it assigns or
// returns calls a return-tainting source outside of a sanitizer, or when the walk reached it through an argument
// that it passes to a source: a variable tainted by an argument-tainting source, or the argument of a linked call
// bound to the parameter the walk came from.
func (p *problem) isOrigin(tr *traversal.Traverser) bool {
	v := p.store.Vertex(tr.Vertex)
	if v.Label != cpg.CfgNode {
		return false
	}
	if p.valueSource(v.ID) != nil {
		return true
	}
	prev := tr.Previous()
	if prev == cpg.NoVertex {
		return false
	}
	for _, e := range p.store.OutEdges(prev, cpg.PdgEdge) {
		if e.To == v.ID && p.taintsArgument(v.ID, e.Role) {
			return true
		}
	}
	index, entry, ok := p.parameter(p.store.Vertex(prev))
	if !ok {
		return false
	}
	inv := interproc.CallInto(p.store, v.ID, entry)
	if inv == cpg.NoVertex {
		return false
	}
	args := astgraph.Args(p.store, inv)
	return index < len(args) && args[index] != cpg.NoVertex && p.returnSourceUnder(args[index]) != nil
}

// valueRoots returns the value subtrees of the CFG vertex v, including those of the init and update assignments
// of a loop header.
func (p *problem) valueRoots(v cpg.VertexID) []cpg.VertexID {
	var roots []cpg.VertexID
	if value := astgraph.Child(p.store, v, cpg.RoleValue); value != cpg.NoVertex {
		roots = append(roots, value)
	}
	for _, e := range p.store.OutEdges(v, cpg.AstEdge) {
		if e.Role != cpg.RoleInit && e.Role != cpg.RoleUpdate {
			continue
		}
		if value := astgraph.Child(p.store, e.To, cpg.RoleValue); value != cpg.NoVertex {
			roots = append(roots, value)
		}
	}
	return roots
}

// valueSource returns the first return-tainting source called by a value subtree of v outside of a sanitizer, or
// nil.
func (p *problem) valueSource(v cpg.VertexID) *cpg.Vertex {
	for _, root := range p.valueRoots(v) {
		if src := p.returnSourceUnder(root); src != nil {
			return src
		}
	}
	return nil
}

// originCall returns the source invocation of an origin.
func (p *problem) originCall(origin cpg.VertexID) *cpg.Vertex {
	if src := p.valueSource(origin); src != nil {
		return src
	}
	return p.sourceCallAt(origin)
}

// returnSourceUnder returns the first invocation of a return-tainting source in the subtree of root that is not
// under a sanitizer call, or nil.
func (p *problem) returnSourceUnder(root cpg.VertexID) *cpg.Vertex {
	var found *cpg.Vertex
	if p.isSanitizer(root) {
		return nil
	}
	astgraph.Walk(p.store, root, p.isSanitizerCall, func(v *cpg.Vertex) {
		if found != nil || v.Kind != cpg.KindInvokeExpr {
			return
		}
		if d, ok := p.source(v); ok && d.TaintsReturn {
			found = v
		}
	})
	return found
}

// sunkVariable is a variable read by a sensitive argument of a sink call
type sunkVariable struct {
	// site is the CFG vertex of the sink call
	site cpg.VertexID
	// invoke is the invocation vertex of the sink
	invoke *cpg.Vertex
	// arg is the index of the sensitive argument
	arg  int
	name string
}

// directFlow is a sink call whose sensitive argument directly calls a source
type directFlow struct {
	site   cpg.VertexID
	invoke *cpg.Vertex
	source *cpg.Vertex
}

// sunkVariables returns the variables sunk by the sink calls of the problem, in the order of the invocation
// vertices, and the sink calls that receive the result of a source directly.
func (p *problem) sunkVariables() ([]sunkVariable, []directFlow) {
	var sunk []sunkVariable
	var direct []directFlow
	invokes := p.store.Vertices(cpg.AstNode, cpg.KindInvokeExpr)
	for invokes.HasNext() {
		inv := invokes.Next()
		desc, ok := p.sink(inv)
		if !ok {
			continue
		}
		site := astgraph.OwnerOf(p.store, inv.ID)
		if site == cpg.NoVertex {
			continue
		}
		p.stats.Sinks++
		seen := map[string]bool{}
		for i, arg := range astgraph.Args(p.store, inv.ID) {
			if arg == cpg.NoVertex || !desc.IsArgTainted(i) || p.isSanitizer(arg) {
				continue
			}
			if src := p.returnSourceUnder(arg); src != nil {
				direct = append(direct, directFlow{site: site, invoke: inv, source: src})
			}
			for _, local := range astgraph.LocalsUnder(p.store, arg, p.isSanitizerCall) {
				name := local.Props.String(cpg.PropName)
				if seen[name] {
					continue
				}
				seen[name] = true
				sunk = append(sunk, sunkVariable{site: site, invoke: inv, arg: i, name: name})
			}
		}
	}
	return sunk, direct
}

// sanitizes returns true if the CFG vertex v calls a sanitizer on one of the variables of w
func (p *problem) sanitizes(v cpg.VertexID, w *walk) bool {
	names := w.vars[p.store.Vertex(v).Method()]
	if len(names) == 0 {
		return false
	}
	for _, inv := range astgraph.InvokesUnder(p.store, v) {
		desc, ok := p.sanitizer(inv)
		if !ok {
			continue
		}
		for i, arg := range astgraph.Args(p.store, inv.ID) {
			if arg == cpg.NoVertex || !desc.IsArgSanitized(i) {
				continue
			}
			for _, local := range astgraph.LocalsUnder(p.store, arg, nil) {
				if names[local.Props.String(cpg.PropName)] {
					return true
				}
			}
		}
	}
	return false
}

// severs returns true if the CFG vertex v redefines one of the variables of w and is not on w
func (p *problem) severs(v cpg.VertexID, w *walk) bool {
	if w.on[v] {
		return false
	}
	names := w.vars[p.store.Vertex(v).Method()]
	if len(names) == 0 {
		return false
	}
	for _, d := range astgraph.DefinedVars(p.store, v) {
		if names[d] {
			return true
		}
	}
	return false
}
