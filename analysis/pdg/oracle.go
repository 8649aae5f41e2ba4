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

package pdg

import (
	"sort"

	"github.com/wimkeir/graft-sub000/analysis/astgraph"
	"github.com/wimkeir/graft-sub000/analysis/controlflow"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/ir"
	"golang.org/x/tools/container/intsets"
)

type definition struct {
	stmt     int
	variable string
}

// CFGReachingDefs is a reaching definitions oracle for one method, computed over its control flow graph with the
// classic gen/kill worklist algorithm. A statement defines the Local targets of its assignments; parameters are
// defined by identity statements.
type CFGReachingDefs struct {
	method string
	defs   []definition
	in     map[cpg.VertexID]*intsets.Sparse
	cfg    *controlflow.Result
}

// NewCFGReachingDefs computes the reaching definitions of the method whose control flow graph is cfg.
func NewCFGReachingDefs(store *cpg.Store, cfg *controlflow.Result) *CFGReachingDefs {
	r := &CFGReachingDefs{
		method: cfg.Method,
		in:     map[cpg.VertexID]*intsets.Sparse{},
		cfg:    cfg,
	}
	vertices := store.VerticesWith(cpg.CfgNode, cpg.PropMethod, cfg.Method).IDs()
	gen := map[cpg.VertexID]*intsets.Sparse{}
	byVar := map[string]*intsets.Sparse{}
	for _, v := range vertices {
		stmt, ok := store.Vertex(v).Props.Int(cpg.PropStmt)
		if !ok {
			continue
		}
		for _, name := range astgraph.DefinedVars(store, v) {
			d := len(r.defs)
			r.defs = append(r.defs, definition{stmt: stmt, variable: name})
			if gen[v] == nil {
				gen[v] = &intsets.Sparse{}
			}
			gen[v].Insert(d)
			if byVar[name] == nil {
				byVar[name] = &intsets.Sparse{}
			}
			byVar[name].Insert(d)
		}
	}
	kill := map[cpg.VertexID]*intsets.Sparse{}
	for v, g := range gen {
		k := &intsets.Sparse{}
		for _, d := range g.AppendTo(nil) {
			k.UnionWith(byVar[r.defs[d].variable])
		}
		k.DifferenceWith(g)
		kill[v] = k
	}

	out := map[cpg.VertexID]*intsets.Sparse{}
	inMethod := map[cpg.VertexID]bool{}
	for _, v := range vertices {
		out[v] = &intsets.Sparse{}
		r.in[v] = &intsets.Sparse{}
		inMethod[v] = true
	}
	worklist := append([]cpg.VertexID(nil), vertices...)
	queued := map[cpg.VertexID]bool{}
	for _, v := range vertices {
		queued[v] = true
	}
	for len(worklist) > 0 {
		v := worklist[0]
		worklist = worklist[1:]
		queued[v] = false

		in := r.in[v]
		in.Clear()
		for _, p := range store.In(v, cpg.CfgEdge) {
			if inMethod[p] {
				in.UnionWith(out[p])
			}
		}
		newOut := &intsets.Sparse{}
		newOut.Copy(in)
		if k := kill[v]; k != nil {
			newOut.DifferenceWith(k)
		}
		if g := gen[v]; g != nil {
			newOut.UnionWith(g)
		}
		if newOut.Equals(out[v]) {
			continue
		}
		out[v] = newOut
		for _, s := range store.Out(v, cpg.CfgEdge) {
			if inMethod[s] && !queued[s] {
				queued[s] = true
				worklist = append(worklist, s)
			}
		}
	}
	return r
}

// DefsOf implements ir.ReachingDefinitions
func (r *CFGReachingDefs) DefsOf(variable string, use ir.StmtRef) []ir.StmtRef {
	if use.Method != r.method {
		return nil
	}
	v, ok := r.cfg.Vertices[use.Index]
	if !ok {
		return nil
	}
	var refs []ir.StmtRef
	for _, d := range r.in[v].AppendTo(nil) {
		if r.defs[d].variable == variable {
			refs = append(refs, ir.StmtRef{Method: r.method, Index: r.defs[d].stmt})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Index < refs[j].Index })
	return refs
}
