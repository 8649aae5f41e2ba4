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
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/interproc"
	"github.com/wimkeir/graft-sub000/analysis/traversal"
)

// walk is a backward walk from a sink to a source along dependence edges
type walk struct {
	// path goes from the sink call to the source call
	path []cpg.VertexID
	on   map[cpg.VertexID]bool
	// vars are the variables carrying the taint, per method
	vars map[string]map[string]bool
}

func newWalk(store *cpg.Store, s sunkVariable, path []cpg.VertexID) *walk {
	w := &walk{path: path, on: map[cpg.VertexID]bool{}, vars: map[string]map[string]bool{}}
	add := func(method, name string) {
		if w.vars[method] == nil {
			w.vars[method] = map[string]bool{}
		}
		w.vars[method][name] = true
	}
	add(store.Vertex(s.site).Method(), s.name)
	for i, v := range path {
		w.on[v] = true
		if i == 0 {
			continue
		}
		method := store.Vertex(v).Method()
		for _, name := range astgraph.DefinedVars(store, v) {
			add(method, name)
		}
	}
	return w
}

// backwardWalks returns the origins reached by walking backwards from the sunk variable, in the order they are
// found, with the walks that reached each of them.
func (p *problem) backwardWalks(s sunkVariable) ([]cpg.VertexID, map[cpg.VertexID][]*walk, error) {
	t := traversal.New(p.store).
		V(s.site).
		In(cpg.PdgEdge, s.name).
		Repeat(traversal.Anon().Union(
			traversal.Anon().In(cpg.PdgEdge),
			traversal.Anon().FlatMap(p.parameterArguments),
			traversal.Anon().FlatMap(p.calleeReturns),
			traversal.Anon().FlatMap(p.argSourceUsers))).
		SimplePath().
		TestFirst().
		UntilTraverser(p.isOrigin).
		Limit(p.maxPaths)

	var origins []cpg.VertexID
	walks := map[cpg.VertexID][]*walk{}
	for {
		tr, ok := t.NextTraverser()
		if !ok {
			break
		}
		if _, seen := walks[tr.Vertex]; !seen {
			origins = append(origins, tr.Vertex)
		}
		walks[tr.Vertex] = append(walks[tr.Vertex], newWalk(p.store, s, tr.Path()))
	}
	return origins, walks, t.Err()
}

// parameterArguments maps a parameter definition to the definitions of the arguments passed for that parameter at
// every linked call site. A call site whose argument calls a source is itself returned.
func (p *problem) parameterArguments(v *cpg.Vertex) []cpg.VertexID {
	index, entry, ok := p.parameter(v)
	if !ok {
		return nil
	}
	var next []cpg.VertexID
	for _, site := range interproc.CallSites(p.store, entry) {
		inv := interproc.CallInto(p.store, site, entry)
		if inv == cpg.NoVertex {
			continue
		}
		args := astgraph.Args(p.store, inv)
		if index >= len(args) || args[index] == cpg.NoVertex {
			continue
		}
		if p.returnSourceUnder(args[index]) != nil {
			next = append(next, site)
		}
		for _, local := range astgraph.LocalsUnder(p.store, args[index], nil) {
			name := local.Props.String(cpg.PropName)
			for _, e := range p.store.InEdges(site, cpg.PdgEdge) {
				if e.Role == name {
					next = append(next, e.From)
				}
			}
		}
	}
	return next
}

// parameter returns the index of the parameter defined by the identity statement v, with the entry of its method.
func (p *problem) parameter(v *cpg.Vertex) (int, cpg.VertexID, bool) {
	if v.Kind != cpg.KindIdentityStmt {
		return 0, cpg.NoVertex, false
	}
	param := astgraph.Child(p.store, v.ID, cpg.RoleValue)
	if param == cpg.NoVertex || p.store.Vertex(param).Kind != cpg.KindParamRef {
		return 0, cpg.NoVertex, false
	}
	index, _ := p.store.Vertex(param).Props.Int(cpg.PropIndex)
	entry := p.store.EntryOf(v.Method())
	if entry == cpg.NoVertex {
		return 0, cpg.NoVertex, false
	}
	return index, entry, true
}

// calleeReturns maps an assignment of the result of a linked call to the return statements of the callee.
func (p *problem) calleeReturns(v *cpg.Vertex) []cpg.VertexID {
	if v.Kind != cpg.KindAssignStmt {
		return nil
	}
	var next []cpg.VertexID
	for _, entry := range interproc.Callees(p.store, v.ID) {
		method := p.store.Vertex(entry).Method()
		for it := p.store.VerticesWith(cpg.CfgNode, cpg.PropMethod, method); it.HasNext(); {
			if r := it.Next(); r.Kind == cpg.KindReturnStmt {
				next = append(next, r.ID)
			}
		}
	}
	return next
}

// argSourceUsers maps a definition of a variable to the uses of that variable as an argument tainted by a source,
// e.g. the buffer passed to a read call.
func (p *problem) argSourceUsers(v *cpg.Vertex) []cpg.VertexID {
	var next []cpg.VertexID
	for _, e := range p.store.OutEdges(v.ID, cpg.PdgEdge) {
		if p.taintsArgument(e.To, e.Role) {
			next = append(next, e.To)
		}
	}
	return next
}

// taintsArgument returns true if the CFG vertex v calls a source that taints an argument reading variable name.
func (p *problem) taintsArgument(v cpg.VertexID, name string) bool {
	for _, inv := range astgraph.InvokesUnder(p.store, v) {
		desc, ok := p.source(inv)
		if !ok {
			continue
		}
		for i, arg := range astgraph.Args(p.store, inv.ID) {
			if arg == cpg.NoVertex || !desc.TaintsArg(i) {
				continue
			}
			for _, local := range astgraph.LocalsUnder(p.store, arg, nil) {
				if local.Props.String(cpg.PropName) == name {
					return true
				}
			}
		}
	}
	return false
}

// forwardPaths returns the traversal of the simple control flow paths from origin to site, across linked calls.
func (p *problem) forwardPaths(origin, site cpg.VertexID) *traversal.Traversal {
	return traversal.New(p.store).
		V(origin).
		Repeat(traversal.Anon().Union(
			traversal.Anon().Out(cpg.CfgEdge),
			traversal.Anon().Out(cpg.CallEdge),
			traversal.Anon().Out(cpg.RetEdge))).
		SimplePath().
		Until(func(v *cpg.Vertex) bool { return v.ID == site }).
		Limit(p.maxPaths).
		SideEffect(func(*traversal.Traverser) { p.stats.PathsExplored++ })
}

type verdict int

const (
	offending verdict = iota
	sanitized
	severed
)

// classify decides whether the taint of one of the walks survives along path. The first and last vertices of the
// path are the source and sink calls, and are not checked.
func (p *problem) classify(path []cpg.VertexID, walks []*walk) verdict {
	result := severed
	for _, w := range walks {
		wasSanitized, wasSevered := false, false
		for i := 1; i < len(path)-1 && !wasSanitized && !wasSevered; i++ {
			wasSanitized = p.sanitizes(path[i], w)
			wasSevered = !wasSanitized && p.severs(path[i], w)
		}
		if !wasSanitized && !wasSevered {
			return offending
		}
		if wasSanitized {
			result = sanitized
		}
	}
	return result
}

// examine enumerates the paths from origin to site and returns the first offending path, with the number of
// offending paths.
func (p *problem) examine(origin, site cpg.VertexID, walks []*walk) ([]cpg.VertexID, int, error) {
	if origin == site {
		p.stats.PathsExplored++
		return []cpg.VertexID{site}, 1, nil
	}
	var first []cpg.VertexID
	count := 0
	t := p.forwardPaths(origin, site)
	for {
		tr, ok := t.NextTraverser()
		if !ok {
			break
		}
		path := tr.Path()
		switch p.classify(path, walks) {
		case offending:
			count++
			if first == nil {
				first = path
			}
		case sanitized:
			p.stats.Sanitized++
		case severed:
			p.stats.Severed++
		}
	}
	return first, count, t.Err()
}
