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

package astgraph

import (
	"github.com/wimkeir/graft-sub000/analysis/cpg"
)

// OwnerOf returns the CFG vertex owning the AST vertex v, walking up the AST edges. It returns v itself if v is a
// CFG vertex, and NoVertex if v has no CFG ancestor.
func OwnerOf(store *cpg.Store, v cpg.VertexID) cpg.VertexID {
	cur := v
	for {
		vertex := store.Vertex(cur)
		if vertex.Label == cpg.CfgNode {
			return cur
		}
		parents := store.In(cur, cpg.AstEdge)
		if len(parents) == 0 {
			return cpg.NoVertex
		}
		cur = parents[0]
	}
}

// Walk visits the AST subtree rooted at root in pre-order, root included. Edges for which skip returns true are not
// followed. The walk stops at CFG vertices other than root.
func Walk(store *cpg.Store, root cpg.VertexID, skip func(e *cpg.Edge) bool, visit func(v *cpg.Vertex)) {
	visit(store.Vertex(root))
	for _, e := range store.OutEdges(root, cpg.AstEdge) {
		if skip != nil && skip(e) {
			continue
		}
		if store.Vertex(e.To).Label == cpg.CfgNode {
			continue
		}
		Walk(store, e.To, skip, visit)
	}
}

// LocalsUnder returns the Local vertices of the AST subtree of root, in pre-order.
func LocalsUnder(store *cpg.Store, root cpg.VertexID, skip func(e *cpg.Edge) bool) []*cpg.Vertex {
	var locals []*cpg.Vertex
	Walk(store, root, skip, func(v *cpg.Vertex) {
		if v.Kind == cpg.KindLocal {
			locals = append(locals, v)
		}
	})
	return locals
}

// InvokesUnder returns the InvokeExpr vertices of the AST subtree of root, in pre-order.
func InvokesUnder(store *cpg.Store, root cpg.VertexID) []*cpg.Vertex {
	var calls []*cpg.Vertex
	Walk(store, root, nil, func(v *cpg.Vertex) {
		if v.Kind == cpg.KindInvokeExpr {
			calls = append(calls, v)
		}
	})
	return calls
}

// Child returns the first child of v with the given role, or NoVertex.
func Child(store *cpg.Store, v cpg.VertexID, role string) cpg.VertexID {
	for _, e := range store.OutEdges(v, cpg.AstEdge) {
		if e.Role == role {
			return e.To
		}
	}
	return cpg.NoVertex
}

// Args returns the argument subtrees of an invocation vertex, by index. Omitted arguments are NoVertex.
func Args(store *cpg.Store, call cpg.VertexID) []cpg.VertexID {
	var args []cpg.VertexID
	for _, e := range store.OutEdges(call, cpg.AstEdge) {
		if e.Role != cpg.RoleArg {
			continue
		}
		i, _ := e.Props.Int(cpg.PropIndex)
		for len(args) <= i {
			args = append(args, cpg.NoVertex)
		}
		args[i] = e.To
	}
	return args
}

// isTargetEdge returns true for the edges to the assignment targets of the statement v: its own target and the
// targets of the init and update assignments of a for-loop header.
func isTargetEdge(store *cpg.Store, v cpg.VertexID, e *cpg.Edge) bool {
	if e.Role != cpg.RoleTarget {
		return false
	}
	return e.From == v || store.Vertex(e.From).Kind == cpg.KindAssignExpr
}

// DefinedVars returns the names of the variables defined by the CFG vertex v, in pre-order. Only Local targets
// define variables.
func DefinedVars(store *cpg.Store, v cpg.VertexID) []string {
	var names []string
	seen := map[string]bool{}
	Walk(store, v, nil, func(x *cpg.Vertex) {
		for _, e := range store.OutEdges(x.ID, cpg.AstEdge) {
			if !isTargetEdge(store, v, e) {
				continue
			}
			t := store.Vertex(e.To)
			if name := t.Props.String(cpg.PropName); t.Kind == cpg.KindLocal && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	})
	return names
}

// Defines returns true if the CFG vertex v defines the variable name.
func Defines(store *cpg.Store, v cpg.VertexID, name string) bool {
	for _, d := range DefinedVars(store, v) {
		if d == name {
			return true
		}
	}
	return false
}

// UseLocals returns the Local vertices read by the CFG vertex v: the Local vertices of its subtrees, excluding
// assignment targets.
func UseLocals(store *cpg.Store, v cpg.VertexID) []*cpg.Vertex {
	return LocalsUnder(store, v, func(e *cpg.Edge) bool { return isTargetEdge(store, v, e) })
}

// UsedVars returns the names of the variables read by the CFG vertex v, once each, in pre-order of first use.
func UsedVars(store *cpg.Store, v cpg.VertexID) []string {
	seen := map[string]bool{}
	var names []string
	for _, l := range UseLocals(store, v) {
		name := l.Props.String(cpg.PropName)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
