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

package cpg

import (
	"github.com/wimkeir/graft-sub000/internal/graphutil"
)

// Digraph returns the projection of the store on the vertices accepted by include (all vertices if nil) and the
// edges with one of the given labels (all edges if none are given). Node ids are vertex ids.
func (s *Store) Digraph(include func(*Vertex) bool, labels ...EdgeLabel) *graphutil.Digraph {
	g := graphutil.NewDigraph()
	for _, v := range s.vertices[1:] {
		if include == nil || include(v) {
			g.AddNode(int64(v.ID), v.String())
		}
	}
	keep := map[EdgeLabel]bool{}
	for _, l := range labels {
		keep[l] = true
	}
	for _, e := range s.edges[1:] {
		if len(keep) == 0 || keep[e.Label] {
			g.AddEdge(int64(e.From), int64(e.To))
		}
	}
	return g
}

// MethodCFG returns the control flow graph of method as a digraph.
func (s *Store) MethodCFG(method string) *graphutil.Digraph {
	return s.Digraph(func(v *Vertex) bool {
		return v.Label == CfgNode && v.Method() == method
	}, CfgEdge)
}

// Methods returns the names of the methods in the store, in the order of their Entry vertices.
func (s *Store) Methods() []string {
	var methods []string
	for it := s.Vertices(CfgNode, KindEntry); it.HasNext(); {
		methods = append(methods, it.Next().Method())
	}
	return methods
}

// EntryOf returns the Entry vertex of method, or NoVertex.
func (s *Store) EntryOf(method string) VertexID {
	for it := s.VerticesWith(CfgNode, PropMethod, method); it.HasNext(); {
		v := it.Next()
		if v.Kind == KindEntry {
			return v.ID
		}
	}
	return NoVertex
}

// ExitOf returns the Exit vertex of method, or NoVertex.
func (s *Store) ExitOf(method string) VertexID {
	for it := s.VerticesWith(CfgNode, PropMethod, method); it.HasNext(); {
		v := it.Next()
		if v.Kind == KindExit {
			return v.ID
		}
	}
	return NoVertex
}
