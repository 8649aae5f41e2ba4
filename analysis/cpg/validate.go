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
	"errors"
	"fmt"

	"github.com/yourbasic/graph"
	"gonum.org/v1/gonum/graph/flow"
)

// Validate checks the structural invariants of a code property graph:
//   - each method has exactly one Entry vertex,
//   - every CFG vertex of a method is reachable from its Entry,
//   - every AST vertex has exactly one incoming AstEdge,
//   - AST edges form a forest.
//
// All violations are returned, joined.
func Validate(s *Store) error {
	var errs []error
	entries := map[string][]VertexID{}
	for it := s.Vertices(CfgNode, KindEntry); it.HasNext(); {
		v := it.Next()
		entries[v.Method()] = append(entries[v.Method()], v.ID)
	}
	for _, m := range sortedMethods(s) {
		ids := entries[m]
		if len(ids) != 1 {
			errs = append(errs, fmt.Errorf("method %s has %d Entry vertices", m, len(ids)))
			continue
		}
		errs = append(errs, checkReachable(s, m, ids[0])...)
	}

	for it := s.Vertices(AstNode, ""); it.HasNext(); {
		v := it.Next()
		if n := len(s.InEdges(v.ID, AstEdge)); n != 1 {
			errs = append(errs, fmt.Errorf("AST vertex %s has %d parents", v, n))
		}
	}
	if !graph.Acyclic(s.Digraph(nil, AstEdge)) {
		errs = append(errs, fmt.Errorf("AST edges form a cycle"))
	}
	return errors.Join(errs...)
}

func checkReachable(s *Store, method string, entry VertexID) []error {
	var errs []error
	cfg := s.MethodCFG(method)
	dt := flow.Dominators(cfg.Node(int64(entry)), cfg)
	for _, id := range cfg.Keys {
		if id == int64(entry) {
			continue
		}
		if dt.DominatorOf(id) == nil {
			errs = append(errs, fmt.Errorf("CFG vertex %s of %s is unreachable from Entry",
				s.Vertex(VertexID(id)), method))
		}
	}
	return errs
}

// sortedMethods returns the methods of all CFG vertices, in order of first appearance.
func sortedMethods(s *Store) []string {
	seen := map[string]bool{}
	var methods []string
	for it := s.Vertices(CfgNode, ""); it.HasNext(); {
		m := it.Next().Method()
		if !seen[m] {
			seen[m] = true
			methods = append(methods, m)
		}
	}
	return methods
}
