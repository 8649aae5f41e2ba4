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

// Package pdg adds the data dependence layer of the code property graph: an edge from the definition of a variable
// to each of its uses that the definition may reach. The reaching definitions come from an oracle, the front end's
// or the one this package computes over the control flow graph.
package pdg

import (
	"fmt"
	"sort"

	"github.com/wimkeir/graft-sub000/analysis/astgraph"
	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/controlflow"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/ir"
)

// InvariantError is returned when the oracle reports a definition that has no vertex in the graph. It means that
// the statements of the front end and the vertices of the graph are out of sync, and the graph cannot be trusted.
type InvariantError struct {
	Variable string
	Use      ir.StmtRef
	Def      ir.StmtRef
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("definition %s of %q used at %s has no vertex", e.Def, e.Variable, e.Use)
}

// Result summarizes the dependence edges added for a method.
type Result struct {
	// Edges is the number of PdgEdges added
	Edges int
	// Uses is the number of variable uses queried
	Uses int
	// Undefined is the number of uses for which the oracle returned no definition
	Undefined int
}

// Build adds the PdgEdges of the method m, whose control flow graph is cfg, using oracle. If oracle is nil, the
// reaching definitions are computed over cfg.
func Build(store *cpg.Store, m *ir.Method, cfg *controlflow.Result, oracle ir.ReachingDefinitions,
	logger *config.LogGroup) (Result, error) {
	if logger == nil {
		logger = config.Discard()
	}
	if oracle == nil {
		oracle = NewCFGReachingDefs(store, cfg)
	}
	var res Result
	indices := make([]int, 0, len(cfg.Vertices))
	for i := range cfg.Vertices {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	for _, i := range indices {
		useVertex := cfg.Vertices[i]
		use := m.Ref(i)
		for _, name := range astgraph.UsedVars(store, useVertex) {
			res.Uses++
			defs := oracle.DefsOf(name, use)
			if len(defs) == 0 {
				res.Undefined++
				logger.Debugf("%s: no definition of %q reaches the use", use, name)
				continue
			}
			for _, def := range defs {
				defVertex, ok := cfg.Vertices[def.Index]
				if !ok || def.Method != cfg.Method {
					return res, &InvariantError{Variable: name, Use: use, Def: def}
				}
				if hasDependence(store, defVertex, useVertex, name) {
					continue
				}
				store.AddEdge(cpg.PdgEdge, name, defVertex, useVertex, nil)
				res.Edges++
				logger.Tracef("%s: %s -%s-> %s", cfg.Method, store.Vertex(defVertex), name, store.Vertex(useVertex))
			}
		}
	}
	return res, nil
}

func hasDependence(store *cpg.Store, def, use cpg.VertexID, name string) bool {
	for _, e := range store.OutEdges(def, cpg.PdgEdge) {
		if e.To == use && e.Role == name {
			return true
		}
	}
	return false
}
