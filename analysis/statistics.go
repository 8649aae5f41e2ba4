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

package analysis

import (
	"fmt"
	"io"

	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/internal/graphutil"
	"gonum.org/v1/gonum/graph/topo"
	"gopkg.in/yaml.v3"
)

// Statistics are general statistics about a code property graph.
type Statistics struct {
	Methods  int `yaml:"methods"`
	Vertices int `yaml:"vertices"`
	Edges    int `yaml:"edges"`

	VerticesByLabel map[cpg.VertexLabel]int `yaml:"vertices-by-label"`
	VerticesByKind  map[cpg.Kind]int        `yaml:"vertices-by-kind"`
	EdgesByLabel    map[cpg.EdgeLabel]int   `yaml:"edges-by-label"`

	// Loops is the number of strongly connected components of the methods' control flow graphs that contain a cycle
	Loops int `yaml:"loops"`

	// Cycles is the number of elementary cycles of the methods' control flow graphs
	Cycles int `yaml:"cycles"`

	// CycleLimitReached is set when the cycles of some method were not all counted
	CycleLimitReached bool `yaml:"cycle-limit-reached,omitempty"`

	// MaxAstDepth is the length of the longest chain of AstEdges, starting from a statement vertex
	MaxAstDepth int `yaml:"max-ast-depth"`
}

// GraphStatistics returns statistics about the graph in store, counting at most maxCycles elementary cycles per
// method (config.DefaultMaxPaths when maxCycles is not positive). It returns an error if the AstEdges of the graph
// form a cycle.
func GraphStatistics(store *cpg.Store, maxCycles int) (Statistics, error) {
	if maxCycles <= 0 {
		maxCycles = config.DefaultMaxPaths
	}
	stats := Statistics{
		Vertices:        store.NumVertices(),
		Edges:           store.NumEdges(),
		VerticesByLabel: map[cpg.VertexLabel]int{},
		VerticesByKind:  map[cpg.Kind]int{},
		EdgesByLabel:    map[cpg.EdgeLabel]int{},
	}
	for id := cpg.VertexID(1); id <= store.MaxVertexID(); id++ {
		v := store.Vertex(id)
		stats.VerticesByLabel[v.Label]++
		stats.VerticesByKind[v.Kind]++
	}
	for _, l := range cpg.AllEdgeLabels {
		if n := store.NumEdgesWith(l); n > 0 {
			stats.EdgesByLabel[l] = n
		}
	}

	methods := store.Methods()
	stats.Methods = len(methods)
	for _, m := range methods {
		g := store.MethodCFG(m)
		stats.Loops += len(g.Loops())
		n := len(graphutil.FindAllElementaryCycles(g, maxCycles))
		if n >= maxCycles {
			stats.CycleLimitReached = true
		}
		stats.Cycles += n
	}

	depth, err := maxAstDepth(store)
	if err != nil {
		return stats, err
	}
	stats.MaxAstDepth = depth
	return stats, nil
}

func maxAstDepth(store *cpg.Store) (int, error) {
	g := store.Digraph(nil, cpg.AstEdge)
	order, err := topo.Sort(g)
	if err != nil {
		return 0, fmt.Errorf("AST edges are not acyclic: %w", err)
	}
	depth := map[int64]int{}
	max := 0
	for _, n := range order {
		d := depth[n.ID()]
		if d > max {
			max = d
		}
		for _, succ := range g.Successors(n.ID()) {
			if depth[succ] < d+1 {
				depth[succ] = d + 1
			}
		}
	}
	return max, nil
}

// WriteYAML writes the statistics to w.
func (s Statistics) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}
