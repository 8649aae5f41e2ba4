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

package graphutil_test

import (
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/wimkeir/graft-sub000/internal/funcutil"
	"github.com/wimkeir/graft-sub000/internal/graphutil"
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
)

func buildGraph(edges map[int64][]int64) *graphutil.Digraph {
	g := graphutil.NewDigraph()
	for x, succs := range edges {
		g.AddNode(x, strconv.Itoa(int(x)))
		for _, y := range succs {
			g.AddNode(y, strconv.Itoa(int(y)))
		}
	}
	for x, succs := range edges {
		for _, y := range succs {
			g.AddEdge(x, y)
		}
	}
	return g
}

func TestFindAllElementaryCycles(t *testing.T) {
	g := buildGraph(map[int64][]int64{
		2: {4, 5, 6},
		4: {2},
		5: {10},
		10: {2},
		6: {4},
		3: {8},
		8: {3, 9},
		9: {8},
		7: {7},
	})
	stats := graph.Check(g)
	t.Logf("Stats:\n\tsize: %d\n\tmulti: %d\n\tloops: %d\n\tisolated: %d",
		stats.Size, stats.Multi, stats.Loops, stats.Isolated)

	cycles := graphutil.FindAllElementaryCycles(g, 0)
	expected := []string{"2-4-2", "2-5-10-2", "2-6-4-2", "3-8-3", "7-7", "8-9-8"}

	results := make([]string, len(cycles))
	for i, cycle := range cycles {
		results[i] = strings.Join(
			funcutil.Map(cycle, func(x int64) string { return strconv.Itoa(int(x)) }),
			"-")
	}
	sort.Strings(results)
	if !slices.Equal(results, expected) {
		for i, s := range results {
			t.Logf("Cycle %d: %s", i, s)
		}
		t.Fatalf("Cycles not as expected")
	}
}

func TestFindAllElementaryCyclesLimit(t *testing.T) {
	// the complete graph on 6 nodes has 409 elementary cycles
	edges := map[int64][]int64{}
	for i := int64(1); i <= 6; i++ {
		for j := int64(1); j <= 6; j++ {
			if i != j {
				edges[i] = append(edges[i], j)
			}
		}
	}
	g := buildGraph(edges)
	if c := graphutil.FindAllElementaryCycles(g, 0); len(c) != 409 {
		t.Fatalf("expected 409 cycles, got %d", len(c))
	}
	cycles := graphutil.FindAllElementaryCycles(g, 10)
	if len(cycles) != 10 {
		t.Fatalf("expected the search to stop at 10 cycles, got %d", len(cycles))
	}
	for _, c := range cycles {
		if c[0] != c[len(c)-1] {
			t.Fatalf("not a cycle: %v", c)
		}
	}
}

func TestAcyclicGraphHasNoCycles(t *testing.T) {
	g := buildGraph(map[int64][]int64{1: {2, 3}, 2: {4}, 3: {4}})
	if !graph.Acyclic(g) {
		t.Fatalf("expected acyclic graph")
	}
	if c := graphutil.FindAllElementaryCycles(g, 0); len(c) != 0 {
		t.Fatalf("expected no cycles, got %v", c)
	}
}

func TestSubgraphKeepsInternalEdges(t *testing.T) {
	g := buildGraph(map[int64][]int64{1: {2}, 2: {3}, 3: {1}})
	sub := graphutil.Subgraph(g, []int64{1, 2})
	if !sub.HasEdgeFromTo(1, 2) || sub.HasEdgeFromTo(2, 3) || sub.NumEdges() != 1 {
		t.Fatalf("unexpected subgraph edges: %v", sub.Edges)
	}
	if sub.Order() != g.Order() {
		t.Fatalf("subgraph order %d != %d", sub.Order(), g.Order())
	}
	if n := sub.Nodes().Len(); n != 2 {
		t.Fatalf("expected 2 nodes, got %d", n)
	}
	if to := sub.To(2); to.Len() != 1 {
		t.Fatalf("expected one predecessor of 2")
	}
}
