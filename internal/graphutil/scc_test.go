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
	"math/rand"
	"testing"

	"github.com/wimkeir/graft-sub000/internal/graphutil"
)

func TestLoopsOfControlFlowShapes(t *testing.T) {
	cases := map[string]struct {
		edges map[int64][]int64
		loops [][]int64
	}{
		"while": {
			edges: map[int64][]int64{1: {2}, 2: {3, 4}, 3: {2}},
			loops: [][]int64{{2, 3}},
		},
		"nested while": {
			edges: map[int64][]int64{1: {2}, 2: {3, 5}, 3: {4, 2}, 4: {3}},
			loops: [][]int64{{2, 3, 4}},
		},
		"self loop": {
			edges: map[int64][]int64{1: {2}, 2: {2, 3}},
			loops: [][]int64{{2}},
		},
		"two loops in sequence": {
			edges: map[int64][]int64{1: {2}, 2: {3, 4}, 3: {2}, 4: {5, 6}, 5: {4}},
			loops: [][]int64{{2, 3}, {4, 5}},
		},
		"diamond": {
			edges: map[int64][]int64{1: {2, 3}, 2: {4}, 3: {4}},
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			loops := buildGraph(c.edges).Loops()
			if len(loops) != len(c.loops) {
				t.Fatalf("expected loops %v, got %v", c.loops, loops)
			}
			for i := range loops {
				if len(loops[i]) != len(c.loops[i]) {
					t.Fatalf("expected loops %v, got %v", c.loops, loops)
				}
				for j := range loops[i] {
					if loops[i][j] != c.loops[i][j] {
						t.Fatalf("expected loops %v, got %v", c.loops, loops)
					}
				}
			}
		})
	}
}

func TestLoopsOfLongChain(t *testing.T) {
	const n = 20000
	g := graphutil.NewDigraph()
	for i := int64(1); i <= n; i++ {
		g.AddNode(i, "")
		if i > 1 {
			g.AddEdge(i-1, i)
		}
	}
	g.AddEdge(n, 2)
	loops := g.Loops()
	if len(loops) != 1 || len(loops[0]) != n-1 || loops[0][0] != 2 {
		t.Fatalf("expected a single loop over nodes 2..%d", n)
	}
}

func TestComponentsAreReverseTopologicallySorted(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		g := randomGraph(20, 68348438+seed)
		sccs := graphutil.StronglyConnectedComponents(g.Keys, g.Successors)
		position := map[int64]int{}
		for i, scc := range sccs {
			for _, x := range scc {
				if _, dup := position[x]; dup {
					t.Fatalf("seed %d: node %d in two components", seed, x)
				}
				position[x] = i
			}
		}
		if len(position) != len(g.Keys) {
			t.Fatalf("seed %d: %d nodes covered out of %d", seed, len(position), len(g.Keys))
		}
		for _, x := range g.Keys {
			reached := reachable(g, x)
			for _, y := range g.Keys {
				same := position[x] == position[y]
				if same && x != y && !reached[y] {
					t.Fatalf("seed %d: %d and %d share a component but %d does not reach %d", seed, x, y, x, y)
				}
				if !same && reached[y] && position[y] > position[x] {
					t.Fatalf("seed %d: %d reaches %d but comes first", seed, x, y)
				}
			}
		}
	}
}

func randomGraph(size int, seed int64) *graphutil.Digraph {
	r := rand.New(rand.NewSource(seed))
	g := graphutil.NewDigraph()
	for i := 0; i < size; i++ {
		g.AddNode(int64(i), "")
	}
	for i := 0; i < size; i++ {
		for j := 0; j < 2; j++ {
			if r.Float32() < 0.7 {
				g.AddEdge(int64(i), r.Int63n(int64(size)))
			}
		}
	}
	return g
}

func reachable(g *graphutil.Digraph, x int64) map[int64]bool {
	seen := map[int64]bool{}
	work := []int64{x}
	for len(work) > 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]
		for _, m := range g.Successors(n) {
			if !seen[m] {
				seen[m] = true
				work = append(work, m)
			}
		}
	}
	return seen
}
