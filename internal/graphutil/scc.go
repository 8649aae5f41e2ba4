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


package graphutil

import "sort"

// StronglyConnectedComponents computes the strongly connected components of the graph given by nodes and successors,
// with Tarjan's algorithm. The traversal keeps its own stack of frames, so that deep control flow graphs do not grow
// the goroutine stack.
// Components come in reverse topological order: a component appears before every component that reaches it.
func StronglyConnectedComponents[T comparable](nodes []T, successors func(T) []T) [][]T {
	type frame struct {
		node  T
		succs []T
		next  int
	}
	var (
		sccs      [][]T
		stack     []T
		onStack   = map[T]bool{}
		index     = map[T]int{}
		lowlink   = map[T]int{}
		nextIndex = 0
	)
	enter := func(v T) frame {
		index[v] = nextIndex
		lowlink[v] = nextIndex
		nextIndex++
		stack = append(stack, v)
		onStack[v] = true
		return frame{node: v, succs: successors(v)}
	}
	for _, root := range nodes {
		if _, seen := index[root]; seen {
			continue
		}
		work := []frame{enter(root)}
		for len(work) > 0 {
			top := &work[len(work)-1]
			if top.next < len(top.succs) {
				w := top.succs[top.next]
				top.next++
				if _, seen := index[w]; !seen {
					work = append(work, enter(w))
				} else if onStack[w] && index[w] < lowlink[top.node] {
					lowlink[top.node] = index[w]
				}
				continue
			}
			v := top.node
			work = work[:len(work)-1]
			if len(work) > 0 {
				if parent := work[len(work)-1].node; lowlink[v] < lowlink[parent] {
					lowlink[parent] = lowlink[v]
				}
			}
			if lowlink[v] != index[v] {
				continue
			}
			var scc []T
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}
	return sccs
}

// Loops returns the components of g that contain a cycle: the components of more than one node, and the single nodes
// with a self loop. Each loop is sorted and loops are ordered by their smallest node.
func (g *Digraph) Loops() [][]int64 {
	var loops [][]int64
	for _, scc := range StronglyConnectedComponents(g.Keys, g.Successors) {
		if len(scc) > 1 || g.Edges[scc[0]][scc[0]] {
			sort.Slice(scc, func(i, j int) bool { return scc[i] < scc[j] })
			loops = append(loops, scc)
		}
	}
	sort.Slice(loops, func(i, j int) bool { return loops[i][0] < loops[j][0] })
	return loops
}
