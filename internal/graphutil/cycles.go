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

import (
	"sort"

	"github.com/yourbasic/graph"
)

// FindAllElementaryCycles finds all elementary cycles in the graph g
// This uses Donald B. Johnson's algorithm presented in
// "Finding All The Elementary Circuits of a Directed Graph", 1975
//
// Each cycle starts and ends with its smallest node id. Self-loops are cycles of length one. When limit is positive,
// the search stops after limit cycles.
func FindAllElementaryCycles(g *Digraph, limit int) [][]int64 {
	s := &state{
		blocked: map[int64]bool{},
		blist:   map[int64]map[int64]bool{},
		stack:   []int64{},
		cycles:  [][]int64{},
		limit:   limit,
	}
	for _, k := range g.Keys {
		if g.Edges[k][k] && !s.full() {
			s.cycles = append(s.cycles, []int64{k, k})
		}
	}
	start := 0
	for start < len(g.Keys) && !s.full() {
		fg := Subgraph(g, g.Keys[start:])
		// the least node of any non-trivial component is the next start
		least := int64(-1)
		for _, component := range graph.StrongComponents(fg) {
			if len(component) < 2 {
				continue
			}
			sort.Ints(component)
			if least < 0 || int64(component[0]) < least {
				least = int64(component[0])
			}
		}
		if least < 0 {
			return s.cycles
		}
		comp := Subgraph(fg, componentOf(fg, least))
		s.stack = []int64{}
		s.blocked = map[int64]bool{}
		s.blist = map[int64]map[int64]bool{}
		s.circuit(least, least, comp)
		start = sort.Search(len(g.Keys), func(i int) bool { return g.Keys[i] > least })
	}
	return s.cycles
}

// componentOf returns the strongly connected component of g containing v.
func componentOf(g *Digraph, v int64) []int64 {
	for _, component := range graph.StrongComponents(g) {
		for _, w := range component {
			if int64(w) == v {
				ids := make([]int64, len(component))
				for i, c := range component {
					ids[i] = int64(c)
				}
				return ids
			}
		}
	}
	return []int64{v}
}

type state struct {
	blocked map[int64]bool
	blist   map[int64]map[int64]bool
	stack   []int64
	cycles  [][]int64
	limit   int
}

func (s *state) full() bool {
	return s.limit > 0 && len(s.cycles) >= s.limit
}

func (s *state) unblock(u int64) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		delete(s.blist[u], w)
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *state) circuit(v int64, i int64, g *Digraph) bool {
	f := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	for _, w := range g.Successors(v) {
		if s.full() {
			break
		}
		if w == v {
			continue // self-loops are reported separately
		}
		if w == i {
			stackCopy := make([]int64, len(s.stack))
			copy(stackCopy, s.stack)
			stackCopy = append(stackCopy, w)
			s.cycles = append(s.cycles, stackCopy)
			f = true
		} else if !s.blocked[w] {
			if s.circuit(w, i, g) {
				f = true
			}
		}
	}

	if f {
		s.unblock(v)
	} else {
		for _, w := range g.Successors(v) {
			m := s.blist[w]
			if m != nil {
				s.blist[w][v] = true
			} else {
				s.blist[w] = map[int64]bool{v: true}
			}
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return f
}
