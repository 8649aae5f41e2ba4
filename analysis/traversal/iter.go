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

package traversal

import (
	"github.com/wimkeir/graft-sub000/analysis/cpg"
)

// Traverser is the position of a walker in the graph: its current vertex and the path it took.
type Traverser struct {
	// Vertex is the current vertex
	Vertex cpg.VertexID
	// Loops is the number of Repeat iterations the traverser went through in the innermost Repeat
	Loops int
	prev  *Traverser
}

func newTraverser(v cpg.VertexID) *Traverser {
	return &Traverser{Vertex: v}
}

// moveTo returns a traverser at v whose path extends t's.
func (t *Traverser) moveTo(v cpg.VertexID) *Traverser {
	return &Traverser{Vertex: v, Loops: t.Loops, prev: t}
}

// Previous returns the vertex the traverser came from, or NoVertex at the start of its path.
func (t *Traverser) Previous() cpg.VertexID {
	if t.prev == nil {
		return cpg.NoVertex
	}
	return t.prev.Vertex
}

// Path returns the vertices the traverser went through, from the first to the current one.
func (t *Traverser) Path() []cpg.VertexID {
	n := 0
	for c := t; c != nil; c = c.prev {
		n++
	}
	path := make([]cpg.VertexID, n)
	for c := t; c != nil; c = c.prev {
		n--
		path[n] = c.Vertex
	}
	return path
}

// OnPath returns true if v is on the path of t, the current vertex included.
func (t *Traverser) OnPath(v cpg.VertexID) bool {
	for c := t; c != nil; c = c.prev {
		if c.Vertex == v {
			return true
		}
	}
	return false
}

// IsSimple returns true if no vertex appears twice on the path of t.
func (t *Traverser) IsSimple() bool {
	seen := map[cpg.VertexID]bool{}
	for c := t; c != nil; c = c.prev {
		if seen[c.Vertex] {
			return false
		}
		seen[c.Vertex] = true
	}
	return true
}

// iterator is the pull interface all steps implement.
type iterator interface {
	next() (*Traverser, bool)
}

type iterFunc func() (*Traverser, bool)

func (f iterFunc) next() (*Traverser, bool) { return f() }

// sliceIter yields a fixed list of traversers.
type sliceIter struct {
	ts []*Traverser
}

func (s *sliceIter) next() (*Traverser, bool) {
	if len(s.ts) == 0 {
		return nil, false
	}
	t := s.ts[0]
	s.ts = s.ts[1:]
	return t, true
}

func single(t *Traverser) iterator {
	return &sliceIter{ts: []*Traverser{t}}
}

// flatIter applies expand to each input traverser and yields the results in order.
type flatIter struct {
	in      iterator
	expand  func(*Traverser) iterator
	current iterator
}

func (f *flatIter) next() (*Traverser, bool) {
	for {
		if f.current != nil {
			if t, ok := f.current.next(); ok {
				return t, true
			}
			f.current = nil
		}
		t, ok := f.in.next()
		if !ok {
			return nil, false
		}
		f.current = f.expand(t)
	}
}

// filterIter yields the input traversers accepted by keep.
type filterIter struct {
	in   iterator
	keep func(*Traverser) bool
}

func (f *filterIter) next() (*Traverser, bool) {
	for {
		t, ok := f.in.next()
		if !ok {
			return nil, false
		}
		if f.keep(t) {
			return t, true
		}
	}
}

// peekIter allows checking whether an iterator has a next element without losing it.
type peekIter struct {
	in     iterator
	peeked *Traverser
}

func (p *peekIter) hasNext() bool {
	if p.peeked != nil {
		return true
	}
	t, ok := p.in.next()
	if ok {
		p.peeked = t
	}
	return ok
}

func (p *peekIter) next() (*Traverser, bool) {
	if p.hasNext() {
		t := p.peeked
		p.peeked = nil
		return t, true
	}
	return nil, false
}
