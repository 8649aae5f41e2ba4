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
	"errors"
	"fmt"

	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"golang.org/x/tools/container/intsets"
)

// ErrUnboundedRepeat is the error of traversals with a Repeat that is not bounded by SimplePath or Times.
var ErrUnboundedRepeat = errors.New("repeat must be bounded by simplePath or times")

// ErrNoRepeat is the error of traversals that use a Repeat modifier that does not follow a Repeat step.
var ErrNoRepeat = errors.New("repeat modifier without a repeat step")

// A step builds the iterator of a step of the traversal from the iterator of the previous steps.
type step struct {
	name   string
	build  func(g *cpg.Store, in iterator) iterator
	repeat *repeatStep
}

// Traversal is a lazy traversal over a store. Builder methods modify and return the receiver.
type Traversal struct {
	g      *cpg.Store
	source []cpg.VertexID
	all    bool
	steps  []step
	err    error
	it     *peekIter
}

// New returns a traversal over g. Start it with V.
func New(g *cpg.Store) *Traversal {
	return &Traversal{g: g}
}

// Anon returns an anonymous traversal, to be used as the argument of another step.
func Anon() *Traversal {
	return &Traversal{}
}

// V starts the traversal at the given vertices, or at every vertex in ascending id order when none are given.
func (t *Traversal) V(ids ...cpg.VertexID) *Traversal {
	if len(ids) == 0 {
		t.all = true
	} else {
		t.source = append(t.source, ids...)
	}
	return t
}

func (t *Traversal) addStep(name string, build func(g *cpg.Store, in iterator) iterator) *Traversal {
	t.steps = append(t.steps, step{name: name, build: build})
	return t
}

// inherit records the construction error of a sub-traversal.
func (t *Traversal) inherit(subs ...*Traversal) {
	for _, s := range subs {
		if err := s.failure(); err != nil && t.err == nil {
			t.err = err
		}
	}
}

// failure returns the construction error of t. Repeat bounds are checked here rather than in the modifiers, so that
// they can be given in any order.
func (t *Traversal) failure() error {
	if t.err != nil {
		return t.err
	}
	for _, s := range t.steps {
		if s.repeat != nil && !s.repeat.bounded() {
			return ErrUnboundedRepeat
		}
	}
	return nil
}

// apply runs the steps of t on the traversers of in.
func (t *Traversal) apply(g *cpg.Store, in iterator) iterator {
	it := in
	for _, s := range t.steps {
		it = s.build(g, it)
	}
	return it
}

// applyTo runs an anonymous traversal from a single traverser.
func (t *Traversal) applyTo(g *cpg.Store, tr *Traverser) iterator {
	return t.apply(g, single(tr))
}

func (t *Traversal) String() string {
	s := "V()"
	if !t.all {
		s = fmt.Sprintf("V%v", t.source)
	}
	for _, st := range t.steps {
		s += "." + st.name
	}
	return s
}

// ********** Filters **********

// HasLabel keeps the vertices with the given label.
func (t *Traversal) HasLabel(label cpg.VertexLabel) *Traversal {
	return t.Filter(func(v *cpg.Vertex) bool { return v.Label == label })
}

// HasKind keeps the vertices with one of the given kinds.
func (t *Traversal) HasKind(kinds ...cpg.Kind) *Traversal {
	return t.Filter(func(v *cpg.Vertex) bool {
		for _, k := range kinds {
			if v.Kind == k {
				return true
			}
		}
		return false
	})
}

// Has keeps the vertices whose property key is matched by m.
func (t *Traversal) Has(key string, m cpg.Matcher) *Traversal {
	return t.Filter(func(v *cpg.Vertex) bool {
		val, ok := v.Props[key]
		if !ok {
			return m.Match(nil)
		}
		return m.Match(val)
	})
}

// Is keeps the traversers at one of the given vertices.
func (t *Traversal) Is(ids ...cpg.VertexID) *Traversal {
	return t.addStep("is", func(g *cpg.Store, in iterator) iterator {
		return &filterIter{in: in, keep: func(tr *Traverser) bool {
			for _, id := range ids {
				if tr.Vertex == id {
					return true
				}
			}
			return false
		}}
	})
}

// Filter keeps the vertices accepted by keep.
func (t *Traversal) Filter(keep func(v *cpg.Vertex) bool) *Traversal {
	return t.addStep("filter", func(g *cpg.Store, in iterator) iterator {
		return &filterIter{in: in, keep: func(tr *Traverser) bool { return keep(g.Vertex(tr.Vertex)) }}
	})
}

// Where keeps the traversers for which sub yields at least one result.
func (t *Traversal) Where(sub *Traversal) *Traversal {
	t.inherit(sub)
	return t.addStep("where", func(g *cpg.Store, in iterator) iterator {
		return &filterIter{in: in, keep: func(tr *Traverser) bool {
			_, ok := sub.applyTo(g, tr).next()
			return ok
		}}
	})
}

// Not keeps the traversers for which sub yields nothing.
func (t *Traversal) Not(sub *Traversal) *Traversal {
	t.inherit(sub)
	return t.addStep("not", func(g *cpg.Store, in iterator) iterator {
		return &filterIter{in: in, keep: func(tr *Traverser) bool {
			_, ok := sub.applyTo(g, tr).next()
			return !ok
		}}
	})
}

// SimplePath keeps the traversers whose path has no repeated vertex. Right after Repeat, it bounds the repetition
// instead: traversers are dropped as soon as their path stops being simple.
func (t *Traversal) SimplePath() *Traversal {
	if r := t.lastRepeat(); r != nil {
		r.simple = true
		return t
	}
	return t.addStep("simplePath", func(g *cpg.Store, in iterator) iterator {
		return &filterIter{in: in, keep: (*Traverser).IsSimple}
	})
}

// Dedup keeps the first traverser at each vertex.
func (t *Traversal) Dedup() *Traversal {
	return t.addStep("dedup", func(g *cpg.Store, in iterator) iterator {
		var seen intsets.Sparse
		return &filterIter{in: in, keep: func(tr *Traverser) bool { return seen.Insert(int(tr.Vertex)) }}
	})
}

// Limit stops the traversal after n results.
func (t *Traversal) Limit(n int) *Traversal {
	return t.addStep(fmt.Sprintf("limit(%d)", n), func(g *cpg.Store, in iterator) iterator {
		count := 0
		return iterFunc(func() (*Traverser, bool) {
			if count >= n {
				return nil, false
			}
			tr, ok := in.next()
			if ok {
				count++
			}
			return tr, ok
		})
	})
}

// ********** Moves **********

func roleSet(roles []string) map[string]bool {
	if len(roles) == 0 {
		return nil
	}
	m := make(map[string]bool, len(roles))
	for _, r := range roles {
		m[r] = true
	}
	return m
}

func (t *Traversal) move(name string, label cpg.EdgeLabel, roles []string, out, in bool) *Traversal {
	accept := roleSet(roles)
	return t.addStep(fmt.Sprintf("%s(%s)", name, label), func(g *cpg.Store, input iterator) iterator {
		return &flatIter{in: input, expand: func(tr *Traverser) iterator {
			var next []*Traverser
			if out {
				for _, e := range g.OutEdges(tr.Vertex, label) {
					if accept == nil || accept[e.Role] {
						next = append(next, tr.moveTo(e.To))
					}
				}
			}
			if in {
				for _, e := range g.InEdges(tr.Vertex, label) {
					if accept == nil || accept[e.Role] {
						next = append(next, tr.moveTo(e.From))
					}
				}
			}
			return &sliceIter{ts: next}
		}}
	})
}

// Out moves along the outgoing edges with the given label (any label if empty) and one of the given roles (any
// role if none are given).
func (t *Traversal) Out(label cpg.EdgeLabel, roles ...string) *Traversal {
	return t.move("out", label, roles, true, false)
}

// In moves backwards along the incoming edges with the given label and roles.
func (t *Traversal) In(label cpg.EdgeLabel, roles ...string) *Traversal {
	return t.move("in", label, roles, false, true)
}

// Both moves along the edges with the given label and roles in both directions.
func (t *Traversal) Both(label cpg.EdgeLabel, roles ...string) *Traversal {
	return t.move("both", label, roles, true, true)
}

// FlatMap moves to each of the vertices returned by f for the current vertex.
func (t *Traversal) FlatMap(f func(v *cpg.Vertex) []cpg.VertexID) *Traversal {
	return t.addStep("flatMap", func(g *cpg.Store, in iterator) iterator {
		return &flatIter{in: in, expand: func(tr *Traverser) iterator {
			ids := f(g.Vertex(tr.Vertex))
			next := make([]*Traverser, len(ids))
			for i, id := range ids {
				next[i] = tr.moveTo(id)
			}
			return &sliceIter{ts: next}
		}}
	})
}

// ********** Branches **********

// Union yields the results of every sub-traversal, in order, for each traverser.
func (t *Traversal) Union(subs ...*Traversal) *Traversal {
	t.inherit(subs...)
	return t.addStep("union", func(g *cpg.Store, in iterator) iterator {
		return &flatIter{in: in, expand: func(tr *Traverser) iterator {
			i := 0
			var cur iterator
			return iterFunc(func() (*Traverser, bool) {
				for {
					if cur != nil {
						if r, ok := cur.next(); ok {
							return r, true
						}
						cur = nil
					}
					if i >= len(subs) {
						return nil, false
					}
					cur = subs[i].applyTo(g, tr)
					i++
				}
			})
		}}
	})
}

// Coalesce yields, for each traverser, the results of the first sub-traversal that yields any.
func (t *Traversal) Coalesce(subs ...*Traversal) *Traversal {
	t.inherit(subs...)
	return t.addStep("coalesce", func(g *cpg.Store, in iterator) iterator {
		return &flatIter{in: in, expand: func(tr *Traverser) iterator {
			for _, sub := range subs {
				p := &peekIter{in: sub.applyTo(g, tr)}
				if p.hasNext() {
					return p
				}
			}
			return &sliceIter{}
		}}
	})
}

// ********** Side effects **********

// AddE adds an edge with the given label and role from the current vertex to the vertex to, when a traverser reaches
// the step. The traverser is passed on unchanged.
func (t *Traversal) AddE(label cpg.EdgeLabel, role string, to cpg.VertexID) *Traversal {
	return t.addStep(fmt.Sprintf("addE(%s)", label), func(g *cpg.Store, in iterator) iterator {
		return iterFunc(func() (*Traverser, bool) {
			tr, ok := in.next()
			if ok {
				g.AddEdge(label, role, tr.Vertex, to, nil)
			}
			return tr, ok
		})
	})
}

// SideEffect calls f on each traverser and passes it on.
func (t *Traversal) SideEffect(f func(tr *Traverser)) *Traversal {
	return t.addStep("sideEffect", func(g *cpg.Store, in iterator) iterator {
		return iterFunc(func() (*Traverser, bool) {
			tr, ok := in.next()
			if ok {
				f(tr)
			}
			return tr, ok
		})
	})
}
