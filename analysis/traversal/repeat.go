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

// repeatStep holds the body and the modifiers of a Repeat step.
type repeatStep struct {
	body      *Traversal
	simple    bool
	testFirst bool
	emit      bool
	times     int
	until     func(g *cpg.Store, tr *Traverser) bool
}

func (r *repeatStep) bounded() bool {
	return r.simple || r.times > 0
}

// Repeat applies body to the traversers, and again to its results, until the modifiers that follow stop the
// repetition. Without Until or Times, the results are the traversers that body cannot move anymore. Every Repeat
// must be bounded by SimplePath or Times, otherwise the traversal fails with ErrUnboundedRepeat.
func (t *Traversal) Repeat(body *Traversal) *Traversal {
	t.inherit(body)
	r := &repeatStep{body: body}
	t.steps = append(t.steps, step{
		name:   "repeat",
		repeat: r,
		build: func(g *cpg.Store, in iterator) iterator {
			return &repeatIter{g: g, r: r, in: in}
		},
	})
	return t
}

func (t *Traversal) lastRepeat() *repeatStep {
	if len(t.steps) == 0 {
		return nil
	}
	return t.steps[len(t.steps)-1].repeat
}

func (t *Traversal) repeatModifier() *repeatStep {
	r := t.lastRepeat()
	if r == nil && t.err == nil {
		t.err = ErrNoRepeat
	}
	return r
}

// TestFirst makes the preceding Repeat test its Until condition before the first application of the body.
func (t *Traversal) TestFirst() *Traversal {
	if r := t.repeatModifier(); r != nil {
		r.testFirst = true
	}
	return t
}

// Emit makes the preceding Repeat also yield every intermediate traverser.
func (t *Traversal) Emit() *Traversal {
	if r := t.repeatModifier(); r != nil {
		r.emit = true
	}
	return t
}

// Times bounds the preceding Repeat to n applications of the body.
func (t *Traversal) Times(n int) *Traversal {
	if r := t.repeatModifier(); r != nil {
		r.times = n
	}
	return t
}

// Until stops the preceding Repeat for the traversers whose vertex satisfies pred; they are yielded.
func (t *Traversal) Until(pred func(v *cpg.Vertex) bool) *Traversal {
	if r := t.repeatModifier(); r != nil {
		r.until = func(g *cpg.Store, tr *Traverser) bool { return pred(g.Vertex(tr.Vertex)) }
	}
	return t
}

// UntilTraverser is Until with a predicate on the whole traverser, for conditions that depend on the path that
// reached the vertex.
func (t *Traversal) UntilTraverser(pred func(tr *Traverser) bool) *Traversal {
	if r := t.repeatModifier(); r != nil {
		r.until = func(_ *cpg.Store, tr *Traverser) bool { return pred(tr) }
	}
	return t
}

type repeatFrame struct {
	it    iterator
	depth int
}

// repeatIter runs a repeat step depth-first, so that results are produced as soon as one path satisfies the
// stopping condition.
type repeatIter struct {
	g     *cpg.Store
	r     *repeatStep
	in    iterator
	stack []repeatFrame
}

func (it *repeatIter) stops(tr *Traverser, depth int) bool {
	if it.r.until != nil && it.r.until(it.g, tr) {
		return true
	}
	return it.r.times > 0 && depth >= it.r.times
}

func (it *repeatIter) push(tr *Traverser, depth int) {
	it.stack = append(it.stack, repeatFrame{
		it:    &peekIter{in: it.r.body.applyTo(it.g, tr)},
		depth: depth + 1,
	})
}

func (it *repeatIter) next() (*Traverser, bool) {
	for {
		if len(it.stack) == 0 {
			tr, ok := it.in.next()
			if !ok {
				return nil, false
			}
			if it.r.testFirst && it.stops(tr, 0) {
				return tr, true
			}
			it.push(tr, 0)
			if it.r.emit {
				return tr, true
			}
			continue
		}
		top := &it.stack[len(it.stack)-1]
		tr, ok := top.it.next()
		if !ok {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		if it.r.simple && !tr.IsSimple() {
			continue
		}
		depth := top.depth
		tr.Loops = depth
		if it.stops(tr, depth) {
			return tr, true
		}
		if it.r.until == nil && it.r.times <= 0 && !it.hasMoves(tr) {
			// body cannot move further: the traverser is a result
			return tr, true
		}
		it.push(tr, depth)
		if it.r.emit {
			return tr, true
		}
	}
}

// hasMoves returns true if the body yields at least one traverser from tr (simple ones only when the repeat is
// bounded by SimplePath).
func (it *repeatIter) hasMoves(tr *Traverser) bool {
	body := it.r.body.applyTo(it.g, tr)
	for {
		n, ok := body.next()
		if !ok {
			return false
		}
		if !it.r.simple || n.IsSimple() {
			return true
		}
	}
}
