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

func (t *Traversal) iter() *peekIter {
	if t.it == nil {
		var src iterator
		if t.all {
			var ts []*Traverser
			for it := t.g.Vertices("", ""); it.HasNext(); {
				ts = append(ts, newTraverser(it.Next().ID))
			}
			src = &sliceIter{ts: ts}
		} else {
			ts := make([]*Traverser, len(t.source))
			for i, id := range t.source {
				ts[i] = newTraverser(id)
			}
			src = &sliceIter{ts: ts}
		}
		t.it = &peekIter{in: t.apply(t.g, src)}
	}
	return t.it
}

// Err returns the construction error of the traversal, if any.
func (t *Traversal) Err() error {
	return t.failure()
}

// HasNext returns true if the traversal has another result. It is false for traversals that failed to construct.
func (t *Traversal) HasNext() bool {
	if t.failure() != nil {
		return false
	}
	return t.iter().hasNext()
}

// Next returns the vertex of the next result, and false if there are none left.
func (t *Traversal) Next() (cpg.VertexID, bool) {
	tr, ok := t.NextTraverser()
	if !ok {
		return cpg.NoVertex, false
	}
	return tr.Vertex, true
}

// NextTraverser returns the next result with its path.
func (t *Traversal) NextTraverser() (*Traverser, bool) {
	if t.failure() != nil {
		return nil, false
	}
	return t.iter().next()
}

// ToList returns the vertices of all the remaining results.
func (t *Traversal) ToList() ([]cpg.VertexID, error) {
	if err := t.failure(); err != nil {
		return nil, err
	}
	var res []cpg.VertexID
	for tr, ok := t.iter().next(); ok; tr, ok = t.iter().next() {
		res = append(res, tr.Vertex)
	}
	return res, nil
}

// Paths returns the paths of all the remaining results.
func (t *Traversal) Paths() ([][]cpg.VertexID, error) {
	if err := t.failure(); err != nil {
		return nil, err
	}
	var res [][]cpg.VertexID
	for tr, ok := t.iter().next(); ok; tr, ok = t.iter().next() {
		res = append(res, tr.Path())
	}
	return res, nil
}

// Count returns the number of remaining results.
func (t *Traversal) Count() (int, error) {
	if err := t.failure(); err != nil {
		return 0, err
	}
	n := 0
	for _, ok := t.iter().next(); ok; _, ok = t.iter().next() {
		n++
	}
	return n, nil
}

// Iterate runs the traversal to completion for its side effects.
func (t *Traversal) Iterate() error {
	_, err := t.Count()
	return err
}
