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

package cpg

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// VertexID identifies a vertex in a Store. Ids start at 1.
type VertexID uint32

// NoVertex is the zero id, never assigned to a vertex.
const NoVertex VertexID = 0

// EdgeID identifies an edge in a Store. Ids start at 1.
type EdgeID uint32

// Vertex is a vertex of the store. Vertices returned by the store must not be modified.
type Vertex struct {
	ID    VertexID
	Label VertexLabel
	Kind  Kind
	Props Properties
	out   []EdgeID
	in    []EdgeID
}

func (v *Vertex) String() string {
	if code := v.Props.String(PropCode); code != "" {
		return fmt.Sprintf("%d:%s[%s]", v.ID, v.Kind, code)
	}
	return fmt.Sprintf("%d:%s", v.ID, v.Kind)
}

// Method returns the method the vertex belongs to.
func (v *Vertex) Method() string {
	return v.Props.String(PropMethod)
}

// Edge is an edge of the store. Edges returned by the store must not be modified.
type Edge struct {
	ID    EdgeID
	Label EdgeLabel
	Role  string
	From  VertexID
	To    VertexID
	Props Properties
}

func (e *Edge) String() string {
	if e.Role == "" {
		return fmt.Sprintf("%d -%s-> %d", e.From, e.Label, e.To)
	}
	return fmt.Sprintf("%d -%s(%s)-> %d", e.From, e.Label, e.Role, e.To)
}

type kindKey struct {
	label VertexLabel
	kind  Kind
}

type propKey struct {
	label VertexLabel
	key   string
	value string
}

// Store is an append-only property graph.
//
// A Store is not safe for concurrent mutation. Concurrent reads are safe once construction is finished.
type Store struct {
	vertices []*Vertex // vertices[0] is unused
	edges    []*Edge   // edges[0] is unused

	all         *roaring.Bitmap
	byLabel     map[VertexLabel]*roaring.Bitmap
	byKind      map[kindKey]*roaring.Bitmap
	byProp      map[propKey]*roaring.Bitmap
	edgesByKind map[EdgeLabel]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		vertices:    []*Vertex{nil},
		edges:       []*Edge{nil},
		all:         roaring.New(),
		byLabel:     map[VertexLabel]*roaring.Bitmap{},
		byKind:      map[kindKey]*roaring.Bitmap{},
		byProp:      map[propKey]*roaring.Bitmap{},
		edgesByKind: map[EdgeLabel]int{},
	}
}

func bitmapAt[K comparable](m map[K]*roaring.Bitmap, k K) *roaring.Bitmap {
	b, ok := m[k]
	if !ok {
		b = roaring.New()
		m[k] = b
	}
	return b
}

// AddVertex adds a vertex and returns its id. The properties are copied.
func (s *Store) AddVertex(label VertexLabel, kind Kind, props Properties) VertexID {
	id := VertexID(len(s.vertices))
	v := &Vertex{ID: id, Label: label, Kind: kind, Props: props.clone()}
	s.vertices = append(s.vertices, v)
	s.all.Add(uint32(id))
	bitmapAt(s.byLabel, label).Add(uint32(id))
	bitmapAt(s.byKind, kindKey{label, kind}).Add(uint32(id))
	for k, val := range v.Props {
		bitmapAt(s.byProp, propKey{label, k, indexValue(val)}).Add(uint32(id))
	}
	return id
}

// AddEdge adds an edge from -> to and returns its id. Parallel edges are allowed.
// Panics if either endpoint does not exist.
func (s *Store) AddEdge(label EdgeLabel, role string, from, to VertexID, props Properties) EdgeID {
	src := s.Vertex(from)
	dst := s.Vertex(to)
	id := EdgeID(len(s.edges))
	e := &Edge{ID: id, Label: label, Role: role, From: from, To: to, Props: props.clone()}
	s.edges = append(s.edges, e)
	src.out = append(src.out, id)
	dst.in = append(dst.in, id)
	s.edgesByKind[label]++
	return id
}

// Vertex returns the vertex with the given id. Panics if it does not exist.
func (s *Store) Vertex(id VertexID) *Vertex {
	if id == NoVertex || int(id) >= len(s.vertices) {
		panic(fmt.Sprintf("cpg: no vertex with id %d", id))
	}
	return s.vertices[id]
}

// Edge returns the edge with the given id. Panics if it does not exist.
func (s *Store) Edge(id EdgeID) *Edge {
	if id == 0 || int(id) >= len(s.edges) {
		panic(fmt.Sprintf("cpg: no edge with id %d", id))
	}
	return s.edges[id]
}

// NumVertices returns the number of vertices in the store.
func (s *Store) NumVertices() int { return len(s.vertices) - 1 }

// NumEdges returns the number of edges in the store.
func (s *Store) NumEdges() int { return len(s.edges) - 1 }

// NumEdgesWith returns the number of edges with the given label.
func (s *Store) NumEdgesWith(label EdgeLabel) int { return s.edgesByKind[label] }

// MaxVertexID returns the largest assigned vertex id, or NoVertex if the store is empty.
func (s *Store) MaxVertexID() VertexID { return VertexID(len(s.vertices) - 1) }

// Vertices returns the vertices with the given label and kind in ascending id order. An empty label or kind
// matches any.
func (s *Store) Vertices(label VertexLabel, kind Kind) *VertexIter {
	switch {
	case label == "" && kind == "":
		return newVertexIter(s, s.all)
	case kind == "":
		return newVertexIter(s, s.byLabel[label])
	case label != "":
		return newVertexIter(s, s.byKind[kindKey{label, kind}])
	default:
		b := roaring.New()
		for k, bm := range s.byKind {
			if k.kind == kind {
				b.Or(bm)
			}
		}
		return newVertexIter(s, b)
	}
}

// VerticesWith returns the vertices with the given label whose property key equals value, in ascending id order.
func (s *Store) VerticesWith(label VertexLabel, key string, value any) *VertexIter {
	return newVertexIter(s, s.byProp[propKey{label, key, indexValue(value)}])
}

// HasProperty returns true if the property key of vertex v is matched by m.
func (s *Store) HasProperty(v VertexID, key string, m Matcher) bool {
	val, ok := s.Vertex(v).Props[key]
	if !ok {
		return m.Match(nil)
	}
	return m.Match(val)
}

// OutEdges returns the edges leaving v with the given label (any label if empty), in insertion order.
func (s *Store) OutEdges(v VertexID, label EdgeLabel) []*Edge {
	return s.filterEdges(s.Vertex(v).out, label)
}

// InEdges returns the edges entering v with the given label (any label if empty), in insertion order.
func (s *Store) InEdges(v VertexID, label EdgeLabel) []*Edge {
	return s.filterEdges(s.Vertex(v).in, label)
}

// Out returns the targets of the edges leaving v with the given label, in edge insertion order.
func (s *Store) Out(v VertexID, label EdgeLabel) []VertexID {
	var res []VertexID
	for _, e := range s.OutEdges(v, label) {
		res = append(res, e.To)
	}
	return res
}

// In returns the sources of the edges entering v with the given label, in edge insertion order.
func (s *Store) In(v VertexID, label EdgeLabel) []VertexID {
	var res []VertexID
	for _, e := range s.InEdges(v, label) {
		res = append(res, e.From)
	}
	return res
}

// HasEdge returns true if there is an edge from -> to with the given label.
func (s *Store) HasEdge(label EdgeLabel, from, to VertexID) bool {
	for _, e := range s.OutEdges(from, label) {
		if e.To == to {
			return true
		}
	}
	return false
}

// Edges returns all the edges with the given label (any label if empty) in id order.
func (s *Store) Edges(label EdgeLabel) []*Edge {
	var res []*Edge
	for _, e := range s.edges[1:] {
		if label == "" || e.Label == label {
			res = append(res, e)
		}
	}
	return res
}

func (s *Store) filterEdges(ids []EdgeID, label EdgeLabel) []*Edge {
	res := make([]*Edge, 0, len(ids))
	for _, id := range ids {
		e := s.edges[id]
		if label == "" || e.Label == label {
			res = append(res, e)
		}
	}
	return res
}

// VertexIter iterates over a snapshot of a vertex index in ascending id order.
type VertexIter struct {
	s  *Store
	it roaring.IntIterable
}

func newVertexIter(s *Store, b *roaring.Bitmap) *VertexIter {
	if b == nil {
		b = roaring.New()
	}
	return &VertexIter{s: s, it: b.Clone().Iterator()}
}

// HasNext returns true if there are vertices left.
func (it *VertexIter) HasNext() bool { return it.it.HasNext() }

// Next returns the next vertex. Panics if there are none left.
func (it *VertexIter) Next() *Vertex {
	return it.s.Vertex(VertexID(it.it.Next()))
}

// IDs drains the iterator and returns the remaining vertex ids.
func (it *VertexIter) IDs() []VertexID {
	var res []VertexID
	for it.it.HasNext() {
		res = append(res, VertexID(it.it.Next()))
	}
	return res
}

// All drains the iterator and returns the remaining vertices.
func (it *VertexIter) All() []*Vertex {
	var res []*Vertex
	for it.HasNext() {
		res = append(res, it.Next())
	}
	return res
}
