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

	"golang.org/x/exp/maps"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
)

// Digraph is a directed graph over integer node ids, built from a projection of a larger graph. It implements the
// methods to satisfy the yourbasic graph.Iterator and Gonum's graph.Directed interfaces, so that the algorithms of
// both libraries can run on any subset of the code property graph.
type Digraph struct {
	// order is one more than the largest node id
	order int

	// Keys are all the node IDs, sorted
	Keys []int64

	// Labels maps node ids to a printable label
	Labels map[int64]string

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge from x to y
	Edges map[int64]map[int64]bool

	// reverse is the transposed adjacency matrix
	reverse map[int64]map[int64]bool
}

// NewDigraph returns an empty graph.
func NewDigraph() *Digraph {
	return &Digraph{
		Labels:  map[int64]string{},
		Edges:   map[int64]map[int64]bool{},
		reverse: map[int64]map[int64]bool{},
	}
}

// AddNode adds the node id with label. Adding a node twice updates its label.
func (g *Digraph) AddNode(id int64, label string) {
	if _, ok := g.Edges[id]; !ok {
		g.Edges[id] = map[int64]bool{}
		g.reverse[id] = map[int64]bool{}
		i := sort.Search(len(g.Keys), func(i int) bool { return g.Keys[i] >= id })
		g.Keys = append(g.Keys, 0)
		copy(g.Keys[i+1:], g.Keys[i:])
		g.Keys[i] = id
		if int(id) >= g.order {
			g.order = int(id) + 1
		}
	}
	g.Labels[id] = label
}

// AddEdge adds the edge x -> y. Both nodes must have been added before. Parallel edges are merged.
func (g *Digraph) AddEdge(x, y int64) {
	if _, ok := g.Edges[x]; !ok {
		return
	}
	if _, ok := g.Edges[y]; !ok {
		return
	}
	g.Edges[x][y] = true
	g.reverse[y][x] = true
}

// Successors returns the successors of x in ascending order.
func (g *Digraph) Successors(x int64) []int64 {
	return sortedKeys(g.Edges[x])
}

// Predecessors returns the predecessors of x in ascending order.
func (g *Digraph) Predecessors(x int64) []int64 {
	return sortedKeys(g.reverse[x])
}

// NumEdges returns the number of edges in the graph.
func (g *Digraph) NumEdges() int {
	n := 0
	for _, out := range g.Edges {
		n += len(out)
	}
	return n
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only the edges that have
// both the origin and destination nodes in the include nodes are kept in the resulting graph.
// The subgraph's order is the same as in the original, meaning that node indices stay consistent across subgraphs.
func Subgraph(original *Digraph, include []int64) *Digraph {
	sub := NewDigraph()
	for _, i := range include {
		if _, ok := original.Edges[i]; ok {
			sub.AddNode(i, original.Labels[i])
		}
	}
	for _, i := range sub.Keys {
		for e := range original.Edges[i] {
			sub.AddEdge(i, e)
		}
	}
	sub.order = original.order
	return sub
}

func sortedKeys(m map[int64]bool) []int64 {
	keys := maps.Keys(m)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Order implements the order of the graph.Iterator interface for the Digraph
func (g *Digraph) Order() int {
	return g.order
}

// Visit implements the graph.Iterator interface for the Digraph
func (g *Digraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	for _, w := range g.Successors(int64(v)) {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// *************** Graph interface implementation **********************

// Node implements the Graph interface
func (g *Digraph) Node(id int64) graph.Node {
	if _, ok := g.Edges[id]; !ok {
		return nil
	}
	return Node{id: id, label: g.Labels[id]}
}

// Nodes returns the set of nodes in the graph
func (g *Digraph) Nodes() graph.Nodes {
	return g.nodeSet(g.Keys)
}

// From returns the set of nodes reachable in one step from the id
func (g *Digraph) From(id int64) graph.Nodes {
	return g.nodeSet(g.Successors(id))
}

// To returns the set of nodes that reach the id in one step
func (g *Digraph) To(id int64) graph.Nodes {
	return g.nodeSet(g.Predecessors(id))
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (g *Digraph) HasEdgeBetween(xid, yid int64) bool {
	return g.Edges[xid][yid] || g.Edges[yid][xid]
}

// HasEdgeFromTo returns whether an edge exists from u to v
func (g *Digraph) HasEdgeFromTo(uid, vid int64) bool {
	return g.Edges[uid][vid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (g *Digraph) Edge(uid, vid int64) graph.Edge {
	if g.Edges[uid][vid] {
		return Edge{from: Node{uid, g.Labels[uid]}, to: Node{vid, g.Labels[vid]}}
	}
	return nil
}

func (g *Digraph) nodeSet(ids []int64) graph.Nodes {
	nodes := make([]graph.Node, len(ids))
	for i, id := range ids {
		nodes[i] = Node{id: id, label: g.Labels[id]}
	}
	return iterator.NewOrderedNodes(nodes)
}

// *************** Nodes implementation **********************

// Node implements the graph.Node interface
type Node struct {
	id    int64
	label string
}

// ID returns the id of the node
func (n Node) ID() int64 {
	return n.id
}

func (n Node) String() string {
	return n.label
}

// *************** Edge implementation **********************

// Edge implements the graph.Edge interface
type Edge struct {
	from Node
	to   Node
}

// From returns the origin of the edge
func (e Edge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e Edge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e Edge) ReversedEdge() graph.Edge {
	return Edge{from: e.to, to: e.from}
}
