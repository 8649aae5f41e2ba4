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

package persist

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
)

// DOTOptions select the part of the graph that is rendered
type DOTOptions struct {
	// Labels are the edge labels rendered. All labels are rendered if empty.
	Labels []cpg.EdgeLabel

	// Method restricts the rendering to the vertices of one method. All methods are rendered if empty.
	Method string
}

func (o DOTOptions) keepsLabel(l cpg.EdgeLabel) bool {
	if len(o.Labels) == 0 {
		return true
	}
	for _, x := range o.Labels {
		if x == l {
			return true
		}
	}
	return false
}

func (o DOTOptions) keepsVertex(v *cpg.Vertex) bool {
	return o.Method == "" || v.Method() == o.Method
}

// edgeStyle defines specific colors for specific edges
// - interprocedural edges are red
// - dependence edges are blue and alias edges are dashed
// - all other edges have a default color
func edgeStyle(l cpg.EdgeLabel) []encoding.Attribute {
	switch l {
	case cpg.CallEdge, cpg.RetEdge:
		return []encoding.Attribute{{Key: "color", Value: "red"}}
	case cpg.PdgEdge:
		return []encoding.Attribute{{Key: "color", Value: "blue"}, {Key: "fontcolor", Value: "blue"}}
	case cpg.MayAliasEdge:
		return []encoding.Attribute{{Key: "color", Value: "purple"}, {Key: "style", Value: "dashed"}}
	case cpg.AstEdge:
		return []encoding.Attribute{{Key: "color", Value: "gray"}}
	}
	return nil
}

type dotNode struct {
	v *cpg.Vertex
}

func (n dotNode) ID() int64 { return int64(n.v.ID) }

func (n dotNode) DOTID() string { return fmt.Sprintf("v%d", n.v.ID) }

func (n dotNode) Attributes() []encoding.Attribute {
	shape := "ellipse"
	switch {
	case n.v.Kind == cpg.KindIfStmt || n.v.Kind.IsLoopHeader():
		shape = "diamond"
	case n.v.Label == cpg.CfgNode:
		shape = "box"
	}
	return []encoding.Attribute{{Key: "label", Value: n.v.String()}, {Key: "shape", Value: shape}}
}

type dotLine struct {
	e        *cpg.Edge
	from, to dotNode
}

func (l dotLine) From() graph.Node { return l.from }

func (l dotLine) To() graph.Node { return l.to }

func (l dotLine) ReversedLine() graph.Line { return dotLine{e: l.e, from: l.to, to: l.from} }

func (l dotLine) ID() int64 { return int64(l.e.ID) }

func (l dotLine) Attributes() []encoding.Attribute {
	label := string(l.e.Label)
	if l.e.Role != "" {
		label += "(" + l.e.Role + ")"
	}
	return append([]encoding.Attribute{{Key: "label", Value: label}}, edgeStyle(l.e.Label)...)
}

// Multigraph returns the selected part of the store as a Gonum multigraph. Parallel edges with different labels are
// kept apart.
func Multigraph(store *cpg.Store, opts DOTOptions) *multi.DirectedGraph {
	g := multi.NewDirectedGraph()
	for id := cpg.VertexID(1); id <= store.MaxVertexID(); id++ {
		if v := store.Vertex(id); opts.keepsVertex(v) {
			g.AddNode(dotNode{v})
		}
	}
	for _, l := range cpg.AllEdgeLabels {
		if !opts.keepsLabel(l) {
			continue
		}
		for _, e := range store.Edges(l) {
			from, to := store.Vertex(e.From), store.Vertex(e.To)
			if !opts.keepsVertex(from) || !opts.keepsVertex(to) {
				continue
			}
			g.SetLine(dotLine{e: e, from: dotNode{from}, to: dotNode{to}})
		}
	}
	return g
}

// WriteDOT writes a graphviz representation of the store to w
func WriteDOT(store *cpg.Store, opts DOTOptions, w io.Writer) error {
	b, err := dot.MarshalMulti(Multigraph(store, opts), "cpg", "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal graph: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("error while writing in file: %w", err)
	}
	return nil
}

// DOTToFile writes a graphviz representation of the store to the file filename
func DOTToFile(store *cpg.Store, opts DOTOptions, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := WriteDOT(store, opts, w); err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}
	return w.Flush()
}
