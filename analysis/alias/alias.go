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

// Package alias implements a context- and flow-insensitive alias analysis over the code property graph. Each copy
// between reference-typed locals adds the copied variable to the points-to set of the target; every pair of a
// points-to set then gets a MayAliasEdge between the Local vertices of the two variables.
package alias

import (
	"fmt"
	"sort"

	"github.com/wimkeir/graft-sub000/analysis/astgraph"
	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/traversal"
	"golang.org/x/exp/slices"
)

// primitives are the types whose values are never shared
var primitives = map[string]bool{
	"boolean": true,
	"byte":    true,
	"char":    true,
	"short":   true,
	"int":     true,
	"long":    true,
	"float":   true,
	"double":  true,
}

// IsReference returns true if values of type typ are references: any declared type that is not primitive
func IsReference(typ string) bool {
	return typ != "" && !primitives[typ]
}

// Var is a variable of a method
type Var struct {
	Method string
	Name   string
}

func (v Var) String() string {
	return fmt.Sprintf("%s:%s", v.Method, v.Name)
}

func (v Var) less(o Var) bool {
	if v.Method != o.Method {
		return v.Method < o.Method
	}
	return v.Name < o.Name
}

// Result is the result of the alias analysis
type Result struct {
	// PointsTo maps each variable to the variables copied into it, sorted
	PointsTo map[Var][]Var
	// EdgesAdded is the number of MayAliasEdges added to the store
	EdgesAdded int
	// Gaps is the number of pairs for which a variable has no Local vertex
	Gaps int
}

// Keys returns the variables with a non-empty points-to set, sorted
func (r *Result) Keys() []Var {
	keys := make([]Var, 0, len(r.PointsTo))
	for k := range r.PointsTo {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys
}

// Analyze computes the points-to sets of the variables of the store and adds the MayAliasEdges. Running it again
// on the same store adds no edge.
func Analyze(store *cpg.Store, logger *config.LogGroup) (*Result, error) {
	if logger == nil {
		logger = config.Discard()
	}
	pointsTo := PointsTo(store)
	res := &Result{PointsTo: pointsTo}
	before := store.NumEdgesWith(cpg.MayAliasEdge)
	for _, key := range res.Keys() {
		from := CanonicalLocal(store, key)
		if from == cpg.NoVertex {
			res.Gaps += len(pointsTo[key])
			logger.Debugf("alias: no Local vertex for %s", key)
			continue
		}
		for _, member := range pointsTo[key] {
			to := CanonicalLocal(store, member)
			if to == cpg.NoVertex {
				res.Gaps++
				logger.Debugf("alias: no Local vertex for %s", member)
				continue
			}
			if from == to {
				continue
			}
			err := traversal.New(store).
				V(from).
				Coalesce(
					traversal.Anon().Both(cpg.MayAliasEdge).Is(to),
					traversal.Anon().AddE(cpg.MayAliasEdge, cpg.RoleAlias, to)).
				Iterate()
			if err != nil {
				return nil, fmt.Errorf("alias edge %s -> %s: %w", key, member, err)
			}
		}
	}
	res.EdgesAdded = store.NumEdgesWith(cpg.MayAliasEdge) - before
	logger.Infof("alias: %d variables with aliases, %d edges added, %d gaps", len(pointsTo), res.EdgesAdded,
		res.Gaps)
	return res, nil
}

// PointsTo returns the points-to sets of the variables of the store: for every assignment of a local to a
// reference-typed local, including the init and update assignments of loops, the copied variable is in the set of
// the target.
func PointsTo(store *cpg.Store) map[Var][]Var {
	sets := map[Var][]Var{}
	add := func(owner cpg.VertexID) {
		target := astgraph.Child(store, owner, cpg.RoleTarget)
		value := astgraph.Child(store, owner, cpg.RoleValue)
		if target == cpg.NoVertex || value == cpg.NoVertex {
			return
		}
		t, v := store.Vertex(target), store.Vertex(value)
		if t.Kind != cpg.KindLocal || v.Kind != cpg.KindLocal || !IsReference(t.Props.String(cpg.PropType)) {
			return
		}
		key := Var{Method: t.Method(), Name: t.Props.String(cpg.PropName)}
		member := Var{Method: v.Method(), Name: v.Props.String(cpg.PropName)}
		if key == member || slices.Contains(sets[key], member) {
			return
		}
		sets[key] = append(sets[key], member)
	}
	for it := store.Vertices(cpg.CfgNode, cpg.KindAssignStmt); it.HasNext(); {
		add(it.Next().ID)
	}
	for it := store.Vertices(cpg.AstNode, cpg.KindAssignExpr); it.HasNext(); {
		add(it.Next().ID)
	}
	for k := range sets {
		members := sets[k]
		sort.Slice(members, func(i, j int) bool { return members[i].less(members[j]) })
	}
	return sets
}

// CanonicalLocal returns the Local vertex standing for the variable: the one with the lowest id. It returns NoVertex
// if the variable has no Local vertex.
func CanonicalLocal(store *cpg.Store, v Var) cpg.VertexID {
	for it := store.VerticesWith(cpg.AstNode, cpg.PropName, v.Name); it.HasNext(); {
		l := it.Next()
		if l.Kind == cpg.KindLocal && l.Method() == v.Method {
			return l.ID
		}
	}
	return cpg.NoVertex
}

// MayAlias returns the Local vertices linked to the Local vertex v by a MayAliasEdge, in either direction.
func MayAlias(store *cpg.Store, v cpg.VertexID) ([]cpg.VertexID, error) {
	return traversal.New(store).V(v).Both(cpg.MayAliasEdge).Dedup().ToList()
}
