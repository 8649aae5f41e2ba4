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

// Package interproc links the per-method graphs of a program: each call site whose callee is uniquely resolved gets
// a CallEdge to the callee's entry, and the callee's exit gets a RetEdge back to the return site.
//
// Callees are resolved by their call key, the signature without its return type. A call key matching zero or several
// entries is a gap: no edge is added for that site, and the gap is recorded in the result.
package interproc

import (
	"fmt"

	"github.com/wimkeir/graft-sub000/analysis/astgraph"
	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
)

// GapKind is the reason a call site was not linked.
type GapKind int

const (
	// NoCallee is a call to a method that has no graph: a library method, or a method the front end skipped
	NoCallee GapKind = iota
	// AmbiguousCallee is a call whose key matches several entries, e.g. overloads differing in return type only
	AmbiguousCallee
	// NoReturnSite is a call whose owner does not have exactly one CFG successor, e.g. a call in a branch condition
	NoReturnSite
	// NoOwner is an invocation vertex that is not under any CFG vertex
	NoOwner
)

func (k GapKind) String() string {
	switch k {
	case NoCallee:
		return "no callee"
	case AmbiguousCallee:
		return "ambiguous callee"
	case NoReturnSite:
		return "no unique return site"
	case NoOwner:
		return "no owner"
	}
	return fmt.Sprintf("GapKind(%d)", int(k))
}

// Gap is a call site left unlinked.
type Gap struct {
	Kind GapKind
	// Invoke is the InvokeExpr vertex
	Invoke cpg.VertexID
	// CallKey is the call key of the invocation
	CallKey string
	// Candidates is the number of entries matching CallKey
	Candidates int
}

func (g Gap) String() string {
	return fmt.Sprintf("%s at #%d (%s, %d candidates)", g.Kind, g.Invoke, g.CallKey, g.Candidates)
}

// Result is the outcome of linking.
type Result struct {
	// Linked is the number of call sites that received a CallEdge/RetEdge pair
	Linked int
	// Gaps lists the unlinked call sites in increasing invocation vertex order
	Gaps []Gap
}

// CountGaps returns the number of gaps of kind k.
func (r Result) CountGaps(k GapKind) int {
	n := 0
	for _, g := range r.Gaps {
		if g.Kind == k {
			n++
		}
	}
	return n
}

// Link adds the CallEdges and RetEdges of all the call sites in the store. It must run once the per-method graphs
// are complete. Linking twice adds no new edge.
func Link(store *cpg.Store, logger *config.LogGroup) Result {
	if logger == nil {
		logger = config.Discard()
	}
	var res Result
	entries := entriesByKey(store)
	invokes := store.Vertices(cpg.AstNode, cpg.KindInvokeExpr)
	for invokes.HasNext() {
		inv := invokes.Next()
		key := inv.Props.String(cpg.PropCallKey)
		gap := func(kind GapKind, candidates int) {
			g := Gap{Kind: kind, Invoke: inv.ID, CallKey: key, Candidates: candidates}
			res.Gaps = append(res.Gaps, g)
			if kind == NoCallee {
				logger.Tracef("unlinked call: %s", g)
			} else {
				logger.Debugf("unlinked call: %s", g)
			}
		}

		candidates := entries[key]
		switch {
		case len(candidates) == 0:
			gap(NoCallee, 0)
			continue
		case len(candidates) > 1:
			gap(AmbiguousCallee, len(candidates))
			continue
		}
		site := astgraph.OwnerOf(store, inv.ID)
		if site == cpg.NoVertex {
			gap(NoOwner, 1)
			continue
		}
		successors := store.Out(site, cpg.CfgEdge)
		if len(successors) != 1 {
			gap(NoReturnSite, 1)
			continue
		}
		entry := candidates[0]
		exit := store.ExitOf(store.Vertex(entry).Method())
		if exit == cpg.NoVertex {
			gap(NoCallee, 1)
			continue
		}
		returnSite := successors[0]
		if !store.HasEdge(cpg.CallEdge, site, entry) {
			store.AddEdge(cpg.CallEdge, cpg.RoleInvoke, site, entry, cpg.Properties{cpg.PropCallKey: key})
		}
		if !store.HasEdge(cpg.RetEdge, exit, returnSite) {
			store.AddEdge(cpg.RetEdge, cpg.RoleReturn, exit, returnSite, cpg.Properties{cpg.PropCallKey: key})
		}
		res.Linked++
		logger.Tracef("linked %s -> %s", store.Vertex(site), store.Vertex(entry))
	}
	logger.Debugf("linked %d call sites, %d gaps", res.Linked, len(res.Gaps))
	return res
}

func entriesByKey(store *cpg.Store) map[string][]cpg.VertexID {
	m := map[string][]cpg.VertexID{}
	it := store.Vertices(cpg.CfgNode, cpg.KindEntry)
	for it.HasNext() {
		v := it.Next()
		key := v.Props.String(cpg.PropCallKey)
		m[key] = append(m[key], v.ID)
	}
	return m
}

// Callees returns the entries called from the call site v.
func Callees(store *cpg.Store, v cpg.VertexID) []cpg.VertexID {
	return store.Out(v, cpg.CallEdge)
}

// CallSites returns the call sites linked to the entry v.
func CallSites(store *cpg.Store, entry cpg.VertexID) []cpg.VertexID {
	return store.In(entry, cpg.CallEdge)
}

// CallInto returns the InvokeExpr vertex under the call site whose call key is the key of the entry, or NoVertex.
func CallInto(store *cpg.Store, site cpg.VertexID, entry cpg.VertexID) cpg.VertexID {
	key := store.Vertex(entry).Props.String(cpg.PropCallKey)
	for _, inv := range astgraph.InvokesUnder(store, site) {
		if inv.Props.String(cpg.PropCallKey) == key {
			return inv.ID
		}
	}
	return cpg.NoVertex
}
