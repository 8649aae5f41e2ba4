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

package controlflow

import (
	"errors"
	"fmt"

	"github.com/wimkeir/graft-sub000/analysis/astgraph"
	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/ir"
)

// ErrMalformedBlock is returned for methods whose block lengths do not fit their statement stream.
var ErrMalformedBlock = errors.New("malformed block structure")

// Result is the control flow graph of one method.
type Result struct {
	// Method is the name of the method
	Method string
	// Entry and Exit are the synthetic entry and exit vertices of the method
	Entry cpg.VertexID
	Exit  cpg.VertexID
	// Vertices maps statement indices to their vertices. Unsupported statements have no vertex.
	Vertices map[int]cpg.VertexID
	// Phis are the merge vertices, in creation order
	Phis []cpg.VertexID
	// Unsupported is the number of statements and expression subtrees that were skipped
	Unsupported int
}

// VertexOf returns the vertex of the statement at index i, and false if it has none.
func (r *Result) VertexOf(i int) (cpg.VertexID, bool) {
	v, ok := r.Vertices[i]
	return v, ok
}

type builder struct {
	store  *cpg.Store
	method *ir.Method
	name   string
	ast    *astgraph.Builder
	logger *config.LogGroup
	res    *Result
}

// Build adds the control flow graph of method m, with the AST subtrees of its statements, to the store.
// A method whose block lengths do not fit its stream is rejected with ErrMalformedBlock before anything is added.
func Build(store *cpg.Store, m *ir.Method, logger *config.LogGroup) (*Result, error) {
	if logger == nil {
		logger = config.Discard()
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBlock, err)
	}
	name := m.Name()
	b := &builder{
		store:  store,
		method: m,
		name:   name,
		ast:    astgraph.NewBuilder(store, name, logger),
		logger: logger,
		res:    &Result{Method: name, Vertices: map[int]cpg.VertexID{}},
	}
	b.res.Entry = store.AddVertex(cpg.CfgNode, cpg.KindEntry, cpg.Properties{
		cpg.PropMethod:    name,
		cpg.PropStmt:      0,
		cpg.PropCode:      "entry",
		cpg.PropSignature: m.Signature.String(),
		cpg.PropCallKey:   m.Signature.Key(),
	})
	b.res.Vertices[0] = b.res.Entry
	b.res.Exit = store.AddVertex(cpg.CfgNode, cpg.KindExit, cpg.Properties{
		cpg.PropMethod: name,
		cpg.PropCode:   "exit",
	})

	st := state{}.withEnds(end{b.res.Entry, cpg.RoleFlow})
	for i := 1; i < len(m.Stmts); i++ {
		var err error
		st, err = b.step(st, i, m.Stmts[i])
		if err != nil {
			return nil, err
		}
	}
	st, err := b.finish(st)
	if err != nil {
		return nil, err
	}
	b.link(st.ends, b.res.Exit)
	b.res.Unsupported += b.ast.Skipped
	logger.Debugf("built CFG of %s: %d statement vertices, %d phis", name, len(b.res.Vertices), len(b.res.Phis))
	return b.res, nil
}

// step places the statement s at index i.
func (b *builder) step(st state, i int, s *ir.Stmt) (state, error) {
	st = b.resolveExhausted(st)
	if s.Kind == ir.Entry {
		return st, fmt.Errorf("%w: %s: entry statement at %d", ErrMalformedBlock, b.name, i)
	}

	kind, supported := vertexKind(s)
	if !supported {
		b.res.Unsupported++
		b.logger.Warnf("%s: skipping statement %d: %v", b.name, i,
			fmt.Errorf("%w: statement kind %q", astgraph.ErrUnsupported, s.RawKind))
		return st.placed(cpg.NoVertex), nil
	}

	v := b.addStmtVertex(i, s, kind)

	if s.Kind == ir.LoopHeader && s.Loop == ir.DoLoop {
		// the condition of a do-while loop runs after its body: the body starts from the current ends
		st = st.placed(cpg.NoVertex)
		return st.push(frame{kind: doBody, header: v, stmt: i, remaining: s.BodyLen, elseLen: -1}), nil
	}

	b.link(st.ends, v)
	st = st.placed(v).withEnds(end{v, cpg.RoleFlow})

	switch s.Kind {
	case ir.ReturnStmt:
		b.store.AddEdge(cpg.CfgEdge, cpg.RoleFlow, v, b.res.Exit, nil)
		st = st.withEnds()
	case ir.ConditionalStmt:
		elseLen := -1
		if s.HasElse {
			elseLen = s.ElseLen
		}
		st = st.push(frame{kind: thenArm, header: v, stmt: i, remaining: s.ThenLen, elseLen: elseLen})
		st = st.withEnds(end{v, cpg.RoleTrue})
	case ir.LoopHeader:
		st = st.push(frame{kind: loopBody, header: v, stmt: i, remaining: s.BodyLen, elseLen: -1})
		st = st.withEnds(end{v, cpg.RoleTrue})
	}
	return st, nil
}

// resolveExhausted resolves the blocks at the top of the stack that have no statement left.
func (b *builder) resolveExhausted(st state) state {
	for {
		f, ok := st.top()
		if !ok || f.remaining > 0 {
			return st
		}
		st = b.resolve(st)
	}
}

// finish resolves all the open blocks at the end of the stream.
func (b *builder) finish(st state) (state, error) {
	st = b.resolveExhausted(st)
	if f, ok := st.top(); ok {
		return st, fmt.Errorf("%w: %s: block %s is still open at the end of the stream", ErrMalformedBlock, b.name, f)
	}
	return st, nil
}

// resolve closes the current sub-block of the top frame.
func (b *builder) resolve(st state) state {
	st, f := st.pop()
	b.logger.Tracef("%s: closing %s", b.name, f)
	switch f.kind {
	case thenArm:
		if f.elseLen >= 0 {
			// the else-arm starts from the condition
			f.thenEnds = st.ends
			f.kind = elseArm
			f.remaining = f.elseLen
			return st.push(f).withEnds(end{f.header, cpg.RoleFalse})
		}
		return b.merge(st, append(append([]end(nil), st.ends...), end{f.header, cpg.RoleFalse}))

	case elseArm:
		return b.merge(st, append(append([]end(nil), f.thenEnds...), st.ends...))

	case loopBody:
		for _, e := range st.ends {
			// the exit of a nested loop that ends the body keeps its False role
			role := cpg.RoleBack
			if e.role == cpg.RoleFalse {
				role = cpg.RoleFalse
			}
			b.store.AddEdge(cpg.CfgEdge, role, e.v, f.header, nil)
		}
		return st.withEnds(end{f.header, cpg.RoleFalse})

	default: // doBody
		b.link(st.ends, f.header)
		first := f.first
		if first == cpg.NoVertex {
			first = f.header
		}
		b.store.AddEdge(cpg.CfgEdge, cpg.RoleBack, f.header, first, nil)
		return st.withEnds(end{f.header, cpg.RoleFalse})
	}
}

// merge joins ends into a new Phi vertex. No Phi is created when there is no end to merge: every arm returned.
func (b *builder) merge(st state, ends []end) state {
	if len(ends) == 0 {
		return st.withEnds()
	}
	phi := b.store.AddVertex(cpg.CfgNode, cpg.KindPhi, cpg.Properties{
		cpg.PropMethod: b.name,
		cpg.PropCode:   "phi",
	})
	b.res.Phis = append(b.res.Phis, phi)
	b.link(ends, phi)
	return st.withEnds(end{phi, cpg.RoleFlow})
}

// link draws the edges from the ends to v.
func (b *builder) link(ends []end, v cpg.VertexID) {
	for _, e := range ends {
		b.store.AddEdge(cpg.CfgEdge, e.role, e.v, v, nil)
	}
}

func (b *builder) addStmtVertex(i int, s *ir.Stmt, kind cpg.Kind) cpg.VertexID {
	props := cpg.Properties{
		cpg.PropMethod: b.name,
		cpg.PropStmt:   i,
		cpg.PropCode:   s.String(),
	}
	if s.Line > 0 {
		props[cpg.PropLine] = s.Line
	}
	v := b.store.AddVertex(cpg.CfgNode, kind, props)
	b.res.Vertices[i] = v
	b.ast.AttachStmt(v, s)
	return v
}

// vertexKind returns the kind of the vertex of statement s, and false if s is not supported.
func vertexKind(s *ir.Stmt) (cpg.Kind, bool) {
	switch s.Kind {
	case ir.AssignStmt:
		return cpg.KindAssignStmt, true
	case ir.IdentityStmt:
		return cpg.KindIdentityStmt, true
	case ir.ConditionalStmt:
		return cpg.KindIfStmt, true
	case ir.InvokeStmt:
		return cpg.KindInvokeStmt, true
	case ir.ReturnStmt:
		return cpg.KindReturnStmt, true
	case ir.LoopHeader:
		switch s.Loop {
		case ir.ForLoop:
			return cpg.KindForStmt, true
		case ir.DoLoop:
			return cpg.KindDoWhileStmt, true
		default:
			return cpg.KindWhileStmt, true
		}
	}
	return "", false
}
