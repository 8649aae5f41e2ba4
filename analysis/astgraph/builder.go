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

// Package astgraph builds the AST layer of the code property graph: the expression subtrees owned by each CFG
// vertex. It also contains the queries other passes use to navigate that layer.
package astgraph

import (
	"errors"
	"fmt"

	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/ir"
)

// ErrUnsupported is returned for statement and expression kinds the builders do not handle.
var ErrUnsupported = errors.New("unsupported construct")

// Builder adds the expression subtrees of the statements of one method to the store.
type Builder struct {
	store  *cpg.Store
	method string
	logger *config.LogGroup

	// Skipped counts the expression subtrees that were omitted because they are unsupported
	Skipped int
}

// NewBuilder returns a builder for the expressions of method.
func NewBuilder(store *cpg.Store, method string, logger *config.LogGroup) *Builder {
	if logger == nil {
		logger = config.Discard()
	}
	return &Builder{store: store, method: method, logger: logger}
}

func (b *Builder) props(code string) cpg.Properties {
	return cpg.Properties{cpg.PropMethod: b.method, cpg.PropCode: code}
}

// BuildNode creates the AST subtree of e and returns its root. If the kind of e is not supported, no vertex is
// created and the error wraps ErrUnsupported. Unsupported children are omitted from the subtree with a diagnostic.
func (b *Builder) BuildNode(e *ir.Expr) (cpg.VertexID, error) {
	if e == nil {
		return cpg.NoVertex, fmt.Errorf("%w: missing expression", ErrUnsupported)
	}
	switch e.Kind {
	case ir.BinaryExpr:
		p := b.props(e.String())
		p[cpg.PropOp] = e.Op
		v := b.store.AddVertex(cpg.AstNode, cpg.KindBinaryExpr, p)
		b.child(v, cpg.RoleLeftOperand, e.Left, nil)
		b.child(v, cpg.RoleRightOperand, e.Right, nil)
		return v, nil

	case ir.UnaryExpr:
		p := b.props(e.String())
		p[cpg.PropOp] = e.Op
		v := b.store.AddVertex(cpg.AstNode, cpg.KindUnaryExpr, p)
		b.child(v, cpg.RoleOperand, e.Operand, nil)
		return v, nil

	case ir.InvokeExpr:
		p := b.props(e.String())
		p[cpg.PropSignature] = e.Signature.String()
		p[cpg.PropCallKey] = e.Signature.Key()
		p[cpg.PropInvokeKind] = string(e.Invoke)
		v := b.store.AddVertex(cpg.AstNode, cpg.KindInvokeExpr, p)
		if e.Base != nil {
			b.child(v, cpg.RoleBase, e.Base, nil)
		}
		for i, arg := range e.Args {
			b.child(v, cpg.RoleArg, arg, cpg.Properties{cpg.PropIndex: i})
		}
		return v, nil

	case ir.Constant:
		p := b.props(e.String())
		p[cpg.PropType] = e.Type
		p[cpg.PropValue] = e.Value
		return b.store.AddVertex(cpg.AstNode, cpg.KindConstant, p), nil

	case ir.Local:
		p := b.props(e.String())
		p[cpg.PropName] = e.Name
		p[cpg.PropType] = e.Type
		return b.store.AddVertex(cpg.AstNode, cpg.KindLocal, p), nil

	case ir.ParamRef:
		p := b.props(e.String())
		p[cpg.PropIndex] = e.Index
		p[cpg.PropType] = e.Type
		return b.store.AddVertex(cpg.AstNode, cpg.KindParamRef, p), nil

	default:
		return cpg.NoVertex, fmt.Errorf("%w: expression kind %q in %s", ErrUnsupported, e.RawKind, b.method)
	}
}

// child builds e and attaches it to parent. Unsupported subtrees are logged and omitted.
func (b *Builder) child(parent cpg.VertexID, role string, e *ir.Expr, props cpg.Properties) {
	if e == nil {
		return
	}
	v, err := b.BuildNode(e)
	if err != nil {
		b.Skipped++
		b.logger.Warnf("omitting %s subtree of %s: %v", role, b.store.Vertex(parent), err)
		return
	}
	b.store.AddEdge(cpg.AstEdge, role, parent, v, props)
}

// AttachStmt builds the expression subtrees of s under its CFG vertex owner, each with the role of the expression
// in the statement. A for-loop's init and update assignments become AssignExpr children of the header.
func (b *Builder) AttachStmt(owner cpg.VertexID, s *ir.Stmt) {
	b.child(owner, cpg.RoleTarget, s.Target, nil)
	b.child(owner, cpg.RoleValue, s.Value, nil)
	b.child(owner, cpg.RoleCall, s.Call, nil)
	b.child(owner, cpg.RoleCondition, s.Cond, nil)
	for i, a := range s.Init {
		b.assignExpr(owner, cpg.RoleInit, i, a)
	}
	for i, a := range s.Update {
		b.assignExpr(owner, cpg.RoleUpdate, i, a)
	}
}

func (b *Builder) assignExpr(owner cpg.VertexID, role string, i int, a *ir.Stmt) {
	p := b.props(a.String())
	v := b.store.AddVertex(cpg.AstNode, cpg.KindAssignExpr, p)
	b.store.AddEdge(cpg.AstEdge, role, owner, v, cpg.Properties{cpg.PropIndex: i})
	b.child(v, cpg.RoleTarget, a.Target, nil)
	b.child(v, cpg.RoleValue, a.Value, nil)
}
