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

package ir

import (
	"fmt"
	"strings"
)

// StmtKind is the kind of statement in the front-end stream.
type StmtKind int

const (
	// StmtUnknown is any statement kind the builders do not handle. RawKind holds the front end's name for it.
	StmtUnknown StmtKind = iota
	// Entry is the method entry point. A method has exactly one, at index 0.
	Entry
	// AssignStmt is target = value
	AssignStmt
	// IdentityStmt binds a parameter (or this) to a local: target := @parameterN
	IdentityStmt
	// ConditionalStmt is an if header, followed by ThenLen statements and ElseLen statements
	ConditionalStmt
	// InvokeStmt is a call whose result is discarded
	InvokeStmt
	// ReturnStmt returns from the method, with an optional value
	ReturnStmt
	// LoopHeader is a while/for/do header, followed by BodyLen statements
	LoopHeader
)

var stmtKindNames = map[StmtKind]string{
	StmtUnknown:     "Unknown",
	Entry:           "Entry",
	AssignStmt:      "AssignStmt",
	IdentityStmt:    "IdentityStmt",
	ConditionalStmt: "ConditionalStmt",
	InvokeStmt:      "InvokeStmt",
	ReturnStmt:      "ReturnStmt",
	LoopHeader:      "LoopHeader",
}

func (k StmtKind) String() string {
	if s, ok := stmtKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("StmtKind(%d)", int(k))
}

// ExprKind is the kind of an expression.
type ExprKind int

const (
	// ExprUnknown is any expression kind the builders do not handle. RawKind holds the front end's name for it.
	ExprUnknown ExprKind = iota
	// BinaryExpr is Left Op Right
	BinaryExpr
	// UnaryExpr is Op Operand
	UnaryExpr
	// InvokeExpr is a call with a resolved signature
	InvokeExpr
	// Constant is a literal
	Constant
	// Local is a local variable reference
	Local
	// ParamRef is a reference to the Index-th formal parameter
	ParamRef
)

var exprKindNames = map[ExprKind]string{
	ExprUnknown: "Unknown",
	BinaryExpr:  "BinaryExpr",
	UnaryExpr:   "UnaryExpr",
	InvokeExpr:  "InvokeExpr",
	Constant:    "Constant",
	Local:       "Local",
	ParamRef:    "ParamRef",
}

func (k ExprKind) String() string {
	if s, ok := exprKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ExprKind(%d)", int(k))
}

// InvokeKind is the dispatch kind of an invocation.
type InvokeKind string

const (
	// StaticInvoke is a call without receiver
	StaticInvoke InvokeKind = "static"
	// InstanceInvoke is a virtual, special or interface call on a receiver (Base)
	InstanceInvoke InvokeKind = "instance"
	// DynamicInvoke is a call resolved at run time (e.g. invokedynamic)
	DynamicInvoke InvokeKind = "dynamic"
)

// LoopKind distinguishes the loop headers.
type LoopKind string

const (
	// WhileLoop tests the condition before each iteration
	WhileLoop LoopKind = "while"
	// ForLoop is a while loop with Init and Update assignments attached to its header
	ForLoop LoopKind = "for"
	// DoLoop tests the condition after each iteration
	DoLoop LoopKind = "do"
)

// Expr is an expression of the front-end IR. Only the fields relevant to Kind are set.
type Expr struct {
	Kind    ExprKind
	RawKind string

	// Op is the operator of binary and unary expressions
	Op      string
	Left    *Expr
	Right   *Expr
	Operand *Expr

	// Signature, Invoke, Base and Args describe invocations. Base is nil for static calls.
	Signature Signature
	Invoke    InvokeKind
	Base      *Expr
	Args      []*Expr

	// Type is the type of constants, locals and parameter references
	Type string
	// Value is the literal value of a constant
	Value string
	// Name is the name of a local
	Name string
	// Index is the index of a parameter reference
	Index int
}

func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case BinaryExpr:
		return fmt.Sprintf("%s %s %s", e.Left, e.Op, e.Right)
	case UnaryExpr:
		return e.Op + e.Operand.String()
	case InvokeExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = a.String()
		}
		recv := ""
		if e.Base != nil {
			recv = e.Base.String() + "."
		}
		return fmt.Sprintf("%s%s(%s)", recv, e.Signature.Name, strings.Join(args, ", "))
	case Constant:
		return e.Value
	case Local:
		return e.Name
	case ParamRef:
		return fmt.Sprintf("@parameter%d", e.Index)
	default:
		return "?" + e.RawKind
	}
}

// Stmt is a statement of the front-end stream. Only the fields relevant to Kind are set.
type Stmt struct {
	Kind    StmtKind
	RawKind string

	// Target is the defined local of assignments and identities
	Target *Expr
	// Value is the assigned value, or the returned value (nil for void returns)
	Value *Expr
	// Call is the invocation of an InvokeStmt
	Call *Expr
	// Cond is the condition of a ConditionalStmt or a LoopHeader
	Cond *Expr

	// ThenLen and ElseLen are the number of statements directly in each arm of a ConditionalStmt.
	// HasElse is set when an else arm exists, even if it is empty.
	ThenLen int
	ElseLen int
	HasElse bool

	// Loop is the kind of loop of a LoopHeader, with BodyLen statements directly in the body.
	Loop    LoopKind
	BodyLen int
	// Init and Update are the assignments of a for header
	Init   []*Stmt
	Update []*Stmt

	// Line is the source line, 0 if unknown
	Line int
}

func (s *Stmt) String() string {
	switch s.Kind {
	case Entry:
		return "entry"
	case AssignStmt:
		return fmt.Sprintf("%s = %s", s.Target, s.Value)
	case IdentityStmt:
		return fmt.Sprintf("%s := %s", s.Target, s.Value)
	case ConditionalStmt:
		return fmt.Sprintf("if %s", s.Cond)
	case InvokeStmt:
		return s.Call.String()
	case ReturnStmt:
		if s.Value == nil {
			return "return"
		}
		return "return " + s.Value.String()
	case LoopHeader:
		return fmt.Sprintf("%s %s", s.Loop, s.Cond)
	default:
		return "unsupported " + s.RawKind
	}
}

// Method is one analyzed method body.
type Method struct {
	// Signature is the resolved signature of the method
	Signature Signature
	// Stmts is the pre-order statement stream. Stmts[0] is the Entry.
	Stmts []*Stmt
}

// Name returns the unique name of the method (its signature string).
func (m *Method) Name() string {
	return m.Signature.String()
}

// Ref returns a reference to the i-th statement of the method.
func (m *Method) Ref(i int) StmtRef {
	return StmtRef{Method: m.Name(), Index: i}
}

// Program is a compilation unit: the methods in the front end's batch order.
type Program struct {
	Methods []*Method

	// Oracle is the front end's reaching definitions oracle. If it is nil, the builders compute one.
	Oracle ReachingDefinitions
}

// StmtRef identifies a statement of a method.
type StmtRef struct {
	Method string
	Index  int
}

func (r StmtRef) String() string {
	return fmt.Sprintf("%s#%d", r.Method, r.Index)
}
