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
	"errors"
	"fmt"
)

// ErrMalformedStream is returned when the child counts of a method's headers do not fit its statement stream.
var ErrMalformedStream = errors.New("malformed statement stream")

// MethodBuilder builds the flat statement stream of a method from nested blocks.
//
//	b := NewMethodBuilder(sig)
//	b.Assign(NewLocal("x", "String"), NewStaticCall(source))
//	b.If(NewLocal("c", "boolean"), func(b *MethodBuilder) {
//		b.Invoke(NewStaticCall(sanitize, NewLocal("x", "String")))
//	})
//	m := b.Build()
type MethodBuilder struct {
	method *Method
	// count is the number of statements appended directly in the current block
	count int
}

// NewMethodBuilder returns a builder for a method with signature sig. The Entry statement is added.
func NewMethodBuilder(sig Signature) *MethodBuilder {
	return &MethodBuilder{
		method: &Method{
			Signature: sig,
			Stmts:     []*Stmt{{Kind: Entry}},
		},
	}
}

func (b *MethodBuilder) add(s *Stmt) *Stmt {
	b.method.Stmts = append(b.method.Stmts, s)
	b.count++
	return s
}

// block runs fn and returns the number of statements it appended directly.
func (b *MethodBuilder) block(fn func(*MethodBuilder)) int {
	saved := b.count
	b.count = 0
	if fn != nil {
		fn(b)
	}
	n := b.count
	b.count = saved
	return n
}

// Add appends a statement as is. Block headers added this way must have consistent child counts.
func (b *MethodBuilder) Add(s *Stmt) *MethodBuilder {
	b.add(s)
	return b
}

// Identity appends name := @parameter<index>
func (b *MethodBuilder) Identity(name string, typ string, index int) *MethodBuilder {
	b.add(&Stmt{Kind: IdentityStmt, Target: NewLocal(name, typ), Value: NewParam(index, typ)})
	return b
}

// Assign appends target = value
func (b *MethodBuilder) Assign(target *Expr, value *Expr) *MethodBuilder {
	b.add(&Stmt{Kind: AssignStmt, Target: target, Value: value})
	return b
}

// Invoke appends a call statement
func (b *MethodBuilder) Invoke(call *Expr) *MethodBuilder {
	b.add(&Stmt{Kind: InvokeStmt, Call: call})
	return b
}

// Return appends a return statement. value may be nil.
func (b *MethodBuilder) Return(value *Expr) *MethodBuilder {
	b.add(&Stmt{Kind: ReturnStmt, Value: value})
	return b
}

// If appends an if statement without else arm.
func (b *MethodBuilder) If(cond *Expr, then func(*MethodBuilder)) *MethodBuilder {
	s := b.add(&Stmt{Kind: ConditionalStmt, Cond: cond})
	s.ThenLen = b.block(then)
	return b
}

// IfElse appends an if statement with both arms.
func (b *MethodBuilder) IfElse(cond *Expr, then func(*MethodBuilder), els func(*MethodBuilder)) *MethodBuilder {
	s := b.add(&Stmt{Kind: ConditionalStmt, Cond: cond, HasElse: true})
	s.ThenLen = b.block(then)
	s.ElseLen = b.block(els)
	return b
}

// While appends a while loop.
func (b *MethodBuilder) While(cond *Expr, body func(*MethodBuilder)) *MethodBuilder {
	s := b.add(&Stmt{Kind: LoopHeader, Loop: WhileLoop, Cond: cond})
	s.BodyLen = b.block(body)
	return b
}

// For appends a for loop. init and update must be assignments.
func (b *MethodBuilder) For(init []*Stmt, cond *Expr, update []*Stmt, body func(*MethodBuilder)) *MethodBuilder {
	s := b.add(&Stmt{Kind: LoopHeader, Loop: ForLoop, Cond: cond, Init: init, Update: update})
	s.BodyLen = b.block(body)
	return b
}

// Do appends a do-while loop.
func (b *MethodBuilder) Do(body func(*MethodBuilder), cond *Expr) *MethodBuilder {
	s := b.add(&Stmt{Kind: LoopHeader, Loop: DoLoop, Cond: cond})
	s.BodyLen = b.block(body)
	return b
}

// Build returns the method.
func (b *MethodBuilder) Build() *Method {
	return b.method
}

// Assignment returns a detached target = value statement, for the Init and Update lists of for loops.
func Assignment(target *Expr, value *Expr) *Stmt {
	return &Stmt{Kind: AssignStmt, Target: target, Value: value}
}

// Validate checks that the stream starts with the Entry and that every header's child counts fit in the stream.
func (m *Method) Validate() error {
	if len(m.Stmts) == 0 || m.Stmts[0].Kind != Entry {
		return fmt.Errorf("%s: %w: stream must start with the entry", m.Name(), ErrMalformedStream)
	}
	type frame struct {
		index     int
		remaining int
		elseLen   int
		inThen    bool
	}
	var stack []frame
	for i, s := range m.Stmts[1:] {
		if s.Kind == Entry {
			return fmt.Errorf("%s: %w: second entry at %d", m.Name(), ErrMalformedStream, i+1)
		}
		// close the exhausted blocks before placing s
		for len(stack) > 0 && stack[len(stack)-1].remaining == 0 {
			top := &stack[len(stack)-1]
			if top.inThen && top.elseLen > 0 {
				top.inThen = false
				top.remaining = top.elseLen
				continue
			}
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			stack[len(stack)-1].remaining--
		}
		if s.ThenLen < 0 || s.ElseLen < 0 || s.BodyLen < 0 {
			return fmt.Errorf("%s: %w: negative child count at %d", m.Name(), ErrMalformedStream, i+1)
		}
		switch s.Kind {
		case ConditionalStmt:
			stack = append(stack, frame{index: i + 1, remaining: s.ThenLen, elseLen: s.ElseLen, inThen: true})
		case LoopHeader:
			stack = append(stack, frame{index: i + 1, remaining: s.BodyLen})
		}
	}
	for _, f := range stack {
		if f.remaining > 0 || (f.inThen && f.elseLen > 0) {
			return fmt.Errorf("%s: %w: block opened at %d runs past the end of the stream",
				m.Name(), ErrMalformedStream, f.index)
		}
	}
	return nil
}

// Validate validates every method of the program and checks that method signatures are unique.
func (p *Program) Validate() error {
	var errs []error
	seen := map[string]bool{}
	for _, m := range p.Methods {
		if seen[m.Name()] {
			errs = append(errs, fmt.Errorf("duplicate method %s", m.Name()))
		}
		seen[m.Name()] = true
		if err := m.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
