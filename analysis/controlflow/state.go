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
	"fmt"

	"github.com/wimkeir/graft-sub000/analysis/cpg"
)

type frameKind int

const (
	thenArm frameKind = iota
	elseArm
	loopBody
	doBody
)

func (k frameKind) String() string {
	switch k {
	case thenArm:
		return "then"
	case elseArm:
		return "else"
	case loopBody:
		return "loop"
	default:
		return "do"
	}
}

// end is a dangling end of the graph: the next vertex placed is linked from v with role.
type end struct {
	v    cpg.VertexID
	role string
}

// frame is an open block.
type frame struct {
	kind   frameKind
	header cpg.VertexID
	// stmt is the index of the header in the stream
	stmt int
	// remaining is the number of statements of the current sub-block that have not been placed
	remaining int
	// elseLen is the length of the else-arm of an if statement that has one, -1 otherwise
	elseLen int
	// thenEnds are the ends of the then-arm, once the else-arm is open
	thenEnds []end
	// first is the first vertex of the body of a do-while loop
	first cpg.VertexID
}

func (f frame) String() string {
	return fmt.Sprintf("%s@%d(%d left)", f.kind, f.stmt, f.remaining)
}

// state is the state of the builder between two statements. It is threaded by value: the methods of state
// never modify their receiver, they return the next state.
type state struct {
	ends  []end
	stack []frame
}

func (s state) top() (frame, bool) {
	if len(s.stack) == 0 {
		return frame{}, false
	}
	return s.stack[len(s.stack)-1], true
}

func (s state) withEnds(ends ...end) state {
	s.ends = append([]end(nil), ends...)
	return s
}

func (s state) push(f frame) state {
	stack := make([]frame, len(s.stack), len(s.stack)+1)
	copy(stack, s.stack)
	s.stack = append(stack, f)
	return s
}

func (s state) pop() (state, frame) {
	f := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1:len(s.stack)-1]
	return s, f
}

// replaceTop returns the state with its top frame replaced by f.
func (s state) replaceTop(f frame) state {
	stack := make([]frame, len(s.stack))
	copy(stack, s.stack)
	stack[len(stack)-1] = f
	s.stack = stack
	return s
}

// placed returns the state after a statement has been placed in the top block, and the first vertex of the bodies of
// the do-while loops that were waiting for one set to v.
func (s state) placed(v cpg.VertexID) state {
	if len(s.stack) == 0 {
		return s
	}
	stack := make([]frame, len(s.stack))
	copy(stack, s.stack)
	stack[len(stack)-1].remaining--
	for i := len(stack) - 1; i >= 0 && v != cpg.NoVertex; i-- {
		if stack[i].kind != doBody || stack[i].first != cpg.NoVertex {
			break
		}
		stack[i].first = v
	}
	s.stack = stack
	return s
}
