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

/*
Package traversal implements a lazy traversal language over the property graph store.

A traversal is a source followed by a chain of steps. Nothing is evaluated until a terminal operation (Next, HasNext,
ToList, Paths, Count, Iterate) pulls results; each terminal pull advances the chain by as little as needed, so that
walks over cyclic graphs can stop early.

	traversal.New(store).V(sink).
		In(cpg.PdgEdge, "x").
		Repeat(traversal.Anon().In(cpg.PdgEdge)).SimplePath().TestFirst().Until(isOrigin).
		Paths()

Steps that need a sub-traversal (Repeat, Union, Where, Not, Coalesce) take anonymous traversals built with Anon.
An anonymous traversal is a template: it is applied independently to every traverser that reaches the step.

Every traverser carries the path of vertices it moved through, and UntilTraverser can stop a Repeat on it. Every
Repeat must be bounded with SimplePath or with Times: Err and every terminal operation of an unbounded traversal
return ErrUnboundedRepeat, and nothing is evaluated.
*/
package traversal
