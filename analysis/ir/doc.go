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
Package ir defines the statement stream the graph builders consume. A front end (bytecode lifter, source parser, or
the YAML loader in this package) produces one [Method] per analyzed method body. The statements of a method are a flat
sequence in program pre-order: block structure is carried by child counts on the block headers instead of nesting, so
that the control-flow builder can thread them with a stack of pending blocks.

For example, the body

	x = source()
	if c {
		sanitize(x)
	}
	sink(x)

is the stream [Entry, AssignStmt, ConditionalStmt{ThenLen: 1}, InvokeStmt, InvokeStmt].

The front end also provides a [ReachingDefinitions] oracle. When it does not, the pdg package computes one over the
built control-flow graph.
*/
package ir
