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
Package controlflow builds the control flow layer of the code property graph.

The statements of a method arrive as a flat pre-order stream, in which the header of a block (an if statement or a
loop) is followed by the statements of its sub-blocks and carries their lengths. The builder threads the stream into
a graph without recursive descent, using a stack of the blocks that are still open:

  - each statement is linked from the dangling ends of the graph built so far (initially the Entry vertex);
  - a header pushes a frame recording how many statements its current sub-block still holds, and its body starts
    from the header;
  - when the top frame has no statement left, it is resolved before the next statement is placed: the arms of an if
    statement merge into a Phi vertex, the ends of a loop body go back to the header, and the loop exits from the
    header.

The dangling ends carry the role of the edge they will produce (True into a then-arm or a loop body, False into an
else-arm or out of a loop, Flow otherwise). Return statements link to the method's synthetic Exit vertex and leave
no dangling end; at the end of the stream the remaining ends are linked to Exit.

Do-while loops run their body before the condition: the body is entered from the ends preceding the loop, the
header follows the body, and the back edge goes from the header to the first statement of the body.
*/
package controlflow
