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
Package taint implements the taint analysis over the code property graph. The main entry point of the analysis is the
[Analyze] function, which returns a [Result] containing all the vulnerabilities discovered as well as statistics on
the paths explored.

The analysis proceeds in four steps for each taint tracking problem of the configuration:

  - every invocation matching a sink description gives the variables it sinks: the locals of its sensitive arguments,
    outside of the subtrees of sanitizer calls;
  - for each sunk variable, the dependence edges are walked backwards, across linked calls, until a vertex calling a
    source is found. Each walk that reaches a source gives a candidate (source, sink) pair;
  - for each candidate pair, the simple control flow paths from the source to the sink are enumerated, up to the
    configured maximum number of paths;
  - a path is reported if no vertex on it sanitizes one of the variables of the walk, and if none of those variables
    is redefined along the path by a statement that is not on the walk.

Vulnerabilities are deduplicated by (source, sink) pair and carry the first offending path found.
*/
package taint
