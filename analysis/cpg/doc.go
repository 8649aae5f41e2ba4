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
Package cpg implements the property graph store the code property graph is built in.

The store is a labeled, directed multigraph. Vertices and edges live in arenas indexed by dense integer ids: ids are
assigned once, never reused, and back-edges of loops are plain id references. Vertices are indexed by (label, kind)
and by (label, property key, property value) in roaring bitmaps, so that lookups by label and property, which the
traversal engine issues many times per analysis, do not scan the arena. Iterating an index yields ascending ids, which
makes every analysis built on the store deterministic.

The store is append-only: vertices and edges cannot be removed and their properties cannot be changed after creation.
Looking up an id that does not exist is a programmer error and panics; no other operation fails.
*/
package cpg
