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

// Package persist writes code property graphs out of the process: Graphviz DOT for inspection, msgpack snapshots
// that restore to an identical store, and SQLite databases that can be queried with SQL.
//
// Restoring a graph allocates the vertices and edges again in id order, so that the ids of the restored store are
// the ids of the saved one.
package persist
