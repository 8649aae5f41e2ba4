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

// ReachingDefinitions is the front end's reaching-definitions oracle.
type ReachingDefinitions interface {
	// DefsOf returns the statements whose definition of variable may reach the use at use.
	DefsOf(variable string, use StmtRef) []StmtRef
}

// DefQuery is the key of a DefTable.
type DefQuery struct {
	Variable string
	Use      StmtRef
}

// DefTable is an oracle given as an explicit table, for front ends that export their def/use chains.
type DefTable map[DefQuery][]StmtRef

// DefsOf implements ReachingDefinitions
func (t DefTable) DefsOf(variable string, use StmtRef) []StmtRef {
	return t[DefQuery{Variable: variable, Use: use}]
}

// Add records that def reaches the use of variable at use.
func (t DefTable) Add(variable string, use StmtRef, def StmtRef) {
	k := DefQuery{Variable: variable, Use: use}
	t[k] = append(t[k], def)
}
