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

package cpg

// VertexLabel is the layer a vertex belongs to.
type VertexLabel string

const (
	// CfgNode labels statement vertices (and the synthetic Entry, Exit and Phi vertices)
	CfgNode VertexLabel = "CfgNode"
	// AstNode labels expression vertices, owned by exactly one CfgNode
	AstNode VertexLabel = "AstNode"
)

// EdgeLabel is the relation an edge belongs to.
type EdgeLabel string

const (
	// AstEdge links a CFG vertex to its expression subtrees, and AST vertices to their children
	AstEdge EdgeLabel = "AstEdge"
	// CfgEdge is a possible execution order between two CFG vertices
	CfgEdge EdgeLabel = "CfgEdge"
	// PdgEdge links the definition of a variable to its use. Its role is the variable name.
	PdgEdge EdgeLabel = "PdgEdge"
	// CallEdge links a call site to the entry of its unique callee
	CallEdge EdgeLabel = "CallEdge"
	// RetEdge links the exit of a callee to the return site of a call
	RetEdge EdgeLabel = "RetEdge"
	// MayAliasEdge links two Local vertices whose variables may alias
	MayAliasEdge EdgeLabel = "MayAliasEdge"
)

// AllEdgeLabels lists the edge labels in a fixed order.
var AllEdgeLabels = []EdgeLabel{AstEdge, CfgEdge, PdgEdge, CallEdge, RetEdge, MayAliasEdge}

// Kind tags the syntactic kind of a vertex.
type Kind string

// CFG vertex kinds
const (
	KindEntry        Kind = "Entry"
	KindExit         Kind = "Exit"
	KindPhi          Kind = "Phi"
	KindAssignStmt   Kind = "AssignStmt"
	KindIdentityStmt Kind = "IdentityStmt"
	KindIfStmt       Kind = "IfStmt"
	KindInvokeStmt   Kind = "InvokeStmt"
	KindReturnStmt   Kind = "ReturnStmt"
	KindWhileStmt    Kind = "WhileStmt"
	KindForStmt      Kind = "ForStmt"
	KindDoWhileStmt  Kind = "DoWhileStmt"
)

// AST vertex kinds
const (
	KindBinaryExpr Kind = "BinaryExpr"
	KindUnaryExpr  Kind = "UnaryExpr"
	KindInvokeExpr Kind = "InvokeExpr"
	KindConstant   Kind = "Constant"
	KindLocal      Kind = "Local"
	KindParamRef   Kind = "ParamRef"
	// KindAssignExpr is an assignment nested under a loop header (for-loop init and update)
	KindAssignExpr Kind = "AssignExpr"
)

// IsLoopHeader returns true for the kinds of loop header vertices.
func (k Kind) IsLoopHeader() bool {
	return k == KindWhileStmt || k == KindForStmt || k == KindDoWhileStmt
}

// Edge roles
const (
	// AST roles
	RoleTarget       = "Target"
	RoleValue        = "Value"
	RoleCondition    = "Condition"
	RoleCall         = "Call"
	RoleLeftOperand  = "LeftOperand"
	RoleRightOperand = "RightOperand"
	RoleOperand      = "Operand"
	RoleBase         = "Base"
	RoleArg          = "Arg"
	RoleInit         = "Init"
	RoleUpdate       = "Update"

	// CFG roles
	RoleFlow  = "Flow"
	RoleTrue  = "True"
	RoleFalse = "False"
	RoleBack  = "Back"

	// interprocedural and analysis roles
	RoleInvoke = "Invoke"
	RoleReturn = "Return"
	RoleAlias  = "Alias"
)

// Property keys
const (
	// PropMethod is the name of the method a vertex belongs to (on every vertex)
	PropMethod = "method"
	// PropStmt is the index of the statement of a CFG vertex in its method's stream
	PropStmt = "stmt"
	// PropLine is the source line, when known
	PropLine = "line"
	// PropCode is a printable form of the statement or expression
	PropCode = "code"
	// PropSignature is the resolved signature of an invocation, or of the method on Entry vertices
	PropSignature = "signature"
	// PropCallKey is the signature without its return type
	PropCallKey = "callKey"
	// PropInvokeKind is static, instance or dynamic
	PropInvokeKind = "invokeKind"
	// PropOp is the operator of binary and unary expressions
	PropOp = "op"
	// PropName is the variable name of Local vertices
	PropName = "name"
	// PropType is the declared type of constants, locals and parameter references
	PropType = "type"
	// PropValue is the literal of constants
	PropValue = "value"
	// PropIndex is the parameter index of ParamRef vertices and the argument index on Arg edges
	PropIndex = "index"
)
