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

// Expression constructors. They return fresh values: the graph builders never share an expression between two
// statements, and callers should not either.

// NewLocal returns a reference to local name of type typ.
func NewLocal(name string, typ string) *Expr {
	return &Expr{Kind: Local, Name: name, Type: typ}
}

// NewConst returns a constant of type typ.
func NewConst(typ string, value string) *Expr {
	return &Expr{Kind: Constant, Type: typ, Value: value}
}

// NewParam returns a reference to the i-th parameter.
func NewParam(i int, typ string) *Expr {
	return &Expr{Kind: ParamRef, Index: i, Type: typ}
}

// NewBinary returns left op right.
func NewBinary(op string, left, right *Expr) *Expr {
	return &Expr{Kind: BinaryExpr, Op: op, Left: left, Right: right}
}

// NewUnary returns op operand.
func NewUnary(op string, operand *Expr) *Expr {
	return &Expr{Kind: UnaryExpr, Op: op, Operand: operand}
}

// NewStaticCall returns a static invocation of sig.
func NewStaticCall(sig Signature, args ...*Expr) *Expr {
	return &Expr{Kind: InvokeExpr, Signature: sig, Invoke: StaticInvoke, Args: args}
}

// NewInstanceCall returns an invocation of sig on base.
func NewInstanceCall(sig Signature, base *Expr, args ...*Expr) *Expr {
	return &Expr{Kind: InvokeExpr, Signature: sig, Invoke: InstanceInvoke, Base: base, Args: args}
}

// NewDynamicCall returns a dynamically resolved invocation of sig.
func NewDynamicCall(sig Signature, args ...*Expr) *Expr {
	return &Expr{Kind: InvokeExpr, Signature: sig, Invoke: DynamicInvoke, Args: args}
}

// NewUnsupported returns an expression of a kind the builders do not know.
func NewUnsupported(rawKind string) *Expr {
	return &Expr{Kind: ExprUnknown, RawKind: rawKind}
}
