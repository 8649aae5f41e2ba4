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

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// The YAML program format nests blocks; Load flattens them into the pre-order stream.
//
//	methods:
//	  - signature: "<Demo: void main(java.lang.String)>"
//	    body:
//	      - identity: {name: arg, type: java.lang.String, index: 0}
//	      - assign:
//	          target: {local: x, type: java.lang.String}
//	          value: {invoke: "<Demo: java.lang.String source()>"}
//	      - if: {local: c, type: boolean}
//	        then:
//	          - call: {invoke: "<Demo: void sanitize(java.lang.String)>", args: [{local: x}]}
//	      - call: {invoke: "<Demo: void sink(java.lang.String)>", args: [{local: x}]}

type yamlProgram struct {
	Methods []yamlMethod `yaml:"methods"`
}

type yamlMethod struct {
	Signature string      `yaml:"signature"`
	Body      []*yamlStmt `yaml:"body"`
}

type yamlIdentity struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Index int    `yaml:"index"`
}

type yamlAssign struct {
	Target *yamlExpr `yaml:"target"`
	Value  *yamlExpr `yaml:"value"`
}

type yamlStmt struct {
	Identity *yamlIdentity `yaml:"identity,omitempty"`
	Assign   *yamlAssign   `yaml:"assign,omitempty"`
	Call     *yamlExpr     `yaml:"call,omitempty"`
	Return   *yamlExpr     `yaml:"return,omitempty"`
	// ReturnVoid is set by `return-void: true`
	ReturnVoid bool `yaml:"return-void,omitempty"`

	If   *yamlExpr   `yaml:"if,omitempty"`
	Then []*yamlStmt `yaml:"then,omitempty"`
	Else []*yamlStmt `yaml:"else,omitempty"`

	While *yamlExpr    `yaml:"while,omitempty"`
	For   *yamlExpr    `yaml:"for,omitempty"`
	Do    *yamlExpr    `yaml:"do-while,omitempty"`
	Init  []yamlAssign `yaml:"init,omitempty"`
	Upd   []yamlAssign `yaml:"update,omitempty"`
	Body  []*yamlStmt  `yaml:"body,omitempty"`

	// Unsupported names a statement kind the front end could not express
	Unsupported string `yaml:"unsupported,omitempty"`

	Line int `yaml:"line,omitempty"`
}

type yamlExpr struct {
	Local string `yaml:"local,omitempty"`
	Type  string `yaml:"type,omitempty"`

	Const *string `yaml:"const,omitempty"`

	Param *int `yaml:"param,omitempty"`

	Op      string    `yaml:"op,omitempty"`
	Left    *yamlExpr `yaml:"left,omitempty"`
	Right   *yamlExpr `yaml:"right,omitempty"`
	Operand *yamlExpr `yaml:"operand,omitempty"`

	Invoke     string      `yaml:"invoke,omitempty"`
	InvokeKind string      `yaml:"kind,omitempty"`
	Base       *yamlExpr   `yaml:"base,omitempty"`
	Args       []*yamlExpr `yaml:"args,omitempty"`

	Unsupported string `yaml:"unsupported,omitempty"`
}

// Load reads a YAML program from filename.
func Load(filename string) (*Program, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read program file: %w", err)
	}
	p, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return p, nil
}

// Parse reads a YAML program.
func Parse(b []byte) (*Program, error) {
	var yp yamlProgram
	if err := yaml.Unmarshal(b, &yp); err != nil {
		return nil, fmt.Errorf("could not unmarshal program: %w", err)
	}
	p := &Program{}
	for i, ym := range yp.Methods {
		sig, err := ParseSignature(ym.Signature)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		b := NewMethodBuilder(sig)
		if err := b.addYamlBlock(ym.Body); err != nil {
			return nil, fmt.Errorf("method %s: %w", sig, err)
		}
		p.Methods = append(p.Methods, b.Build())
	}
	return p, p.Validate()
}

func (b *MethodBuilder) addYamlBlock(stmts []*yamlStmt) error {
	for _, ys := range stmts {
		if err := b.addYamlStmt(ys); err != nil {
			return err
		}
	}
	return nil
}

//gocyclo:ignore
func (b *MethodBuilder) addYamlStmt(ys *yamlStmt) error {
	var err error
	// errors of nested blocks are reported through err, since the block callbacks cannot return them
	block := func(stmts []*yamlStmt) func(*MethodBuilder) {
		return func(mb *MethodBuilder) {
			if e := mb.addYamlBlock(stmts); e != nil && err == nil {
				err = e
			}
		}
	}
	start := len(b.method.Stmts)
	switch {
	case ys.Identity != nil:
		b.Identity(ys.Identity.Name, ys.Identity.Type, ys.Identity.Index)
	case ys.Assign != nil:
		a, e := convertAssign(*ys.Assign)
		if e != nil {
			return e
		}
		b.add(a)
	case ys.Call != nil:
		call, e := convertExpr(ys.Call)
		if e != nil {
			return e
		}
		b.Invoke(call)
	case ys.Return != nil:
		v, e := convertExpr(ys.Return)
		if e != nil {
			return e
		}
		b.Return(v)
	case ys.ReturnVoid:
		b.Return(nil)
	case ys.If != nil:
		cond, e := convertExpr(ys.If)
		if e != nil {
			return e
		}
		if ys.Else != nil {
			b.IfElse(cond, block(ys.Then), block(ys.Else))
		} else {
			b.If(cond, block(ys.Then))
		}
	case ys.While != nil:
		cond, e := convertExpr(ys.While)
		if e != nil {
			return e
		}
		b.While(cond, block(ys.Body))
	case ys.Do != nil:
		cond, e := convertExpr(ys.Do)
		if e != nil {
			return e
		}
		b.Do(block(ys.Body), cond)
	case ys.For != nil:
		cond, e := convertExpr(ys.For)
		if e != nil {
			return e
		}
		var init, update []*Stmt
		for _, a := range ys.Init {
			s, e := convertAssign(a)
			if e != nil {
				return e
			}
			init = append(init, s)
		}
		for _, a := range ys.Upd {
			s, e := convertAssign(a)
			if e != nil {
				return e
			}
			update = append(update, s)
		}
		b.For(init, cond, update, block(ys.Body))
	case ys.Unsupported != "":
		b.add(&Stmt{Kind: StmtUnknown, RawKind: ys.Unsupported})
	default:
		return fmt.Errorf("empty statement at line %d", ys.Line)
	}
	if ys.Line > 0 && start < len(b.method.Stmts) {
		b.method.Stmts[start].Line = ys.Line
	}
	return err
}

func convertAssign(a yamlAssign) (*Stmt, error) {
	target, err := convertExpr(a.Target)
	if err != nil {
		return nil, err
	}
	value, err := convertExpr(a.Value)
	if err != nil {
		return nil, err
	}
	return Assignment(target, value), nil
}

//gocyclo:ignore
func convertExpr(ye *yamlExpr) (*Expr, error) {
	if ye == nil {
		return nil, fmt.Errorf("missing expression")
	}
	switch {
	case ye.Local != "":
		return NewLocal(ye.Local, ye.Type), nil
	case ye.Const != nil:
		return NewConst(ye.Type, *ye.Const), nil
	case ye.Param != nil:
		return NewParam(*ye.Param, ye.Type), nil
	case ye.Invoke != "":
		sig, err := ParseSignature(ye.Invoke)
		if err != nil {
			return nil, err
		}
		var args []*Expr
		for _, ya := range ye.Args {
			a, err := convertExpr(ya)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		var base *Expr
		if ye.Base != nil {
			if base, err = convertExpr(ye.Base); err != nil {
				return nil, err
			}
		}
		kind := InvokeKind(ye.InvokeKind)
		switch kind {
		case "":
			kind = StaticInvoke
			if base != nil {
				kind = InstanceInvoke
			}
		case StaticInvoke, InstanceInvoke, DynamicInvoke:
		default:
			return nil, fmt.Errorf("unknown invocation kind %q", ye.InvokeKind)
		}
		return &Expr{Kind: InvokeExpr, Signature: sig, Invoke: kind, Base: base, Args: args}, nil
	case ye.Operand != nil:
		operand, err := convertExpr(ye.Operand)
		if err != nil {
			return nil, err
		}
		return NewUnary(ye.Op, operand), nil
	case ye.Left != nil || ye.Right != nil:
		left, err := convertExpr(ye.Left)
		if err != nil {
			return nil, err
		}
		right, err := convertExpr(ye.Right)
		if err != nil {
			return nil, err
		}
		return NewBinary(ye.Op, left, right), nil
	case ye.Unsupported != "":
		return NewUnsupported(ye.Unsupported), nil
	default:
		return nil, fmt.Errorf("expression has no kind")
	}
}
