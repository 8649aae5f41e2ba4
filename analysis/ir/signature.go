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
	"strings"
)

// Signature is a resolved method signature.
type Signature struct {
	// Class is the fully qualified declaring class
	Class string
	// Name is the method name
	Name string
	// Params are the parameter types, in order
	Params []string
	// Return is the return type
	Return string
}

// String returns the signature in the bracketed form <Class: Return Name(P1,P2)>.
func (s Signature) String() string {
	return fmt.Sprintf("<%s: %s %s(%s)>", s.Class, s.Return, s.Name, strings.Join(s.Params, ","))
}

// Key returns the signature without its return type. Two signatures differing only by return type share a key.
func (s Signature) Key() string {
	return fmt.Sprintf("%s.%s(%s)", s.Class, s.Name, strings.Join(s.Params, ","))
}

// ParseSignature parses a signature of the form <Class: Return Name(P1,P2)>.
func ParseSignature(str string) (Signature, error) {
	s := strings.TrimSpace(str)
	if !strings.HasPrefix(s, "<") || !strings.HasSuffix(s, ">") {
		return Signature{}, fmt.Errorf("signature %q: missing angle brackets", str)
	}
	s = s[1 : len(s)-1]
	class, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Signature{}, fmt.Errorf("signature %q: missing ':' after class", str)
	}
	rest = strings.TrimSpace(rest)
	ret, rest, ok := strings.Cut(rest, " ")
	if !ok {
		return Signature{}, fmt.Errorf("signature %q: missing return type", str)
	}
	open := strings.Index(rest, "(")
	if open <= 0 || !strings.HasSuffix(rest, ")") {
		return Signature{}, fmt.Errorf("signature %q: malformed parameter list", str)
	}
	sig := Signature{
		Class:  strings.TrimSpace(class),
		Return: ret,
		Name:   strings.TrimSpace(rest[:open]),
	}
	if params := strings.TrimSpace(rest[open+1 : len(rest)-1]); params != "" {
		for _, p := range strings.Split(params, ",") {
			sig.Params = append(sig.Params, strings.TrimSpace(p))
		}
	}
	return sig, nil
}

// MustParseSignature is like ParseSignature but panics on malformed input. For tests and literals.
func MustParseSignature(str string) Signature {
	sig, err := ParseSignature(str)
	if err != nil {
		panic(err)
	}
	return sig
}
