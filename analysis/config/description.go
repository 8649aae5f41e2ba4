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

package config

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/slices"
)

// Description identifies calls that play a role in a taint tracking problem: sources, sinks or sanitizers.
//
// The signature is matched against the resolved signature of invocations, rendered as
// "<Class: ReturnType name(ParamType1,ParamType2)>". It is seen as a regex if it can be compiled to a regex,
// but exact matches are tried first, since signatures contain regex metacharacters.
type Description struct {
	// Signature is the signature pattern
	Signature string `yaml:"signature"`

	// TaintedArgs are the indices of the arguments a source taints, or a sink is sensitive to.
	// For sinks, an empty list means all arguments.
	TaintedArgs []int `yaml:"tainted-args,flow"`

	// TaintsReturn is true for sources whose return value is tainted
	TaintsReturn bool `yaml:"taints-return"`

	// SanitizedArgs are the indices of the arguments a sanitizer cleans. An empty list means all arguments.
	SanitizedArgs []int `yaml:"sanitized-args,flow"`

	// This will not be part of the yaml config
	computedRegex *regexp.Regexp
}

func (d Description) String() string {
	var parts []string
	if d.TaintsReturn {
		parts = append(parts, "return")
	}
	if len(d.TaintedArgs) > 0 {
		parts = append(parts, fmt.Sprintf("args %v", d.TaintedArgs))
	}
	if len(d.SanitizedArgs) > 0 {
		parts = append(parts, fmt.Sprintf("sanitizes %v", d.SanitizedArgs))
	}
	if len(parts) == 0 {
		return d.Signature
	}
	return fmt.Sprintf("%s (%s)", d.Signature, strings.Join(parts, ", "))
}

// compile compiles the signature into a regex, when possible
func (d *Description) compile() {
	if r, err := regexp.Compile(d.Signature); err == nil {
		d.computedRegex = r
	}
}

// Matches returns true if the signature is matched by the description.
func (d Description) Matches(signature string) bool {
	if d.Signature == signature {
		return true
	}
	if d.computedRegex == nil {
		d.compile()
	}
	return d.computedRegex != nil && d.computedRegex.MatchString(signature)
}

// IsArgTainted returns true if argument i is in the tainted arguments. Empty lists are all arguments.
func (d Description) IsArgTainted(i int) bool {
	return len(d.TaintedArgs) == 0 || slices.Contains(d.TaintedArgs, i)
}

// IsArgSanitized returns true if argument i is in the sanitized arguments. Empty lists are all arguments.
func (d Description) IsArgSanitized(i int) bool {
	return len(d.SanitizedArgs) == 0 || slices.Contains(d.SanitizedArgs, i)
}

// TaintsArg returns true if the source taints argument i. Unlike IsArgTainted, an empty list taints nothing.
func (d Description) TaintsArg(i int) bool {
	return slices.Contains(d.TaintedArgs, i)
}

func firstMatch(descriptions []Description, signature string) (Description, bool) {
	for _, d := range descriptions {
		if d.Matches(signature) {
			return d, true
		}
	}
	return Description{}, false
}
