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

import (
	"fmt"
	"regexp"
	"strconv"
)

// Properties are the key/value properties of a vertex or edge. Values are strings or ints.
type Properties map[string]any

// normalize returns v as a string or an int. Other integer types are converted to int, anything else is formatted
// as a string.
func normalize(v any) any {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return x
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// indexValue returns the string used to index v. Ints and strings are kept apart.
func indexValue(v any) string {
	switch x := normalize(v).(type) {
	case int:
		return "i:" + strconv.Itoa(x)
	default:
		return "s:" + x.(string)
	}
}

func (p Properties) clone() Properties {
	c := make(Properties, len(p))
	for k, v := range p {
		c[k] = normalize(v)
	}
	return c
}

// String returns the string value of key, or "" when absent or not a string.
func (p Properties) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Int returns the int value of key.
func (p Properties) Int(key string) (int, bool) {
	i, ok := p[key].(int)
	return i, ok
}

// A Matcher tests a property value. The value is nil when the property is absent.
type Matcher interface {
	Match(value any) bool
	String() string
}

type eqMatcher struct{ v any }

func (m eqMatcher) Match(value any) bool { return value != nil && value == m.v }
func (m eqMatcher) String() string      { return fmt.Sprintf("== %v", m.v) }

// Eq matches values equal to v.
func Eq(v any) Matcher {
	return eqMatcher{normalize(v)}
}

type regexMatcher struct{ re *regexp.Regexp }

func (m regexMatcher) Match(value any) bool {
	s, ok := value.(string)
	return ok && m.re.MatchString(s)
}
func (m regexMatcher) String() string { return "=~ " + m.re.String() }

// Regex matches string values matched by re.
func Regex(re *regexp.Regexp) Matcher {
	return regexMatcher{re}
}

type patternMatcher struct {
	exact string
	re    *regexp.Regexp
}

func (m patternMatcher) Match(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	return s == m.exact || (m.re != nil && m.re.MatchString(s))
}

func (m patternMatcher) String() string { return "~ " + m.exact }

// Pattern matches string values equal to s, or matched by s when s compiles as a regular expression.
// Signatures contain regex metacharacters, so the exact comparison is tried first.
func Pattern(s string) Matcher {
	re, err := regexp.Compile(s)
	if err != nil {
		re = nil
	}
	return patternMatcher{exact: s, re: re}
}

type anyMatcher struct{}

func (anyMatcher) Match(value any) bool { return value != nil }
func (anyMatcher) String() string       { return "exists" }

// Any matches any present value.
func Any() Matcher {
	return anyMatcher{}
}
