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

// Package formatutil colors terminal output and escapes the program text printed with it.
package formatutil

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

var (
	// Bold prints its arguments in bold
	Bold = Color("\033[1m%s\033[0m")
	// Faint prints its arguments dimmed, for banners and progress messages
	Faint = Color("\033[2m%s\033[0m")
	// Red prints sinks and errors
	Red = Color("\033[1;31m%s\033[0m")
	// Green prints sources and successes
	Green = Color("\033[1;32m%s\033[0m")
	// Yellow prints warnings and gaps
	Yellow = Color("\033[1;33m%s\033[0m")
)

// colorEnabled is evaluated once: the standard output does not change while the tool runs
var colorEnabled = term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""

// Color returns a function printing its arguments with the format colorString when the standard output is a
// terminal, and plainly otherwise. Arguments are escaped with Sanitize: vertex code comes from analyzed programs.
func Color(colorString string) func(...interface{}) string {
	return func(args ...interface{}) string {
		s := Sanitize(fmt.Sprint(args...))
		if colorEnabled {
			return fmt.Sprintf(colorString, s)
		}
		return s
	}
}

// Sanitize removes all escape sequences from s
func Sanitize(s string) string {
	r := fmt.Sprintf("%q", s)
	if len(r) >= 2 {
		return r[1 : len(r)-1]
	}
	return r
}
