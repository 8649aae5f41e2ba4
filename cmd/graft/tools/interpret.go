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

package tools

import "regexp"

// Captures errors happening before any analysis starts (program could not load)
var regexCouldNotLoad = regexp.MustCompile("could not load program")

// Captures the kind of error that happen when a Go file or another non-YAML file is given as program
var programFilesMustBeYaml = regexp.MustCompile("program files must be .yaml files")

// Captures the sources of the config that cannot taint anything
var invalidDescription = regexp.MustCompile("invalid analysis description")

// Captures the dependence edges whose definitions are missing from the graph
var missingDefinition = regexp.MustCompile("definition .* has no vertex")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoad.MatchString(errMsg) {
		if programFilesMustBeYaml.MatchString(errMsg) {
			return "the program is read from the YAML export of the front end, not from source files"
		}
		return "make sure you have provided the path to a YAML program with at least one method"
	}
	if invalidDescription.MatchString(errMsg) {
		return "every source of the config file must set taints-return or list its tainted-args"
	}
	if missingDefinition.MatchString(errMsg) {
		return "the reaching definitions of the front end do not match its statements; export the program again"
	}
	return ""
}
