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

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wimkeir/graft-sub000/analysis/config"
)

func validateHint(t *testing.T, errorMsg string, containedHint string) {
	hint := HintForErrorMessage(errorMsg)
	if !strings.Contains(hint, containedHint) {
		t.Fatalf("incorrect hint; check and update error message if necessary")
	}
}

func TestHintForSourceFile(t *testing.T) {
	errorMsg := "error: could not load program: main.go: program files must be .yaml files"
	validateHint(t, errorMsg, "YAML export of the front end")
}

func TestHintForFailedLoadProgram(t *testing.T) {
	errorMsg := "error: could not load program: could not read program file: open p.yaml: no such file or directory"
	validateHint(t, errorMsg, "path to a YAML program")
}

func TestHintForInvalidSource(t *testing.T) {
	errorMsg := "failed to load config file c.yaml: taint tracking problem 0: source \"<A: int f()>\" taints " +
		"neither its return value nor an argument: invalid analysis description"
	validateHint(t, errorMsg, "taints-return")
}

func TestHintForMissingDefinition(t *testing.T) {
	errorMsg := "could not build graph: dependences of <A: void f()>: definition <A: void f()>#7 of \"x\" used " +
		"at <A: void f()>#2 has no vertex"
	validateHint(t, errorMsg, "reaching definitions")
}

func TestNoHint(t *testing.T) {
	assert.Empty(t, HintForErrorMessage("taint analysis failed"))
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(CommonFlags{})
	require.NoError(t, err)
	assert.Equal(t, int(config.InfoLevel), cfg.LogLevel)

	cfg, err = LoadConfig(CommonFlags{ConfigPath: "../../../analysis/testdata/config.yaml", Verbose: true})
	require.NoError(t, err)
	assert.Equal(t, int(config.DebugLevel), cfg.LogLevel)
	assert.Equal(t, 32, cfg.MaxPaths)
	require.Len(t, cfg.TaintTrackingProblems, 1)

	cfg, err = LoadConfig(CommonFlags{ConfigPath: "../../../analysis/testdata/config.yaml", LogLevel: "trace"})
	require.NoError(t, err)
	assert.Equal(t, int(config.TraceLevel), cfg.LogLevel)

	_, err = LoadConfig(CommonFlags{LogLevel: "loud"})
	assert.Error(t, err)

	_, err = LoadConfig(CommonFlags{ConfigPath: "missing.yaml"})
	assert.Error(t, err)
}
