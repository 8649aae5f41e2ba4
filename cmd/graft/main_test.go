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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wimkeir/graft-sub000/analysis"
	"github.com/wimkeir/graft-sub000/cmd/graft/tools"
)

const (
	demoProgram = "../../analysis/testdata/demo.yaml"
	demoConfig  = "../../analysis/testdata/config.yaml"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, analysis.Version+"\n", out)
}

func TestTaintCommand(t *testing.T) {
	out, err := execute(t, "taint", "--config", demoConfig, "--yaml", "-", demoProgram)
	require.NoError(t, err)
	assert.Contains(t, out, "Variable: x")
	assert.Contains(t, out, "Variable: y")
	assert.Contains(t, out, "Source: <Demo: java.lang.String source()>")
	assert.Contains(t, out, "sinks: 2")
}

func TestTaintCommandNeedsProblems(t *testing.T) {
	_, err := execute(t, "taint", demoProgram)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no taint tracking problem")
}

func TestAliasCommand(t *testing.T) {
	out, err := execute(t, "alias", demoProgram)
	require.NoError(t, err)
	assert.Equal(t, "<Demo: void main()>:y -> {x}\n", out)

	out, err = execute(t, "alias", "--method", "<Demo: java.lang.String id(java.lang.String)>", demoProgram)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBuildAndStatsCommands(t *testing.T) {
	dir := t.TempDir()
	dot := filepath.Join(dir, "cpg.dot")
	snapshot := filepath.Join(dir, "cpg.msgpack")
	db := filepath.Join(dir, "cpg.db")

	out, err := execute(t, "build", "--dot", dot, "--labels", "CfgEdge,CallEdge", "--snapshot", snapshot,
		"--db", db, demoProgram)
	require.NoError(t, err)
	assert.Contains(t, out, "2 methods")
	for _, f := range []string{dot, snapshot, db} {
		_, err := os.Stat(f)
		assert.NoError(t, err, f)
	}

	fromProgram, err := execute(t, "stats", demoProgram)
	require.NoError(t, err)
	assert.Contains(t, fromProgram, "methods: 2")
	assert.Contains(t, fromProgram, "no callee: 4")

	fromSnapshot, err := execute(t, "stats", "--from-snapshot", snapshot)
	require.NoError(t, err)
	assert.Contains(t, fromSnapshot, "methods: 2")
	assert.Contains(t, fromSnapshot, "loops: 1")
	assert.NotContains(t, fromSnapshot, "linker-gaps")
}

func TestBuildCommandRejectsUnknownLabel(t *testing.T) {
	dot := filepath.Join(t.TempDir(), "cpg.dot")
	_, err := execute(t, "build", "--dot", dot, "--labels", "DataEdge", demoProgram)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown edge label "DataEdge"`)
	_, err = os.Stat(dot)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadErrorHint(t *testing.T) {
	_, err := execute(t, "build", "main.go")
	require.Error(t, err)
	assert.Contains(t, tools.HintForErrorMessage(err.Error()), "YAML")
}
