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

package taint

import (
	"fmt"
	"io"
	"os"

	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/internal/formatutil"
	"gopkg.in/yaml.v3"
)

// ReportVulnerability reports a vulnerability by writing in the logger, and to a file if the configuration has the
// ReportPaths flag set
func ReportVulnerability(store *cpg.Store, cfg *config.Config, logger *config.LogGroup, v Vulnerability) {
	logger.Infof(" 💀 Sink reached at %s\n", formatutil.Red(store.Vertex(v.Sink)))
	logger.Infof(" Add new path from %s to %s <== \n",
		formatutil.Green(store.Vertex(v.Source)), formatutil.Red(store.Vertex(v.Sink)))
	if !cfg.ReportPaths {
		return
	}
	tmp, err := os.CreateTemp(cfg.ReportsDir, "flow-*.out")
	if err != nil {
		logger.Errorf("Could not write report: %v", err)
		return
	}
	defer tmp.Close()
	logger.Infof("Report in %s\n", tmp.Name())
	if err := WriteVulnerability(tmp, store, v); err != nil {
		logger.Errorf("Could not write report: %v", err)
	}
}

// WriteVulnerability writes the description of v and its path to w, one vertex per line
func WriteVulnerability(w io.Writer, store *cpg.Store, v Vulnerability) error {
	lines := []string{
		fmt.Sprintf("ID: %s\n", v.ID),
		fmt.Sprintf("Source: %s\n", v.SourceSignature),
		fmt.Sprintf("At: %s\n", position(store, v.Source)),
		fmt.Sprintf("Sink: %s\n", v.SinkSignature),
		fmt.Sprintf("At: %s\n", position(store, v.Sink)),
		fmt.Sprintf("Variable: %s\n", v.Variable),
		fmt.Sprintf("Paths: %d\n", v.PathCount),
		"Trace:\n",
	}
	for _, id := range v.Path {
		lines = append(lines, fmt.Sprintf("%s\n", position(store, id)))
	}
	for _, l := range lines {
		if _, err := io.WriteString(w, l); err != nil {
			return err
		}
	}
	return nil
}

// position renders a CFG vertex with its method and line, when known
func position(store *cpg.Store, id cpg.VertexID) string {
	v := store.Vertex(id)
	if line, ok := v.Props.Int(cpg.PropLine); ok {
		return fmt.Sprintf("%s:%d %s", v.Method(), line, v.Props.String(cpg.PropCode))
	}
	return fmt.Sprintf("%s %s", v.Method(), v.String())
}

type yamlReport struct {
	Vulnerabilities []Vulnerability `yaml:"vulnerabilities"`
	Stats           yamlStats       `yaml:"stats"`
}

type yamlStats struct {
	Sinks         int `yaml:"sinks"`
	SunkVariables int `yaml:"sunk-variables"`
	Candidates    int `yaml:"candidates"`
	PathsExplored int `yaml:"paths-explored"`
	Sanitized     int `yaml:"sanitized"`
	Severed       int `yaml:"severed"`
}

// WriteYAML writes the result as a YAML document to w
func (r *Result) WriteYAML(w io.Writer) error {
	report := yamlReport{
		Vulnerabilities: r.Vulnerabilities,
		Stats:           yamlStats(r.Stats),
	}
	if report.Vulnerabilities == nil {
		report.Vulnerabilities = []Vulnerability{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("could not encode taint report: %w", err)
	}
	return enc.Close()
}
