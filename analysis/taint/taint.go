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
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
)

// Vulnerability is a flow of tainted data from a source call to a sink call that no sanitizer cleans.
type Vulnerability struct {
	// ID is a fingerprint of the vulnerability, stable across builds of the same program
	ID string `yaml:"id"`
	// Source is the CFG vertex calling the source
	Source cpg.VertexID `yaml:"source"`
	// Sink is the CFG vertex calling the sink
	Sink cpg.VertexID `yaml:"sink"`
	// Variable is the variable read by the sink
	Variable string `yaml:"variable"`
	// Method is the method of the sink call
	Method string `yaml:"method"`
	// SourceSignature and SinkSignature are the resolved signatures of the calls
	SourceSignature string `yaml:"source-signature"`
	SinkSignature   string `yaml:"sink-signature"`
	// Path is the first offending control flow path from Source to Sink
	Path []cpg.VertexID `yaml:"path,flow"`
	// PathCount is the number of offending paths found, at most the maximum number of paths
	PathCount int `yaml:"path-count"`
}

func (v Vulnerability) String() string {
	return fmt.Sprintf("%s: %s flows to %s through %q (%d paths)", v.ID, v.SourceSignature, v.SinkSignature,
		v.Variable, v.PathCount)
}

// Stats counts what the analysis explored
type Stats struct {
	// Sinks is the number of sink calls
	Sinks int
	// SunkVariables is the number of variables read by the sensitive arguments of sinks
	SunkVariables int
	// Candidates is the number of (source, sink) pairs connected by dependence edges
	Candidates int
	// PathsExplored is the number of control flow paths enumerated
	PathsExplored int
	// Sanitized is the number of paths on which the taint was sanitized
	Sanitized int
	// Severed is the number of paths on which the tainted variable was redefined
	Severed int
}

func (s *Stats) add(o Stats) {
	s.Sinks += o.Sinks
	s.SunkVariables += o.SunkVariables
	s.Candidates += o.Candidates
	s.PathsExplored += o.PathsExplored
	s.Sanitized += o.Sanitized
	s.Severed += o.Severed
}

// Result is the result of the taint analysis
type Result struct {
	// Vulnerabilities are ordered by source and then sink vertex
	Vulnerabilities []Vulnerability
	Stats           Stats
}

type pair struct {
	source cpg.VertexID
	sink   cpg.VertexID
}

// Analyze runs every taint tracking problem of cfg on the store. The store must contain the complete graph: control
// flow, dependence and, for interprocedural flows, call edges. When cfg.ReportPaths is set, each vulnerability is
// also written to a file in cfg.ReportsDir.
func Analyze(store *cpg.Store, cfg *config.Config, logger *config.LogGroup) (*Result, error) {
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	res := &Result{}
	seen := map[pair]bool{}
	for i := range cfg.TaintTrackingProblems {
		r, err := AnalyzeProblem(store, &cfg.TaintTrackingProblems[i], cfg.MaxPaths, logger)
		if err != nil {
			return nil, fmt.Errorf("taint tracking problem %d: %w", i, err)
		}
		res.Stats.add(r.Stats)
		for _, v := range r.Vulnerabilities {
			if !seen[pair{v.Source, v.Sink}] {
				seen[pair{v.Source, v.Sink}] = true
				res.Vulnerabilities = append(res.Vulnerabilities, v)
			}
		}
	}
	sortVulnerabilities(res.Vulnerabilities)
	for _, v := range res.Vulnerabilities {
		ReportVulnerability(store, cfg, logger, v)
	}
	return res, nil
}

// AnalyzeProblem runs the taint tracking problem spec on the store. At most maxPaths walks and paths are explored
// per sunk variable and per candidate pair. A source description that taints neither its return value nor an
// argument is rejected with config.ErrInvalidDescription.
func AnalyzeProblem(store *cpg.Store, spec *config.TaintSpec, maxPaths int,
	logger *config.LogGroup) (*Result, error) {
	if logger == nil {
		logger = config.Discard()
	}
	if err := spec.Compile(); err != nil {
		return nil, err
	}
	if maxPaths <= 0 {
		maxPaths = config.DefaultMaxPaths
	}
	res := &Result{}
	p := newProblem(store, spec, maxPaths, logger, &res.Stats)
	found := map[pair]bool{}

	sunk, direct := p.sunkVariables()
	res.Stats.SunkVariables = len(sunk)
	for _, d := range direct {
		k := pair{d.site, d.site}
		if found[k] {
			continue
		}
		found[k] = true
		res.Stats.Candidates++
		res.Stats.PathsExplored++
		res.Vulnerabilities = append(res.Vulnerabilities,
			newVulnerability(store, d.site, d.site, d.source.Props.String(cpg.PropCode),
				d.source, d.invoke, []cpg.VertexID{d.site}, 1))
	}

	for _, s := range sunk {
		origins, walks, err := p.backwardWalks(s)
		if err != nil {
			return nil, err
		}
		for _, origin := range origins {
			k := pair{origin, s.site}
			if found[k] {
				continue
			}
			res.Stats.Candidates++
			path, count, err := p.examine(origin, s.site, walks[origin])
			if err != nil {
				return nil, err
			}
			if count == 0 {
				logger.Debugf("no offending path from %s to %s for %q", store.Vertex(origin),
					store.Vertex(s.site), s.name)
				continue
			}
			found[k] = true
			res.Vulnerabilities = append(res.Vulnerabilities,
				newVulnerability(store, origin, s.site, s.name, p.originCall(origin), s.invoke, path, count))
		}
	}
	sortVulnerabilities(res.Vulnerabilities)
	logger.Infof("taint: %d sinks, %d candidate pairs, %d paths explored, %d vulnerabilities",
		res.Stats.Sinks, res.Stats.Candidates, res.Stats.PathsExplored, len(res.Vulnerabilities))
	return res, nil
}

func newVulnerability(store *cpg.Store, source, sink cpg.VertexID, variable string, sourceCall, sinkCall *cpg.Vertex,
	path []cpg.VertexID, count int) Vulnerability {
	v := Vulnerability{
		Source:        source,
		Sink:          sink,
		Variable:      variable,
		Method:        store.Vertex(sink).Method(),
		SinkSignature: sinkCall.Props.String(cpg.PropSignature),
		Path:          path,
		PathCount:     count,
	}
	if sourceCall != nil {
		v.SourceSignature = sourceCall.Props.String(cpg.PropSignature)
	}
	v.ID = fingerprint(store, v)
	return v
}

// fingerprint identifies a vulnerability by the statements of its source and sink, which do not depend on the
// order in which methods were added to the graph.
func fingerprint(store *cpg.Store, v Vulnerability) string {
	at := func(id cpg.VertexID) string {
		vertex := store.Vertex(id)
		stmt, _ := vertex.Props.Int(cpg.PropStmt)
		return fmt.Sprintf("%s#%d", vertex.Method(), stmt)
	}
	key := strings.Join([]string{at(v.Source), at(v.Sink), v.Variable, v.SourceSignature, v.SinkSignature}, "|")
	return uuid.NewMD5(uuid.NameSpaceOID, []byte(key)).String()
}

func sortVulnerabilities(vs []Vulnerability) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].Source != vs[j].Source {
			return vs[i].Source < vs[j].Source
		}
		return vs[i].Sink < vs[j].Sink
	})
}
