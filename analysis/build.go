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

package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/wimkeir/graft-sub000/analysis/alias"
	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/controlflow"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/interproc"
	"github.com/wimkeir/graft-sub000/analysis/ir"
	"github.com/wimkeir/graft-sub000/analysis/pdg"
	"github.com/wimkeir/graft-sub000/analysis/taint"
	"github.com/wimkeir/graft-sub000/internal/formatutil"
)

// BuildGraph builds the code property graph of the program: for each method in batch order, its control flow graph
// with the AST subtrees of its statements and then its dependence edges; then the interprocedural edges unless
// cfg.SkipInterprocedural is set.
//
// A method with a malformed block structure is skipped and its error recorded in the session. A dependence whose
// definition has no vertex is an invariant violation and stops the build: the returned error wraps a
// *pdg.InvariantError.
func BuildGraph(p *ir.Program, cfg *config.Config, logger *config.LogGroup) (*Session, error) {
	s := NewSession(p, logger, cfg)
	if p == nil {
		return s, fmt.Errorf("no program to build")
	}

	start := time.Now()
	s.Logger.Infof("Building graph of %d methods ...", len(p.Methods))
	for _, m := range p.Methods {
		if err := s.buildMethod(m); err != nil {
			return s, err
		}
	}
	s.Logger.Infof("Intraprocedural passes done (%.2f s): %d vertices, %d edges, %d methods skipped",
		time.Since(start).Seconds(), s.Store.NumVertices(), s.Store.NumEdges(), len(s.Skipped))

	if s.Config.SkipInterprocedural {
		s.Logger.Infof("Skipping interprocedural linking")
	} else {
		start = time.Now()
		s.Links = interproc.Link(s.Store, s.Logger)
		s.Logger.Infof("Interprocedural linking done (%.2f s): %d calls linked, %d gaps",
			time.Since(start).Seconds(), s.Links.Linked, len(s.Links.Gaps))
	}

	if s.Config.ValidateGraph {
		if err := cpg.Validate(s.Store); err != nil {
			return s, fmt.Errorf("graph validation failed: %w", err)
		}
		s.Logger.Infof("Graph validated")
	}
	return s, nil
}

func (s *Session) buildMethod(m *ir.Method) error {
	name := m.Name()
	cfgResult, err := controlflow.Build(s.Store, m, s.Logger)
	if err != nil {
		if errors.Is(err, controlflow.ErrMalformedBlock) {
			s.Logger.Warnf("skipping %s: %v", name, err)
			s.Skipped = append(s.Skipped, name)
			s.AddError(fmt.Errorf("%s: %w", name, err))
			return nil
		}
		return fmt.Errorf("control flow of %s: %w", name, err)
	}
	s.CFGs[name] = cfgResult
	if cfgResult.Unsupported > 0 {
		s.Logger.Debugf("%s: %d unsupported constructs skipped", name, cfgResult.Unsupported)
	}

	deps, err := pdg.Build(s.Store, m, cfgResult, s.Program.Oracle, s.Logger)
	if err != nil {
		return fmt.Errorf("dependences of %s: %w", name, err)
	}
	s.Dependences[name] = deps
	return nil
}

// AnalysisResult groups the results of the analyses run on a graph. Alias is nil when the alias analysis was skipped.
type AnalysisResult struct {
	Taint *taint.Result
	Alias *alias.Result
}

// RunAnalyses runs the taint analysis of every problem of the session's config, then the alias analysis unless
// the config skips it.
func RunAnalyses(s *Session) (*AnalysisResult, error) {
	res := &AnalysisResult{}

	start := time.Now()
	taintResult, err := taint.Analyze(s.Store, s.Config, s.Logger)
	if err != nil {
		return res, fmt.Errorf("taint analysis failed: %w", err)
	}
	res.Taint = taintResult
	s.Logger.Infof("Taint analysis took %3.4f s", time.Since(start).Seconds())
	if len(taintResult.Vulnerabilities) == 0 {
		s.Logger.Infof("RESULT:\n\t\t%s", formatutil.Green("No taint flows detected ✓"))
	} else {
		s.Logger.Errorf("RESULT:\n\t\t%s", formatutil.Red(fmt.Sprintf("%d taint flows detected!",
			len(taintResult.Vulnerabilities))))
	}

	if s.Config.SkipAlias {
		return res, nil
	}
	start = time.Now()
	aliasResult, err := alias.Analyze(s.Store, s.Logger)
	if err != nil {
		return res, fmt.Errorf("alias analysis failed: %w", err)
	}
	res.Alias = aliasResult
	s.Logger.Infof("Alias analysis took %3.4f s: %d may-alias edges added", time.Since(start).Seconds(),
		aliasResult.EdgesAdded)
	return res, nil
}
