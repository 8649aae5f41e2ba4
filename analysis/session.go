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
	"sort"
	"sync"

	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/analysis/controlflow"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/interproc"
	"github.com/wimkeir/graft-sub000/analysis/ir"
	"github.com/wimkeir/graft-sub000/analysis/pdg"
)

// Session holds the graph of one build and the information computed while building it. A session owns its store:
// nothing else mutates it.
type Session struct {
	// The logger used during the build and the analyses
	Logger *config.LogGroup

	// The configuration of the build
	Config *config.Config

	// The program the graph is built from
	Program *ir.Program

	// Store is the code property graph
	Store *cpg.Store

	// CFGs maps method names to the result of the control flow pass. Skipped methods have no entry.
	CFGs map[string]*controlflow.Result

	// Dependences maps method names to the result of the dependence pass
	Dependences map[string]pdg.Result

	// Links is the result of the interprocedural linker. It is empty when the linker was skipped.
	Links interproc.Result

	// Skipped lists the methods that were left out of the graph, in batch order
	Skipped []string

	// Stored errors of the methods that were skipped
	errors     map[error]bool
	errorMutex sync.Mutex
}

// NewSession returns a properly initialized session with an empty store.
func NewSession(p *ir.Program, l *config.LogGroup, c *config.Config) *Session {
	if l == nil {
		l = config.Discard()
	}
	if c == nil {
		c = config.NewDefault()
	}
	return &Session{
		Logger:      l,
		Config:      c,
		Program:     p,
		Store:       cpg.NewStore(),
		CFGs:        map[string]*controlflow.Result{},
		Dependences: map[string]pdg.Result{},
		errors:      map[error]bool{},
	}
}

// AddError records a recoverable error.
func (s *Session) AddError(e error) {
	s.errorMutex.Lock()
	defer s.errorMutex.Unlock()
	if e != nil {
		s.errors[e] = true
	}
}

// CheckError returns the recoverable errors recorded so far, sorted by message.
func (s *Session) CheckError() []error {
	s.errorMutex.Lock()
	defer s.errorMutex.Unlock()
	errs := make([]error, 0, len(s.errors))
	for e := range s.errors {
		errs = append(errs, e)
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errs
}
