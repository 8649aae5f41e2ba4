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
	"fmt"
	"path/filepath"

	"github.com/wimkeir/graft-sub000/analysis/ir"
)

// LoadedProgram represents a loaded program.
type LoadedProgram struct {
	// Program is the IR of the methods, in batch order
	Program *ir.Program
	// Filename is the file the program has been read from
	Filename string
}

// LoadProgram loads the YAML program in filename. The program is validated: a method whose block structure does not
// fit its statement stream is an error.
func LoadProgram(filename string) (LoadedProgram, error) {
	if filename == "" {
		return LoadedProgram{}, fmt.Errorf("could not load program: no file provided")
	}
	if ext := filepath.Ext(filename); ext != ".yaml" && ext != ".yml" {
		return LoadedProgram{}, fmt.Errorf("could not load program: %s: program files must be .yaml files", filename)
	}
	p, err := ir.Load(filename)
	if err != nil {
		return LoadedProgram{}, fmt.Errorf("could not load program: %w", err)
	}
	if len(p.Methods) == 0 {
		return LoadedProgram{}, fmt.Errorf("could not load program: %s: no methods", filename)
	}
	return LoadedProgram{Program: p, Filename: filename}, nil
}
