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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wimkeir/graft-sub000/analysis"
	"github.com/wimkeir/graft-sub000/cmd/graft/alias"
	"github.com/wimkeir/graft-sub000/cmd/graft/build"
	"github.com/wimkeir/graft-sub000/cmd/graft/stats"
	"github.com/wimkeir/graft-sub000/cmd/graft/taint"
	"github.com/wimkeir/graft-sub000/cmd/graft/tools"
)

const usage = `Graft: code property graphs and taint analysis
Tools:
  - build: builds the code property graph of a program and exports it (Graphviz, snapshot, SQLite)
  - taint: performs a taint analysis on a given program
  - alias: prints the may-alias sets of the variables of a program
  - stats: prints statistics about the code property graph of a program
Examples:
  Run the taint analysis: graft taint --config=config.yaml program.yaml
  Render the control flow: graft build --dot=cfg.dot --labels=CfgEdge program.yaml`

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "graft [tool] [options] <program.yaml>",
		Long:          usage,
		Version:       analysis.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(build.NewCommand(), taint.NewCommand(), alias.NewCommand(), stats.NewCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		errExit(err)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
