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

// Package alias implements the front-end of the may-alias analysis: it prints the points-to sets of the variables of
// a program.
//
// Usage:
//
//	graft alias [flags] program.yaml
package alias

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wimkeir/graft-sub000/analysis/alias"
	"github.com/wimkeir/graft-sub000/cmd/graft/tools"
	"github.com/wimkeir/graft-sub000/internal/funcutil"
)

// Flags represents the parsed flags of the alias command.
type Flags struct {
	tools.CommonFlags
	method string
}

// NewCommand returns the alias command.
func NewCommand() *cobra.Command {
	flags := &Flags{}
	cmd := &cobra.Command{
		Use:     "alias [flags] <program.yaml>",
		Short:   "Print the may-alias sets of the variables of a program",
		Example: "  % graft alias --method '<Demo: void main()>' program.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := Run(*flags, args[0], cmd.OutOrStdout())
			return err
		},
	}
	tools.AddCommonFlags(cmd, &flags.CommonFlags)
	cmd.Flags().StringVar(&flags.method, "method", "", "only print the variables of this method")
	return cmd
}

// Run runs the alias analysis on the program in filename and prints one line per variable with a non-empty
// points-to set.
func Run(flags Flags, filename string, out io.Writer) (*alias.Result, error) {
	cfg, err := tools.LoadConfig(flags.CommonFlags)
	if err != nil {
		return nil, err
	}
	session, err := tools.Build("alias", cfg, filename)
	if err != nil {
		return nil, err
	}
	result, err := alias.Analyze(session.Store, session.Logger)
	if err != nil {
		return nil, fmt.Errorf("alias analysis failed: %w", err)
	}
	for _, v := range result.Keys() {
		if flags.method != "" && v.Method != flags.method {
			continue
		}
		targets := funcutil.Map(result.PointsTo[v], func(t alias.Var) string { return t.Name })
		fmt.Fprintf(out, "%s -> {%s}\n", v, strings.Join(targets, ", "))
	}
	if result.Gaps > 0 {
		session.Logger.Warnf("%d aliasing pairs without a Local vertex", result.Gaps)
	}
	session.Logger.Infof("%d may-alias edges added", result.EdgesAdded)
	return result, nil
}
