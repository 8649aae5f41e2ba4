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

// Package stats implements the front-end printing statistics about the code property graph of a program, or about
// a graph snapshot.
//
// Usage:
//
//	graft stats [flags] program.yaml
//	graft stats --from-snapshot cpg.msgpack
package stats

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/wimkeir/graft-sub000/analysis"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/interproc"
	"github.com/wimkeir/graft-sub000/analysis/persist"
	"github.com/wimkeir/graft-sub000/cmd/graft/tools"
)

// Flags represents the parsed flags of the stats command.
type Flags struct {
	tools.CommonFlags
	fromSnapshot bool
}

// NewCommand returns the stats command.
func NewCommand() *cobra.Command {
	flags := &Flags{}
	cmd := &cobra.Command{
		Use:   "stats [flags] <program.yaml | snapshot>",
		Short: "Print statistics about the code property graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := Run(*flags, args[0], cmd.OutOrStdout())
			return err
		},
	}
	tools.AddCommonFlags(cmd, &flags.CommonFlags)
	cmd.Flags().BoolVar(&flags.fromSnapshot, "from-snapshot", false, "read a graph snapshot instead of a program")
	return cmd
}

// Run prints the statistics of the graph of filename, in YAML, to out.
func Run(flags Flags, filename string, out io.Writer) (analysis.Statistics, error) {
	var store *cpg.Store
	var gaps []interproc.Gap
	maxCycles := 0
	if flags.fromSnapshot {
		var err error
		store, err = persist.LoadFile(filename)
		if err != nil {
			return analysis.Statistics{}, err
		}
	} else {
		cfg, err := tools.LoadConfig(flags.CommonFlags)
		if err != nil {
			return analysis.Statistics{}, err
		}
		session, err := tools.Build("stats", cfg, filename)
		if err != nil {
			return analysis.Statistics{}, err
		}
		store = session.Store
		gaps = session.Links.Gaps
		maxCycles = cfg.MaxPaths
	}

	stats, err := analysis.GraphStatistics(store, maxCycles)
	if err != nil {
		return stats, err
	}
	if err := stats.WriteYAML(out); err != nil {
		return stats, err
	}
	if len(gaps) > 0 {
		counts := map[interproc.GapKind]int{}
		for _, g := range gaps {
			counts[g.Kind]++
		}
		fmt.Fprintf(out, "linker-gaps:\n")
		for _, k := range []interproc.GapKind{interproc.NoCallee, interproc.AmbiguousCallee, interproc.NoReturnSite,
			interproc.NoOwner} {
			if counts[k] > 0 {
				fmt.Fprintf(out, "  %s: %d\n", k, counts[k])
			}
		}
	}
	return stats, nil
}
