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

// Package build implements the front-end of the graft graph builder: it builds the code property graph of a program
// and exports it.
//
// Usage:
//
//	graft build [flags] program.yaml
package build

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/persist"
	"github.com/wimkeir/graft-sub000/cmd/graft/tools"
	"github.com/wimkeir/graft-sub000/internal/funcutil"
)

// Flags represents the parsed flags of the build command.
type Flags struct {
	tools.CommonFlags
	dot      string
	labels   []string
	method   string
	snapshot string
	db       string
}

// NewCommand returns the build command.
func NewCommand() *cobra.Command {
	flags := &Flags{}
	cmd := &cobra.Command{
		Use:   "build [flags] <program.yaml>",
		Short: "Build the code property graph of a program and export it",
		Example: `  % graft build --dot cpg.dot --labels CfgEdge,PdgEdge program.yaml
  % graft build --snapshot cpg.msgpack --db cpg.db program.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(*flags, args[0], cmd.OutOrStdout())
		},
	}
	tools.AddCommonFlags(cmd, &flags.CommonFlags)
	cmd.Flags().StringVar(&flags.dot, "dot", "", "write the graph in Graphviz format to this file")
	cmd.Flags().StringSliceVar(&flags.labels, "labels", nil, "edge labels written to the Graphviz file (default all)")
	cmd.Flags().StringVar(&flags.method, "method", "", "only write the vertices of this method to the Graphviz file")
	cmd.Flags().StringVar(&flags.snapshot, "snapshot", "", "write a snapshot of the graph to this file")
	cmd.Flags().StringVar(&flags.db, "db", "", "write the graph to this SQLite database")
	return cmd
}

// Run builds the graph of the program in filename and writes the exports requested by flags.
func Run(flags Flags, filename string, out io.Writer) error {
	cfg, err := tools.LoadConfig(flags.CommonFlags)
	if err != nil {
		return err
	}
	session, err := tools.Build("build", cfg, filename)
	if err != nil {
		return err
	}
	store := session.Store
	fmt.Fprintf(out, "%d methods, %d vertices, %d edges\n", len(session.CFGs), store.NumVertices(),
		store.NumEdges())
	for _, l := range cpg.AllEdgeLabels {
		fmt.Fprintf(out, "  %-12s %d\n", l, store.NumEdgesWith(l))
	}
	if len(session.Skipped) > 0 {
		fmt.Fprintf(out, "%d methods skipped\n", len(session.Skipped))
	}

	if flags.dot != "" {
		opts := persist.DOTOptions{Method: flags.method}
		for _, l := range flags.labels {
			if !funcutil.Contains(cpg.AllEdgeLabels, cpg.EdgeLabel(l)) {
				return fmt.Errorf("unknown edge label %q", l)
			}
			opts.Labels = append(opts.Labels, cpg.EdgeLabel(l))
		}
		if err := persist.DOTToFile(store, opts, flags.dot); err != nil {
			return err
		}
		session.Logger.Infof("Graph written to %s", flags.dot)
	}
	if flags.snapshot != "" {
		if err := persist.SaveFile(store, flags.snapshot); err != nil {
			return err
		}
		session.Logger.Infof("Snapshot written to %s", flags.snapshot)
	}
	if flags.db != "" {
		if err := persist.WriteDB(flags.db, store, nil); err != nil {
			return err
		}
		session.Logger.Infof("Database written to %s", flags.db)
	}
	return nil
}
