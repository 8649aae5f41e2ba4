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
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/wimkeir/graft-sub000/analysis"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/persist"
	"github.com/wimkeir/graft-sub000/analysis/taint"
	"github.com/wimkeir/graft-sub000/cmd/graft/tools"
	"github.com/wimkeir/graft-sub000/internal/formatutil"
)

// Flags represents the parsed flags for the taint analysis.
type Flags struct {
	tools.CommonFlags
	maxPaths int
	yamlOut  string
	db       string
}

// NewCommand returns the taint command.
func NewCommand() *cobra.Command {
	flags := &Flags{}
	cmd := &cobra.Command{
		Use:     "taint [flags] <program.yaml>",
		Short:   "Perform taint analysis on a program",
		Example: "  % graft taint --config config.yaml program.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := Run(*flags, args[0], cmd.OutOrStdout())
			return err
		},
	}
	tools.AddCommonFlags(cmd, &flags.CommonFlags)
	cmd.Flags().IntVar(&flags.maxPaths, "max-paths", -1, "override the maximum number of paths in config")
	cmd.Flags().StringVar(&flags.yamlOut, "yaml", "", "write the result in YAML to this file (- for stdout)")
	cmd.Flags().StringVar(&flags.db, "db", "", "write the graph and the vulnerabilities to this SQLite database")
	return cmd
}

// Run runs the taint analysis of the program in filename with flags, and prints the vulnerabilities to out.
func Run(flags Flags, filename string, out io.Writer) (*taint.Result, error) {
	cfg, err := tools.LoadConfig(flags.CommonFlags)
	if err != nil {
		return nil, err
	}
	if len(cfg.TaintTrackingProblems) == 0 {
		return nil, fmt.Errorf("no taint tracking problem in config %q", flags.ConfigPath)
	}
	session, err := tools.Build("taint", cfg, filename)
	if err != nil {
		return nil, err
	}
	warnUnmatched(session)
	// Override config parameters with command-line parameters
	if flags.maxPaths > 0 {
		session.Config.MaxPaths = flags.maxPaths
		session.Logger.Warnf("%s %d", formatutil.Yellow("max paths per source and sink set to:"), flags.maxPaths)
	}

	start := time.Now()
	result, err := taint.Analyze(session.Store, session.Config, session.Logger)
	duration := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("taint analysis failed: %w", err)
	}
	session.Logger.Infof("")
	session.Logger.Infof(strings.Repeat("*", 80))
	session.Logger.Infof("Analysis took %3.4f s", duration.Seconds())
	session.Logger.Infof("")
	if len(result.Vulnerabilities) == 0 {
		session.Logger.Infof("RESULT:\n\t\t%s", formatutil.Green("No taint flows detected ✓"))
	} else {
		session.Logger.Errorf("RESULT:\n\t\t%s", formatutil.Red("Taint flows detected!"))
	}

	for i, v := range result.Vulnerabilities {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := taint.WriteVulnerability(out, session.Store, v); err != nil {
			return result, err
		}
	}

	if flags.yamlOut != "" {
		if err := writeYAML(result, flags.yamlOut, out); err != nil {
			return result, err
		}
	}
	if flags.db != "" {
		if err := persist.WriteDB(flags.db, session.Store, result.Vulnerabilities); err != nil {
			return result, err
		}
		session.Logger.Infof("Database written to %s", flags.db)
	}
	return result, nil
}

// warnUnmatched warns when no call of the program matches any source, or any sink, of the configuration.
func warnUnmatched(session *analysis.Session) {
	var sources, sinks bool
	for _, v := range session.Store.Vertices(cpg.AstNode, cpg.KindInvokeExpr).All() {
		sig := v.Props.String(cpg.PropSignature)
		sources = sources || session.Config.IsSomeSource(sig)
		sinks = sinks || session.Config.IsSomeSink(sig)
	}
	if !sources {
		session.Logger.Warnf("%s", formatutil.Yellow("no call of the program matches a source of the configuration"))
	}
	if !sinks {
		session.Logger.Warnf("%s", formatutil.Yellow("no call of the program matches a sink of the configuration"))
	}
}

func writeYAML(result *taint.Result, path string, stdout io.Writer) error {
	if path == "-" {
		return result.WriteYAML(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer f.Close()
	return result.WriteYAML(f)
}
