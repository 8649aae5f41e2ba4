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

// Package tools contains utility types and functions for graft tool frontends.
package tools

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wimkeir/graft-sub000/analysis"
	"github.com/wimkeir/graft-sub000/analysis/config"
	"github.com/wimkeir/graft-sub000/internal/formatutil"
)

// CommonFlags represents the flags every sub-command has.
// E.g., for the command `graft taint ...`, "taint" is the sub-command.
type CommonFlags struct {
	ConfigPath string
	LogLevel   string
	Verbose    bool
}

// AddCommonFlags registers the flags --config, --log-level and --verbose of cmd, parsed into flags.
func AddCommonFlags(cmd *cobra.Command, flags *CommonFlags) {
	cmd.Flags().StringVar(&flags.ConfigPath, "config", "", "config file path for analysis")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", "", "log level, by name (error, warn, info, debug, trace) or number")
	cmd.Flags().BoolVar(&flags.Verbose, "verbose", false, "verbose printing on standard error")
}

// LoadConfig loads the config file of the flags. The default config is used when no file is specified.
// The log-level flag overrides the log level of the file, and the verbose flag overrides both.
func LoadConfig(flags CommonFlags) (*config.Config, error) {
	cfg := config.NewDefault()
	if flags.ConfigPath != "" {
		config.SetGlobalConfig(flags.ConfigPath)
		var err error
		cfg, err = config.LoadGlobal()
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", flags.ConfigPath, err)
		}
	}
	if flags.LogLevel != "" {
		level, err := config.ParseLogLevel(flags.LogLevel)
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = int(level)
	}
	if flags.Verbose {
		cfg.LogLevel = int(config.DebugLevel)
	}
	return cfg, nil
}

// Build loads the program in filename and builds the program's graph with cfg.
// tool names the sub-command in the banner.
func Build(tool string, cfg *config.Config, filename string) (*analysis.Session, error) {
	logger := config.NewLogGroup(cfg)
	logger.Infof("%s", formatutil.Faint("graft "+tool+" - "+analysis.Version))
	logger.Infof("%s", formatutil.Faint("Reading program "+filename))

	program, err := analysis.LoadProgram(filename)
	if err != nil {
		return nil, err
	}
	session, err := analysis.BuildGraph(program.Program, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("could not build graph: %w", err)
	}
	for _, err := range session.CheckError() {
		logger.Warnf("%s %v", formatutil.Yellow("skipped:"), err)
	}
	return session, nil
}
