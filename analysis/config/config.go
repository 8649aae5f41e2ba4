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

package config

import (
	"errors"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// ErrInvalidDescription is returned for analysis descriptions that cannot be used, e.g. a source that neither
// taints its return value nor any of its arguments.
var ErrInvalidDescription = errors.New("invalid analysis description")

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the graph builder and the taint tracking problems.
// To add elements to a config file, add fields to this struct.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// TaintTrackingProblems lists the taint tracking specifications
	TaintTrackingProblems []TaintSpec `yaml:"taint-tracking-problems"`
}

// TaintSpec contains the descriptions of the calls of a specific taint tracking problem
type TaintSpec struct {
	// Sanitizers is the list of sanitizers for the taint analysis
	Sanitizers []Description `yaml:"sanitizers"`

	// Sinks is the list of sinks for the taint analysis
	Sinks []Description `yaml:"sinks"`

	// Sources is the list of sources for the taint analysis
	Sources []Description `yaml:"sources"`
}

// Options are the options of the graph builder and the analyses
type Options struct {
	// ReportsDir is the directory where all the reports will be stored. If the yaml config file this config struct has
	// been loaded does not specify a ReportsDir but sets ReportPaths to true, then ReportsDir will be created
	// in the folder of the config file.
	ReportsDir string `yaml:"reports-dir"`

	// SkipInterprocedural can be set to true to skip the interprocedural linking step
	SkipInterprocedural bool `yaml:"skip-interprocedural"`

	// SkipAlias can be set to true to skip the alias analysis
	SkipAlias bool `yaml:"skip-alias"`

	// ReportPaths specifies whether the taint flows should be reported in separate files. For each taint flow, a new
	// file named flow-*.out will be generated with the path from source to sink
	ReportPaths bool `yaml:"report-paths"`

	// ValidateGraph runs the structural checks of the graph after it has been built
	ValidateGraph bool `yaml:"validate-graph"`

	// MaxPaths sets a limit on the number of control flow paths enumerated for each source and sink pair.
	// If MaxPaths <= 0, DefaultMaxPaths is used.
	MaxPaths int `yaml:"max-paths"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile:            "",
		TaintTrackingProblems: nil,
		Options: Options{
			ReportsDir:          "",
			SkipInterprocedural: false,
			SkipAlias:           false,
			ReportPaths:         false,
			ValidateGraph:       false,
			MaxPaths:            DefaultMaxPaths,
			LogLevel:            int(InfoLevel),
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return LoadBytes(filename, b)
}

// LoadBytes reads a configuration from the contents of the file filename
func LoadBytes(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	cfg.sourceFile = filename

	if cfg.ReportPaths {
		if err := setReportsDir(cfg, filename); err != nil {
			return nil, err
		}
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.MaxPaths <= 0 {
		cfg.MaxPaths = DefaultMaxPaths
	}

	for i := range cfg.TaintTrackingProblems {
		if err := cfg.TaintTrackingProblems[i].Compile(); err != nil {
			return nil, fmt.Errorf("taint tracking problem %d: %w", i, err)
		}
	}
	return cfg, nil
}

func setReportsDir(c *Config, filename string) error {
	if c.ReportsDir == "" {
		tmpdir, err := os.MkdirTemp(path.Dir(filename), "*-report")
		if err != nil {
			return fmt.Errorf("could not create temp dir for reports")
		}
		c.ReportsDir = tmpdir
	} else {
		if !path.IsAbs(c.ReportsDir) {
			c.ReportsDir = c.RelPath(c.ReportsDir)
		}
		err := os.Mkdir(c.ReportsDir, 0750)
		if err != nil {
			if !os.IsExist(err) {
				return fmt.Errorf("could not create directory %s", c.ReportsDir)
			}
		}
	}
	return nil
}

// RelPath returns filename path relative to the config source file. A relative reports-dir is resolved with it.
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// Compile validates the descriptions of the problem and compiles their signature patterns.
func (ts *TaintSpec) Compile() error {
	var errs []error
	for i := range ts.Sources {
		d := &ts.Sources[i]
		d.compile()
		if !d.TaintsReturn && len(d.TaintedArgs) == 0 {
			errs = append(errs, fmt.Errorf("source %q taints neither its return value nor an argument: %w",
				d.Signature, ErrInvalidDescription))
		}
	}
	for i := range ts.Sinks {
		ts.Sinks[i].compile()
	}
	for i := range ts.Sanitizers {
		ts.Sanitizers[i].compile()
	}
	for _, group := range [][]Description{ts.Sources, ts.Sinks, ts.Sanitizers} {
		for _, d := range group {
			if d.Signature == "" {
				errs = append(errs, fmt.Errorf("description without signature: %w", ErrInvalidDescription))
			}
		}
	}
	return errors.Join(errs...)
}

// IsSource returns the first source description matching the signature
func (ts TaintSpec) IsSource(signature string) (Description, bool) {
	return firstMatch(ts.Sources, signature)
}

// IsSink returns the first sink description matching the signature
func (ts TaintSpec) IsSink(signature string) (Description, bool) {
	return firstMatch(ts.Sinks, signature)
}

// IsSanitizer returns the first sanitizer description matching the signature
func (ts TaintSpec) IsSanitizer(signature string) (Description, bool) {
	return firstMatch(ts.Sanitizers, signature)
}

// Below are functions used to query the configuration on specific facts

// IsSomeSource returns true if the signature matches any source in the config
func (c Config) IsSomeSource(signature string) bool {
	for _, ts := range c.TaintTrackingProblems {
		if _, ok := ts.IsSource(signature); ok {
			return true
		}
	}
	return false
}

// IsSomeSink returns true if the signature matches any sink in the config
func (c Config) IsSomeSink(signature string) bool {
	for _, ts := range c.TaintTrackingProblems {
		if _, ok := ts.IsSink(signature); ok {
			return true
		}
	}
	return false
}
