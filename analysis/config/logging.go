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
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel is the verbosity of a LogGroup
type LogLevel int

const (
	// ErrLevel=1 - the minimum level of logging.
	ErrLevel LogLevel = iota + 1

	// WarnLevel=2 - the level for logging warnings, and errors: unsupported constructs, unresolved calls
	WarnLevel

	// InfoLevel=3 - the level for logging high-level information, results
	InfoLevel

	// DebugLevel=4 - the level for debugging information. The tool will run properly on large programs with
	// that level of debug information.
	DebugLevel

	// TraceLevel=5 - the level for tracing every vertex and edge added to the graph. Only useful on small inputs.
	TraceLevel
)

// ParseLogLevel parses the name or the number of a log level.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(s) {
	case "error", "err", "1":
		return ErrLevel, nil
	case "warn", "warning", "2":
		return WarnLevel, nil
	case "info", "3":
		return InfoLevel, nil
	case "debug", "4":
		return DebugLevel, nil
	case "trace", "5":
		return TraceLevel, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// LogGroup is a group of loggers, one per level, that only print when the group's level is at least theirs.
type LogGroup struct {
	level LogLevel
	trace *log.Logger
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
}

// NewLogGroup returns a log group that is configured to the logging settings stored inside the config
func NewLogGroup(config *Config) *LogGroup {
	return NewLogGroupWithLevel(LogLevel(config.LogLevel))
}

// NewLogGroupWithLevel returns a log group printing to stderr at the given level
func NewLogGroupWithLevel(level LogLevel) *LogGroup {
	flags := log.Default().Flags()
	return &LogGroup{
		level: level,
		trace: log.New(os.Stderr, "[TRACE] ", flags),
		debug: log.New(os.Stderr, "[DEBUG] ", flags),
		info:  log.New(os.Stderr, "[INFO] ", flags),
		warn:  log.New(os.Stderr, "[WARN] ", flags),
		err:   log.New(os.Stderr, "[ERROR] ", flags),
	}
}

// Discard returns a log group that prints nothing. Analyses use it when they are given no logger.
func Discard() *LogGroup {
	l := NewLogGroupWithLevel(ErrLevel)
	l.SetAllOutput(io.Discard)
	return l
}

// SetAllOutput sets all the output writers to the writer provided
func (l *LogGroup) SetAllOutput(w io.Writer) {
	l.trace.SetOutput(w)
	l.debug.SetOutput(w)
	l.info.SetOutput(w)
	l.warn.SetOutput(w)
	l.err.SetOutput(w)
}

// Tracef calls Trace.Printf to print to the trace logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Tracef(format string, v ...any) {
	if l.level >= TraceLevel {
		l.trace.Printf(format, v...)
	}
}

// Debugf calls Debug.Printf to print to the debug logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Debugf(format string, v ...any) {
	if l.level >= DebugLevel {
		l.debug.Printf(format, v...)
	}
}

// Infof calls Info.Printf to print to the info logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Infof(format string, v ...any) {
	if l.level >= InfoLevel {
		l.info.Printf(format, v...)
	}
}

// Warnf calls Warn.Printf to print to the warning logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Warnf(format string, v ...any) {
	if l.level >= WarnLevel {
		l.warn.Printf(format, v...)
	}
}

// Errorf calls Error.Printf to print to the error logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Errorf(format string, v ...any) {
	if l.level >= ErrLevel {
		l.err.Printf(format, v...)
	}
}
