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

/*
Package taint implements the front-end to the graft taint tool which builds the code property graph of a program and
runs the taint tracking problems of the config file on it.

Usage:

	graft taint [flags] --config config.yaml program.yaml

The flags are:

	--config path      a path to the configuration file containing definitions for sinks and sources

	--verbose          setting verbose mode, overrides config file options if set

	--max-paths n      override the maximum number of paths enumerated per source and sink

	--yaml path        write the vulnerabilities and statistics in YAML to path ("-" for the standard output)

	--db path          write the graph and the vulnerabilities to a SQLite database
*/
package taint
