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

package formatutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeEscapesControlSequences(t *testing.T) {
	assert.Equal(t, `x = \"a\"`, Sanitize(`x = "a"`))
	assert.Equal(t, `\x1b[31mred`, Sanitize("\033[31mred"))
	assert.Equal(t, `line\nbreak`, Sanitize("line\nbreak"))
	assert.Equal(t, "✓", Sanitize("✓"))
}

func TestColorWithoutTerminal(t *testing.T) {
	// tests do not run with a terminal on the standard output
	colorEnabled = false
	assert.Equal(t, "sink(x)", Red("sink(x)"))
	assert.Equal(t, "a1", Green("a", 1))
}
