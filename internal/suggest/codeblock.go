// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package suggest

import (
	"regexp"
	"strings"
)

// fencedBlockPattern captures the body of the first ``` or ```c fenced block.
var fencedBlockPattern = regexp.MustCompile("(?s)```(?:c)?[ \t]*\n(.*?)\n```")

// definitionPattern marks a line shaped like a C definition or call:
// an identifier followed by an opening parenthesis.
var definitionPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\s*\(.*`)

// ExtractCodeBlock slices what looks like code out of a response. A fenced
// block wins when present; otherwise lines are accumulated from the first
// C-like opener (a brace, or a definition/call shape) through a bare closing
// brace. This is a best-effort text slice, not a parser: callers get whatever
// the heuristic finds, possibly empty.
func ExtractCodeBlock(responseText string) string {
	if m := fencedBlockPattern.FindStringSubmatch(responseText); m != nil {
		return m[1]
	}

	var b strings.Builder
	inCode := false

	for _, line := range strings.Split(responseText, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.Contains(trimmed, "{") || definitionPattern.MatchString(trimmed) {
			inCode = true
		}

		if inCode {
			b.WriteString(line)
			b.WriteByte('\n')
		}

		if inCode && trimmed == "}" {
			break
		}
	}

	return b.String()
}
