// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCodeBlock_FencedC(t *testing.T) {
	response := "Here is the cleaned-up function:\n\n```c\nint main(void) {\n    return 0;\n}\n```\n\nThe braces were rebalanced."

	got := ExtractCodeBlock(response)

	assert.Equal(t, "int main(void) {\n    return 0;\n}", got)
}

func TestExtractCodeBlock_FencedPlain(t *testing.T) {
	response := "```\nvoid noop(void) {}\n```"

	assert.Equal(t, "void noop(void) {}", ExtractCodeBlock(response))
}

func TestExtractCodeBlock_FirstFenceWins(t *testing.T) {
	response := "```c\nfirst();\n```\ntext\n```c\nsecond();\n```"

	assert.Equal(t, "first();", ExtractCodeBlock(response))
}

func TestExtractCodeBlock_BraceHeuristic(t *testing.T) {
	response := `The improved version reads:

int clamp(int v) {
    if (v < 0) return 0;
    if (v > 255) return 255;
    return v;
}

This avoids the overflow in the original.`

	got := ExtractCodeBlock(response)

	assert.Contains(t, got, "int clamp(int v) {")
	assert.Contains(t, got, "return v;")
	assert.NotContains(t, got, "This avoids the overflow")
}

func TestExtractCodeBlock_StopsAtFirstBareCloser(t *testing.T) {
	// The heuristic is a text slice, not a parser: the first line that is
	// nothing but a closing brace ends the block, nested or not.
	response := "void outer(void) {\n    if (x) {\n        y();\n    }\n    z();\n}\n"

	got := ExtractCodeBlock(response)

	assert.Contains(t, got, "y();")
	assert.NotContains(t, got, "z();")
}

func TestExtractCodeBlock_NoCode(t *testing.T) {
	assert.Equal(t, "", ExtractCodeBlock("Nothing but prose in this answer."))
	assert.Equal(t, "", ExtractCodeBlock(""))
}
