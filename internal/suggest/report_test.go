// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package suggest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marcohald/GhidraGPT/pkg/types"
)

func TestFormatReport_WithReasons(t *testing.T) {
	directives := []types.RenameDirective{
		{OldName: "uVar1", NewName: "byteCount", Reason: "tracks bytes consumed"},
		{OldName: "param_1", NewName: "inputPath"},
	}

	got := FormatReport("process_input", directives, 2)

	want := "GPT Suggestion Report for process_input\n" +
		strings.Repeat("=", 50) + "\n" +
		"Total suggestions: 2\n" +
		"Successfully applied: 2\n" +
		"\n" +
		"• uVar1 → byteCount (tracks bytes consumed)\n" +
		"• param_1 → inputPath\n"
	assert.Equal(t, want, got)
}

func TestFormatReport_PartialApply(t *testing.T) {
	directives := []types.RenameDirective{
		{OldName: "a", NewName: "x"},
		{OldName: "gone", NewName: "y"},
	}

	got := FormatReport("FUN_00401560", directives, 1)

	assert.Contains(t, got, "Total suggestions: 2\n")
	assert.Contains(t, got, "Successfully applied: 1\n")
	assert.Contains(t, got, "• gone → y\n", "unapplied directives are still listed")
}

func TestFormatReport_NoDirectives(t *testing.T) {
	got := FormatReport("empty_fn", nil, 0)

	assert.Contains(t, got, "GPT Suggestion Report for empty_fn\n")
	assert.Contains(t, got, "Total suggestions: 0\n")
	assert.Contains(t, got, "Successfully applied: 0\n")
	assert.False(t, strings.Contains(got, "•"), "no bullet lines for an empty batch")
}
