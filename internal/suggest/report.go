// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package suggest

import (
	"fmt"
	"strings"

	"github.com/marcohald/GhidraGPT/pkg/types"
)

const reportSeparatorWidth = 50

// FormatReport renders the outcome of a pass as human-readable text. It is a
// pure echo of the directive sequence and count it is given: nothing is
// re-derived or re-validated here.
func FormatReport(functionName string, directives []types.RenameDirective, applied int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "GPT Suggestion Report for %s\n", functionName)
	b.WriteString(strings.Repeat("=", reportSeparatorWidth))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Total suggestions: %d\n", len(directives))
	fmt.Fprintf(&b, "Successfully applied: %d\n\n", applied)

	for _, d := range directives {
		fmt.Fprintf(&b, "• %s → %s", d.OldName, d.NewName)
		if d.Reason != "" {
			fmt.Fprintf(&b, " (%s)", d.Reason)
		}
		b.WriteByte('\n')
	}

	return b.String()
}
