// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

// Package suggest is the rename-suggestion engine: it parses free-form model
// output into rename directives, validates proposed names against C identifier
// rules, applies directives to a function's symbol set, and formats the
// outcome as a report.
package suggest

import (
	"regexp"
	"strings"

	"github.com/marcohald/GhidraGPT/pkg/types"
)

// directivePattern matches one suggestion line after trimming, in full:
//
//	oldName -> newName
//	oldName -> newName: reason to end of line
//
// The separator is exactly " -> ". Lines that do not conform are prose and
// fall through without comment.
var directivePattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*) -> ([A-Za-z_][A-Za-z0-9_]*)(?::(.*))?$`)

// Parse extracts rename directives from raw suggestion text. The text is
// split into lines; each trimmed line is tested against the directive grammar
// independently, so prose, headers and partial lines interleave freely with
// suggestions. A matching line only becomes a directive when its proposed
// name passes IsValidIdentifier; otherwise the line is dropped whole.
//
// The result preserves input order, keeps duplicate old names, and is empty —
// never an error — when nothing matches.
func Parse(responseText string) []types.RenameDirective {
	var directives []types.RenameDirective

	for _, line := range strings.Split(responseText, "\n") {
		m := directivePattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		newName := m[2]
		if !IsValidIdentifier(newName) {
			continue
		}

		directives = append(directives, types.RenameDirective{
			OldName: m[1],
			NewName: newName,
			Reason:  strings.TrimSpace(m[3]),
		})
	}

	return directives
}
