// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"fmt"
	"strings"
)

const maxSubjectLength = 72

// BuildMessage assembles a full commit message: the subject line (truncated
// to 72 characters), a body listing the committed files, and the tool
// trailer that marks the commit as undoable.
func BuildMessage(subject string, files []string) string {
	subject = strings.TrimSpace(subject)
	if len(subject) > maxSubjectLength {
		subject = subject[:maxSubjectLength-3] + "..."
	}

	msg := subject
	if body := buildBody(files); body != "" {
		msg += "\n\n" + body
	}
	msg += "\n\n" + toolTrailer

	return msg
}

// PassSubject formats the subject line for a completed pass.
func PassSubject(functionName string, applied, total int) string {
	return fmt.Sprintf("ghidragpt: apply %d/%d rename suggestions to %s", applied, total, functionName)
}

func buildBody(files []string) string {
	if len(files) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString("Updated files:\n")
	for _, f := range files {
		buf.WriteString(fmt.Sprintf("- %s\n", f))
	}
	return buf.String()
}
