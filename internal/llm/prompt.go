// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// systemPrompt frames every request. Providers send it through their native
// system-message mechanism.
const systemPrompt = "You are a reverse engineering assistant. You analyze " +
	"decompiled C code from binary analysis and answer precisely in the " +
	"format the user asks for, with no extra commentary."

// TemplateData holds the values injected into the rename prompt template.
type TemplateData struct {
	FunctionName string // Display name of the function under analysis
	Signature    string // Prototype string, may be empty
	Decompiled   string // Decompiler output for the function body
}

// RenderRenamePrompt renders the variable-renaming prompt for one function.
func RenderRenamePrompt(data TemplateData) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/rename.tmpl")
	if err != nil {
		return "", fmt.Errorf("parsing rename template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing rename template: %w", err)
	}

	return buf.String(), nil
}
