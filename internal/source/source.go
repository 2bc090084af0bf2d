// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

// Package source acquires suggestion text for a pass: from a file, from
// piped stdin, or from the system clipboard when nothing else is offered.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrEmptySource means every consulted source produced no usable text.
var ErrEmptySource = errors.New("no suggestion text")

// ReadResponse loads the LLM response text to run a pass against. An
// explicit path wins ("-" reads stdin); otherwise piped stdin is used, and
// an interactive terminal falls back to the clipboard. A UTF-8 BOM is
// stripped so files exported from Windows tools parse cleanly.
func ReadResponse(path string) (string, error) {
	switch {
	case path == "-":
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return normalize(string(content))

	case path != "":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading response file: %w", err)
		}
		return normalize(string(content))
	}

	stat, _ := os.Stdin.Stat()
	if stat != nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return normalize(string(content))
	}

	content, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("reading clipboard: %w", err)
	}
	return normalize(content)
}

func normalize(content string) (string, error) {
	content = strings.TrimPrefix(content, "\uFEFF")
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptySource
	}
	return content, nil
}
