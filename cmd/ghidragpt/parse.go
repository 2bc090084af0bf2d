// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcohald/GhidraGPT/internal/source"
	"github.com/marcohald/GhidraGPT/internal/suggest"
)

// newParseCmd creates the "parse" command.
func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Show the directives a suggestion text would produce",
		Long: "Parse extracts rename directives from suggestion text without touching any " +
			"snapshot. Useful for checking what an LLM response actually carries.",
		RunE: runParse,
	}

	cmd.Flags().StringP("response", "r", "", "Suggestion text file ('-' reads stdin)")

	return cmd
}

// runParse prints one accepted directive per line, nothing else.
func runParse(cmd *cobra.Command, args []string) error {
	responsePath, _ := cmd.Flags().GetString("response")

	text, err := source.ReadResponse(responsePath)
	if err != nil {
		return fmt.Errorf("acquiring suggestion text: %w", err)
	}

	for _, d := range suggest.Parse(text) {
		fmt.Println(d.String())
	}
	return nil
}
