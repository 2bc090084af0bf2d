// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	gitpkg "github.com/marcohald/GhidraGPT/internal/git"
	"github.com/marcohald/GhidraGPT/internal/source"
	"github.com/marcohald/GhidraGPT/pkg/ghidragpt"
)

// newRenameCmd creates the "rename" command.
func newRenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Run one rename pass over a function snapshot",
		Long: "Rename applies LLM variable-name suggestions to an exported function snapshot. " +
			"With --generate the configured provider is asked for suggestions; otherwise the " +
			"suggestion text comes from --response, a stdin pipe, or the clipboard.",
		RunE: runRename,
	}

	cmd.Flags().StringP("snapshot", "s", "", "Exported function snapshot (required)")
	cmd.MarkFlagRequired("snapshot")
	cmd.Flags().StringP("response", "r", "", "Suggestion text file ('-' reads stdin)")
	cmd.Flags().BoolP("generate", "g", false, "Ask the configured provider for suggestions")
	cmd.Flags().StringP("out", "o", "", "Updated snapshot destination (default: in place)")
	cmd.Flags().String("report", "", "Report destination (default: <snapshot stem>.report.txt)")
	cmd.Flags().Bool("json", false, "Print the pass result as JSON")

	return cmd
}

// runRename executes one pass.
func runRename(cmd *cobra.Command, args []string) error {
	snapshotPath, _ := cmd.Flags().GetString("snapshot")
	responsePath, _ := cmd.Flags().GetString("response")
	generate, _ := cmd.Flags().GetBool("generate")
	outPath, _ := cmd.Flags().GetString("out")
	reportPath, _ := cmd.Flags().GetString("report")
	asJSON, _ := cmd.Flags().GetBool("json")

	var responseText string
	if !generate {
		text, err := source.ReadResponse(responsePath)
		if err != nil {
			return fmt.Errorf("acquiring suggestion text: %w", err)
		}
		responseText = text
	}

	a, err := ghidragpt.New(configFromViper())
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := a.RunPass(ctx, ghidragpt.Pass{
		SnapshotPath: snapshotPath,
		ResponseText: responseText,
		OutPath:      outPath,
		ReportPath:   reportPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	if asJSON {
		printResult(result)
	}
	return nil
}

// printResult outputs the result as JSON to stdout.
func printResult(result *ghidragpt.Result) {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling result: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

// newUndoCmd creates the "undo" command.
func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last ghidragpt commit",
		Long:  "Undo performs a soft reset of the last commit if it was made by ghidragpt.",
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir := viper.GetString("workdir")

			repo, err := gitpkg.Open(gitpkg.Config{WorkDir: workDir})
			if err != nil {
				return fmt.Errorf("opening repository: %w", err)
			}

			if err := repo.Undo(); err != nil {
				return fmt.Errorf("undo failed: %w", err)
			}

			fmt.Println("Successfully reverted last ghidragpt commit.")
			return nil
		},
	}
}
