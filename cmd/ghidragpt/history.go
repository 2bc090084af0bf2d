// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcohald/GhidraGPT/internal/journal"
)

// newHistoryCmd creates the "history" command.
func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [pass-id]",
		Short: "Show recent passes from the journal",
		Long: "History lists recent passes recorded in the journal. Given a pass ID, it " +
			"lists that pass's individual rename directives instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "n", 10, "Number of passes to show")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := journalPath()
	if path == "" {
		return fmt.Errorf("no journal configured; set --journal")
	}

	j, err := journal.Open(path)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer j.Close()

	if len(args) == 1 {
		return printRenames(j, args[0])
	}

	limit, _ := cmd.Flags().GetInt("limit")
	passes, err := j.Recent(limit)
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}
	if len(passes) == 0 {
		fmt.Println("No passes recorded yet.")
		return nil
	}

	for _, p := range passes {
		fmt.Printf("%s  %s  %s  %s/%s  applied %d/%d\n",
			p.ID,
			p.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			p.Function,
			p.Provider, p.Model,
			p.Applied, p.Suggestions)
	}
	return nil
}

func printRenames(j *journal.Journal, passID string) error {
	renames, err := j.Renames(passID)
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}
	if len(renames) == 0 {
		fmt.Printf("No renames recorded for pass %s.\n", passID)
		return nil
	}

	for _, r := range renames {
		mark := " "
		if r.Applied {
			mark = "*"
		}
		line := fmt.Sprintf("%s %s -> %s", mark, r.OldName, r.NewName)
		if r.Reason != "" {
			line += ": " + r.Reason
		}
		fmt.Println(line)
	}
	return nil
}
