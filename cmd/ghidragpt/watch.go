// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marcohald/GhidraGPT/pkg/ghidragpt"
)

// newWatchCmd creates the "watch" command.
func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the exchange-directory bridge",
		Long: "Watch runs a pass whenever the host drops <name>.suggestions.txt next to an " +
			"exported snapshot in the exchange directory. Intended for GUI hosts that cannot " +
			"invoke the CLI per pass.",
		RunE: runWatch,
	}

	cmd.Flags().StringP("dir", "d", "", "Exchange directory (default: workdir)")

	return cmd
}

// runWatch blocks until interrupted.
func runWatch(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = viper.GetString("workdir")
	}

	a, err := ghidragpt.New(configFromViper())
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fmt.Printf("Watching %s for suggestion drops. Ctrl-C to stop.\n", dir)
	return a.Watch(ctx, dir)
}
