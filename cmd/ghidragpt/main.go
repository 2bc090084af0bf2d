// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

// Command ghidragpt runs LLM rename passes over decompiled function
// snapshots exported from a reverse engineering host.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marcohald/GhidraGPT/pkg/ghidragpt"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "ghidragpt",
		Short: "AI-assisted variable renaming for decompiled functions",
		Long:  "ghidragpt takes an exported function snapshot, asks an LLM for better variable names, and writes the accepted renames back into the snapshot.",
	}

	// Global flags.
	rootCmd.PersistentFlags().String("workdir", ".", "Directory holding snapshots and pass artifacts")
	rootCmd.PersistentFlags().String("provider", "", "LLM provider: bedrock, gemini, or ollama (default ollama)")
	rootCmd.PersistentFlags().String("model", "", "Model ID (provider default when empty)")
	rootCmd.PersistentFlags().String("region", "", "AWS region for Bedrock")
	rootCmd.PersistentFlags().String("profile", "", "AWS shared-config profile for Bedrock")
	rootCmd.PersistentFlags().String("api-key", "", "API key for Gemini")
	rootCmd.PersistentFlags().String("base-url", "", "Server base URL for Ollama")
	rootCmd.PersistentFlags().Int("max-tokens", 4096, "Maximum tokens for LLM response")
	rootCmd.PersistentFlags().String("journal", filepath.Join(".ghidragpt", "journal.db"), "Pass journal database (empty disables recording)")
	rootCmd.PersistentFlags().Bool("no-git", false, "Disable git versioning of pass artifacts")
	rootCmd.PersistentFlags().Bool("no-color", false, "Plain console output")
	rootCmd.PersistentFlags().Bool("verbose", false, "Debug-level logging")

	// Bind flags to viper.
	viper.BindPFlag("workdir", rootCmd.PersistentFlags().Lookup("workdir"))
	viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	viper.BindPFlag("api-key", rootCmd.PersistentFlags().Lookup("api-key"))
	viper.BindPFlag("base-url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("max-tokens", rootCmd.PersistentFlags().Lookup("max-tokens"))
	viper.BindPFlag("journal", rootCmd.PersistentFlags().Lookup("journal"))
	viper.BindPFlag("no-git", rootCmd.PersistentFlags().Lookup("no-git"))
	viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Env vars: GHIDRAGPT_PROVIDER, GHIDRAGPT_MODEL, etc.
	viper.SetEnvPrefix("GHIDRAGPT")
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".ghidragpt")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print ghidragpt version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ghidragpt %s\n", version)
		},
	}
}

// configFromViper assembles the engine config from flags, env, and file.
func configFromViper() ghidragpt.Config {
	return ghidragpt.Config{
		WorkDir:     viper.GetString("workdir"),
		Provider:    viper.GetString("provider"),
		Model:       viper.GetString("model"),
		Region:      viper.GetString("region"),
		Profile:     viper.GetString("profile"),
		APIKey:      viper.GetString("api-key"),
		BaseURL:     viper.GetString("base-url"),
		MaxTokens:   viper.GetInt("max-tokens"),
		JournalPath: journalPath(),
		NoGit:       viper.GetBool("no-git"),
		NoColor:     viper.GetBool("no-color"),
		Verbose:     viper.GetBool("verbose"),
	}
}

// journalPath resolves the journal location relative to the work directory.
// An empty --journal disables recording.
func journalPath() string {
	path := viper.GetString("journal")
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(viper.GetString("workdir"), path)
}
