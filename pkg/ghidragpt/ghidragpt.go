// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ghidragpt defines the public interface for GhidraGPT, an
// LLM-assisted variable rename engine for decompiled function snapshots.
package ghidragpt

import (
	"context"
	"errors"
	"io"

	"github.com/marcohald/GhidraGPT/pkg/types"
)

// Error types for the Analyzer API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrProviderInit  = errors.New("provider initialization failed")
)

// Config configures an Analyzer instance.
type Config struct {
	WorkDir     string    // Directory holding snapshots and pass artifacts (required)
	Provider    string    // LLM provider: bedrock, gemini, or ollama (default ollama)
	Model       string    // Model ID (provider default when empty)
	Region      string    // AWS region (bedrock)
	Profile     string    // AWS shared-config profile (bedrock)
	APIKey      string    // API key (gemini)
	BaseURL     string    // Server base URL (ollama)
	MaxTokens   int       // Response token cap (default 4096)
	JournalPath string    // Pass journal database (empty = no journal)
	NoGit       bool      // Disable git versioning of pass artifacts
	NoColor     bool      // Plain console output
	Verbose     bool      // Debug-level logging
	Out         io.Writer // Console destination (default os.Stdout)
}

// Pass selects the snapshot and response source for one rename pass.
type Pass struct {
	SnapshotPath string // Exported function snapshot (required)
	ResponseText string // Pre-acquired suggestion text; empty asks the provider
	OutPath      string // Updated snapshot destination (default: in place)
	ReportPath   string // Report destination (default: <snapshot stem>.report.txt)
}

// Result holds the outcome of one pass.
type Result struct {
	PassID      string           // Journal entry ID; empty without a journal
	Function    string           // Function under analysis
	Suggestions int              // Directives parsed from the response
	Applied     int              // Directives the host accepted
	Rejected    int              // Directives the host refused
	Report      string           // Formatted suggestion report
	TokensUsed  types.TokenUsage // Cumulative provider token usage
	Retries     int              // Rate-limit retries the provider performed
}

// Analyzer runs rename passes over exported function snapshots.
type Analyzer interface {
	// RunPass executes one full pass: acquire suggestion text, parse it into
	// directives, apply them to the function model, write the report and the
	// updated snapshot, record the pass, and commit the artifacts.
	RunPass(ctx context.Context, pass Pass) (*Result, error)

	// Watch runs the exchange-directory bridge until the context is
	// cancelled: every settled <stem>.suggestions.txt in dir triggers a pass
	// against its paired snapshot.
	Watch(ctx context.Context, dir string) error

	// Close releases the provider client and the journal.
	Close() error
}
