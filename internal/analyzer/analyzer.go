// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

// Package analyzer implements the pass orchestrator, wiring all internal
// components to run one rename pass over an exported function snapshot.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/marcohald/GhidraGPT/internal/console"
	gitpkg "github.com/marcohald/GhidraGPT/internal/git"
	"github.com/marcohald/GhidraGPT/internal/journal"
	"github.com/marcohald/GhidraGPT/internal/llm"
	"github.com/marcohald/GhidraGPT/internal/program"
	"github.com/marcohald/GhidraGPT/internal/suggest"
	"github.com/marcohald/GhidraGPT/pkg/types"
)

// OpRename is the operation label shown in console banners and reports.
const OpRename = "Rename Variables"

// Deps holds injected dependencies for the runner.
type Deps struct {
	Client   llm.Client       // LLM provider; nil is allowed when passes supply response text
	Console  *console.Console // Output surface (required)
	Journal  *journal.Journal // Pass history; nil disables recording
	Logger   *zap.Logger      // nil falls back to a no-op logger
	WorkDir  string           // Directory holding snapshots, reports, and the git repo
	Provider string           // Provider name for the console banner
	NoGit    bool             // Skip git integration entirely
}

// PassInput describes one pass over one function snapshot.
type PassInput struct {
	SnapshotPath string // Exported function snapshot (required)
	ResponseText string // Pre-supplied suggestion text; empty means ask the LLM
	OutPath      string // Updated snapshot destination (default: overwrite SnapshotPath)
	ReportPath   string // Report destination (default: <snapshot stem>.report.txt)
}

// PassResult holds the outcome of a pass. Diagnostics are non-fatal: a pass
// that applied some directives and rejected others is still a success.
type PassResult struct {
	PassID      string
	Function    string
	Directives  []types.RenameDirective
	Applied     int
	Diagnostics []types.Diagnostic
	Report      string
	Usage       types.TokenUsage
	Retries     int
}

// Runner orchestrates the pass lifecycle.
type Runner struct {
	deps Deps
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(deps Deps) *Runner {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Runner{deps: deps}
}

// RunPass executes the full pass lifecycle: guard the work tree, load the
// snapshot, obtain suggestion text, parse, apply, report, persist, record,
// commit.
func (r *Runner) RunPass(ctx context.Context, in PassInput) (*PassResult, error) {
	result := &PassResult{}

	// Step 1: Handle git (analyst changes committed separately).
	var gitRepo *gitpkg.Repo
	if !r.deps.NoGit {
		repo, err := gitpkg.Open(gitpkg.Config{
			WorkDir:     r.deps.WorkDir,
			AutoCommit:  true,
			DirtyCommit: true,
		})
		if err == nil {
			gitRepo = repo
			if err := repo.HandleDirty(); err != nil {
				return result, fmt.Errorf("handling dirty files: %w", err)
			}
		} else {
			r.deps.Logger.Debug("git disabled for this pass", zap.Error(err))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	// Step 2: Load the snapshot and build the function model.
	snap, err := program.LoadSnapshot(in.SnapshotPath)
	if err != nil {
		return result, err
	}
	fn := snap.Model()
	result.Function = fn.Name()

	// Step 3: Obtain suggestion text, streaming it to the console when the
	// LLM is asked.
	responseText := in.ResponseText
	if responseText == "" {
		responseText, result.Retries, err = r.generate(ctx, fn)
		if err != nil {
			return result, err
		}
	}

	// Step 4: Parse rename directives.
	result.Directives = suggest.Parse(responseText)

	// Step 5: Apply them to the function model.
	applier := &suggest.Applier{Logger: r.deps.Logger}
	applyResult := applier.Apply(fn, result.Directives)
	result.Applied = applyResult.Applied
	result.Diagnostics = applyResult.Diagnostics

	for _, d := range applyResult.Diagnostics {
		r.deps.Console.AppendError(fn.Name(), d.Error())
	}

	// Step 6: Format and show the report.
	result.Report = suggest.FormatReport(fn.Name(), result.Directives, result.Applied)
	r.deps.Console.AppendAnalysisResult(fn.Name(), OpRename, result.Report)

	// Step 7: Write the updated snapshot.
	outPath := in.OutPath
	if outPath == "" {
		outPath = in.SnapshotPath
	}
	snap.UpdateFrom(fn)
	if err := program.SaveSnapshot(outPath, snap); err != nil {
		return result, err
	}

	// Step 8: Write the report artifact.
	reportPath := in.ReportPath
	if reportPath == "" {
		reportPath = snapshotStem(in.SnapshotPath) + ".report.txt"
	}
	if err := os.WriteFile(reportPath, []byte(result.Report), 0o644); err != nil {
		return result, fmt.Errorf("writing report: %w", err)
	}

	// Step 9: Record the pass in the journal.
	if r.deps.Journal != nil {
		records := make([]journal.RenameRecord, 0, len(result.Directives))
		for i, d := range result.Directives {
			records = append(records, journal.RenameRecord{
				OldName: d.OldName,
				NewName: d.NewName,
				Reason:  d.Reason,
				Applied: applyResult.Statuses[i] == suggest.StatusApplied,
			})
		}

		id, err := r.deps.Journal.Record(journal.PassRecord{
			Function:    fn.Name(),
			Provider:    r.deps.Provider,
			Model:       r.model(),
			Suggestions: len(result.Directives),
			Applied:     result.Applied,
		}, records)
		if err != nil {
			r.deps.Logger.Warn("journal write failed", zap.Error(err))
		} else {
			result.PassID = id
		}
	}

	// Step 10: Track token usage and commit the artifacts.
	if r.deps.Client != nil {
		result.Usage = r.deps.Client.CumulativeUsage()
	}

	if gitRepo != nil {
		files := relativeTo(r.deps.WorkDir, outPath, reportPath)
		subject := gitpkg.PassSubject(fn.Name(), result.Applied, len(result.Directives))
		if err := gitRepo.AutoCommit(files, subject); err != nil {
			r.deps.Logger.Warn("auto-commit failed", zap.Error(err))
		}
	}

	r.deps.Console.AppendMessage(fn.Name(),
		fmt.Sprintf("%d of %d suggestions applied", result.Applied, len(result.Directives)),
		console.MessageSuccess)

	return result, nil
}

// generate asks the configured provider for suggestions and renders the
// stream to the console as it arrives. The second return value is the number
// of rate-limit retries the provider performed.
func (r *Runner) generate(ctx context.Context, fn *program.Function) (string, int, error) {
	if r.deps.Client == nil {
		return "", 0, fmt.Errorf("no LLM client configured")
	}

	prompt, err := llm.RenderRenamePrompt(llm.TemplateData{
		FunctionName: fn.Name(),
		Signature:    fn.Signature(),
		Decompiled:   fn.Decompiled(),
	})
	if err != nil {
		return "", 0, err
	}

	r.deps.Console.AnalysisHeader(OpRename, fn.Name(), r.deps.Provider, r.model(), len(prompt))

	start := time.Now()
	tokenCh, resultCh := r.deps.Client.SendPrompt(ctx, prompt)

	streaming := false
	for token := range tokenCh {
		if !streaming {
			r.deps.Console.StreamHeader()
			streaming = true
		}
		r.deps.Console.StreamText(token)
	}

	resp := <-resultCh
	if resp == nil {
		err := fmt.Errorf("%w: no response", llm.ErrLLMFailure)
		r.deps.Console.StreamError(OpRename, err)
		return "", 0, err
	}
	if resp.Err != nil {
		r.deps.Console.StreamError(OpRename, resp.Err)
		return "", 0, resp.Err
	}

	r.deps.Console.StreamComplete(OpRename, time.Since(start), len(resp.FullText))
	return resp.FullText, resp.Retries, nil
}

func (r *Runner) model() string {
	if r.deps.Client == nil {
		return ""
	}
	return r.deps.Client.Model()
}

// snapshotStem strips the snapshot extension: /dir/fn.json becomes /dir/fn.
func snapshotStem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// relativeTo rewrites paths relative to the repo root for staging; paths
// outside the root are dropped from the commit.
func relativeTo(root string, paths ...string) []string {
	var out []string
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		out = append(out, rel)
	}
	return out
}
