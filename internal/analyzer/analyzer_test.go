// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package analyzer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcohald/GhidraGPT/internal/console"
	gitpkg "github.com/marcohald/GhidraGPT/internal/git"
	"github.com/marcohald/GhidraGPT/internal/journal"
	"github.com/marcohald/GhidraGPT/internal/program"
	"github.com/marcohald/GhidraGPT/pkg/types"
)

// mockClient implements llm.Client with a canned response, delivered through
// the same two-channel contract the real providers use.
type mockClient struct {
	response string
	err      error
	usage    types.TokenUsage
	prompts  []string
}

func (m *mockClient) SendPrompt(_ context.Context, prompt string) (<-chan string, <-chan *types.StreamResponse) {
	m.prompts = append(m.prompts, prompt)

	tokenCh := make(chan string, 64)
	resultCh := make(chan *types.StreamResponse, 1)

	go func() {
		defer close(resultCh)
		defer close(tokenCh)

		if m.err != nil {
			resultCh <- &types.StreamResponse{Err: m.err}
			return
		}
		for _, line := range strings.SplitAfter(m.response, "\n") {
			if line != "" {
				tokenCh <- line
			}
		}
		m.usage.InputTokens += 500
		m.usage.OutputTokens += 200
		resultCh <- &types.StreamResponse{FullText: m.response, Usage: m.usage}
	}()

	return tokenCh, resultCh
}

func (m *mockClient) CumulativeUsage() types.TokenUsage { return m.usage }
func (m *mockClient) Model() string                     { return "mock-model" }
func (m *mockClient) Close() error                      { return nil }

const suggestionText = `param_1 -> inputPath: passed straight to fopen
param_2 -> flags
uVar1 -> bytesRead: accumulates fread returns
pcVar9 -> cursor: walks the buffer
`

func TestRunPass_AppliesSuggestions(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeSnapshot(t, dir)
	cons, out := newTestConsole()

	mock := &mockClient{response: suggestionText}
	runner := NewRunner(Deps{
		Client:   mock,
		Console:  cons,
		WorkDir:  dir,
		Provider: "bedrock",
		NoGit:    true,
	})

	result, err := runner.RunPass(context.Background(), PassInput{SnapshotPath: snapPath})
	require.NoError(t, err)

	assert.Equal(t, "process_input", result.Function)
	assert.Len(t, result.Directives, 4)
	assert.Equal(t, 3, result.Applied, "pcVar9 is not in the snapshot")
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, 700, result.Usage.Total())
	assert.Contains(t, result.Report, "GPT Suggestion Report for process_input")
	assert.Contains(t, result.Report, "Successfully applied: 3")

	// The prompt carried the function under analysis.
	require.Len(t, mock.prompts, 1)
	assert.Contains(t, mock.prompts[0], "process_input")

	// The snapshot on disk was rewritten with the new names.
	snap, err := program.LoadSnapshot(snapPath)
	require.NoError(t, err)
	assert.Equal(t, "inputPath", snap.Parameters[0].Name)
	assert.Equal(t, "DEFAULT", snap.Parameters[0].Source, "renames keep the existing name-source tag")
	assert.Equal(t, "char *", snap.Parameters[0].DataType)
	assert.Equal(t, "flags", snap.Parameters[1].Name)
	assert.Equal(t, "bytesRead", snap.Locals[0].Name)
	assert.Equal(t, "local_c", snap.Locals[1].Name)

	// The report artifact sits next to the snapshot.
	report, err := os.ReadFile(filepath.Join(dir, "process_input.report.txt"))
	require.NoError(t, err)
	assert.Equal(t, result.Report, string(report))

	// The console saw the whole lifecycle.
	transcript := out.String()
	assert.Contains(t, transcript, "Rename Variables Started")
	assert.Contains(t, transcript, "AI Response Stream")
	assert.Contains(t, transcript, "bytesRead")
	assert.Contains(t, transcript, "GPT Suggestion Report for process_input")
	assert.Contains(t, transcript, "3 of 4 suggestions applied")
}

func TestRunPass_PreSuppliedResponseSkipsLLM(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeSnapshot(t, dir)
	cons, _ := newTestConsole()

	runner := NewRunner(Deps{
		Console: cons,
		WorkDir: dir,
		NoGit:   true,
	})

	result, err := runner.RunPass(context.Background(), PassInput{
		SnapshotPath: snapPath,
		ResponseText: "uVar1 -> bytesRead: accumulator\n",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, types.TokenUsage{}, result.Usage, "no provider was consulted")
}

func TestRunPass_WritesToExplicitPaths(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeSnapshot(t, dir)
	cons, _ := newTestConsole()

	outPath := filepath.Join(dir, "renamed.yaml")
	reportPath := filepath.Join(dir, "custom-report.txt")

	runner := NewRunner(Deps{Console: cons, WorkDir: dir, NoGit: true})
	_, err := runner.RunPass(context.Background(), PassInput{
		SnapshotPath: snapPath,
		ResponseText: "param_1 -> inputPath\n",
		OutPath:      outPath,
		ReportPath:   reportPath,
	})
	require.NoError(t, err)

	// The updated snapshot went to the YAML destination only.
	updated, err := program.LoadSnapshot(outPath)
	require.NoError(t, err)
	assert.Equal(t, "inputPath", updated.Parameters[0].Name)

	original, err := program.LoadSnapshot(snapPath)
	require.NoError(t, err)
	assert.Equal(t, "param_1", original.Parameters[0].Name)

	report, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "GPT Suggestion Report")
	assert.NoFileExists(t, filepath.Join(dir, "process_input.report.txt"))
}

func TestRunPass_RejectionIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeSnapshot(t, dir)
	cons, out := newTestConsole()

	runner := NewRunner(Deps{Console: cons, WorkDir: dir, NoGit: true})
	result, err := runner.RunPass(context.Background(), PassInput{
		SnapshotPath: snapPath,
		// param_2 already exists, so the host refuses the first rename.
		ResponseText: "uVar1 -> param_2: collides\nlocal_c -> loopIndex\n",
	})
	require.NoError(t, err, "a rejected suggestion must not fail the pass")

	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Diagnostics, 1)
	assert.ErrorIs(t, result.Diagnostics[0], types.ErrDuplicateName)
	assert.Contains(t, out.String(), "could not apply suggestion: uVar1 -> param_2")
}

func TestRunPass_LLMFailure(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeSnapshot(t, dir)
	cons, out := newTestConsole()

	errModel := errors.New("model exploded")
	runner := NewRunner(Deps{
		Client:  &mockClient{err: errModel},
		Console: cons,
		WorkDir: dir,
		NoGit:   true,
	})

	_, err := runner.RunPass(context.Background(), PassInput{SnapshotPath: snapPath})
	assert.ErrorIs(t, err, errModel)
	assert.Contains(t, out.String(), "Rename Variables failed")
}

func TestRunPass_NoClientNoResponseText(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeSnapshot(t, dir)
	cons, _ := newTestConsole()

	runner := NewRunner(Deps{Console: cons, WorkDir: dir, NoGit: true})
	_, err := runner.RunPass(context.Background(), PassInput{SnapshotPath: snapPath})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no LLM client")
}

func TestRunPass_MissingSnapshot(t *testing.T) {
	dir := t.TempDir()
	cons, _ := newTestConsole()

	runner := NewRunner(Deps{Console: cons, WorkDir: dir, NoGit: true})
	_, err := runner.RunPass(context.Background(), PassInput{
		SnapshotPath: filepath.Join(dir, "missing.json"),
	})
	assert.Error(t, err)
}

func TestRunPass_ContextCancellation(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeSnapshot(t, dir)
	cons, _ := newTestConsole()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(Deps{Console: cons, WorkDir: dir, NoGit: true})
	_, err := runner.RunPass(ctx, PassInput{
		SnapshotPath: snapPath,
		ResponseText: "uVar1 -> bytesRead\n",
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunPass_JournalRecordsOutcome(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeSnapshot(t, dir)
	cons, _ := newTestConsole()

	j, err := journal.Open(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	runner := NewRunner(Deps{
		Console:  cons,
		Journal:  j,
		WorkDir:  dir,
		Provider: "ollama",
		NoGit:    true,
	})

	result, err := runner.RunPass(context.Background(), PassInput{
		SnapshotPath: snapPath,
		ResponseText: "uVar1 -> bytesRead: accumulator\npcVar9 -> cursor\n",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.PassID)

	passes, err := j.Recent(5)
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.Equal(t, result.PassID, passes[0].ID)
	assert.Equal(t, "process_input", passes[0].Function)
	assert.Equal(t, "ollama", passes[0].Provider)
	assert.Equal(t, 2, passes[0].Suggestions)
	assert.Equal(t, 1, passes[0].Applied)

	renames, err := j.Renames(result.PassID)
	require.NoError(t, err)
	require.Len(t, renames, 2)
	assert.Equal(t, "bytesRead", renames[0].NewName)
	assert.True(t, renames[0].Applied)
	assert.False(t, renames[1].Applied, "pcVar9 never existed, so its record is not applied")
}

func TestRunPass_CommitsArtifacts(t *testing.T) {
	dir := t.TempDir()
	_, err := gitpkg.Init(gitpkg.Config{WorkDir: dir})
	require.NoError(t, err)
	snapPath := writeSnapshot(t, dir)
	cons, _ := newTestConsole()

	runner := NewRunner(Deps{Console: cons, WorkDir: dir})
	result, err := runner.RunPass(context.Background(), PassInput{
		SnapshotPath: snapPath,
		ResponseText: suggestionText,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Applied)

	repo, err := gitpkg.Open(gitpkg.Config{WorkDir: dir})
	require.NoError(t, err)

	subject, err := repo.HeadSubject()
	require.NoError(t, err)
	assert.Equal(t, "ghidragpt: apply 3/4 rename suggestions to process_input", subject)

	toolCommit, err := repo.IsToolCommit()
	require.NoError(t, err)
	assert.True(t, toolCommit)

	dirty, err := repo.IsDirty()
	require.NoError(t, err)
	assert.False(t, dirty, "snapshot and report are both committed")
}

func TestSnapshotStem(t *testing.T) {
	assert.Equal(t, "/tmp/fn", snapshotStem("/tmp/fn.json"))
	assert.Equal(t, "/tmp/fn", snapshotStem("/tmp/fn.yaml"))
	assert.Equal(t, "plain", snapshotStem("plain"))
}

func TestRelativeTo(t *testing.T) {
	root := filepath.Join("/work", "proj")
	got := relativeTo(root,
		filepath.Join(root, "fn.json"),
		filepath.Join(root, "out", "fn.report.txt"),
		"/elsewhere/fn.json",
	)
	assert.Equal(t, []string{"fn.json", filepath.Join("out", "fn.report.txt")}, got)
}

// writeSnapshot drops a four-symbol function snapshot into dir and returns
// its path.
func writeSnapshot(t *testing.T, dir string) string {
	t.Helper()

	const snapshotJSON = `{
  "function": "process_input",
  "entry_point": "0x00401560",
  "signature": "int process_input(char *param_1, int param_2)",
  "decompiled": "int process_input(char *param_1, int param_2)\n{\n  uint uVar1;\n  int local_c;\n  return 0;\n}",
  "parameters": [
    {"name": "param_1", "data_type": "char *", "storage": "RDI"},
    {"name": "param_2", "data_type": "int", "storage": "ESI"}
  ],
  "locals": [
    {"name": "uVar1", "data_type": "uint", "storage": "Stack[-0x10]"},
    {"name": "local_c", "data_type": "int", "storage": "Stack[-0xc]"}
  ]
}`

	path := filepath.Join(dir, "process_input.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotJSON), 0o644))
	return path
}

func newTestConsole() (*console.Console, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return console.New(console.Config{Writer: buf, NoColor: true}), buf
}
