// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package ghidragpt

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `{
  "function": "decode_header",
  "signature": "int decode_header(byte *param_1)",
  "parameters": [{"name": "param_1", "data_type": "byte *"}],
  "locals": [{"name": "uVar1", "data_type": "uint"}]
}`

func TestNew_InvalidWorkDir(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{WorkDir: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(Config{WorkDir: t.TempDir(), Provider: "openrouter"})
	assert.ErrorIs(t, err, ErrProviderInit)
}

func TestAnalyzer_PassWithSuppliedText(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "decode_header.json")
	require.NoError(t, os.WriteFile(snapPath, []byte(sampleSnapshot), 0o644))

	var out bytes.Buffer
	a, err := New(Config{
		WorkDir:     dir,
		JournalPath: filepath.Join(dir, "journal.db"),
		NoGit:       true,
		NoColor:     true,
		Out:         &out,
	})
	require.NoError(t, err)
	defer a.Close()

	result, err := a.RunPass(context.Background(), Pass{
		SnapshotPath: snapPath,
		ResponseText: "param_1 -> packet: raw input\nuVar1 -> magic\n",
	})
	require.NoError(t, err)

	assert.Equal(t, "decode_header", result.Function)
	assert.Equal(t, 2, result.Suggestions)
	assert.Equal(t, 2, result.Applied)
	assert.Zero(t, result.Rejected)
	assert.NotEmpty(t, result.PassID, "the journal recorded the pass")
	assert.Contains(t, result.Report, "GPT Suggestion Report for decode_header")
	assert.Contains(t, out.String(), "2 of 2 suggestions applied")
	assert.FileExists(t, filepath.Join(dir, "decode_header.report.txt"))
}

func TestAnalyzer_WatchBridge(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "decode_header.json")
	require.NoError(t, os.WriteFile(snapPath, []byte(sampleSnapshot), 0o644))

	a, err := New(Config{WorkDir: dir, NoGit: true, NoColor: true, Out: &bytes.Buffer{}})
	require.NoError(t, err)
	defer a.Close()

	// Drop the suggestion text before the bridge starts; the startup sweep
	// must pick it up.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "decode_header.suggestions.txt"),
		[]byte("uVar1 -> magic: header constant\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, dir) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "decode_header.report.txt"))
		return err == nil
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	updated, err := os.ReadFile(snapPath)
	require.NoError(t, err)
	assert.Contains(t, string(updated), "magic")
}
