// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package ghidragpt

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/marcohald/GhidraGPT/internal/analyzer"
	"github.com/marcohald/GhidraGPT/internal/console"
	"github.com/marcohald/GhidraGPT/internal/journal"
	"github.com/marcohald/GhidraGPT/internal/llm"
	"github.com/marcohald/GhidraGPT/internal/watch"
)

const (
	defaultMaxTokens  = 4096
	defaultLLMTimeout = 5 * time.Minute
)

// New validates the config, initializes the provider client and journal, and
// returns a ready-to-use Analyzer. The default provider is Ollama, which
// needs no credentials, so construction stays offline until a pass actually
// asks for suggestions.
func New(cfg Config) (Analyzer, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	client, err := llm.New(context.Background(), llm.Config{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		Region:    cfg.Region,
		Profile:   cfg.Profile,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   defaultLLMTimeout,
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderInit, err)
	}

	var j *journal.Journal
	if cfg.JournalPath != "" {
		j, err = journal.Open(cfg.JournalPath)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("opening journal: %w", err)
		}
	}

	cons := console.New(console.Config{Writer: cfg.Out, NoColor: cfg.NoColor})

	runner := analyzer.NewRunner(analyzer.Deps{
		Client:   client,
		Console:  cons,
		Journal:  j,
		Logger:   logger,
		WorkDir:  cfg.WorkDir,
		Provider: cfg.Provider,
		NoGit:    cfg.NoGit,
	})

	return &analyzerAdapter{
		runner:  runner,
		client:  client,
		journal: j,
		logger:  logger,
	}, nil
}

// analyzerAdapter adapts internal/analyzer.Runner to the public Analyzer
// interface.
type analyzerAdapter struct {
	runner  *analyzer.Runner
	client  llm.Client
	journal *journal.Journal
	logger  *zap.Logger
}

func (a *analyzerAdapter) RunPass(ctx context.Context, pass Pass) (*Result, error) {
	ir, err := a.runner.RunPass(ctx, analyzer.PassInput{
		SnapshotPath: pass.SnapshotPath,
		ResponseText: pass.ResponseText,
		OutPath:      pass.OutPath,
		ReportPath:   pass.ReportPath,
	})
	if ir == nil {
		return &Result{}, err
	}
	return &Result{
		PassID:      ir.PassID,
		Function:    ir.Function,
		Suggestions: len(ir.Directives),
		Applied:     ir.Applied,
		Rejected:    len(ir.Diagnostics),
		Report:      ir.Report,
		TokensUsed:  ir.Usage,
		Retries:     ir.Retries,
	}, err
}

func (a *analyzerAdapter) Watch(ctx context.Context, dir string) error {
	w, err := watch.New(watch.Config{Dir: dir, Logger: a.logger},
		func(ctx context.Context, snapshotPath, responseText string) error {
			_, err := a.runner.RunPass(ctx, analyzer.PassInput{
				SnapshotPath: snapshotPath,
				ResponseText: responseText,
			})
			return err
		})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func (a *analyzerAdapter) Close() error {
	var firstErr error
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			firstErr = err
		}
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return firstErr
}

// validateConfig checks that required fields are present.
func validateConfig(cfg Config) error {
	if cfg.WorkDir == "" {
		return fmt.Errorf("WorkDir is required")
	}
	if info, err := os.Stat(cfg.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("WorkDir %q does not exist or is not a directory", cfg.WorkDir)
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Provider == "" {
		cfg.Provider = llm.ProviderOllama
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
}

// newLogger builds a production logger, raised to debug level when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	if verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return logCfg.Build()
}
