// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

// Package llm provides streaming LLM access for analysis passes. Three
// providers are supported behind one interface: AWS Bedrock (ConverseStream),
// Google Gemini, and a local Ollama server. All of them deliver response
// text through a token channel so the console can render it as it arrives.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marcohald/GhidraGPT/pkg/types"
)

// Provider names accepted in configuration.
const (
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"
	ProviderOllama  = "ollama"
)

const (
	defaultTimeout   = 300 * time.Second
	defaultMaxTokens = 4096
	maxRetryAttempts = 3
	baseRetryDelay   = 1 * time.Second
)

// ErrLLMFailure indicates the provider call failed (network, auth, rate limit).
var ErrLLMFailure = errors.New("LLM failure")

// Config selects and configures a provider.
type Config struct {
	Provider  string        // bedrock, gemini, or ollama (default ollama)
	Model     string        // Provider model ID (required for bedrock and gemini)
	Region    string        // AWS region (bedrock only)
	Profile   string        // AWS credential profile (bedrock only, optional)
	APIKey    string        // API key (gemini only)
	BaseURL   string        // Server base URL (ollama only, default http://127.0.0.1:11434)
	Timeout   time.Duration // Per-request timeout (default 300s)
	MaxTokens int           // Max tokens for the response (default 4096)
}

func (c Config) timeout() time.Duration {
	if c.Timeout == 0 {
		return defaultTimeout
	}
	return c.Timeout
}

func (c Config) maxTokens() int {
	if c.MaxTokens == 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}

// Client is a streaming LLM provider. SendPrompt returns immediately with a
// token channel and a one-shot result channel: tokens arrive as the provider
// produces them, the token channel closes when the stream ends, and the
// result (full text, usage, or a terminal error) is delivered last.
type Client interface {
	SendPrompt(ctx context.Context, prompt string) (<-chan string, <-chan *types.StreamResponse)

	// CumulativeUsage returns the total token usage across all calls.
	CumulativeUsage() types.TokenUsage

	// Model returns the model identifier requests are sent to.
	Model() string

	// Close releases provider resources. Safe to call more than once.
	Close() error
}

// New creates a client for the configured provider. An empty provider name
// selects Ollama, which needs no credentials.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderBedrock:
		return newBedrockClient(ctx, cfg)
	case ProviderGemini:
		return newGeminiClient(ctx, cfg)
	case ProviderOllama, "":
		return newOllamaClient(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrLLMFailure, cfg.Provider)
	}
}
