// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/marcohald/GhidraGPT/pkg/types"
)

// geminiClient calls the Google Gemini API. The API is request/response, so
// the whole answer arrives as a single token on the stream channel.
type geminiClient struct {
	client    *genai.Client
	model     string
	timeout   time.Duration
	maxTokens int
	usage     types.TokenUsage
}

func newGeminiClient(ctx context.Context, cfg Config) (*geminiClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model ID is required", ErrLLMFailure)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required for gemini", ErrLLMFailure)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating gemini client: %v", ErrLLMFailure, err)
	}

	return &geminiClient{
		client:    client,
		model:     cfg.Model,
		timeout:   cfg.timeout(),
		maxTokens: cfg.maxTokens(),
	}, nil
}

func (c *geminiClient) SendPrompt(ctx context.Context, prompt string) (<-chan string, <-chan *types.StreamResponse) {
	tokenCh := make(chan string, 64)
	resultCh := make(chan *types.StreamResponse, 1)

	go func() {
		defer close(resultCh)
		defer close(tokenCh)

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		contents := []*genai.Content{
			genai.NewContentFromText(prompt, genai.RoleUser),
		}
		config := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			MaxOutputTokens:   int32(c.maxTokens),
		}

		resp, err := c.client.Models.GenerateContent(callCtx, c.model, contents, config)
		if err != nil {
			resultCh <- &types.StreamResponse{Err: fmt.Errorf("%w: %v", ErrLLMFailure, err)}
			return
		}

		// One-shot delivery: the buffered channel always has room for it.
		text := resp.Text()
		if text != "" {
			tokenCh <- text
		}

		response := &types.StreamResponse{FullText: text}
		if resp.UsageMetadata != nil {
			response.Usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
			response.Usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		}

		c.usage.InputTokens += response.Usage.InputTokens
		c.usage.OutputTokens += response.Usage.OutputTokens

		resultCh <- response
	}()

	return tokenCh, resultCh
}

func (c *geminiClient) CumulativeUsage() types.TokenUsage { return c.usage }

func (c *geminiClient) Model() string { return c.model }

// Close is a no-op: the genai client holds no connection of its own.
func (c *geminiClient) Close() error { return nil }
