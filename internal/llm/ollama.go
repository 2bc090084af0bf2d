// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/marcohald/GhidraGPT/pkg/types"
)

const (
	defaultOllamaBaseURL = "http://127.0.0.1:11434"
	defaultOllamaModel   = "llama3.2"
)

// ollamaClient talks to a local Ollama server via /api/generate with
// stream=true. Responses arrive as newline-delimited JSON chunks.
type ollamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
	usage      types.TokenUsage
}

// ollamaChunk is one line of the /api/generate stream. The final chunk has
// done=true and carries the token counts.
type ollamaChunk struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func newOllamaClient(cfg Config) *ollamaClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	return &ollamaClient{
		httpClient: &http.Client{Timeout: cfg.timeout()},
		baseURL:    baseURL,
		model:      model,
	}
}

func (c *ollamaClient) SendPrompt(ctx context.Context, prompt string) (<-chan string, <-chan *types.StreamResponse) {
	tokenCh := make(chan string, 64)
	resultCh := make(chan *types.StreamResponse, 1)

	go func() {
		defer close(resultCh)

		response, err := c.generate(ctx, prompt, tokenCh)
		if err != nil {
			resultCh <- &types.StreamResponse{Err: err}
			return
		}

		c.usage.InputTokens += response.Usage.InputTokens
		c.usage.OutputTokens += response.Usage.OutputTokens

		resultCh <- response
	}()

	return tokenCh, resultCh
}

func (c *ollamaClient) CumulativeUsage() types.TokenUsage { return c.usage }

func (c *ollamaClient) Model() string { return c.model }

func (c *ollamaClient) Close() error { return nil }

// generate posts the prompt and forwards streamed chunks through tokenCh.
// tokenCh is closed before returning, whatever the outcome.
func (c *ollamaClient) generate(ctx context.Context, prompt string, tokenCh chan<- string) (*types.StreamResponse, error) {
	defer close(tokenCh)

	body := map[string]any{
		"model":  c.model,
		"system": systemPrompt,
		"prompt": prompt,
		"stream": true,
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrLLMFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: ollama request failed with status %d", ErrLLMFailure, resp.StatusCode)
	}

	var text strings.Builder
	response := &types.StreamResponse{}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk ollamaChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return nil, fmt.Errorf("%w: decoding stream chunk: %v", ErrLLMFailure, err)
		}

		if chunk.Response != "" {
			text.WriteString(chunk.Response)
			select {
			case tokenCh <- chunk.Response:
			case <-ctx.Done():
				response.FullText = text.String()
				response.Err = ctx.Err()
				return response, nil
			}
		}

		if chunk.Done {
			response.Usage.InputTokens = chunk.PromptEvalCount
			response.Usage.OutputTokens = chunk.EvalCount
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading stream: %v", ErrLLMFailure, err)
	}

	response.FullText = text.String()
	return response, nil
}
