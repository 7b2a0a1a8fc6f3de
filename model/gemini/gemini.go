// Copyright 2025 The minesweeper-ai-benchmark Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gemini plays and judges games through the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation/judge"
)

const (
	moveFunctionName = "make_move"

	defaultMaxAttempts    = 3
	defaultInitialBackoff = 500 * time.Millisecond
)

// Model is a Gemini-backed player. It also implements the judge's
// text-generation surface with a pinned near-zero temperature.
type Model struct {
	client *genai.Client
	name   string

	// judgeTemperature applies to Generate calls only.
	judgeTemperature float32

	maxAttempts    int
	initialBackoff time.Duration
}

// NewModel creates a client for the named Gemini model.
func NewModel(ctx context.Context, model string, cfg *genai.ClientConfig) (*Model, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Model{
		client:           client,
		name:             model,
		judgeTemperature: 0.1,
		maxAttempts:      defaultMaxAttempts,
		initialBackoff:   defaultInitialBackoff,
	}, nil
}

func (m *Model) Name() string {
	return m.name
}

// GetMove asks the model for its next move. The move schema is offered as a
// function declaration; a structured call is the primary path and free text
// is returned for the caller's fallback parser.
func (m *Model) GetMove(ctx context.Context, req *benchmark.MoveRequest) (*benchmark.MoveResponse, error) {
	config := &genai.GenerateContentConfig{}
	if req.MoveSchema != nil {
		config.Tools = []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:                 moveFunctionName,
				Description:          "Submit the chosen move.",
				ParametersJsonSchema: req.MoveSchema,
			}},
		}}
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	resp, err := m.generateWithRetry(ctx, contents, config)
	if err != nil {
		return nil, err
	}

	out := &benchmark.MoveResponse{}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &benchmark.InvalidResponseError{Reason: "empty candidate"}
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil && part.FunctionCall.Name == moveFunctionName {
			args := part.FunctionCall.Args
			if action, ok := args["action"].(string); ok {
				out.Action = action
			}
			out.Parameters = args
			continue
		}
		if part.Text != "" {
			if out.RawText != "" {
				out.RawText += "\n"
			}
			out.RawText += part.Text
		}
	}
	if out.Reasoning == "" {
		out.Reasoning = out.RawText
	}
	return out, nil
}

// Generate produces free text for judge prompts.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(m.judgeTemperature),
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := m.generateWithRetry(ctx, contents, config)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

// generateWithRetry retries provider failures with exponential backoff up to
// maxAttempts, then surfaces an APIError. Context cancellation and deadline
// expiry are never retried so per-move timeouts stay sharp.
func (m *Model) generateWithRetry(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var lastErr error
	backoff := m.initialBackoff
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		resp, err := m.client.Models.GenerateContent(ctx, m.name, contents, config)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == m.maxAttempts {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, &benchmark.APIError{Provider: "gemini", Attempts: m.maxAttempts, Err: lastErr}
}

var (
	_ benchmark.Model = (*Model)(nil)
	_ judge.Model     = (*Model)(nil)
)
