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

package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
)

// fakeResponse builds the JSON body the Gemini API returns for one candidate
// made of the given parts.
func fakeResponse(parts ...map[string]any) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"role": "model", "parts": parts}},
		},
		"usageMetadata": map[string]any{"totalTokenCount": 42},
	}
}

func textPart(text string) map[string]any {
	return map[string]any{"text": text}
}

func functionCallPart(name string, args map[string]any) map[string]any {
	return map[string]any{"functionCall": map[string]any{"name": name, "args": args}}
}

// newTestModel points a Model at a fake API server and shrinks the retry
// backoff so failure tests stay fast.
func newTestModel(t *testing.T, handler http.HandlerFunc) *Model {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m, err := NewModel(context.Background(), "gemini-test", &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: server.URL},
	})
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	m.initialBackoff = time.Millisecond
	return m
}

func respondJSON(t *testing.T, w http.ResponseWriter, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func moveSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"action": {Type: "string", Enum: []any{"reveal", "flag"}},
			"row":    {Type: "integer"},
			"col":    {Type: "integer"},
		},
		Required: []string{"action", "row", "col"},
	}
}

func TestGetMove_FunctionCall(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, fakeResponse(
			textPart("The 3 at B2 is fully satisfied, so C3 must be safe."),
			functionCallPart("make_move", map[string]any{
				"action": "reveal",
				"row":    float64(2),
				"col":    float64(3),
			}),
		))
	})

	resp, err := m.GetMove(context.Background(), &benchmark.MoveRequest{
		Prompt:     "board...\nchoose a move",
		MoveSchema: moveSchema(),
	})
	if err != nil {
		t.Fatalf("GetMove() error = %v", err)
	}
	if resp.Action != "reveal" {
		t.Errorf("Action = %q, want %q", resp.Action, "reveal")
	}
	wantParams := map[string]any{"action": "reveal", "row": float64(2), "col": float64(3)}
	if diff := cmp.Diff(wantParams, resp.Parameters); diff != "" {
		t.Errorf("Parameters mismatch (-want +got):\n%s", diff)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42", resp.TokensUsed)
	}
	if resp.Reasoning == "" {
		t.Error("Reasoning is empty, want text part carried over")
	}
}

func TestGetMove_TextOnlyFallback(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, fakeResponse(textPart("I would reveal (2, 3).")))
	})

	resp, err := m.GetMove(context.Background(), &benchmark.MoveRequest{Prompt: "board"})
	if err != nil {
		t.Fatalf("GetMove() error = %v", err)
	}
	if resp.Action != "" {
		t.Errorf("Action = %q, want empty for text-only response", resp.Action)
	}
	if resp.RawText != "I would reveal (2, 3)." {
		t.Errorf("RawText = %q", resp.RawText)
	}
}

func TestGetMove_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"error":{"code":503,"message":"overloaded"}}`, http.StatusServiceUnavailable)
			return
		}
		respondJSON(t, w, fakeResponse(functionCallPart("make_move", map[string]any{"action": "flag"})))
	})

	resp, err := m.GetMove(context.Background(), &benchmark.MoveRequest{Prompt: "board"})
	if err != nil {
		t.Fatalf("GetMove() error = %v", err)
	}
	if resp.Action != "flag" {
		t.Errorf("Action = %q, want %q", resp.Action, "flag")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestGetMove_ExhaustedRetriesWrapsAPIError(t *testing.T) {
	var calls atomic.Int64
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	})

	_, err := m.GetMove(context.Background(), &benchmark.MoveRequest{Prompt: "board"})
	var apiErr *benchmark.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("GetMove() error = %v, want *benchmark.APIError", err)
	}
	if apiErr.Provider != "gemini" {
		t.Errorf("Provider = %q, want %q", apiErr.Provider, "gemini")
	}
	if apiErr.Attempts != defaultMaxAttempts {
		t.Errorf("Attempts = %d, want %d", apiErr.Attempts, defaultMaxAttempts)
	}
	if got := calls.Load(); got != int64(defaultMaxAttempts) {
		t.Errorf("server calls = %d, want %d", got, defaultMaxAttempts)
	}
}

func TestGetMove_CanceledContextNotRetried(t *testing.T) {
	var calls atomic.Int64
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.GetMove(ctx, &benchmark.MoveRequest{Prompt: "board"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("GetMove() error = %v, want context.Canceled", err)
	}
	if got := calls.Load(); got > 1 {
		t.Errorf("server calls = %d, want at most 1", got)
	}
}

func TestGenerate_ReturnsText(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, fakeResponse(textPart("SCORE: 2\nFEEDBACK: Sound deduction.")))
	})

	text, err := m.Generate(context.Background(), "judge this move")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "SCORE: 2\nFEEDBACK: Sound deduction." {
		t.Errorf("Generate() = %q", text)
	}
}

func TestName(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {})
	if got := m.Name(); got != "gemini-test" {
		t.Errorf("Name() = %q, want %q", got, "gemini-test")
	}
}
