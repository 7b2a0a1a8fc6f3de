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

package runner

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
)

func TestParse_StructuredCallWinsOverText(t *testing.T) {
	p := newResponseParser()
	resp := &benchmark.MoveResponse{
		Action:     "flag",
		Parameters: map[string]any{"row": float64(2), "col": float64(3)},
		RawText:    "reveal (9, 9)", // must be ignored
	}

	action, err := p.Parse(resp)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := benchmark.Action{Name: "flag", Parameters: map[string]any{"row": float64(2), "col": float64(3)}}
	if diff := cmp.Diff(want, action); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_FallbackChain(t *testing.T) {
	tests := []struct {
		name string
		text string
		want benchmark.Action
	}{
		{
			name: "embedded_json",
			text: "Based on the counts, the safe move is:\n```json\n{\"action\": \"reveal\", \"row\": 4, \"col\": 7}\n```",
			want: benchmark.Action{Name: "reveal", Parameters: map[string]any{"row": float64(4), "col": float64(7)}},
		},
		{
			name: "json_with_parameters_object",
			text: `{"action": "flag", "parameters": {"row": 1, "col": 2}}`,
			want: benchmark.Action{Name: "flag", Parameters: map[string]any{"row": float64(1), "col": float64(2)}},
		},
		{
			name: "command_with_parenthesized_coords",
			text: "The 2 at (3,3) forces a mine, so I will flag (3, 4).",
			want: benchmark.Action{Name: "flag", Parameters: map[string]any{"row": float64(3), "col": float64(4)}},
		},
		{
			name: "command_uppercase_bare_coords",
			text: "REVEAL 5, 6",
			want: benchmark.Action{Name: "reveal", Parameters: map[string]any{"row": float64(5), "col": float64(6)}},
		},
		{
			name: "territory_game_verb",
			text: "attack 2, 9 with everything we have",
			want: benchmark.Action{Name: "attack", Parameters: map[string]any{"row": float64(2), "col": float64(9)}},
		},
		{
			name: "bare_coordinates_default_to_reveal",
			text: "My move: (0, 5)",
			want: benchmark.Action{Name: "reveal", Parameters: map[string]any{"row": float64(0), "col": float64(5)}},
		},
	}

	p := newResponseParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := p.Parse(&benchmark.MoveResponse{RawText: tt.text})
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.text, err)
			}
			if diff := cmp.Diff(tt.want, action); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestParse_Unparsable(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"prose_without_move", "I cannot determine a safe move from this board."},
		{"json_without_action", `{"thought": "hmm"}`},
	}

	p := newResponseParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(&benchmark.MoveResponse{RawText: tt.text})
			var invalidErr *benchmark.InvalidResponseError
			if !errors.As(err, &invalidErr) {
				t.Fatalf("Parse(%q) error = %v, want InvalidResponseError", tt.text, err)
			}
		})
	}
}

func TestBuildPrompt_IncludesBoardAndRecentHistory(t *testing.T) {
	history := make([]benchmark.Move, 8)
	for i := range history {
		history[i] = benchmark.Move{
			Number: i + 1,
			Action: benchmark.Action{Name: "reveal"},
			Valid:  true,
		}
	}

	prompt := buildPrompt("minesweeper", "..1.\n.12.", history)
	if !strings.Contains(prompt, "..1.") {
		t.Error("prompt is missing the board")
	}
	// Only the trailing window of moves is replayed.
	if strings.Contains(prompt, "\n1. reveal") {
		t.Error("prompt includes moves outside the history window")
	}
	if !strings.Contains(prompt, "8. reveal") {
		t.Error("prompt is missing the most recent move")
	}
}
