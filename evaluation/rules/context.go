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

// Package rules interprets declarative scoring rule configurations against a
// prompt/response context. Rule configs are authored externally, for example
// by community scoring profiles, and treated as read-only input.
package rules

// RoundSummary is one prior round's feature summary inside a context.
type RoundSummary struct {
	Prompt   string         `json:"prompt,omitempty"`
	Response string         `json:"response"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// EvaluationContext is the input to one evaluation call. It is constructed
// per call and never persisted by this package.
type EvaluationContext struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`

	// Metadata is a numeric/string feature bag read by METRIC_THRESHOLD
	// rules.
	Metadata map[string]any `json:"metadata,omitempty"`

	// RoundHistory lists prior rounds, oldest first.
	RoundHistory []RoundSummary `json:"round_history,omitempty"`

	GameConfig map[string]any `json:"game_config,omitempty"`
	PlayerInfo map[string]any `json:"player_info,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
}

// MetadataNumber reads a numeric metadata value, accepting the numeric types
// JSON and YAML decoding produce.
func (c *EvaluationContext) MetadataNumber(key string) (float64, bool) {
	v, ok := c.Metadata[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
