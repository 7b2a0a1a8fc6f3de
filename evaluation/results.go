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

package evaluation

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ItemResult is one task's outcome inside a batch result file.
type ItemResult struct {
	TaskUID        string    `json:"task_uid"`
	ModelID        string    `json:"model_id"`
	PromptHash     string    `json:"prompt_hash"`
	Prediction     string    `json:"prediction"`
	Rationale      string    `json:"rationale,omitempty"`
	IsCorrect      bool      `json:"is_correct"`
	ReasoningScore float64   `json:"reasoning_score"`
	LatencyMs      float64   `json:"latency_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

// Summary aggregates a batch into the headline numbers.
type Summary struct {
	Tasks         int     `json:"tasks"`
	Correct       int     `json:"correct"`
	Accuracy      float64 `json:"accuracy"`
	MeanReasoning float64 `json:"mean_reasoning_score"`
	MeanLatencyMs float64 `json:"mean_latency_ms"`
}

// BatchResult is the canonical on-disk shape of one evaluation run.
type BatchResult struct {
	RunID    string       `json:"run_id"`
	ModelID  string       `json:"model_id"`
	EvalSpec string       `json:"eval_spec"`
	StartTS  time.Time    `json:"start_ts"`
	Results  []ItemResult `json:"results"`
	Summary  Summary      `json:"summary"`
}

// Summarize recomputes the batch summary from its items.
func (b *BatchResult) Summarize() {
	s := Summary{Tasks: len(b.Results)}
	if s.Tasks == 0 {
		b.Summary = s
		return
	}
	var reasoning, latency float64
	for _, r := range b.Results {
		if r.IsCorrect {
			s.Correct++
		}
		reasoning += r.ReasoningScore
		latency += r.LatencyMs
	}
	n := float64(s.Tasks)
	s.Accuracy = float64(s.Correct) / n
	s.MeanReasoning = reasoning / n
	s.MeanLatencyMs = latency / n
	b.Summary = s
}

// HashPrompt returns the stable identifier stored in ItemResult.PromptHash.
func HashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])[:12]
}
