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

import "time"

// Confidence expresses how much the judge's score should be trusted.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// JudgmentResult is one judge verdict on a move's (or episode's) reasoning.
// Immutable once produced.
type JudgmentResult struct {
	TaskUID string `json:"task_uid"`

	// Turn is nil for whole-episode judgments.
	Turn *int `json:"turn,omitempty"`

	// RawScore is on the rubric scale {0, 1, 2}.
	RawScore int `json:"raw_score"`

	// NormalizedScore is RawScore / 2.
	NormalizedScore float64 `json:"normalized_score"`

	Feedback   string     `json:"feedback,omitempty"`
	Confidence Confidence `json:"confidence"`
	JudgeModel string     `json:"judge_model"`
	Timestamp  time.Time  `json:"timestamp"`
}
