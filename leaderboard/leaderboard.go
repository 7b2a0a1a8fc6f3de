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

// Package leaderboard stores and exports per-model benchmark standings. The
// core treats the store as write-once per completed run and relies on the
// store's own consistency guarantees.
package leaderboard

import (
	"context"
	"time"
)

// Metrics is the score block of one leaderboard entry.
type Metrics struct {
	MSSScore       float64 `json:"ms_s_score"`
	MSIScore       float64 `json:"ms_i_score"`
	GlobalScore    float64 `json:"global_score"`
	WinRate        float64 `json:"win_rate"`
	Accuracy       float64 `json:"accuracy"`
	Coverage       float64 `json:"coverage"`
	ReasoningScore float64 `json:"reasoning_score"`
}

// Entry is one model's standing for one evaluation spec.
type Entry struct {
	ID uint `gorm:"primarykey" json:"-"`

	ModelID       string `gorm:"type:varchar(200);not null;index:idx_model_spec" json:"model_id"`
	EvalSpec      string `gorm:"type:varchar(200);not null;index:idx_model_spec" json:"eval_spec"`
	PromptVariant string `gorm:"type:varchar(200)" json:"prompt_variant"`

	// HiddenSplit marks runs against the private task split.
	HiddenSplit bool `json:"hidden_split"`

	Timestamp time.Time `json:"timestamp"`

	Metrics Metrics `gorm:"embedded;embeddedPrefix:metric_" json:"metrics"`

	// StatisticalSignificance summarizes how the entry compares with the
	// previous standing for the same model and spec, empty for first runs.
	StatisticalSignificance string `gorm:"type:text" json:"statistical_significance"`
}

// Store persists leaderboard entries.
type Store interface {
	// Publish appends one entry.
	Publish(ctx context.Context, entry *Entry) error

	// Top returns the best entries for a spec ordered by global score
	// descending, at most limit of them, one per model.
	Top(ctx context.Context, evalSpec string, limit int) ([]*Entry, error)

	// History returns every entry for one model and spec, newest first.
	History(ctx context.Context, modelID, evalSpec string) ([]*Entry, error)

	Close() error
}
