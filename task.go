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

package benchmark

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TaskType distinguishes single-decision tasks from multi-turn ones.
type TaskType string

const (
	// TaskStatic is a single-decision task: one board, one move, graded for
	// correctness.
	TaskStatic TaskType = "STATIC"

	// TaskInteractive is a full multi-turn episode played to completion.
	TaskInteractive TaskType = "INTERACTIVE"
)

// Code returns the short task-type code used in task UIDs.
func (t TaskType) Code() string {
	switch t {
	case TaskStatic:
		return "MS-S"
	case TaskInteractive:
		return "MS-I"
	default:
		return "MS-X"
	}
}

// Difficulty grades a task's board parameters.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Task is an immutable request to play one game. Tasks are produced by an
// external generator and consumed read-only by the runner.
type Task struct {
	ID         string     `json:"task_id"`
	Type       TaskType   `json:"task_type"`
	Game       string     `json:"game"`
	Difficulty Difficulty `json:"difficulty"`

	// BoardConfig holds opaque game-specific parameters. A "seed" key, when
	// present, makes the generated board reproducible.
	BoardConfig map[string]any `json:"board_config"`

	CreatedAt time.Time `json:"created_at"`
}

// UID returns the stable task identifier "<CODE>-<hash6>", where hash6 is the
// first six hex characters of sha256 over the task ID.
func (t *Task) UID() string {
	sum := sha256.Sum256([]byte(t.ID))
	return t.Type.Code() + "-" + hex.EncodeToString(sum[:])[:6]
}
