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
	"fmt"
	"time"
)

// EpisodeStatus is the lifecycle state of an episode or game.
type EpisodeStatus string

const (
	StatusInProgress EpisodeStatus = "IN_PROGRESS"
	StatusWon        EpisodeStatus = "WON"
	StatusLost       EpisodeStatus = "LOST"

	// StatusError marks an episode abandoned after repeated invalid or
	// unparsable moves. Error episodes are excluded from win-rate and
	// confidence-interval denominators.
	StatusError EpisodeStatus = "ERROR"

	// StatusTimeout marks an episode that hit its per-move deadline or its
	// move budget without the game reaching a terminal state.
	StatusTimeout EpisodeStatus = "TIMEOUT"
)

// Terminal reports whether the status ends an episode.
func (s EpisodeStatus) Terminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusError || s == StatusTimeout
}

// Move records one ply of an episode. Moves are append-only and owned
// exclusively by the transcript being built.
type Move struct {
	// Number is 1-based and strictly increasing with no gaps.
	Number int `json:"move_number"`

	Action Action `json:"action"`
	Valid  bool   `json:"was_valid"`

	// Reasoning is the model's stated rationale, empty when absent.
	Reasoning string `json:"model_reasoning,omitempty"`

	// ErrorMessage explains an invalid or unparsable move.
	ErrorMessage string `json:"error_message,omitempty"`

	PromptSent   string `json:"prompt_sent,omitempty"`
	FullResponse string `json:"full_response,omitempty"`
	TokensUsed   int    `json:"tokens_used"`

	Timestamp time.Time     `json:"timestamp"`
	Latency   time.Duration `json:"latency"`

	BoardBefore string `json:"board_state_before,omitempty"`
	BoardAfter  string `json:"board_state_after,omitempty"`
}

// GameTranscript is the complete record of one episode: the ordered move log
// plus the terminal game snapshot. The runner builds it incrementally; once
// sealed it never mutates.
type GameTranscript struct {
	GameID    string `json:"game_id"`
	TaskID    string `json:"task_id"`
	TaskUID   string `json:"task_uid"`
	TaskType  TaskType `json:"task_type"`
	ModelName string `json:"model_name"`

	Moves      []Move   `json:"moves"`
	FinalState Snapshot `json:"final_state"`

	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Duration  time.Duration `json:"duration"`
}

// NewTranscript starts an empty transcript for the given task and model.
func NewTranscript(gameID string, task *Task, modelName string) *GameTranscript {
	return &GameTranscript{
		GameID:    gameID,
		TaskID:    task.ID,
		TaskUID:   task.UID(),
		TaskType:  task.Type,
		ModelName: modelName,
		StartedAt: time.Now(),
	}
}

// Append adds one move to the transcript. The move number must continue the
// 1-based gap-free sequence.
func (t *GameTranscript) Append(m Move) error {
	if t.Sealed() {
		return fmt.Errorf("benchmark: append to sealed transcript %s", t.GameID)
	}
	if want := len(t.Moves) + 1; m.Number != want {
		return fmt.Errorf("benchmark: move number %d, want %d", m.Number, want)
	}
	t.Moves = append(t.Moves, m)
	return nil
}

// Seal finalizes the transcript with a terminal status and the game's last
// snapshot. Sealing twice is an error; the first terminal status wins.
func (t *GameTranscript) Seal(status EpisodeStatus, final Snapshot) error {
	if t.Sealed() {
		return fmt.Errorf("benchmark: transcript %s already sealed as %s", t.GameID, t.FinalState.Status)
	}
	if !status.Terminal() {
		return fmt.Errorf("benchmark: cannot seal with non-terminal status %s", status)
	}
	final.Status = status
	t.FinalState = final
	t.EndedAt = time.Now()
	t.Duration = t.EndedAt.Sub(t.StartedAt)
	return nil
}

// Sealed reports whether the transcript reached a terminal state. Sealedness
// is carried by the final status so it survives serialization.
func (t *GameTranscript) Sealed() bool { return t.FinalState.Status.Terminal() }

// Status returns the terminal status, or StatusInProgress before sealing.
func (t *GameTranscript) Status() EpisodeStatus {
	if !t.Sealed() {
		return StatusInProgress
	}
	return t.FinalState.Status
}

// Validate checks transcript invariants: a gap-free 1-based move sequence and,
// for sealed transcripts, a terminal final status.
func (t *GameTranscript) Validate() error {
	for i, m := range t.Moves {
		if m.Number != i+1 {
			return fmt.Errorf("benchmark: transcript %s move %d has number %d", t.GameID, i, m.Number)
		}
	}
	if s := t.FinalState.Status; s != "" && !s.Terminal() {
		return fmt.Errorf("benchmark: transcript %s has non-terminal final status %s", t.GameID, s)
	}
	return nil
}

// ValidMoves counts moves the game accepted.
func (t *GameTranscript) ValidMoves() int {
	n := 0
	for _, m := range t.Moves {
		if m.Valid {
			n++
		}
	}
	return n
}

// TokensUsed sums token usage across all moves.
func (t *GameTranscript) TokensUsed() int {
	n := 0
	for _, m := range t.Moves {
		n += m.TokensUsed
	}
	return n
}
