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

// Package benchmark defines the core contracts for evaluating language-model
// agents on turn-based games: the Model and Game collaborator interfaces, the
// Task that describes one game to play, and the GameTranscript that records how
// an episode went. The runner package drives episodes against these contracts
// and the evaluation packages score the resulting transcripts.
package benchmark

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Model is a language-model agent capable of choosing moves.
// Implementations wrap a concrete provider client (see model/gemini) or a
// judge-configured variant of one.
type Model interface {
	// Name returns the provider-qualified model identifier, e.g.
	// "gemini-2.5-pro".
	Name() string

	// GetMove asks the model for the next move given the current board and a
	// schema describing valid actions. The call must honor ctx cancellation;
	// the runner applies a per-move deadline through ctx.
	GetMove(ctx context.Context, req *MoveRequest) (*MoveResponse, error)
}

// MoveRequest carries everything a model needs to choose one move.
type MoveRequest struct {
	// BoardState is the textual board representation the game produced.
	BoardState string

	// MoveSchema describes the structured action the model should emit.
	MoveSchema *jsonschema.Schema

	// History holds the moves already played this episode, oldest first.
	History []Move

	// Prompt is the fully rendered prompt. Populated by the runner so the
	// transcript can record exactly what was sent.
	Prompt string
}

// MoveResponse is the model's answer to a MoveRequest.
// Either Action is set (structured function call) or RawText holds free text
// the runner will run through its fallback parsers.
type MoveResponse struct {
	// Action is the structured action name, empty if the model answered in
	// free text only.
	Action string

	// Parameters are the structured action arguments.
	Parameters map[string]any

	// Reasoning is the model's stated rationale, if any.
	Reasoning string

	// RawText is the verbatim text of the response.
	RawText string

	// TokensUsed counts prompt plus completion tokens for this call.
	TokensUsed int
}

// BoardFormat selects a board rendering.
type BoardFormat string

const (
	// BoardFormatASCII renders the board as a plain character grid.
	BoardFormatASCII BoardFormat = "ascii"

	// BoardFormatCoordinate renders the board as one line per cell with
	// explicit coordinates.
	BoardFormatCoordinate BoardFormat = "coordinate"
)

// Position addresses one cell on a game board.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Action is one structured command applied to a game.
type Action struct {
	// Name identifies the command, e.g. "reveal", "flag", "attack".
	Name string `json:"name"`

	// Parameters hold the command arguments as emitted by the model.
	Parameters map[string]any `json:"parameters,omitempty"`
}

// String renders the action as "name row,col" when coordinates are present,
// otherwise just the name.
func (a Action) String() string {
	row, hasRow := a.Parameters["row"]
	col, hasCol := a.Parameters["col"]
	if hasRow && hasCol {
		return fmt.Sprintf("%s %v,%v", a.Name, row, col)
	}
	return a.Name
}

// MoveOutcome reports what applying an action did to the game.
type MoveOutcome struct {
	Valid   bool           `json:"valid"`
	Message string         `json:"message,omitempty"`
	Info    map[string]any `json:"info,omitempty"`
}

// Game is one in-progress game board. Implementations live outside this
// module; the deduction and territory games only need to satisfy this surface.
// A Game is not safe for concurrent use; the runner drives it sequentially.
type Game interface {
	// Name returns the game identifier, e.g. "minesweeper".
	Name() string

	// MakeMove applies one action. It returns ErrGameFinished if the game
	// already reached a terminal status.
	MakeMove(action Action) (MoveOutcome, error)

	// BoardText renders the current board in the requested format.
	BoardText(format BoardFormat) string

	// MoveSchema describes the structured actions this game accepts.
	MoveSchema() *jsonschema.Schema

	// Status reports the game's progress. Games only ever report
	// StatusInProgress, StatusWon, or StatusLost; ERROR and TIMEOUT are
	// episode-level outcomes assigned by the runner.
	Status() EpisodeStatus

	// Snapshot captures the current state for transcripts and metrics.
	Snapshot() Snapshot
}

// GameFactory creates a fresh game from a task's board configuration.
// Factories are registered explicitly at startup; there is no dynamic
// discovery.
type GameFactory func(config map[string]any) (Game, error)

// Snapshot is a point-in-time capture of a game's state. The terminal snapshot
// of an episode becomes the transcript's final state and is the sole input to
// board-derived metrics.
type Snapshot struct {
	Status EpisodeStatus `json:"status"`

	// Board is the rendered board at capture time.
	Board string `json:"board"`

	// Flagged holds the positions the agent marked as hazards.
	Flagged []Position `json:"flagged,omitempty"`

	// Hazards holds the ground-truth hazard positions.
	Hazards []Position `json:"hazards,omitempty"`

	// RevealedSafe and TotalSafe count non-hazard cells, for coverage.
	RevealedSafe int `json:"revealed_safe"`
	TotalSafe    int `json:"total_safe"`

	// State carries game-specific extras, opaque to this module.
	State map[string]any `json:"state,omitempty"`
}
