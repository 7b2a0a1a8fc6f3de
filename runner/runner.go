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

// Package runner drives game episodes: it initializes a game from a task,
// loops model move requests against the game, and seals a transcript when the
// episode reaches a terminal state.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/internal/telemetry"
)

// maxConsecutiveErrors bounds the cost of a stuck agent: the third consecutive
// unparsable or invalid move seals the episode as ERROR.
const maxConsecutiveErrors = 3

// Config is used to create a [Runner].
type Config struct {
	// Games maps game names to factories. Registration is explicit; tasks
	// referencing an unregistered game fail with ErrUnknownGame.
	Games map[string]benchmark.GameFactory

	// MaxMoves bounds an episode's length. Reaching it without a terminal
	// game status seals the transcript as TIMEOUT.
	MaxMoves int

	// MoveTimeout is the per-move deadline for the model call. Exceeding it
	// seals only the affected episode as TIMEOUT.
	MoveTimeout time.Duration

	// BoardFormat selects the board rendering sent to the model.
	// Defaults to BoardFormatASCII.
	BoardFormat benchmark.BoardFormat
}

// Runner orchestrates episodes against Model and Game collaborators.
type Runner struct {
	games       map[string]benchmark.GameFactory
	maxMoves    int
	moveTimeout time.Duration
	boardFormat benchmark.BoardFormat
	parser      *responseParser
}

// New creates a new [Runner].
func New(cfg Config) (*Runner, error) {
	if len(cfg.Games) == 0 {
		return nil, fmt.Errorf("runner: at least one game factory is required")
	}
	if cfg.MaxMoves <= 0 {
		return nil, fmt.Errorf("runner: MaxMoves must be positive, got %d", cfg.MaxMoves)
	}
	if cfg.MoveTimeout <= 0 {
		return nil, fmt.Errorf("runner: MoveTimeout must be positive, got %s", cfg.MoveTimeout)
	}
	format := cfg.BoardFormat
	if format == "" {
		format = benchmark.BoardFormatASCII
	}
	return &Runner{
		games:       cfg.Games,
		maxMoves:    cfg.MaxMoves,
		moveTimeout: cfg.MoveTimeout,
		boardFormat: format,
		parser:      newResponseParser(),
	}, nil
}

// RunEpisode plays one task to a terminal state and returns the sealed
// transcript. Recoverable model failures (unparsable responses, invalid moves,
// provider errors) are absorbed into the transcript per the failure policy;
// the returned error is non-nil only for contract violations or when the game
// could not be initialized at all.
func (r *Runner) RunEpisode(ctx context.Context, task *benchmark.Task, model benchmark.Model) (*benchmark.GameTranscript, error) {
	transcript := benchmark.NewTranscript(uuid.NewString(), task, model.Name())

	ctx, span := telemetry.StartEpisode(ctx, transcript.TaskUID, model.Name(), task.Game)
	err := r.runEpisode(ctx, task, model, transcript)
	if !transcript.Sealed() {
		// Initialization failures and contract violations land here.
		sealErr := transcript.Seal(benchmark.StatusError, benchmark.Snapshot{})
		if err == nil {
			err = sealErr
		}
	}
	telemetry.EndEpisode(span, string(transcript.Status()), len(transcript.Moves), transcript.TokensUsed(), err)
	telemetry.LogEpisodeSealed(ctx, transcript.TaskUID, string(transcript.Status()), len(transcript.Moves))
	return transcript, err
}

func (r *Runner) runEpisode(ctx context.Context, task *benchmark.Task, model benchmark.Model, transcript *benchmark.GameTranscript) error {
	factory, ok := r.games[task.Game]
	if !ok {
		return fmt.Errorf("runner: task %s: %w: %q", task.ID, benchmark.ErrUnknownGame, task.Game)
	}

	game, err := factory(task.BoardConfig)
	if err != nil {
		return fmt.Errorf("runner: task %s: initializing game: %w", task.ID, err)
	}

	consecutiveErrors := 0
	for moveNumber := 1; ; moveNumber++ {
		if status := game.Status(); status.Terminal() {
			return transcript.Seal(status, game.Snapshot())
		}
		if len(transcript.Moves) >= r.maxMoves {
			return transcript.Seal(benchmark.StatusTimeout, game.Snapshot())
		}

		board := game.BoardText(r.boardFormat)
		req := &benchmark.MoveRequest{
			BoardState: board,
			MoveSchema: game.MoveSchema(),
			History:    transcript.Moves,
		}
		req.Prompt = buildPrompt(game.Name(), board, transcript.Moves)

		move := benchmark.Move{
			Number:      moveNumber,
			PromptSent:  req.Prompt,
			BoardBefore: board,
			Timestamp:   time.Now(),
		}

		moveCtx, cancel := context.WithTimeout(ctx, r.moveTimeout)
		start := time.Now()
		resp, err := model.GetMove(moveCtx, req)
		cancel()
		move.Latency = time.Since(start)

		if err != nil {
			if isTimeout(err) {
				move.ErrorMessage = err.Error()
				if appendErr := transcript.Append(move); appendErr != nil {
					return appendErr
				}
				return transcript.Seal(benchmark.StatusTimeout, game.Snapshot())
			}
			// Provider failures surface here after the collaborator's own
			// bounded retries; they count like an invalid move.
			move.ErrorMessage = err.Error()
			telemetry.LogMove(ctx, transcript.TaskUID, moveNumber, "", false, req.Prompt, "", 0)
			if appendErr := transcript.Append(move); appendErr != nil {
				return appendErr
			}
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveErrors {
				return transcript.Seal(benchmark.StatusError, game.Snapshot())
			}
			continue
		}

		move.FullResponse = resp.RawText
		move.Reasoning = resp.Reasoning
		move.TokensUsed = resp.TokensUsed

		action, err := r.parser.Parse(resp)
		if err != nil {
			move.ErrorMessage = err.Error()
			telemetry.LogMove(ctx, transcript.TaskUID, moveNumber, "", false, req.Prompt, resp.RawText, resp.TokensUsed)
			if appendErr := transcript.Append(move); appendErr != nil {
				return appendErr
			}
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveErrors {
				return transcript.Seal(benchmark.StatusError, game.Snapshot())
			}
			continue
		}

		move.Action = action
		outcome, err := game.MakeMove(action)
		if err != nil {
			if errors.Is(err, benchmark.ErrGameFinished) {
				// Contract violation: never retried, always surfaced.
				return err
			}
			outcome = benchmark.MoveOutcome{Valid: false, Message: err.Error()}
		}

		move.Valid = outcome.Valid
		if !outcome.Valid {
			move.ErrorMessage = outcome.Message
		}
		move.BoardAfter = game.BoardText(r.boardFormat)

		telemetry.LogMove(ctx, transcript.TaskUID, moveNumber, action.Name, outcome.Valid, req.Prompt, resp.RawText, resp.TokensUsed)
		if appendErr := transcript.Append(move); appendErr != nil {
			return appendErr
		}

		if outcome.Valid {
			consecutiveErrors = 0
		} else {
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveErrors {
				return transcript.Seal(benchmark.StatusError, game.Snapshot())
			}
		}
	}
}

// RunMany plays all tasks with at most parallelism episodes in flight and
// returns one transcript per task, in input order regardless of completion
// order. A failing episode never aborts its siblings: its transcript is sealed
// as ERROR and kept in the result slice.
func (r *Runner) RunMany(ctx context.Context, tasks []*benchmark.Task, model benchmark.Model, parallelism int) ([]*benchmark.GameTranscript, error) {
	if parallelism <= 0 {
		parallelism = 1
	}

	transcripts := make([]*benchmark.GameTranscript, len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, task := range tasks {
		g.Go(func() error {
			// Episode failures are recorded in the transcript, not
			// propagated: one task's error must not cancel the group.
			transcript, _ := r.RunEpisode(ctx, task, model)
			transcripts[i] = transcript
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return transcripts, err
	}
	return transcripts, nil
}

func isTimeout(err error) bool {
	var timeoutErr *benchmark.TimeoutError
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.As(err, &timeoutErr)
}
