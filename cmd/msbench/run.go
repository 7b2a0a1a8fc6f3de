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

package msbench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation/judge"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation/storage"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/leaderboard"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/model/gemini"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/runner"
)

func newRunCmd(opts Options) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play a task batch and score it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadRunConfig(configPath)
			if err != nil {
				return err
			}
			return runBatch(cmd.Context(), cmd.OutOrStdout(), opts, cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "run.yaml", "Run config file")
	return cmd
}

// runSummary is the JSON the run command prints when done.
type runSummary struct {
	RunID       string                         `json:"run_id"`
	ModelID     string                         `json:"model_id"`
	EvalSpec    string                         `json:"eval_spec"`
	Episodes    int                            `json:"episodes"`
	GlobalScore float64                        `json:"global_score"`
	ByType      map[string]*advancedForSummary `json:"by_type"`
}

// advancedForSummary trims AdvancedMetrics for console output.
type advancedForSummary struct {
	Score           float64              `json:"score"`
	WinRate         float64              `json:"win_rate"`
	ValidMoveRate   float64              `json:"valid_move_rate"`
	ReasoningScore  float64              `json:"reasoning_score"`
	SampleSize      int                  `json:"sample_size"`
	WinRateInterval *evaluation.Interval `json:"win_rate_interval,omitempty"`
}

func runBatch(ctx context.Context, out io.Writer, opts Options, cfg *RunConfig) error {
	tasks, err := loadTasks(cfg.Tasks)
	if err != nil {
		return err
	}

	model := opts.Model
	if model == nil {
		model, err = gemini.NewModel(ctx, cfg.Model, nil)
		if err != nil {
			return err
		}
	}

	r, err := runner.New(runner.Config{
		Games:       opts.Games,
		MaxMoves:    cfg.MaxMoves,
		MoveTimeout: time.Duration(cfg.MoveTimeout),
		BoardFormat: benchmark.BoardFormat(cfg.BoardFormat),
	})
	if err != nil {
		return err
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	started := time.Now()

	transcripts, err := r.RunMany(ctx, tasks, model, cfg.Parallelism)
	if err != nil {
		return err
	}

	judgments, err := judgeTranscripts(ctx, opts, cfg, transcripts)
	if err != nil {
		return err
	}

	store, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		return err
	}
	logger := storage.NewEpisodeLogger(store)
	for _, transcript := range transcripts {
		if err := store.SaveTranscript(ctx, transcript); err != nil {
			return err
		}
		if err := logger.Log(transcript, judgments[transcript.GameID]); err != nil {
			return err
		}
	}

	batch := buildBatchResult(runID, cfg, transcripts, judgments, started)
	if err := store.SaveBatchResult(ctx, batch); err != nil {
		return err
	}

	static, interactive, global, err := scoreTranscripts(transcripts, judgments)
	if err != nil {
		return err
	}

	if cfg.Leaderboard.Database != "" {
		if err := publish(ctx, cfg, static, interactive, global); err != nil {
			return err
		}
	}

	summary := runSummary{
		RunID:       runID,
		ModelID:     cfg.Model,
		EvalSpec:    cfg.EvalSpec,
		Episodes:    len(transcripts),
		GlobalScore: global,
		ByType:      map[string]*advancedForSummary{},
	}
	if static != nil {
		summary.ByType[string(benchmark.TaskStatic)] = summarize(static, static.MSSScore)
	}
	if interactive != nil {
		summary.ByType[string(benchmark.TaskInteractive)] = summarize(interactive, interactive.MSIScore)
	}
	return printJSON(out, summary)
}

func loadTasks(path string) ([]*benchmark.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("msbench: read tasks: %w", err)
	}
	var tasks []*benchmark.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("msbench: parse tasks %s: %w", path, err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("msbench: task file %s is empty", path)
	}
	return tasks, nil
}

// judgeTranscripts grades every move that stated reasoning, keyed by game id
// and move number. Returns nil maps when judging is disabled.
func judgeTranscripts(ctx context.Context, opts Options, cfg *RunConfig, transcripts []*benchmark.GameTranscript) (map[string]map[int]*evaluation.JudgmentResult, error) {
	if !cfg.Judge.Enabled {
		return nil, nil
	}

	judgeModel := opts.JudgeModel
	if judgeModel == nil {
		name := cfg.Judge.Model
		if name == "" {
			name = cfg.Model
		}
		m, err := gemini.NewModel(ctx, name, nil)
		if err != nil {
			return nil, err
		}
		judgeModel = m
	}

	j, err := judge.New(judge.Config{Model: judgeModel, CacheSize: cfg.Judge.CacheSize})
	if err != nil {
		return nil, err
	}

	type ref struct {
		gameID string
		turn   int
	}
	var reqs []*judge.Request
	var refs []ref
	for _, transcript := range transcripts {
		for _, move := range transcript.Moves {
			if move.Reasoning == "" {
				continue
			}
			turn := move.Number
			reqs = append(reqs, &judge.Request{
				TaskUID:    transcript.TaskUID,
				BoardState: move.BoardBefore,
				Action:     move.Action.String(),
				Reasoning:  move.Reasoning,
				Turn:       &turn,
			})
			refs = append(refs, ref{gameID: transcript.GameID, turn: move.Number})
		}
	}

	results := j.JudgeBatch(ctx, reqs, cfg.Judge.Parallelism)

	judgments := make(map[string]map[int]*evaluation.JudgmentResult)
	for i, res := range results {
		byTurn := judgments[refs[i].gameID]
		if byTurn == nil {
			byTurn = make(map[int]*evaluation.JudgmentResult)
			judgments[refs[i].gameID] = byTurn
		}
		byTurn[refs[i].turn] = res
	}
	return judgments, nil
}

func buildBatchResult(runID string, cfg *RunConfig, transcripts []*benchmark.GameTranscript, judgments map[string]map[int]*evaluation.JudgmentResult, started time.Time) *evaluation.BatchResult {
	batch := &evaluation.BatchResult{
		RunID:    runID,
		ModelID:  cfg.Model,
		EvalSpec: cfg.EvalSpec,
		StartTS:  started,
	}
	for _, transcript := range transcripts {
		item := evaluation.ItemResult{
			TaskUID:    transcript.TaskUID,
			ModelID:    cfg.Model,
			Prediction: string(transcript.Status()),
			IsCorrect:  transcript.Status() == benchmark.StatusWon,
			Timestamp:  transcript.EndedAt,
		}
		for _, move := range transcript.Moves {
			item.LatencyMs += float64(move.Latency.Milliseconds())
			if item.Rationale == "" && move.Reasoning != "" {
				item.Rationale = move.Reasoning
			}
		}
		if len(transcript.Moves) > 0 {
			item.PromptHash = evaluation.HashPrompt(transcript.Moves[0].PromptSent)
		}
		if byTurn := judgments[transcript.GameID]; len(byTurn) > 0 {
			sum := 0.0
			for _, j := range byTurn {
				sum += j.NormalizedScore
			}
			item.ReasoningScore = sum / float64(len(byTurn))
		}
		batch.Results = append(batch.Results, item)
	}
	batch.Summarize()
	return batch
}

// scoreTranscripts groups episodes by task type and computes category and
// global scores. Either category pointer is nil when the batch had no tasks of
// that type.
func scoreTranscripts(transcripts []*benchmark.GameTranscript, judgments map[string]map[int]*evaluation.JudgmentResult) (static, interactive *evaluation.AdvancedMetrics, global float64, err error) {
	grouped := map[benchmark.TaskType][]*benchmark.GameTranscript{}
	groupedJudgments := map[benchmark.TaskType][]*evaluation.JudgmentResult{}
	for _, transcript := range transcripts {
		tt := transcript.TaskType
		grouped[tt] = append(grouped[tt], transcript)
		for _, j := range judgments[transcript.GameID] {
			groupedJudgments[tt] = append(groupedJudgments[tt], j)
		}
	}

	calc := evaluation.NewAdvancedMetricsCalculator()
	if ts := grouped[benchmark.TaskStatic]; len(ts) > 0 {
		static, err = calc.CalculateAdvanced(ts, groupedJudgments[benchmark.TaskStatic], benchmark.TaskStatic)
		if err != nil {
			return nil, nil, 0, err
		}
	}
	if ts := grouped[benchmark.TaskInteractive]; len(ts) > 0 {
		interactive, err = calc.CalculateAdvanced(ts, groupedJudgments[benchmark.TaskInteractive], benchmark.TaskInteractive)
		if err != nil {
			return nil, nil, 0, err
		}
	}

	global, err = calc.CalculateGlobalScore(static, interactive, nil)
	if err != nil {
		return nil, nil, 0, err
	}
	return static, interactive, global, nil
}

func publish(ctx context.Context, cfg *RunConfig, static, interactive *evaluation.AdvancedMetrics, global float64) error {
	store, err := leaderboard.OpenSQLite(cfg.Leaderboard.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	entry := &leaderboard.Entry{
		ModelID:       cfg.Model,
		EvalSpec:      cfg.EvalSpec,
		PromptVariant: cfg.PromptVariant,
		HiddenSplit:   cfg.HiddenSplit,
		Timestamp:     time.Now(),
		Metrics:       leaderboard.Metrics{GlobalScore: global},
	}
	if static != nil {
		entry.Metrics.MSSScore = static.MSSScore
		// Static tasks are single-decision, so accuracy is their win rate.
		entry.Metrics.Accuracy = static.WinRate
		entry.Metrics.ReasoningScore = static.ReasoningScore
	}
	if interactive != nil {
		entry.Metrics.MSIScore = interactive.MSIScore
		entry.Metrics.WinRate = interactive.WinRate
		entry.Metrics.Coverage = interactive.BoardCoverageOnLoss
		entry.Metrics.ReasoningScore = interactive.ReasoningScore
	}
	if err := store.Publish(ctx, entry); err != nil {
		return err
	}

	if cfg.Leaderboard.Export != "" {
		return leaderboard.ExportFile(ctx, store, cfg.EvalSpec, 0, cfg.Leaderboard.Export)
	}
	return nil
}

func summarize(m *evaluation.AdvancedMetrics, score float64) *advancedForSummary {
	s := &advancedForSummary{
		Score:          score,
		WinRate:        m.WinRate,
		ValidMoveRate:  m.ValidMoveRate,
		ReasoningScore: m.ReasoningScore,
		SampleSize:     m.SampleSize,
	}
	if m.SampleSize > 0 {
		iv := m.WinRateInterval
		s.WinRateInterval = &iv
	}
	return s
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
