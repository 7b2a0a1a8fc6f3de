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
	"fmt"
	"strings"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
)

// minReasoningChars is the threshold below which a move's reasoning text is
// considered trivial for the reasoning-presence rate.
const minReasoningChars = 20

// EvaluationMetrics holds the basic aggregate metrics over a transcript set.
// It is the output of a pure computation and is never persisted as mutable
// state.
type EvaluationMetrics struct {
	// WinRate is wins over episodes, with ERROR episodes excluded from the
	// denominator.
	WinRate float64 `json:"win_rate"`

	// ValidMoveRate is valid moves over all moves across all transcripts.
	ValidMoveRate float64 `json:"valid_move_rate"`

	// FlagPrecision and FlagRecall compare flagged positions against
	// ground-truth hazards, summed across episodes before dividing
	// (corpus-level, not averaged per episode).
	FlagPrecision float64 `json:"flag_precision"`
	FlagRecall    float64 `json:"flag_recall"`

	// AvgMovesToWin and AvgMovesToLoss are nil when no episode matches.
	AvgMovesToWin  *float64 `json:"avg_moves_to_win,omitempty"`
	AvgMovesToLoss *float64 `json:"avg_moves_to_loss,omitempty"`

	// BoardCoverageOnLoss is the mean over LOST episodes of revealed safe
	// cells over total safe cells.
	BoardCoverageOnLoss float64 `json:"board_coverage_on_loss"`

	// ReasoningRate is the share of moves carrying non-trivial reasoning
	// text.
	ReasoningRate float64 `json:"reasoning_rate"`

	// Raw counts, kept so downstream significance tests can rebuild
	// proportions without the transcripts.
	Episodes   int `json:"episodes"`
	Eligible   int `json:"eligible_episodes"` // episodes minus ERROR
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Errors     int `json:"errors"`
	Timeouts   int `json:"timeouts"`
	TotalMoves int `json:"total_moves"`
	ValidMoves int `json:"valid_moves"`
}

// EpisodeMetrics holds the per-episode breakdown of one transcript.
type EpisodeMetrics struct {
	TaskUID       string                  `json:"task_uid"`
	Status        benchmark.EpisodeStatus `json:"status"`
	Moves         int                     `json:"moves"`
	ValidMoves    int                     `json:"valid_moves"`
	ValidMoveRate float64                 `json:"valid_move_rate"`
	FlagPrecision float64                 `json:"flag_precision"`
	FlagRecall    float64                 `json:"flag_recall"`
	BoardCoverage float64                 `json:"board_coverage"`
	ReasoningRate float64                 `json:"reasoning_rate"`
	TokensUsed    int                     `json:"tokens_used"`
	DurationMs    float64                 `json:"duration_ms"`
}

// MetricsCalculator computes EvaluationMetrics from sealed transcripts.
// The zero value is ready to use.
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator.
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// Calculate computes aggregate metrics over the transcript set.
// All transcripts must be sealed.
func (c *MetricsCalculator) Calculate(transcripts []*benchmark.GameTranscript) (*EvaluationMetrics, error) {
	if len(transcripts) == 0 {
		return nil, fmt.Errorf("evaluation: no transcripts to calculate metrics from")
	}

	m := &EvaluationMetrics{Episodes: len(transcripts)}

	var (
		flagHits, flagPredicted, flagTruth int
		coverageSum                        float64
		coverageEpisodes                   int
		winMoves, lossMoves                int
		reasoned                           int
	)

	for _, transcript := range transcripts {
		if !transcript.Sealed() {
			return nil, fmt.Errorf("evaluation: transcript %s is not sealed", transcript.GameID)
		}

		switch transcript.Status() {
		case benchmark.StatusWon:
			m.Wins++
			winMoves += len(transcript.Moves)
		case benchmark.StatusLost:
			m.Losses++
			lossMoves += len(transcript.Moves)
		case benchmark.StatusError:
			m.Errors++
		case benchmark.StatusTimeout:
			m.Timeouts++
		}

		m.TotalMoves += len(transcript.Moves)
		m.ValidMoves += transcript.ValidMoves()
		for _, move := range transcript.Moves {
			if len(strings.TrimSpace(move.Reasoning)) > minReasoningChars {
				reasoned++
			}
		}

		final := transcript.FinalState
		hits := intersectCount(final.Flagged, final.Hazards)
		flagHits += hits
		flagPredicted += len(final.Flagged)
		flagTruth += len(final.Hazards)

		if transcript.Status() == benchmark.StatusLost && final.TotalSafe > 0 {
			coverageSum += float64(final.RevealedSafe) / float64(final.TotalSafe)
			coverageEpisodes++
		}
	}

	m.Eligible = m.Episodes - m.Errors
	if m.Eligible > 0 {
		m.WinRate = float64(m.Wins) / float64(m.Eligible)
	}
	if m.TotalMoves > 0 {
		m.ValidMoveRate = float64(m.ValidMoves) / float64(m.TotalMoves)
		m.ReasoningRate = float64(reasoned) / float64(m.TotalMoves)
	}
	if flagPredicted > 0 {
		m.FlagPrecision = float64(flagHits) / float64(flagPredicted)
	}
	if flagTruth > 0 {
		m.FlagRecall = float64(flagHits) / float64(flagTruth)
	}
	if m.Wins > 0 {
		avg := float64(winMoves) / float64(m.Wins)
		m.AvgMovesToWin = &avg
	}
	if m.Losses > 0 {
		avg := float64(lossMoves) / float64(m.Losses)
		m.AvgMovesToLoss = &avg
	}
	if coverageEpisodes > 0 {
		m.BoardCoverageOnLoss = coverageSum / float64(coverageEpisodes)
	}

	return m, nil
}

// CalculatePerEpisode computes the breakdown for a single sealed transcript.
func (c *MetricsCalculator) CalculatePerEpisode(transcript *benchmark.GameTranscript) (*EpisodeMetrics, error) {
	if !transcript.Sealed() {
		return nil, fmt.Errorf("evaluation: transcript %s is not sealed", transcript.GameID)
	}

	em := &EpisodeMetrics{
		TaskUID:    transcript.TaskUID,
		Status:     transcript.Status(),
		Moves:      len(transcript.Moves),
		ValidMoves: transcript.ValidMoves(),
		TokensUsed: transcript.TokensUsed(),
		DurationMs: float64(transcript.Duration.Milliseconds()),
	}

	if em.Moves > 0 {
		em.ValidMoveRate = float64(em.ValidMoves) / float64(em.Moves)
		reasoned := 0
		for _, move := range transcript.Moves {
			if len(strings.TrimSpace(move.Reasoning)) > minReasoningChars {
				reasoned++
			}
		}
		em.ReasoningRate = float64(reasoned) / float64(em.Moves)
	}

	final := transcript.FinalState
	hits := intersectCount(final.Flagged, final.Hazards)
	if len(final.Flagged) > 0 {
		em.FlagPrecision = float64(hits) / float64(len(final.Flagged))
	}
	if len(final.Hazards) > 0 {
		em.FlagRecall = float64(hits) / float64(len(final.Hazards))
	}
	if final.TotalSafe > 0 {
		em.BoardCoverage = float64(final.RevealedSafe) / float64(final.TotalSafe)
	}

	return em, nil
}

func intersectCount(a, b []benchmark.Position) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[benchmark.Position]struct{}, len(a))
	for _, p := range a {
		set[p] = struct{}{}
	}
	n := 0
	for _, p := range b {
		if _, ok := set[p]; ok {
			n++
		}
	}
	return n
}
