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
	"math"
	"testing"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
)

func sealedTranscript(t *testing.T, id string, status benchmark.EpisodeStatus, moves []benchmark.Move, final benchmark.Snapshot) *benchmark.GameTranscript {
	t.Helper()
	task := &benchmark.Task{ID: id, Type: benchmark.TaskInteractive, Game: "minesweeper"}
	tr := benchmark.NewTranscript(id, task, "test-model")
	for i, m := range moves {
		m.Number = i + 1
		if err := tr.Append(m); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := tr.Seal(status, final); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	return tr
}

func validMoves(n int) []benchmark.Move {
	moves := make([]benchmark.Move, n)
	for i := range moves {
		moves[i] = benchmark.Move{Valid: true}
	}
	return moves
}

func TestCalculate_WinRateExcludesErrorEpisodes(t *testing.T) {
	var transcripts []*benchmark.GameTranscript
	for i := 0; i < 4; i++ {
		transcripts = append(transcripts, sealedTranscript(t, fmt.Sprintf("won-%d", i), benchmark.StatusWon, validMoves(5), benchmark.Snapshot{}))
	}
	for i := 0; i < 4; i++ {
		transcripts = append(transcripts, sealedTranscript(t, fmt.Sprintf("lost-%d", i), benchmark.StatusLost, validMoves(3), benchmark.Snapshot{}))
	}
	for i := 0; i < 2; i++ {
		transcripts = append(transcripts, sealedTranscript(t, fmt.Sprintf("err-%d", i), benchmark.StatusError, nil, benchmark.Snapshot{}))
	}

	m, err := NewMetricsCalculator().Calculate(transcripts)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got, want := m.WinRate, 0.5; got != want {
		t.Errorf("WinRate = %v, want %v", got, want)
	}
	if got, want := m.Eligible, 8; got != want {
		t.Errorf("Eligible = %d, want %d", got, want)
	}
	if got, want := m.Episodes, 10; got != want {
		t.Errorf("Episodes = %d, want %d", got, want)
	}
}

func TestCalculate_ValidMoveRateAndReasoning(t *testing.T) {
	moves := []benchmark.Move{
		{Valid: true, Reasoning: "the 3 at (1,1) forces all three neighbors to be mines"},
		{Valid: false, Reasoning: "ok"},
		{Valid: true},
		{Valid: true, Reasoning: "cell (2,4) is safe because the adjacent 1 is satisfied"},
	}
	tr := sealedTranscript(t, "g1", benchmark.StatusLost, moves, benchmark.Snapshot{})

	m, err := NewMetricsCalculator().Calculate([]*benchmark.GameTranscript{tr})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got, want := m.ValidMoveRate, 0.75; got != want {
		t.Errorf("ValidMoveRate = %v, want %v", got, want)
	}
	if got, want := m.ReasoningRate, 0.5; got != want {
		t.Errorf("ReasoningRate = %v, want %v", got, want)
	}
}

func TestCalculate_FlagMetricsAreCorpusLevel(t *testing.T) {
	// Episode 1: 2 flags, 1 correct, 2 hazards. Episode 2: 1 flag, 1
	// correct, 3 hazards. Corpus precision 2/3, recall 2/5; the
	// per-episode averages would differ.
	t1 := sealedTranscript(t, "g1", benchmark.StatusLost, validMoves(1), benchmark.Snapshot{
		Flagged: []benchmark.Position{{Row: 0, Col: 0}, {Row: 1, Col: 1}},
		Hazards: []benchmark.Position{{Row: 0, Col: 0}, {Row: 5, Col: 5}},
	})
	t2 := sealedTranscript(t, "g2", benchmark.StatusLost, validMoves(1), benchmark.Snapshot{
		Flagged: []benchmark.Position{{Row: 2, Col: 2}},
		Hazards: []benchmark.Position{{Row: 2, Col: 2}, {Row: 3, Col: 3}, {Row: 4, Col: 4}},
	})

	m, err := NewMetricsCalculator().Calculate([]*benchmark.GameTranscript{t1, t2})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got, want := m.FlagPrecision, 2.0/3.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("FlagPrecision = %v, want %v", got, want)
	}
	if got, want := m.FlagRecall, 2.0/5.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("FlagRecall = %v, want %v", got, want)
	}
}

func TestCalculate_AvgMovesNullability(t *testing.T) {
	lost := sealedTranscript(t, "g1", benchmark.StatusLost, validMoves(6), benchmark.Snapshot{})

	m, err := NewMetricsCalculator().Calculate([]*benchmark.GameTranscript{lost})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if m.AvgMovesToWin != nil {
		t.Errorf("AvgMovesToWin = %v, want nil", *m.AvgMovesToWin)
	}
	if m.AvgMovesToLoss == nil || *m.AvgMovesToLoss != 6 {
		t.Errorf("AvgMovesToLoss = %v, want 6", m.AvgMovesToLoss)
	}
}

func TestCalculate_BoardCoverageOnLoss(t *testing.T) {
	lost := sealedTranscript(t, "g1", benchmark.StatusLost, validMoves(2), benchmark.Snapshot{
		RevealedSafe: 30, TotalSafe: 40,
	})
	won := sealedTranscript(t, "g2", benchmark.StatusWon, validMoves(2), benchmark.Snapshot{
		RevealedSafe: 40, TotalSafe: 40,
	})

	m, err := NewMetricsCalculator().Calculate([]*benchmark.GameTranscript{lost, won})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got, want := m.BoardCoverageOnLoss, 0.75; got != want {
		t.Errorf("BoardCoverageOnLoss = %v, want %v", got, want)
	}
}

func TestCalculate_RejectsUnsealed(t *testing.T) {
	task := &benchmark.Task{ID: "t", Type: benchmark.TaskInteractive}
	open := benchmark.NewTranscript("g", task, "m")

	if _, err := NewMetricsCalculator().Calculate([]*benchmark.GameTranscript{open}); err == nil {
		t.Fatal("Calculate accepted an unsealed transcript")
	}
}

func TestCalculate_EmptyInput(t *testing.T) {
	if _, err := NewMetricsCalculator().Calculate(nil); err == nil {
		t.Fatal("Calculate accepted an empty transcript set")
	}
}

func TestCalculatePerEpisode(t *testing.T) {
	moves := []benchmark.Move{
		{Valid: true, TokensUsed: 100},
		{Valid: false, TokensUsed: 50},
	}
	tr := sealedTranscript(t, "g1", benchmark.StatusLost, moves, benchmark.Snapshot{
		RevealedSafe: 10, TotalSafe: 20,
	})

	em, err := NewMetricsCalculator().CalculatePerEpisode(tr)
	if err != nil {
		t.Fatalf("CalculatePerEpisode: %v", err)
	}
	if em.Moves != 2 || em.ValidMoves != 1 {
		t.Errorf("Moves = %d, ValidMoves = %d, want 2, 1", em.Moves, em.ValidMoves)
	}
	if got, want := em.ValidMoveRate, 0.5; got != want {
		t.Errorf("ValidMoveRate = %v, want %v", got, want)
	}
	if got, want := em.BoardCoverage, 0.5; got != want {
		t.Errorf("BoardCoverage = %v, want %v", got, want)
	}
	if got, want := em.TokensUsed, 150; got != want {
		t.Errorf("TokensUsed = %d, want %d", got, want)
	}
	if em.Status != benchmark.StatusLost {
		t.Errorf("Status = %s, want LOST", em.Status)
	}
}
