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

package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation"
)

// TurnRecord is one line of an episode log.
type TurnRecord struct {
	Turn           int      `json:"turn"`
	Board          string   `json:"board"`
	Action         string   `json:"action"`
	Rationale      string   `json:"rationale"`
	BoardAfter     string   `json:"board_after,omitempty"`
	ReasoningScore *float64 `json:"reasoning_score,omitempty"`
	LatencyMs      *float64 `json:"latency_ms,omitempty"`
}

// EpisodeLogger serializes one transcript per file as newline-delimited JSON,
// one object per turn.
type EpisodeLogger struct {
	store *FileStore
}

// NewEpisodeLogger creates a logger writing under the store's episodes
// directory.
func NewEpisodeLogger(store *FileStore) *EpisodeLogger {
	return &EpisodeLogger{store: store}
}

// Log writes the transcript's episode log. Judgments, keyed by 1-based turn
// number, attach per-turn reasoning scores when present.
func (l *EpisodeLogger) Log(transcript *benchmark.GameTranscript, judgments map[int]*evaluation.JudgmentResult) error {
	if transcript == nil || transcript.GameID == "" {
		return ErrInvalidInput
	}

	f, err := os.Create(l.store.EpisodeLogPath(transcript.GameID))
	if err != nil {
		return fmt.Errorf("storage: create episode log: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := WriteEpisodeLog(w, transcript, judgments); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("storage: flush episode log: %w", err)
	}
	return nil
}

// WriteEpisodeLog streams the transcript's turns as JSONL to w.
func WriteEpisodeLog(w io.Writer, transcript *benchmark.GameTranscript, judgments map[int]*evaluation.JudgmentResult) error {
	enc := json.NewEncoder(w)
	for _, move := range transcript.Moves {
		record := TurnRecord{
			Turn:      move.Number,
			Board:     move.BoardBefore,
			Action:    move.Action.String(),
			Rationale: move.Reasoning,
		}
		if move.BoardAfter != "" {
			record.BoardAfter = move.BoardAfter
		}
		if j, ok := judgments[move.Number]; ok {
			record.ReasoningScore = &j.NormalizedScore
		}
		if move.Latency > 0 {
			ms := float64(move.Latency.Milliseconds())
			record.LatencyMs = &ms
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("storage: encode turn %d: %w", move.Number, err)
		}
	}
	return nil
}

// ReadEpisodeLog parses a JSONL episode log back into turn records.
func ReadEpisodeLog(r io.Reader) ([]TurnRecord, error) {
	var records []TurnRecord
	dec := json.NewDecoder(r)
	for {
		var record TurnRecord
		if err := dec.Decode(&record); err != nil {
			if err == io.EOF {
				return records, nil
			}
			return nil, fmt.Errorf("storage: decode episode log: %w", err)
		}
		records = append(records, record)
	}
}
