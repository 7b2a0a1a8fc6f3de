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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation"
)

// FileStore is a JSON file-backed Store laid out as:
//
//	<basePath>/
//	  transcripts/
//	    <gameID>.json
//	  results/
//	    <runID>.json
//	  episodes/
//	    <gameID>.jsonl
type FileStore struct {
	mu       sync.RWMutex
	basePath string
}

// NewFileStore creates the directory layout under basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	for _, dir := range []string{"transcripts", "results", "episodes"} {
		if err := os.MkdirAll(filepath.Join(basePath, dir), 0755); err != nil {
			return nil, fmt.Errorf("storage: create %s directory: %w", dir, err)
		}
	}
	return &FileStore{basePath: basePath}, nil
}

func (f *FileStore) SaveTranscript(ctx context.Context, transcript *benchmark.GameTranscript) error {
	if transcript == nil || transcript.GameID == "" {
		return ErrInvalidInput
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return writeJSON(f.transcriptPath(transcript.GameID), transcript)
}

func (f *FileStore) GetTranscript(ctx context.Context, gameID string) (*benchmark.GameTranscript, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var transcript benchmark.GameTranscript
	if err := readJSON(f.transcriptPath(gameID), &transcript); err != nil {
		return nil, err
	}
	return &transcript, nil
}

// ListTranscripts returns transcripts for one model, or all transcripts when
// modelName is empty.
func (f *FileStore) ListTranscripts(ctx context.Context, modelName string) ([]*benchmark.GameTranscript, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(f.basePath, "transcripts"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: read transcripts directory: %w", err)
	}

	var transcripts []*benchmark.GameTranscript
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		var transcript benchmark.GameTranscript
		if err := readJSON(filepath.Join(f.basePath, "transcripts", entry.Name()), &transcript); err != nil {
			continue
		}
		if modelName != "" && transcript.ModelName != modelName {
			continue
		}
		transcripts = append(transcripts, &transcript)
	}
	return transcripts, nil
}

func (f *FileStore) SaveBatchResult(ctx context.Context, result *evaluation.BatchResult) error {
	if result == nil || result.RunID == "" {
		return ErrInvalidInput
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return writeJSON(f.resultPath(result.RunID), result)
}

func (f *FileStore) GetBatchResult(ctx context.Context, runID string) (*evaluation.BatchResult, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var result evaluation.BatchResult
	if err := readJSON(f.resultPath(runID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListBatchResults returns results for one model, or all results when modelID
// is empty.
func (f *FileStore) ListBatchResults(ctx context.Context, modelID string) ([]*evaluation.BatchResult, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(f.basePath, "results"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: read results directory: %w", err)
	}

	var results []*evaluation.BatchResult
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		var result evaluation.BatchResult
		if err := readJSON(filepath.Join(f.basePath, "results", entry.Name()), &result); err != nil {
			continue
		}
		if modelID != "" && result.ModelID != modelID {
			continue
		}
		results = append(results, &result)
	}
	return results, nil
}

// EpisodeLogPath returns where the episode log for gameID is written.
func (f *FileStore) EpisodeLogPath(gameID string) string {
	return filepath.Join(f.basePath, "episodes", gameID+".jsonl")
}

func (f *FileStore) transcriptPath(gameID string) string {
	return filepath.Join(f.basePath, "transcripts", gameID+".json")
}

func (f *FileStore) resultPath(runID string) string {
	return filepath.Join(f.basePath, "results", runID+".json")
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("storage: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("storage: read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storage: unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}
