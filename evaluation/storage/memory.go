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
	"sync"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation"
)

// MemoryStore is an in-memory Store for testing and development.
type MemoryStore struct {
	mu          sync.RWMutex
	transcripts map[string]*benchmark.GameTranscript
	results     map[string]*evaluation.BatchResult
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transcripts: make(map[string]*benchmark.GameTranscript),
		results:     make(map[string]*evaluation.BatchResult),
	}
}

func (m *MemoryStore) SaveTranscript(ctx context.Context, transcript *benchmark.GameTranscript) error {
	if transcript == nil || transcript.GameID == "" {
		return ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *transcript
	m.transcripts[transcript.GameID] = &copied
	return nil
}

func (m *MemoryStore) GetTranscript(ctx context.Context, gameID string) (*benchmark.GameTranscript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	transcript, ok := m.transcripts[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *transcript
	return &copied, nil
}

func (m *MemoryStore) ListTranscripts(ctx context.Context, modelName string) ([]*benchmark.GameTranscript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*benchmark.GameTranscript
	for _, transcript := range m.transcripts {
		if modelName != "" && transcript.ModelName != modelName {
			continue
		}
		copied := *transcript
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MemoryStore) SaveBatchResult(ctx context.Context, result *evaluation.BatchResult) error {
	if result == nil || result.RunID == "" {
		return ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *result
	m.results[result.RunID] = &copied
	return nil
}

func (m *MemoryStore) GetBatchResult(ctx context.Context, runID string) (*evaluation.BatchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result, ok := m.results[runID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *result
	return &copied, nil
}

func (m *MemoryStore) ListBatchResults(ctx context.Context, modelID string) ([]*evaluation.BatchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*evaluation.BatchResult
	for _, result := range m.results {
		if modelID != "" && result.ModelID != modelID {
			continue
		}
		copied := *result
		out = append(out, &copied)
	}
	return out, nil
}
