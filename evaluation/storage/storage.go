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

// Package storage persists transcripts and batch results in their canonical
// on-disk formats.
package storage

import (
	"context"
	"errors"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation"
)

var (
	// ErrNotFound is returned when a transcript or result does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidInput is returned for nil or unidentified records.
	ErrInvalidInput = errors.New("storage: invalid input")
)

// Store persists transcripts and batch results. Implementations must be safe
// for concurrent use; episode writes happen once per completed episode.
type Store interface {
	SaveTranscript(ctx context.Context, transcript *benchmark.GameTranscript) error
	GetTranscript(ctx context.Context, gameID string) (*benchmark.GameTranscript, error)
	ListTranscripts(ctx context.Context, modelName string) ([]*benchmark.GameTranscript, error)

	SaveBatchResult(ctx context.Context, result *evaluation.BatchResult) error
	GetBatchResult(ctx context.Context, runID string) (*evaluation.BatchResult, error)
	ListBatchResults(ctx context.Context, modelID string) ([]*evaluation.BatchResult, error)
}
