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

// Package judge implements LLM-as-judge grading of a model's free-text
// reasoning against a fixed rubric.
package judge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/internal/telemetry"
)

// Model is the text-generation collaborator the judge calls. Implementations
// should pin a low temperature so verdicts stay reproducible.
type Model interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Request carries one piece of reasoning to grade.
type Request struct {
	TaskUID    string
	BoardState string
	Action     string
	Reasoning  string

	// Turn is nil for whole-episode judgments.
	Turn *int

	// GroundTruth optionally describes the objectively correct move.
	GroundTruth string
}

// Judge grades reasoning on the {0, 1, 2} rubric. Verdicts for identical
// requests are served from an LRU cache.
type Judge struct {
	model  Model
	parser *responseParser
	cache  *lru.Cache[string, *evaluation.JudgmentResult]
}

// Config configures a Judge.
type Config struct {
	Model Model

	// CacheSize bounds the verdict cache. Zero means 1024.
	CacheSize int
}

// New creates a judge around the given model.
func New(cfg Config) (*Judge, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("judge: model is required")
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New[string, *evaluation.JudgmentResult](size)
	if err != nil {
		return nil, fmt.Errorf("judge: create cache: %w", err)
	}
	return &Judge{
		model:  cfg.Model,
		parser: newResponseParser(),
		cache:  cache,
	}, nil
}

// Judge grades one request. Judge failures never propagate: an unreachable
// model or an unparsable verdict degrades to the neutral default score 1 with
// low confidence.
func (j *Judge) Judge(ctx context.Context, req *Request) *evaluation.JudgmentResult {
	key := cacheKey(req)
	if cached, ok := j.cache.Get(key); ok {
		return cached
	}

	ctx, span := telemetry.StartJudgment(ctx, req.TaskUID, j.model.Name())
	result, degraded := j.judge(ctx, req)
	telemetry.EndJudgment(span, result.RawScore, string(result.Confidence), degraded)
	telemetry.LogJudgment(ctx, req.TaskUID, result.RawScore, string(result.Confidence), result.Feedback)

	j.cache.Add(key, result)
	return result
}

func (j *Judge) judge(ctx context.Context, req *Request) (*evaluation.JudgmentResult, bool) {
	result := &evaluation.JudgmentResult{
		TaskUID:    req.TaskUID,
		Turn:       req.Turn,
		JudgeModel: j.model.Name(),
		Timestamp:  time.Now(),
	}

	response, err := j.model.Generate(ctx, buildRubricPrompt(req))
	if err != nil {
		return neutral(result, fmt.Sprintf("judge model unavailable: %v", err)), true
	}

	verdict, err := j.parser.parse(response)
	if err != nil {
		return neutral(result, fmt.Sprintf("unparsable judge response: %v", err)), true
	}

	result.RawScore = verdict.score
	result.NormalizedScore = float64(verdict.score) / 2
	result.Feedback = verdict.feedback
	result.Confidence = verdict.confidence
	return result, false
}

// JudgeBatch grades requests concurrently up to the given parallelism and
// returns results in input order. Individual failures degrade per item; the
// batch itself never fails.
func (j *Judge) JudgeBatch(ctx context.Context, reqs []*Request, parallelism int) []*evaluation.JudgmentResult {
	if parallelism <= 0 {
		parallelism = 4
	}

	results := make([]*evaluation.JudgmentResult, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = j.Judge(ctx, req)
			return nil
		})
	}
	// Workers never return errors; Wait only orders the writes.
	_ = g.Wait()
	return results
}

// neutral fills the fail-soft default: mid-rubric score, low confidence.
func neutral(result *evaluation.JudgmentResult, feedback string) *evaluation.JudgmentResult {
	result.RawScore = 1
	result.NormalizedScore = 0.5
	result.Feedback = feedback
	result.Confidence = evaluation.ConfidenceLow
	return result
}

func cacheKey(req *Request) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%s", req.TaskUID, req.BoardState, req.Action, req.Reasoning, req.GroundTruth)
	if req.Turn != nil {
		fmt.Fprintf(h, "\x00%d", *req.Turn)
	}
	return hex.EncodeToString(h.Sum(nil))
}
