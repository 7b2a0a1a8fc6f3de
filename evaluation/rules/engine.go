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

package rules

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// RuleBreakdown records one rule's contribution for auditability. A rule
// that errored contributes score 0 and carries the error text.
type RuleBreakdown struct {
	Name     string   `json:"name"`
	Type     RuleType `json:"type"`
	Category string   `json:"category,omitempty"`
	Score    float64  `json:"score"`
	Matched  []string `json:"matched,omitempty"`
	Detail   string   `json:"detail,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// EvaluationResult is the output of one engine evaluation.
type EvaluationResult struct {
	EvaluationID    string          `json:"evaluation_id"`
	ConfigID        string          `json:"config_id"`
	RawScore        float64         `json:"raw_score"`
	FinalScore      float64         `json:"final_score"`
	NormalizedScore float64         `json:"normalized_score"`
	RuleBreakdown   []RuleBreakdown `json:"rule_breakdown"`

	// DimensionScores groups rule subtotals by their category tag.
	DimensionScores map[string]float64 `json:"dimension_scores,omitempty"`

	// Metadata records evaluation provenance: the scoring type, the rule
	// count, and the session that produced the context when known.
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Engine interprets rule configurations against evaluation contexts.
type Engine struct {
	registry *Registry
}

// NewEngine creates an engine over the default rule registry.
func NewEngine() *Engine {
	return &Engine{registry: DefaultRegistry}
}

// NewEngineWithRegistry creates an engine over a custom registry.
func NewEngineWithRegistry(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Evaluate runs every rule in the config against the context. A single rule
// failing, at construction or at evaluation, contributes score 0 and is
// recorded in the breakdown; it never aborts the evaluation.
func (e *Engine) Evaluate(cfg *EvaluationRuleConfig, ctx *EvaluationContext) (*EvaluationResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		return nil, fmt.Errorf("rules: nil evaluation context")
	}

	result := &EvaluationResult{
		EvaluationID:  uuid.NewString(),
		ConfigID:      cfg.ID,
		RuleBreakdown: make([]RuleBreakdown, 0, len(cfg.Rules)),
		Timestamp:     time.Now(),
	}

	dimensions := make(map[string]float64)
	for _, ruleCfg := range cfg.Rules {
		bd := RuleBreakdown{
			Name:     ruleCfg.Name,
			Type:     ruleCfg.Type,
			Category: ruleCfg.Category,
		}
		if bd.Name == "" {
			bd.Name = string(ruleCfg.Type)
		}

		outcome, err := e.runRule(ruleCfg, ctx)
		if err != nil {
			bd.Error = err.Error()
		} else {
			bd.Score = outcome.Score
			bd.Matched = outcome.Matched
			bd.Detail = outcome.Detail
		}

		result.RawScore += bd.Score
		if bd.Category != "" {
			dimensions[bd.Category] += bd.Score
		}
		result.RuleBreakdown = append(result.RuleBreakdown, bd)
	}
	if len(dimensions) > 0 {
		result.DimensionScores = dimensions
	}

	result.FinalScore = mapScore(cfg, result.RawScore)
	result.NormalizedScore = normalizeScore(cfg, result.RawScore, result.FinalScore)

	result.Metadata = map[string]any{
		"scoring_type": string(cfg.ScoringType),
		"rule_count":   len(cfg.Rules),
	}
	if ctx.SessionID != "" {
		result.Metadata["session_id"] = ctx.SessionID
	}
	return result, nil
}

// runRule isolates one rule's construction and evaluation.
func (e *Engine) runRule(cfg RuleConfig, ctx *EvaluationContext) (*Outcome, error) {
	rule, err := e.registry.Create(cfg)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

// mapScore applies the scoring-type mapping from raw to final score.
func mapScore(cfg *EvaluationRuleConfig, raw float64) float64 {
	switch cfg.ScoringType {
	case ScoringBinary:
		success, failure := 1.0, 0.0
		if cfg.SuccessValue != nil {
			success = *cfg.SuccessValue
		}
		if cfg.FailureValue != nil {
			failure = *cfg.FailureValue
		}
		if raw > 0 {
			return success
		}
		return failure
	case ScoringProportional:
		return clamp(raw/cfg.MaxScore, 0, 1)
	case ScoringCumulative:
		return clamp(raw, 0, cfg.MaxScore)
	default:
		return raw
	}
}

// normalizeScore applies the optional damping and rescale. Raw scores above 1
// are damped with log(1+raw) before rescaling.
func normalizeScore(cfg *EvaluationRuleConfig, raw, final float64) float64 {
	n := cfg.Normalization
	if n == nil {
		return final
	}

	damped := raw
	if raw > 1 {
		damped = math.Log1p(raw)
	}

	switch n.Method {
	case NormalizeMinMax:
		return clamp((damped-n.Min)/(n.Max-n.Min), 0, 1)
	case NormalizePercentOfMax:
		ceiling := cfg.MaxScore
		if ceiling > 1 {
			ceiling = math.Log1p(ceiling)
		}
		if ceiling == 0 {
			return 0
		}
		return clamp(damped/ceiling, 0, 1)
	default:
		return final
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
