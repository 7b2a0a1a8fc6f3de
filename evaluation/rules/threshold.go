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

	"github.com/mitchellh/mapstructure"
)

type thresholdClause struct {
	// Operator is one of <, <=, >, >=, ==, !=. Empty for the default
	// clause.
	Operator string  `mapstructure:"operator"`
	Value    float64 `mapstructure:"value"`

	Score        *float64 `mapstructure:"score"`
	ScoreFormula string   `mapstructure:"score_formula"`

	// Default marks the clause used when no comparison clause matches.
	Default bool `mapstructure:"default"`
}

type thresholdOptions struct {
	Metric  string            `mapstructure:"metric"`
	Clauses []thresholdClause `mapstructure:"clauses"`
}

// thresholdRule reads one numeric metadata value and evaluates an ordered
// clause list; the first satisfied clause wins.
type thresholdRule struct {
	metric  string
	clauses []thresholdClause

	// formulas are pre-parsed, indexed like clauses; nil for fixed scores.
	formulas []*formula
}

func newThresholdRule(cfg RuleConfig) (Rule, error) {
	var opts thresholdOptions
	if err := mapstructure.Decode(cfg.Options, &opts); err != nil {
		return nil, fmt.Errorf("rules: decode threshold options: %w", err)
	}
	if opts.Metric == "" {
		return nil, fmt.Errorf("rules: threshold rule has no metric name")
	}
	if len(opts.Clauses) == 0 {
		return nil, fmt.Errorf("rules: threshold rule has no clauses")
	}

	formulas := make([]*formula, len(opts.Clauses))
	for i, clause := range opts.Clauses {
		if !clause.Default {
			switch clause.Operator {
			case "<", "<=", ">", ">=", "==", "!=":
			default:
				return nil, fmt.Errorf("rules: threshold clause %d has unknown operator %q", i, clause.Operator)
			}
		}
		if clause.ScoreFormula != "" {
			f, err := parseFormula(clause.ScoreFormula)
			if err != nil {
				return nil, fmt.Errorf("rules: threshold clause %d: %w", i, err)
			}
			formulas[i] = f
		} else if clause.Score == nil {
			return nil, fmt.Errorf("rules: threshold clause %d has neither score nor score_formula", i)
		}
	}

	return &thresholdRule{
		metric:   opts.Metric,
		clauses:  opts.Clauses,
		formulas: formulas,
	}, nil
}

func (r *thresholdRule) Evaluate(ctx *EvaluationContext) (*Outcome, error) {
	value, ok := ctx.MetadataNumber(r.metric)
	if !ok {
		return nil, fmt.Errorf("rules: metadata has no numeric value for %q", r.metric)
	}

	for i, clause := range r.clauses {
		if !clause.Default && !compare(value, clause.Operator, clause.Value) {
			continue
		}

		var score float64
		if f := r.formulas[i]; f != nil {
			v, err := f.eval(value)
			if err != nil {
				return nil, err
			}
			score = v
		} else {
			score = *clause.Score
		}

		detail := fmt.Sprintf("%s=%v matched clause %d", r.metric, value, i)
		if clause.Default {
			detail = fmt.Sprintf("%s=%v fell through to default clause", r.metric, value)
		}
		return &Outcome{Score: score, Detail: detail}, nil
	}

	return &Outcome{Detail: fmt.Sprintf("%s=%v matched no clause", r.metric, value)}, nil
}

func compare(value float64, operator string, threshold float64) bool {
	switch operator {
	case "<":
		return value < threshold
	case "<=":
		return value <= threshold
	case ">":
		return value > threshold
	case ">=":
		return value >= threshold
	case "==":
		return value == threshold
	case "!=":
		return value != threshold
	default:
		return false
	}
}
