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
	"strings"

	"github.com/mitchellh/mapstructure"
)

type penaltyOptions struct {
	Keywords []string `mapstructure:"keywords"`

	// Penalty is subtracted once per keyword occurrence. Positive values
	// are expected; the rule negates them.
	Penalty float64 `mapstructure:"penalty"`
}

// penaltyRule subtracts a configured penalty per keyword occurrence.
type penaltyRule struct {
	opts penaltyOptions
}

func newPenaltyRule(cfg RuleConfig) (Rule, error) {
	var opts penaltyOptions
	if err := mapstructure.Decode(cfg.Options, &opts); err != nil {
		return nil, fmt.Errorf("rules: decode penalty options: %w", err)
	}
	if len(opts.Keywords) == 0 {
		return nil, fmt.Errorf("rules: penalty rule has no keywords")
	}
	if opts.Penalty < 0 {
		return nil, fmt.Errorf("rules: penalty must be non-negative, got %v", opts.Penalty)
	}
	return &penaltyRule{opts: opts}, nil
}

func (r *penaltyRule) Evaluate(ctx *EvaluationContext) (*Outcome, error) {
	out := &Outcome{}
	lower := strings.ToLower(ctx.Response)
	total := 0
	for _, kw := range r.opts.Keywords {
		n := strings.Count(lower, strings.ToLower(kw))
		if n > 0 {
			total += n
			out.Matched = append(out.Matched, kw)
		}
	}
	out.Score = -r.opts.Penalty * float64(total)
	out.Detail = fmt.Sprintf("%d penalized occurrences", total)
	return out, nil
}
