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
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type patternSpec struct {
	Name     string   `mapstructure:"name"`
	Regex    string   `mapstructure:"regex"`
	Keywords []string `mapstructure:"keywords"`
	Score    float64  `mapstructure:"score"`
}

type patternOptions struct {
	Patterns []patternSpec `mapstructure:"patterns"`
}

type compiledPattern struct {
	spec patternSpec
	re   *regexp.Regexp
}

// patternRule scores score x occurrence_count for every configured pattern
// matched in the response. Matching is case-insensitive.
type patternRule struct {
	patterns []compiledPattern
}

func newPatternRule(cfg RuleConfig) (Rule, error) {
	var opts patternOptions
	if err := mapstructure.Decode(cfg.Options, &opts); err != nil {
		return nil, fmt.Errorf("rules: decode pattern options: %w", err)
	}
	if len(opts.Patterns) == 0 {
		return nil, fmt.Errorf("rules: pattern rule has no patterns")
	}

	compiled := make([]compiledPattern, 0, len(opts.Patterns))
	for _, spec := range opts.Patterns {
		cp := compiledPattern{spec: spec}
		if spec.Regex != "" {
			re, err := regexp.Compile("(?i)" + spec.Regex)
			if err != nil {
				return nil, fmt.Errorf("rules: pattern %q: %w", spec.Name, err)
			}
			cp.re = re
		} else if len(spec.Keywords) == 0 {
			return nil, fmt.Errorf("rules: pattern %q has neither regex nor keywords", spec.Name)
		}
		compiled = append(compiled, cp)
	}
	return &patternRule{patterns: compiled}, nil
}

func (r *patternRule) Evaluate(ctx *EvaluationContext) (*Outcome, error) {
	out := &Outcome{}
	lower := strings.ToLower(ctx.Response)

	for _, cp := range r.patterns {
		count := 0
		if cp.re != nil {
			found := cp.re.FindAllString(ctx.Response, -1)
			count += len(found)
			out.Matched = append(out.Matched, found...)
		}
		for _, kw := range cp.spec.Keywords {
			n := strings.Count(lower, strings.ToLower(kw))
			if n > 0 {
				count += n
				out.Matched = append(out.Matched, kw)
			}
		}
		out.Score += cp.spec.Score * float64(count)
	}

	out.Detail = fmt.Sprintf("%d pattern matches", len(out.Matched))
	return out, nil
}
