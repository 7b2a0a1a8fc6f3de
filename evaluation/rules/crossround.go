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
	"regexp"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type crossRoundOptions struct {
	// Extract selects the entity extractors: "capitalized", "years".
	// Empty means both.
	Extract []string `mapstructure:"extract"`

	CallbackScore   float64 `mapstructure:"callback_score"`
	EscalationScore float64 `mapstructure:"escalation_score"`

	// ConsistencyBonus scales the bonus awarded for stable entity-set
	// sizes across rounds.
	ConsistencyBonus float64 `mapstructure:"consistency_bonus"`
}

var (
	capitalizedPattern = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
	yearPattern        = regexp.MustCompile(`\b(1[0-9]{3}|2[0-9]{3})\b`)
)

// crossRoundRule compares entities extracted from the current response with
// the same extraction applied to each prior round. A repeated entity scores a
// callback; a current set strictly larger than a historical one scores an
// escalation; stable entity-set sizes earn a consistency bonus.
type crossRoundRule struct {
	opts crossRoundOptions
}

func newCrossRoundRule(cfg RuleConfig) (Rule, error) {
	var opts crossRoundOptions
	if err := mapstructure.Decode(cfg.Options, &opts); err != nil {
		return nil, fmt.Errorf("rules: decode cross-round options: %w", err)
	}
	for _, e := range opts.Extract {
		if e != "capitalized" && e != "years" {
			return nil, fmt.Errorf("rules: unknown extractor %q", e)
		}
	}
	return &crossRoundRule{opts: opts}, nil
}

func (r *crossRoundRule) Evaluate(ctx *EvaluationContext) (*Outcome, error) {
	current := r.extract(ctx.Response)
	out := &Outcome{}

	if len(ctx.RoundHistory) == 0 {
		out.Detail = "no round history"
		return out, nil
	}

	sizes := make([]float64, 0, len(ctx.RoundHistory)+1)
	callbacks := 0
	escalations := 0
	for _, round := range ctx.RoundHistory {
		prior := r.extract(round.Response)
		sizes = append(sizes, float64(len(prior)))

		for entity := range current {
			if _, ok := prior[entity]; ok {
				callbacks++
				out.Matched = append(out.Matched, entity)
			}
		}
		if len(current) > len(prior) {
			escalations++
		}
	}
	sizes = append(sizes, float64(len(current)))

	out.Score = r.opts.CallbackScore*float64(callbacks) +
		r.opts.EscalationScore*float64(escalations)

	// The consistency bonus is inversely proportional to the coefficient
	// of variation of entity-set sizes across rounds.
	if cv := coefficientOfVariation(sizes); r.opts.ConsistencyBonus > 0 {
		out.Score += r.opts.ConsistencyBonus / (1 + cv)
	}

	sort.Strings(out.Matched)
	out.Matched = dedupe(out.Matched)
	out.Detail = fmt.Sprintf("%d callbacks, %d escalations over %d rounds", callbacks, escalations, len(ctx.RoundHistory))
	return out, nil
}

// extract returns the deduplicated entity set for one response.
func (r *crossRoundRule) extract(response string) map[string]struct{} {
	extractors := r.opts.Extract
	if len(extractors) == 0 {
		extractors = []string{"capitalized", "years"}
	}

	entities := make(map[string]struct{})
	for _, name := range extractors {
		var pattern *regexp.Regexp
		switch name {
		case "capitalized":
			pattern = capitalizedPattern
		case "years":
			pattern = yearPattern
		}
		for _, m := range pattern.FindAllString(response, -1) {
			entities[strings.ToLower(m)] = struct{}{}
		}
	}
	return entities
}

func coefficientOfVariation(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	if mean == 0 {
		return 0
	}
	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance) / mean
}

func dedupe(sorted []string) []string {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, s := range sorted[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
