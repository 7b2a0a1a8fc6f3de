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
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// RuleType names one of the built-in rule kinds.
type RuleType string

const (
	RulePatternDetection   RuleType = "PATTERN_DETECTION"
	RuleMetricThreshold    RuleType = "METRIC_THRESHOLD"
	RuleCrossRoundAnalysis RuleType = "CROSS_ROUND_ANALYSIS"
	RulePenalty            RuleType = "PENALTY"
)

// ScoringType maps the summed raw score to the final score.
type ScoringType string

const (
	// ScoringBinary maps raw > 0 to a configured success value, else a
	// failure value.
	ScoringBinary ScoringType = "BINARY"

	// ScoringProportional is clamp(raw/max_score, 0, 1).
	ScoringProportional ScoringType = "PROPORTIONAL"

	// ScoringCumulative is clamp(raw, 0, max_score).
	ScoringCumulative ScoringType = "CUMULATIVE"
)

// NormalizationMethod selects the optional post-scoring rescale.
type NormalizationMethod string

const (
	NormalizeMinMax       NormalizationMethod = "min_max"
	NormalizePercentOfMax NormalizationMethod = "percent_of_max"
)

// NormalizationConfig controls the optional damping and rescale applied after
// scoring-type mapping.
type NormalizationConfig struct {
	Method NormalizationMethod `yaml:"method" json:"method"`

	// Min and Max bound the min_max rescale.
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// RuleConfig is one typed rule inside a profile. Options carries the
// type-specific settings and is decoded by the rule's factory.
type RuleConfig struct {
	Type RuleType `yaml:"type" json:"type"`

	// Name identifies the rule in breakdowns. Empty defaults to the type.
	Name string `yaml:"name" json:"name,omitempty"`

	// Category groups rule scores into dimension subtotals.
	Category string `yaml:"category" json:"category,omitempty"`

	Options map[string]any `yaml:"options" json:"options,omitempty"`
}

// EvaluationRuleConfig is one complete scoring profile.
type EvaluationRuleConfig struct {
	ID          string       `yaml:"id" json:"id"`
	ScoringType ScoringType  `yaml:"scoring_type" json:"scoring_type"`
	Rules       []RuleConfig `yaml:"rules" json:"rules"`
	MaxScore    float64      `yaml:"max_score" json:"max_score"`

	// SuccessValue and FailureValue apply to BINARY scoring. Unset means
	// 1 and 0.
	SuccessValue *float64 `yaml:"success_value" json:"success_value,omitempty"`
	FailureValue *float64 `yaml:"failure_value" json:"failure_value,omitempty"`

	Normalization *NormalizationConfig `yaml:"normalization" json:"normalization,omitempty"`
}

// Validate checks the profile is well formed.
func (c *EvaluationRuleConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("rules: config id is empty")
	}
	switch c.ScoringType {
	case ScoringBinary:
	case ScoringProportional, ScoringCumulative:
		// Both map through max_score; without it every raw score would
		// clamp to zero.
		if c.MaxScore <= 0 {
			return fmt.Errorf("rules: %s scoring needs max_score > 0", c.ScoringType)
		}
	default:
		return fmt.Errorf("rules: unknown scoring type %q", c.ScoringType)
	}
	if len(c.Rules) == 0 {
		return fmt.Errorf("rules: config %s has no rules", c.ID)
	}
	for i, r := range c.Rules {
		if r.Type == "" {
			return fmt.Errorf("rules: config %s rule %d has no type", c.ID, i)
		}
	}
	if n := c.Normalization; n != nil {
		switch n.Method {
		case NormalizeMinMax:
			if n.Max <= n.Min {
				return fmt.Errorf("rules: min_max normalization needs max > min")
			}
		case NormalizePercentOfMax:
			if c.MaxScore <= 0 {
				return fmt.Errorf("rules: percent_of_max normalization needs max_score > 0")
			}
		default:
			return fmt.Errorf("rules: unknown normalization method %q", n.Method)
		}
	}
	return nil
}

// ParseConfig decodes one profile from YAML.
func ParseConfig(r io.Reader) (*EvaluationRuleConfig, error) {
	var cfg EvaluationRuleConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("rules: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads one profile from disk.
func LoadConfig(path string) (*EvaluationRuleConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rules: open config: %w", err)
	}
	defer f.Close()
	return ParseConfig(f)
}
