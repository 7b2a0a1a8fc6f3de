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
	"sync"
)

// Outcome is one rule's contribution to an evaluation.
type Outcome struct {
	Score float64 `json:"score"`

	// Matched lists the literal tokens that triggered the score, kept for
	// auditability.
	Matched []string `json:"matched,omitempty"`

	// Detail is a short human-readable account of the computation.
	Detail string `json:"detail,omitempty"`
}

// Rule computes one independent sub-score from a context.
type Rule interface {
	Evaluate(ctx *EvaluationContext) (*Outcome, error)
}

// Factory builds a rule from its decoded config.
type Factory func(cfg RuleConfig) (Rule, error)

// Registry maps rule types to factories. Registration is explicit; there is
// no filesystem or reflection-based discovery.
type Registry struct {
	mu        sync.RWMutex
	factories map[RuleType]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[RuleType]Factory)}
}

// Register adds a factory for a rule type. Double registration is an error.
func (r *Registry) Register(ruleType RuleType, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[ruleType]; exists {
		return fmt.Errorf("rules: factory already registered for %s", ruleType)
	}
	r.factories[ruleType] = factory
	return nil
}

// Create builds a rule instance from its config.
func (r *Registry) Create(cfg RuleConfig) (Rule, error) {
	r.mu.RLock()
	factory, exists := r.factories[cfg.Type]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("rules: no factory registered for %s", cfg.Type)
	}
	return factory(cfg)
}

// Types returns all registered rule types.
func (r *Registry) Types() []RuleType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]RuleType, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	return types
}

// DefaultRegistry holds the built-in rule types.
var DefaultRegistry = NewRegistry()

func init() {
	for ruleType, factory := range map[RuleType]Factory{
		RulePatternDetection:   newPatternRule,
		RuleMetricThreshold:    newThresholdRule,
		RuleCrossRoundAnalysis: newCrossRoundRule,
		RulePenalty:            newPenaltyRule,
	} {
		if err := DefaultRegistry.Register(ruleType, factory); err != nil {
			panic(err)
		}
	}
}
