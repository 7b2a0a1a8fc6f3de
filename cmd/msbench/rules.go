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

package msbench

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation/rules"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Work with dynamic evaluation rule profiles",
	}
	cmd.AddCommand(newRulesCheckCmd())
	cmd.AddCommand(newRulesEvalCmd())
	return cmd
}

func newRulesCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <profile.yaml>",
		Short: "Validate a rule profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rules.LoadConfig(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d rules, scoring %s)\n", cfg.ID, len(cfg.Rules), cfg.ScoringType)
			return nil
		},
	}
}

func newRulesEvalCmd() *cobra.Command {
	var profilePath, inputPath string
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate one response context against a rule profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rules.LoadConfig(profilePath)
			if err != nil {
				return err
			}
			ctx, err := loadRuleContext(inputPath)
			if err != nil {
				return err
			}
			result, err := rules.NewEngine().Evaluate(cfg, ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Rule profile YAML (required)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Evaluation context JSON (required)")
	cobra.CheckErr(cmd.MarkFlagRequired("profile"))
	cobra.CheckErr(cmd.MarkFlagRequired("input"))
	return cmd
}

func loadRuleContext(path string) (*rules.EvaluationContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("msbench: read context: %w", err)
	}
	var ctx rules.EvaluationContext
	if err := json.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("msbench: parse context %s: %w", path, err)
	}
	return &ctx, nil
}
