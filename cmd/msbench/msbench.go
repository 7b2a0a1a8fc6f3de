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

// Package msbench builds the benchmark CLI. Game boards are external
// collaborators, so the package is embedded rather than shipped as a binary:
// the hosting program registers its game factories and runs the command.
//
//	cmd := msbench.New(msbench.Options{
//		Games: map[string]benchmark.GameFactory{"minesweeper": mines.New},
//	})
//	if err := cmd.Execute(); err != nil {
//		os.Exit(1)
//	}
package msbench

import (
	"github.com/spf13/cobra"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation/judge"
)

// Options wires the external collaborators into the CLI.
type Options struct {
	// Games maps game names to factories. Required for the run command.
	Games map[string]benchmark.GameFactory

	// Model overrides the player model. Nil means a Gemini client built from
	// the run config's model name and ambient credentials.
	Model benchmark.Model

	// JudgeModel overrides the judge model the same way.
	JudgeModel judge.Model
}

// New builds the root msbench command.
func New(opts Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "msbench",
		Short:         "Run and score language-model game benchmarks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newScoreCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newLeaderboardCmd())
	return root
}
