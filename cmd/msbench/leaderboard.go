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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/leaderboard"
)

func newLeaderboardCmd() *cobra.Command {
	var dbPath, evalSpec string
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Inspect and export the leaderboard",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "leaderboard.db", "Leaderboard sqlite file")
	cmd.PersistentFlags().StringVar(&evalSpec, "spec", "", "Evaluation spec (required)")
	cmd.PersistentFlags().IntVar(&limit, "limit", 0, "Maximum entries (0 means the store default)")
	cobra.CheckErr(cmd.MarkPersistentFlagRequired("spec"))

	top := &cobra.Command{
		Use:   "top",
		Short: "Print the current standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := leaderboard.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Top(cmd.Context(), evalSpec, limit)
			if err != nil {
				return err
			}
			for i, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %-40s global=%.4f win=%.4f reasoning=%.4f\n",
					i+1, e.ModelID, e.Metrics.GlobalScore, e.Metrics.WinRate, e.Metrics.ReasoningScore)
			}
			return nil
		},
	}

	var outPath string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the standings as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := leaderboard.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if outPath == "" || outPath == "-" {
				return leaderboard.Export(cmd.Context(), store, evalSpec, limit, cmd.OutOrStdout())
			}
			return leaderboard.ExportFile(cmd.Context(), store, evalSpec, limit, outPath)
		},
	}
	export.Flags().StringVarP(&outPath, "out", "o", "-", "Output file, - for stdout")

	cmd.AddCommand(top)
	cmd.AddCommand(export)
	return cmd
}
