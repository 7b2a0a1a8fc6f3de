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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation"
	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation/storage"
)

// scoreReport is the JSON the score command prints.
type scoreReport struct {
	ModelID     string                      `json:"model_id"`
	Episodes    int                         `json:"episodes"`
	GlobalScore float64                     `json:"global_score"`
	Static      *evaluation.AdvancedMetrics `json:"static,omitempty"`
	Interactive *evaluation.AdvancedMetrics `json:"interactive,omitempty"`
}

func newScoreCmd() *cobra.Command {
	var dataDir, modelName string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Recompute metrics from stored transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := scoreStored(cmd.Context(), dataDir, modelName)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVarP(&dataDir, "data", "d", defaultOutputDir, "Directory holding stored transcripts")
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "Model to score (required)")
	cobra.CheckErr(cmd.MarkFlagRequired("model"))
	return cmd
}

func scoreStored(ctx context.Context, dataDir, modelName string) (*scoreReport, error) {
	transcripts, err := loadStoredTranscripts(ctx, dataDir, modelName)
	if err != nil {
		return nil, err
	}

	static, interactive, global, err := scoreTranscripts(transcripts, nil)
	if err != nil {
		return nil, err
	}
	return &scoreReport{
		ModelID:     modelName,
		Episodes:    len(transcripts),
		GlobalScore: global,
		Static:      static,
		Interactive: interactive,
	}, nil
}

func newCompareCmd() *cobra.Command {
	var dataDir, metricName string
	var alpha float64
	cmd := &cobra.Command{
		Use:   "compare <model-a> <model-b>",
		Short: "Test whether two models differ significantly on one metric",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := compareStored(cmd.Context(), dataDir, args[0], args[1], metricName, alpha)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&dataDir, "data", "d", defaultOutputDir, "Directory holding stored transcripts")
	cmd.Flags().StringVarP(&metricName, "metric", "M", "win_rate", "Metric to compare: win_rate, valid_move_rate, or latency")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance level")
	return cmd
}

// compareStored compares the interactive metrics of two models over their
// stored transcripts.
func compareStored(ctx context.Context, dataDir, modelA, modelB, metricName string, alpha float64) (*evaluation.SignificanceResult, error) {
	calc := evaluation.NewAdvancedMetricsCalculator()

	advanced := func(modelName string) (*evaluation.AdvancedMetrics, error) {
		transcripts, err := loadStoredTranscripts(ctx, dataDir, modelName)
		if err != nil {
			return nil, err
		}
		var interactive []*benchmark.GameTranscript
		for _, tr := range transcripts {
			if tr.TaskType == benchmark.TaskInteractive {
				interactive = append(interactive, tr)
			}
		}
		if len(interactive) == 0 {
			return nil, fmt.Errorf("msbench: no interactive transcripts for model %q under %s", modelName, dataDir)
		}
		return calc.CalculateAdvanced(interactive, nil, benchmark.TaskInteractive)
	}

	a, err := advanced(modelA)
	if err != nil {
		return nil, fmt.Errorf("msbench: scoring %s: %w", modelA, err)
	}
	b, err := advanced(modelB)
	if err != nil {
		return nil, fmt.Errorf("msbench: scoring %s: %w", modelB, err)
	}
	return calc.TestSignificance(a, b, metricName, alpha)
}

func loadStoredTranscripts(ctx context.Context, dataDir, modelName string) ([]*benchmark.GameTranscript, error) {
	store, err := storage.NewFileStore(dataDir)
	if err != nil {
		return nil, err
	}
	transcripts, err := store.ListTranscripts(ctx, modelName)
	if err != nil {
		return nil, err
	}
	if len(transcripts) == 0 {
		return nil, fmt.Errorf("msbench: no transcripts for model %q under %s", modelName, dataDir)
	}
	return transcripts, nil
}
