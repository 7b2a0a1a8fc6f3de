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

package evaluation

import (
	"fmt"
	"math"
	"sort"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
)

// Composite score weights. Static tasks reward accuracy, interactive tasks
// reward winning the full game.
const (
	staticAccuracyWeight  = 0.7
	staticValidWeight     = 0.1
	staticReasoningWeight = 0.2

	interactiveWinWeight       = 0.5
	interactiveCoverageWeight  = 0.2
	interactiveValidWeight     = 0.1
	interactiveFlagWeight      = 0.1
	interactiveReasoningWeight = 0.1
)

// DefaultGlobalWeights are the category weights for the global score.
var DefaultGlobalWeights = map[benchmark.TaskType]float64{
	benchmark.TaskStatic:      0.4,
	benchmark.TaskInteractive: 0.6,
}

// LatencyStats summarizes per-move model latency in milliseconds.
type LatencyStats struct {
	MeanMs   float64 `json:"mean_ms"`
	MedianMs float64 `json:"median_ms"`
	P95Ms    float64 `json:"p95_ms"`
	MaxMs    float64 `json:"max_ms"`
}

// AdvancedMetrics extends EvaluationMetrics with composite scores, latency
// stats, and a confidence interval on the win rate.
type AdvancedMetrics struct {
	EvaluationMetrics

	TaskType benchmark.TaskType `json:"task_type"`

	// MSSScore and MSIScore are the composite category scores. Only the one
	// matching TaskType is populated.
	MSSScore float64 `json:"ms_s_score"`
	MSIScore float64 `json:"ms_i_score"`

	GlobalScore float64 `json:"global_score"`

	// ReasoningScore is the mean normalized judge score over all judgments,
	// zero when no judgments were supplied.
	ReasoningScore float64 `json:"reasoning_score"`

	Latency LatencyStats `json:"latency"`

	// WinRateInterval is the Wilson interval on the win rate over eligible
	// episodes, at 95% confidence.
	WinRateInterval Interval `json:"win_rate_interval"`

	// SampleSize matches the confidence-interval trial count: episodes
	// excluding ERROR.
	SampleSize int `json:"sample_size"`

	// LatencySamples carries the raw per-move latencies so significance
	// tests on means can run from stored metrics.
	LatencySamples []float64 `json:"latency_samples,omitempty"`
}

// SignificanceResult reports a two-sample comparison on one metric.
type SignificanceResult struct {
	Metric              string  `json:"metric"`
	ValueA              float64 `json:"value_a"`
	ValueB              float64 `json:"value_b"`
	AbsoluteDifference  float64 `json:"absolute_difference"`
	RelativeImprovement float64 `json:"relative_improvement"`
	PValue              float64 `json:"p_value"`
	Significant         bool    `json:"is_significant"`
	EffectSize          float64 `json:"effect_size"`

	// Test names the procedure used: "two-proportion z-test" or
	// "welch t-test".
	Test string `json:"test"`
}

// AdvancedMetricsCalculator builds composite scores from basic metrics, judge
// output, and the statistical analyzer.
type AdvancedMetricsCalculator struct {
	basic    *MetricsCalculator
	analyzer *StatisticalAnalyzer
}

// NewAdvancedMetricsCalculator creates a calculator with a default analyzer.
func NewAdvancedMetricsCalculator() *AdvancedMetricsCalculator {
	return &AdvancedMetricsCalculator{
		basic:    NewMetricsCalculator(),
		analyzer: NewStatisticalAnalyzer(),
	}
}

// CalculateAdvanced computes the full metric set for one task type.
// Judgments may be empty, in which case the reasoning score is zero.
func (c *AdvancedMetricsCalculator) CalculateAdvanced(transcripts []*benchmark.GameTranscript, judgments []*JudgmentResult, taskType benchmark.TaskType) (*AdvancedMetrics, error) {
	base, err := c.basic.Calculate(transcripts)
	if err != nil {
		return nil, err
	}

	am := &AdvancedMetrics{
		EvaluationMetrics: *base,
		TaskType:          taskType,
		SampleSize:        base.Eligible,
	}

	if len(judgments) > 0 {
		sum := 0.0
		for _, j := range judgments {
			sum += j.NormalizedScore
		}
		am.ReasoningScore = sum / float64(len(judgments))
	}

	am.LatencySamples = latencySamples(transcripts)
	am.Latency = summarizeLatency(am.LatencySamples)

	switch taskType {
	case benchmark.TaskStatic:
		// Static tasks are single-decision: accuracy is the win rate.
		am.MSSScore = staticAccuracyWeight*base.WinRate +
			staticValidWeight*base.ValidMoveRate +
			staticReasoningWeight*am.ReasoningScore
	case benchmark.TaskInteractive:
		flagMean := (base.FlagPrecision + base.FlagRecall) / 2
		am.MSIScore = interactiveWinWeight*base.WinRate +
			interactiveCoverageWeight*base.BoardCoverageOnLoss +
			interactiveValidWeight*base.ValidMoveRate +
			interactiveFlagWeight*flagMean +
			interactiveReasoningWeight*am.ReasoningScore
	default:
		return nil, fmt.Errorf("evaluation: unknown task type %q", taskType)
	}

	if base.Eligible > 0 {
		iv, err := c.analyzer.WilsonInterval(base.Wins, base.Eligible, 0.95)
		if err != nil {
			return nil, err
		}
		am.WinRateInterval = iv
	}

	return am, nil
}

// CalculateGlobalScore combines category scores into one ranking number using
// a weighted geometric mean. Either category may be nil; weights of absent
// categories are excluded and the remainder renormalized.
func (c *AdvancedMetricsCalculator) CalculateGlobalScore(static, interactive *AdvancedMetrics, weights map[benchmark.TaskType]float64) (float64, error) {
	if weights == nil {
		weights = DefaultGlobalWeights
	}

	type category struct {
		score, weight float64
	}
	var present []category
	if static != nil {
		present = append(present, category{static.MSSScore, weights[benchmark.TaskStatic]})
	}
	if interactive != nil {
		present = append(present, category{interactive.MSIScore, weights[benchmark.TaskInteractive]})
	}
	if len(present) == 0 {
		return 0, fmt.Errorf("evaluation: global score needs at least one category")
	}

	product := 1.0
	totalWeight := 0.0
	for _, cat := range present {
		if cat.weight <= 0 {
			return 0, fmt.Errorf("evaluation: non-positive weight %v", cat.weight)
		}
		if cat.score < 0 {
			return 0, fmt.Errorf("evaluation: negative category score %v", cat.score)
		}
		product *= math.Pow(cat.score, cat.weight)
		totalWeight += cat.weight
	}
	return math.Pow(product, 1/totalWeight), nil
}

// TestSignificance compares one named metric between two runs. Proportion
// metrics use the two-proportion z-test; latency uses Welch's t-test on the
// stored per-move samples.
func (c *AdvancedMetricsCalculator) TestSignificance(a, b *AdvancedMetrics, metric string, alpha float64) (*SignificanceResult, error) {
	if alpha <= 0 {
		alpha = 0.05
	}
	analyzer := &StatisticalAnalyzer{Alpha: alpha}

	switch metric {
	case "win_rate":
		return proportionSignificance(analyzer, metric, a.Wins, a.Eligible, b.Wins, b.Eligible)
	case "valid_move_rate":
		return proportionSignificance(analyzer, metric, a.ValidMoves, a.TotalMoves, b.ValidMoves, b.TotalMoves)
	case "latency":
		tr, err := analyzer.WelchTTest(a.LatencySamples, b.LatencySamples)
		if err != nil {
			return nil, err
		}
		meanA, _ := meanVariance(a.LatencySamples)
		meanB, _ := meanVariance(b.LatencySamples)
		return &SignificanceResult{
			Metric:              metric,
			ValueA:              meanA,
			ValueB:              meanB,
			AbsoluteDifference:  meanA - meanB,
			RelativeImprovement: relativeImprovement(meanA, meanB),
			PValue:              tr.PValue,
			Significant:         tr.Significant,
			EffectSize:          tr.EffectSize,
			Test:                "welch t-test",
		}, nil
	default:
		return nil, fmt.Errorf("evaluation: unsupported significance metric %q", metric)
	}
}

func proportionSignificance(analyzer *StatisticalAnalyzer, metric string, s1, n1, s2, n2 int) (*SignificanceResult, error) {
	pr, err := analyzer.TwoProportionTest(s1, n1, s2, n2)
	if err != nil {
		return nil, err
	}
	p1 := float64(s1) / float64(n1)
	p2 := float64(s2) / float64(n2)
	return &SignificanceResult{
		Metric:              metric,
		ValueA:              p1,
		ValueB:              p2,
		AbsoluteDifference:  p1 - p2,
		RelativeImprovement: relativeImprovement(p1, p2),
		PValue:              pr.PValue,
		Significant:         pr.Significant,
		EffectSize:          pr.EffectSize,
		Test:                "two-proportion z-test",
	}, nil
}

func relativeImprovement(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b
}

func latencySamples(transcripts []*benchmark.GameTranscript) []float64 {
	var samples []float64
	for _, t := range transcripts {
		for _, m := range t.Moves {
			samples = append(samples, float64(m.Latency.Milliseconds()))
		}
	}
	return samples
}

func summarizeLatency(samples []float64) LatencyStats {
	if len(samples) == 0 {
		return LatencyStats{}
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	sum := 0.0
	for _, s := range sorted {
		sum += s
	}
	n := len(sorted)
	return LatencyStats{
		MeanMs:   sum / float64(n),
		MedianMs: percentile(sorted, 0.5),
		P95Ms:    percentile(sorted, 0.95),
		MaxMs:    sorted[n-1],
	}
}

// percentile uses nearest-rank on an already sorted slice.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
