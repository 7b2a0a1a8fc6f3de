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

/*
Package evaluation scores game transcripts.

The package is organized leaf-first:

  - [MetricsCalculator] computes the basic aggregate metrics over a set of
    sealed transcripts: win rate, valid-move rate, flag precision/recall,
    average moves to win/loss, board coverage, reasoning presence.
  - [StatisticalAnalyzer] provides the closed-form statistics: Wilson score
    intervals, two-proportion z-tests, Welch t-tests, and Cohen effect sizes.
  - [AdvancedMetricsCalculator] combines the basic metrics with judge output
    into the MS-S/MS-I composite scores and the global score.

All calculators are pure functions over immutable transcripts: results are
recomputed on demand, never kept as mutable state, and the calculators are
safe for concurrent use.

Denominator convention: episodes sealed as ERROR are excluded from both the
win-rate denominator and the confidence-interval trial count. An ERROR episode
measures harness or agent breakdown, not game skill.

Subpackages: evaluation/judge grades free-text reasoning with a judge-
configured model; evaluation/rules interprets declarative scoring profiles;
evaluation/storage persists transcripts and batch results.
*/
package evaluation
