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
	"math"
	"testing"
)

func TestWilsonInterval_ContainsObservedProportion(t *testing.T) {
	a := NewStatisticalAnalyzer()

	iv, err := a.WilsonInterval(8, 10, 0.95)
	if err != nil {
		t.Fatalf("WilsonInterval: %v", err)
	}
	if iv.Lower > 0.8 || iv.Upper < 0.8 {
		t.Errorf("interval [%v, %v] does not contain 0.8", iv.Lower, iv.Upper)
	}
	if iv.Lower < 0 || iv.Upper > 1 {
		t.Errorf("interval [%v, %v] escapes [0, 1]", iv.Lower, iv.Upper)
	}
	// Known value for Wilson(8, 10, 0.95): roughly [0.49, 0.943].
	if math.Abs(iv.Lower-0.4902) > 0.005 || math.Abs(iv.Upper-0.9433) > 0.005 {
		t.Errorf("interval [%v, %v], want approx [0.490, 0.943]", iv.Lower, iv.Upper)
	}
}

func TestWilsonInterval_Boundaries(t *testing.T) {
	a := NewStatisticalAnalyzer()

	tests := []struct {
		name      string
		successes int
		trials    int
	}{
		{"all failures", 0, 10},
		{"all successes", 10, 10},
		{"single trial", 1, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			iv, err := a.WilsonInterval(tc.successes, tc.trials, 0.95)
			if err != nil {
				t.Fatalf("WilsonInterval: %v", err)
			}
			if iv.Lower < 0 || iv.Upper > 1 || iv.Lower > iv.Upper {
				t.Errorf("degenerate interval [%v, %v]", iv.Lower, iv.Upper)
			}
			// Unlike the normal approximation the Wilson interval never
			// collapses to a point at extreme proportions.
			if iv.Upper-iv.Lower == 0 {
				t.Error("interval has zero width")
			}
		})
	}
}

func TestWilsonInterval_WidthShrinksWithTrials(t *testing.T) {
	a := NewStatisticalAnalyzer()

	// At a fixed observed proportion the interval must tighten as the
	// sample grows, approaching zero width.
	prev := math.Inf(1)
	for _, trials := range []int{10, 100, 10000, 1000000} {
		iv, err := a.WilsonInterval(trials*8/10, trials, 0.95)
		if err != nil {
			t.Fatalf("WilsonInterval(n=%d): %v", trials, err)
		}
		width := iv.Upper - iv.Lower
		if width >= prev {
			t.Errorf("width %v at n=%d did not shrink from %v", width, trials, prev)
		}
		prev = width
	}
	if prev > 0.002 {
		t.Errorf("width %v at n=1000000, want near zero", prev)
	}
}

func TestWilsonInterval_InvalidInput(t *testing.T) {
	a := NewStatisticalAnalyzer()

	if _, err := a.WilsonInterval(5, 0, 0.95); err == nil {
		t.Error("accepted zero trials")
	}
	if _, err := a.WilsonInterval(11, 10, 0.95); err == nil {
		t.Error("accepted successes > trials")
	}
	if _, err := a.WilsonInterval(5, 10, 1.5); err == nil {
		t.Error("accepted confidence outside (0, 1)")
	}
}

func TestTwoProportionTest_IdenticalProportions(t *testing.T) {
	a := NewStatisticalAnalyzer()

	r, err := a.TwoProportionTest(40, 100, 40, 100)
	if err != nil {
		t.Fatalf("TwoProportionTest: %v", err)
	}
	if math.Abs(r.PValue-1.0) > 1e-9 {
		t.Errorf("PValue = %v, want 1.0", r.PValue)
	}
	if r.Significant {
		t.Error("identical proportions reported significant")
	}
	if r.EffectSize != 0 {
		t.Errorf("EffectSize = %v, want 0", r.EffectSize)
	}
}

func TestTwoProportionTest_ClearDifference(t *testing.T) {
	a := NewStatisticalAnalyzer()

	r, err := a.TwoProportionTest(90, 100, 50, 100)
	if err != nil {
		t.Fatalf("TwoProportionTest: %v", err)
	}
	if !r.Significant {
		t.Errorf("90%% vs 50%% over n=100 not significant (p=%v)", r.PValue)
	}
	if r.ZScore <= 0 {
		t.Errorf("ZScore = %v, want positive for p1 > p2", r.ZScore)
	}
	if r.EffectSize <= 0 {
		t.Errorf("EffectSize = %v, want positive Cohen's h", r.EffectSize)
	}
}

func TestTwoProportionTest_SymmetricInArguments(t *testing.T) {
	a := NewStatisticalAnalyzer()

	r1, err := a.TwoProportionTest(70, 100, 55, 120)
	if err != nil {
		t.Fatalf("TwoProportionTest: %v", err)
	}
	r2, err := a.TwoProportionTest(55, 120, 70, 100)
	if err != nil {
		t.Fatalf("TwoProportionTest: %v", err)
	}
	if math.Abs(r1.PValue-r2.PValue) > 1e-12 {
		t.Errorf("p-values differ under argument swap: %v vs %v", r1.PValue, r2.PValue)
	}
	if math.Abs(r1.ZScore+r2.ZScore) > 1e-12 {
		t.Errorf("z-scores not antisymmetric: %v vs %v", r1.ZScore, r2.ZScore)
	}
}

func TestWelchTTest_IdenticalSamples(t *testing.T) {
	a := NewStatisticalAnalyzer()
	sample := []float64{120, 135, 118, 150, 142, 129}

	r, err := a.WelchTTest(sample, sample)
	if err != nil {
		t.Fatalf("WelchTTest: %v", err)
	}
	if math.Abs(r.PValue-1.0) > 1e-9 {
		t.Errorf("PValue = %v, want 1.0 for identical samples", r.PValue)
	}
	if r.Significant {
		t.Error("identical samples reported significant")
	}
}

func TestWelchTTest_ClearDifference(t *testing.T) {
	a := NewStatisticalAnalyzer()
	fast := []float64{100, 105, 98, 110, 102, 99, 104, 101}
	slow := []float64{300, 310, 295, 320, 305, 298, 315, 301}

	r, err := a.WelchTTest(fast, slow)
	if err != nil {
		t.Fatalf("WelchTTest: %v", err)
	}
	if !r.Significant {
		t.Errorf("clearly separated samples not significant (p=%v)", r.PValue)
	}
	if r.TStatistic >= 0 {
		t.Errorf("TStatistic = %v, want negative for mean1 < mean2", r.TStatistic)
	}
	if r.PValue <= 0 || r.PValue >= 0.001 {
		t.Errorf("PValue = %v, want tiny", r.PValue)
	}
}

func TestWelchTTest_UnequalVariancesAndSizes(t *testing.T) {
	a := NewStatisticalAnalyzer()
	tight := []float64{50, 51, 49, 50, 51, 49, 50, 50, 51, 49}
	wide := []float64{30, 90, 45, 75}

	r, err := a.WelchTTest(tight, wide)
	if err != nil {
		t.Fatalf("WelchTTest: %v", err)
	}
	// Welch df must fall between min(n)-1 and n1+n2-2.
	if r.DegreesOfFreedom < 3 || r.DegreesOfFreedom > 12 {
		t.Errorf("DegreesOfFreedom = %v, want within [3, 12]", r.DegreesOfFreedom)
	}
	if r.PValue < 0 || r.PValue > 1 {
		t.Errorf("PValue = %v out of range", r.PValue)
	}
}

func TestWelchTTest_TooFewObservations(t *testing.T) {
	a := NewStatisticalAnalyzer()

	if _, err := a.WelchTTest([]float64{1}, []float64{2, 3}); err == nil {
		t.Error("accepted a single-observation sample")
	}
}

func TestConstantSamples(t *testing.T) {
	a := NewStatisticalAnalyzer()

	r, err := a.WelchTTest([]float64{5, 5, 5}, []float64{5, 5, 5})
	if err != nil {
		t.Fatalf("WelchTTest: %v", err)
	}
	if r.PValue != 1 {
		t.Errorf("PValue = %v, want 1 for equal constant samples", r.PValue)
	}
}

func TestNormalQuantile_RoundTrip(t *testing.T) {
	for _, p := range []float64{0.025, 0.05, 0.5, 0.95, 0.975, 0.995} {
		z := normalQuantile(p)
		back := 1 - normalSurvival(z)
		if math.Abs(back-p) > 1e-8 {
			t.Errorf("round trip p=%v: quantile %v maps back to %v", p, z, back)
		}
	}
	// The 97.5th percentile is the textbook 1.959964.
	if z := normalQuantile(0.975); math.Abs(z-1.959964) > 1e-5 {
		t.Errorf("normalQuantile(0.975) = %v, want 1.959964", z)
	}
}

func TestStudentTSurvival_KnownValues(t *testing.T) {
	// Against standard t tables: P(T > 2.228) with df=10 is 0.025.
	if p := studentTSurvival(2.228, 10); math.Abs(p-0.025) > 5e-4 {
		t.Errorf("studentTSurvival(2.228, 10) = %v, want 0.025", p)
	}
	// Large df converges to the normal tail.
	if p := studentTSurvival(1.96, 1e6); math.Abs(p-0.025) > 5e-4 {
		t.Errorf("studentTSurvival(1.96, 1e6) = %v, want 0.025", p)
	}
}
