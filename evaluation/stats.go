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
)

// Interval is a two-sided confidence interval.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// ProportionTestResult holds the outcome of a two-proportion z-test.
type ProportionTestResult struct {
	ZScore      float64 `json:"z_score"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
	// EffectSize is Cohen's h.
	EffectSize float64 `json:"effect_size"`
}

// TTestResult holds the outcome of a Welch t-test on two samples.
type TTestResult struct {
	TStatistic float64 `json:"t_statistic"`
	// DegreesOfFreedom comes from the Welch-Satterthwaite approximation.
	DegreesOfFreedom float64 `json:"degrees_of_freedom"`
	PValue           float64 `json:"p_value"`
	Significant      bool    `json:"significant"`
	// EffectSize is Cohen's d with pooled standard deviation.
	EffectSize float64 `json:"effect_size"`
}

// StatisticalAnalyzer provides the closed-form statistics used when comparing
// model runs. All methods are pure; the zero value is ready to use.
type StatisticalAnalyzer struct {
	// Alpha is the significance threshold. Zero means 0.05.
	Alpha float64
}

// NewStatisticalAnalyzer creates an analyzer with the conventional 0.05
// significance threshold.
func NewStatisticalAnalyzer() *StatisticalAnalyzer {
	return &StatisticalAnalyzer{Alpha: 0.05}
}

func (a *StatisticalAnalyzer) alpha() float64 {
	if a.Alpha > 0 {
		return a.Alpha
	}
	return 0.05
}

// WilsonInterval computes the Wilson score confidence interval for a binomial
// proportion. It behaves sensibly at the boundaries where the normal
// approximation interval collapses.
func (a *StatisticalAnalyzer) WilsonInterval(successes, trials int, confidence float64) (Interval, error) {
	if trials <= 0 {
		return Interval{}, fmt.Errorf("evaluation: wilson interval needs trials > 0, got %d", trials)
	}
	if successes < 0 || successes > trials {
		return Interval{}, fmt.Errorf("evaluation: successes %d out of range [0, %d]", successes, trials)
	}
	if confidence <= 0 || confidence >= 1 {
		return Interval{}, fmt.Errorf("evaluation: confidence %v out of range (0, 1)", confidence)
	}

	z := normalQuantile(1 - (1-confidence)/2)
	n := float64(trials)
	p := float64(successes) / n
	z2 := z * z

	denom := 1 + z2/n
	center := (p + z2/(2*n)) / denom
	margin := z / denom * math.Sqrt(p*(1-p)/n+z2/(4*n*n))

	return Interval{
		Lower: math.Max(0, center-margin),
		Upper: math.Min(1, center+margin),
		Level: confidence,
	}, nil
}

// TwoProportionTest runs a pooled two-tailed z-test comparing two binomial
// proportions, for example win rates of two models.
func (a *StatisticalAnalyzer) TwoProportionTest(successes1, trials1, successes2, trials2 int) (*ProportionTestResult, error) {
	if trials1 <= 0 || trials2 <= 0 {
		return nil, fmt.Errorf("evaluation: proportion test needs trials > 0 in both groups, got %d and %d", trials1, trials2)
	}
	if successes1 < 0 || successes1 > trials1 || successes2 < 0 || successes2 > trials2 {
		return nil, fmt.Errorf("evaluation: successes out of range")
	}

	n1, n2 := float64(trials1), float64(trials2)
	p1 := float64(successes1) / n1
	p2 := float64(successes2) / n2

	pooled := (float64(successes1) + float64(successes2)) / (n1 + n2)
	se := math.Sqrt(pooled * (1 - pooled) * (1/n1 + 1/n2))

	var z float64
	if se > 0 {
		z = (p1 - p2) / se
	}
	p := 2 * normalSurvival(math.Abs(z))

	// Cohen's h uses the arcsine variance-stabilizing transform.
	h := 2*math.Asin(math.Sqrt(p1)) - 2*math.Asin(math.Sqrt(p2))

	return &ProportionTestResult{
		ZScore:      z,
		PValue:      p,
		Significant: p < a.alpha(),
		EffectSize:  h,
	}, nil
}

// WelchTTest runs a two-tailed Welch t-test on two independent samples. The
// samples need not share a variance or a size.
func (a *StatisticalAnalyzer) WelchTTest(sample1, sample2 []float64) (*TTestResult, error) {
	if len(sample1) < 2 || len(sample2) < 2 {
		return nil, fmt.Errorf("evaluation: welch t-test needs at least 2 observations per sample, got %d and %d", len(sample1), len(sample2))
	}

	mean1, var1 := meanVariance(sample1)
	mean2, var2 := meanVariance(sample2)
	n1, n2 := float64(len(sample1)), float64(len(sample2))

	se2 := var1/n1 + var2/n2
	if se2 == 0 {
		// Identical constant samples: no detectable difference.
		return &TTestResult{PValue: 1, DegreesOfFreedom: n1 + n2 - 2}, nil
	}

	t := (mean1 - mean2) / math.Sqrt(se2)

	// Welch-Satterthwaite degrees of freedom.
	df := se2 * se2 / ((var1*var1)/(n1*n1*(n1-1)) + (var2*var2)/(n2*n2*(n2-1)))

	p := 2 * studentTSurvival(math.Abs(t), df)

	pooledSD := math.Sqrt(((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2))
	var d float64
	if pooledSD > 0 {
		d = (mean1 - mean2) / pooledSD
	}

	return &TTestResult{
		TStatistic:       t,
		DegreesOfFreedom: df,
		PValue:           p,
		Significant:      p < a.alpha(),
		EffectSize:       d,
	}, nil
}

func meanVariance(xs []float64) (mean, variance float64) {
	n := float64(len(xs))
	for _, x := range xs {
		mean += x
	}
	mean /= n
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= n - 1
	return mean, variance
}

// normalSurvival is P(Z > z) for a standard normal.
func normalSurvival(z float64) float64 {
	return 0.5 * math.Erfc(z/math.Sqrt2)
}

// normalQuantile inverts the standard normal CDF via the Acklam rational
// approximation, accurate to ~1e-9 which is far below metric noise here.
func normalQuantile(p float64) float64 {
	if p <= 0 || p >= 1 {
		return math.NaN()
	}

	a := [6]float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02, 1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	b := [5]float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02, 6.680131188771972e+01, -1.328068155288572e+01}
	c := [6]float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00, -2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	d := [4]float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00, 3.754408661907416e+00}

	const plow = 0.02425
	switch {
	case p < plow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p > 1-plow:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	default:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	}
}

// studentTSurvival is P(T > t) for Student's t with df degrees of freedom,
// computed through the regularized incomplete beta function.
func studentTSurvival(t, df float64) float64 {
	if t <= 0 {
		return 0.5
	}
	x := df / (df + t*t)
	return 0.5 * regularizedIncompleteBeta(df/2, 0.5, x)
}

// regularizedIncompleteBeta computes I_x(a, b) with the Lentz continued
// fraction (Numerical Recipes form).
func regularizedIncompleteBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lbeta := lgamma(a+b) - lgamma(a) - lgamma(b)
	front := math.Exp(lbeta + a*math.Log(x) + b*math.Log(1-x))

	if x < (a+1)/(a+b+2) {
		return front * betaContinuedFraction(a, b, x) / a
	}
	return 1 - front*betaContinuedFraction(b, a, 1-x)/b
}

func betaContinuedFraction(a, b, x float64) float64 {
	const (
		maxIterations = 200
		epsilon       = 3e-14
		tiny          = 1e-30
	)

	qab, qap, qam := a+b, a+1, a-1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIterations; m++ {
		fm := float64(m)
		m2 := 2 * fm

		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < epsilon {
			break
		}
	}
	return h
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
