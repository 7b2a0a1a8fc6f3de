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

package judge

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/evaluation"
)

// verdict is the parsed form of one judge response.
type verdict struct {
	score      int
	feedback   string
	confidence evaluation.Confidence
}

// responseParser extracts a rubric verdict from a judge response. It accepts
// either a plain "SCORE: n" line or a JSON object embedded in the text.
type responseParser struct {
	scorePattern    *regexp.Regexp
	feedbackPattern *regexp.Regexp
	jsonPattern     *regexp.Regexp
}

func newResponseParser() *responseParser {
	return &responseParser{
		// Matches "SCORE: 2", "score = 1", "Score:0".
		scorePattern: regexp.MustCompile(`(?i)\bscore\b[:=\s]+([012])\b`),

		// Matches "FEEDBACK: ..." to end of line.
		feedbackPattern: regexp.MustCompile(`(?i)\bfeedback\b[:=\s]+(.+)`),

		jsonPattern: regexp.MustCompile(`\{[^{}]*\}`),
	}
}

type jsonVerdict struct {
	Score      *int   `json:"score"`
	Feedback   string `json:"feedback"`
	Confidence string `json:"confidence"`
}

func (p *responseParser) parse(response string) (*verdict, error) {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return nil, fmt.Errorf("judge: empty response")
	}

	if v, ok := p.parseJSON(trimmed); ok {
		return v, nil
	}
	if v, ok := p.parsePlain(trimmed); ok {
		return v, nil
	}
	return nil, fmt.Errorf("judge: no rubric score in response %q", truncate(trimmed, 120))
}

func (p *responseParser) parseJSON(response string) (*verdict, bool) {
	for _, candidate := range p.jsonPattern.FindAllString(response, -1) {
		var jv jsonVerdict
		if err := json.Unmarshal([]byte(candidate), &jv); err != nil {
			continue
		}
		if jv.Score == nil || *jv.Score < 0 || *jv.Score > 2 {
			continue
		}
		return &verdict{
			score:      *jv.Score,
			feedback:   strings.TrimSpace(jv.Feedback),
			confidence: parseConfidence(jv.Confidence),
		}, true
	}
	return nil, false
}

func (p *responseParser) parsePlain(response string) (*verdict, bool) {
	matches := p.scorePattern.FindStringSubmatch(response)
	if len(matches) < 2 {
		return nil, false
	}
	// The pattern only admits 0, 1, or 2.
	score := int(matches[1][0] - '0')

	v := &verdict{score: score, confidence: evaluation.ConfidenceHigh}
	if fb := p.feedbackPattern.FindStringSubmatch(response); len(fb) >= 2 {
		v.feedback = strings.TrimSpace(fb[1])
	}
	return v, true
}

func parseConfidence(s string) evaluation.Confidence {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return evaluation.ConfidenceHigh
	case "medium":
		return evaluation.ConfidenceMedium
	case "low":
		return evaluation.ConfidenceLow
	default:
		return evaluation.ConfidenceMedium
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
