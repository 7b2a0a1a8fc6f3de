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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testProfile = `
id: logic-profile
scoring_type: PROPORTIONAL
max_score: 10
rules:
  - type: PATTERN_DETECTION
    name: deduction-markers
    category: logic
    options:
      patterns:
        - name: deduction
          keywords: [therefore, because]
          score: 5
`

func TestRulesCheckCommand(t *testing.T) {
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.yaml")
	if err := os.WriteFile(profilePath, []byte(testProfile), 0o644); err != nil {
		t.Fatal(err)
	}

	out := execute(t, Options{}, "rules", "check", profilePath)
	if !strings.Contains(out, "logic-profile: ok (1 rules") {
		t.Errorf("check output = %q", out)
	}
}

func TestRulesEvalCommand(t *testing.T) {
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.yaml")
	if err := os.WriteFile(profilePath, []byte(testProfile), 0o644); err != nil {
		t.Fatal(err)
	}
	inputPath := filepath.Join(dir, "ctx.json")
	input := `{"response": "the 1 is satisfied, therefore this cell is safe because no mine fits"}`
	if err := os.WriteFile(inputPath, []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}

	out := execute(t, Options{}, "rules", "eval", "--profile", profilePath, "--input", inputPath)
	var result struct {
		RawScore   float64 `json:"raw_score"`
		FinalScore float64 `json:"final_score"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("eval output is not JSON: %v\n%s", err, out)
	}
	// Two keyword hits at 5 points each, PROPORTIONAL over max 10.
	if result.RawScore != 10 || result.FinalScore != 1 {
		t.Errorf("result = %+v, want raw 10 final 1", result)
	}
}

func TestRulesEvalCommand_BadInput(t *testing.T) {
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.yaml")
	if err := os.WriteFile(profilePath, []byte(testProfile), 0o644); err != nil {
		t.Fatal(err)
	}
	inputPath := filepath.Join(dir, "ctx.json")
	if err := os.WriteFile(inputPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := New(Options{})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"rules", "eval", "--profile", profilePath, "--input", inputPath})
	if err := cmd.Execute(); err == nil {
		t.Fatal("eval accepted malformed context JSON")
	}
}
