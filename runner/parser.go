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

package runner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
)

// responseParser turns model responses into actions. A structured function
// call is the primary path; free text falls through an ordered chain of
// matchers, each returning the first successful parse.
type responseParser struct {
	matchers []matcher
}

// matcher attempts to extract an action from free text.
type matcher func(text string) (benchmark.Action, bool)

func newResponseParser() *responseParser {
	return &responseParser{
		matchers: []matcher{
			matchEmbeddedJSON,
			matchCommandWithCoords,
			matchBareCoords,
		},
	}
}

// Parse extracts an action from a model response. It returns
// InvalidResponseError when neither the structured call nor any free-text
// matcher produces one.
func (p *responseParser) Parse(resp *benchmark.MoveResponse) (benchmark.Action, error) {
	if resp.Action != "" {
		return benchmark.Action{Name: resp.Action, Parameters: resp.Parameters}, nil
	}

	text := strings.TrimSpace(resp.RawText)
	if text == "" {
		return benchmark.Action{}, &benchmark.InvalidResponseError{Raw: resp.RawText, Reason: "empty response"}
	}
	for _, match := range p.matchers {
		if action, ok := match(text); ok {
			return action, nil
		}
	}
	return benchmark.Action{}, &benchmark.InvalidResponseError{Raw: resp.RawText, Reason: "no action found in response text"}
}

var jsonObjectPattern = regexp.MustCompile(`\{[^{}]*\}`)

// matchEmbeddedJSON finds the first JSON object carrying an "action" key,
// including objects embedded in markdown code fences.
func matchEmbeddedJSON(text string) (benchmark.Action, bool) {
	for _, candidate := range jsonObjectPattern.FindAllString(text, -1) {
		var payload struct {
			Action     string         `json:"action"`
			Parameters map[string]any `json:"parameters"`
			Row        *int           `json:"row"`
			Col        *int           `json:"col"`
		}
		if err := json.Unmarshal([]byte(candidate), &payload); err != nil || payload.Action == "" {
			continue
		}
		params := payload.Parameters
		if params == nil {
			params = map[string]any{}
		}
		if payload.Row != nil {
			params["row"] = float64(*payload.Row)
		}
		if payload.Col != nil {
			params["col"] = float64(*payload.Col)
		}
		return benchmark.Action{Name: strings.ToLower(payload.Action), Parameters: params}, true
	}
	return benchmark.Action{}, false
}

var commandPattern = regexp.MustCompile(`(?i)\b(reveal|flag|unflag|attack|deploy|fortify)\b\D{0,20}?(\d{1,3})\s*[,\s]\s*(\d{1,3})`)

// matchCommandWithCoords matches phrasings like "reveal (3, 4)",
// "FLAG 2,7" or "I will attack 5 6".
func matchCommandWithCoords(text string) (benchmark.Action, bool) {
	m := commandPattern.FindStringSubmatch(text)
	if m == nil {
		return benchmark.Action{}, false
	}
	row, err1 := strconv.Atoi(m[2])
	col, err2 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil {
		return benchmark.Action{}, false
	}
	return benchmark.Action{
		Name:       strings.ToLower(m[1]),
		Parameters: map[string]any{"row": float64(row), "col": float64(col)},
	}, true
}

var coordsPattern = regexp.MustCompile(`\(?\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)?`)

// matchBareCoords falls back to a lone coordinate pair, interpreted as the
// game's default action (reveal).
func matchBareCoords(text string) (benchmark.Action, bool) {
	m := coordsPattern.FindStringSubmatch(text)
	if m == nil {
		return benchmark.Action{}, false
	}
	row, err1 := strconv.Atoi(m[1])
	col, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return benchmark.Action{}, false
	}
	return benchmark.Action{
		Name:       "reveal",
		Parameters: map[string]any{"row": float64(row), "col": float64(col)},
	}, true
}

// historyWindow bounds how many recent moves are replayed into the prompt.
const historyWindow = 5

func buildPrompt(game, board string, history []benchmark.Move) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are playing %s. Choose exactly one move.\n\n", game)
	b.WriteString("Current board:\n")
	b.WriteString(board)
	b.WriteString("\n")

	if len(history) > 0 {
		start := len(history) - historyWindow
		if start < 0 {
			start = 0
		}
		b.WriteString("\nRecent moves:\n")
		for _, m := range history[start:] {
			status := "ok"
			if !m.Valid {
				status = "invalid"
			}
			fmt.Fprintf(&b, "%d. %s %v (%s)\n", m.Number, m.Action.Name, m.Action.Parameters, status)
		}
	}

	b.WriteString("\nRespond with a function call, or with JSON of the form " +
		`{"action": "<name>", "row": <r>, "col": <c>}. ` +
		"Explain your deduction briefly before the move.\n")
	return b.String()
}
