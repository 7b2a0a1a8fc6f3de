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
	"fmt"
	"strings"
)

// buildRubricPrompt creates the grading prompt for one piece of reasoning.
// The rubric is fixed: 0 flawed, 1 plausible but incomplete, 2 sound.
func buildRubricPrompt(req *Request) string {
	var groundTruth string
	if req.GroundTruth != "" {
		groundTruth = fmt.Sprintf("\n**Known Correct Analysis:**\n%s\n", req.GroundTruth)
	}

	return fmt.Sprintf(`You are an expert evaluator grading the reasoning a player gave for one move in a logic game.

**Rubric:**
- 0: The reasoning is logically flawed, contradicts the visible board, or is unrelated to the chosen move.
- 1: The reasoning is plausible but incomplete, partially justified, or relies on an unstated guess.
- 2: The reasoning is logically sound and fully justifies the chosen move from the visible board.

**Board State:**
%s

**Chosen Move:**
%s
%s
**Player's Reasoning:**
%s

Respond with exactly two lines:
SCORE: <0, 1, or 2>
FEEDBACK: <one sentence explaining the grade>`,
		strings.TrimSpace(req.BoardState),
		req.Action,
		groundTruth,
		strings.TrimSpace(req.Reasoning))
}
