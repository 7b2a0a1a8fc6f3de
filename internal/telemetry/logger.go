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

package telemetry

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"

	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/internal/version"
)

// Prompt and response content is not logged by default. Set the following env
// variable to enable logging of prompt/response content.
// BENCHMARK_CAPTURE_MESSAGE_CONTENT=true
var elideMessageContent = !isEnvVarTrue("BENCHMARK_CAPTURE_MESSAGE_CONTENT")

const elidedContent = "<elided>"

var logger = global.GetLoggerProvider().Logger(
	scopeName,
	log.WithInstrumentationVersion(version.Version),
)

// LogMove emits one event per played move. The prompt and raw response are
// elided unless content capture is opted into.
func LogMove(ctx context.Context, taskUID string, moveNumber int, action string, valid bool, prompt, response string, tokens int) {
	record := log.Record{}
	record.SetEventName("benchmark.move")
	record.SetBody(log.MapValue(
		log.String("task_uid", taskUID),
		log.Int("move_number", moveNumber),
		log.String("action", action),
		log.Bool("valid", valid),
		log.KeyValue{Key: "prompt", Value: contentValue(prompt)},
		log.KeyValue{Key: "response", Value: contentValue(response)},
		log.Int("tokens_used", tokens),
	))
	logger.Emit(ctx, record)
}

// LogEpisodeSealed emits one event when an episode reaches a terminal state.
func LogEpisodeSealed(ctx context.Context, taskUID, status string, moves int) {
	record := log.Record{}
	record.SetEventName("benchmark.episode.sealed")
	record.SetBody(log.MapValue(
		log.String("task_uid", taskUID),
		log.String("status", status),
		log.Int("moves", moves),
	))
	logger.Emit(ctx, record)
}

// LogJudgment emits one event per produced judgment.
func LogJudgment(ctx context.Context, taskUID string, rawScore int, confidence, feedback string) {
	record := log.Record{}
	record.SetEventName("benchmark.judgment")
	record.SetBody(log.MapValue(
		log.String("task_uid", taskUID),
		log.Int("raw_score", rawScore),
		log.String("confidence", confidence),
		log.KeyValue{Key: "feedback", Value: contentValue(feedback)},
	))
	logger.Emit(ctx, record)
}

func contentValue(s string) log.Value {
	if elideMessageContent {
		return log.StringValue(elidedContent)
	}
	return log.StringValue(s)
}

func isEnvVarTrue(name string) bool {
	val, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	val = strings.ToLower(val)
	return val == "true" || val == "1"
}
