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

// Package telemetry emits OpenTelemetry traces and log events for episode
// execution and judging. Spans are recorded against the global tracer
// provider; if none is configured the no-op provider applies and nothing is
// exported.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/oschlofredrik/minesweeper-ai-benchmark-sub001/internal/version"
)

const scopeName = "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(
		scopeName,
		trace.WithInstrumentationVersion(version.Version),
	)
}

// StartEpisode opens a span covering one episode.
func StartEpisode(ctx context.Context, taskUID, modelName, game string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "benchmark.episode",
		trace.WithAttributes(
			attribute.String("benchmark.task_uid", taskUID),
			attribute.String("gen_ai.request.model", modelName),
			attribute.String("benchmark.game", game),
		),
	)
}

// EndEpisode records the episode outcome on the span and closes it.
func EndEpisode(span trace.Span, status string, moves, tokens int, err error) {
	span.SetAttributes(
		attribute.String("benchmark.episode.status", status),
		attribute.Int("benchmark.episode.moves", moves),
		attribute.Int("gen_ai.usage.total_tokens", tokens),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// StartJudgment opens a span covering one judge call.
func StartJudgment(ctx context.Context, taskUID, judgeModel string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "benchmark.judgment",
		trace.WithAttributes(
			attribute.String("benchmark.task_uid", taskUID),
			attribute.String("gen_ai.request.model", judgeModel),
		),
	)
}

// EndJudgment records the judgment outcome on the span and closes it.
func EndJudgment(span trace.Span, rawScore int, confidence string, degraded bool) {
	span.SetAttributes(
		attribute.Int("benchmark.judgment.raw_score", rawScore),
		attribute.String("benchmark.judgment.confidence", confidence),
		attribute.Bool("benchmark.judgment.degraded", degraded),
	)
	span.End()
}
