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
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestItemResult_JSONRoundTrip(t *testing.T) {
	original := ItemResult{
		TaskUID:        "MS-S-a1b2c3",
		ModelID:        "gemini-2.0-flash",
		PromptHash:     HashPrompt("reveal the safest cell"),
		Prediction:     "reveal 3,4",
		Rationale:      "the 1 at (2,4) is already satisfied",
		IsCorrect:      true,
		ReasoningScore: 0.5,
		LatencyMs:      412.7,
		Timestamp:      time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded ItemResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBatchResult_Summarize(t *testing.T) {
	b := &BatchResult{
		RunID:   "run-1",
		ModelID: "m",
		Results: []ItemResult{
			{IsCorrect: true, ReasoningScore: 1.0, LatencyMs: 100},
			{IsCorrect: false, ReasoningScore: 0.5, LatencyMs: 300},
			{IsCorrect: true, ReasoningScore: 0.0, LatencyMs: 200},
			{IsCorrect: true, ReasoningScore: 0.5, LatencyMs: 400},
		},
	}
	b.Summarize()

	want := Summary{Tasks: 4, Correct: 3, Accuracy: 0.75, MeanReasoning: 0.5, MeanLatencyMs: 250}
	if diff := cmp.Diff(want, b.Summary); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
}

func TestBatchResult_SummarizeEmpty(t *testing.T) {
	b := &BatchResult{Summary: Summary{Tasks: 99, Accuracy: 1}}
	b.Summarize()
	if b.Summary != (Summary{}) {
		t.Errorf("Summary = %+v, want zero", b.Summary)
	}
}

func TestHashPrompt_StableAndShort(t *testing.T) {
	h1 := HashPrompt("prompt A")
	h2 := HashPrompt("prompt A")
	h3 := HashPrompt("prompt B")
	if h1 != h2 {
		t.Errorf("same prompt hashed differently: %s vs %s", h1, h2)
	}
	if h1 == h3 {
		t.Error("different prompts collided")
	}
	if len(h1) != 12 {
		t.Errorf("hash length = %d, want 12", len(h1))
	}
}

func TestMemoryJobStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	if err := store.Create(ctx, &Job{ID: "j1", ModelID: "m", EvalSpec: "standard"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	job, err := store.Get(ctx, "j1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.State != JobPending {
		t.Errorf("State = %s, want PENDING", job.State)
	}

	if err := store.Transition(ctx, "j1", JobRunning, ""); err != nil {
		t.Fatalf("Transition to RUNNING: %v", err)
	}
	if err := store.Transition(ctx, "j1", JobCompleted, "run-42"); err != nil {
		t.Fatalf("Transition to COMPLETED: %v", err)
	}

	job, err = store.Get(ctx, "j1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.State != JobCompleted || job.ResultRunID != "run-42" {
		t.Errorf("job = %+v, want COMPLETED with run-42", job)
	}
}

func TestMemoryJobStore_RejectsIllegalTransitions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()
	if err := store.Create(ctx, &Job{ID: "j1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// PENDING cannot jump straight to COMPLETED.
	if err := store.Transition(ctx, "j1", JobCompleted, ""); err == nil {
		t.Error("PENDING -> COMPLETED allowed")
	}

	if err := store.Transition(ctx, "j1", JobFailed, "boom"); err != nil {
		t.Fatalf("Transition to FAILED: %v", err)
	}
	// FAILED is terminal.
	if err := store.Transition(ctx, "j1", JobRunning, ""); err == nil {
		t.Error("FAILED -> RUNNING allowed")
	}

	job, _ := store.Get(ctx, "j1")
	if job.Error != "boom" {
		t.Errorf("Error = %q, want boom", job.Error)
	}
}

func TestMemoryJobStore_DuplicateAndMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	if err := store.Create(ctx, &Job{ID: "j1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, &Job{ID: "j1"}); err == nil {
		t.Error("duplicate Create allowed")
	}
	if _, err := store.Get(ctx, "missing"); err == nil {
		t.Error("Get on missing id succeeded")
	}
	if err := store.Transition(ctx, "missing", JobRunning, ""); err == nil {
		t.Error("Transition on missing id succeeded")
	}
}

func TestMemoryJobStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()
	for _, id := range []string{"a", "b", "c"} {
		if err := store.Create(ctx, &Job{ID: id}); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
		time.Sleep(time.Millisecond)
	}

	jobs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("len = %d, want 3", len(jobs))
	}
	if jobs[0].ID != "c" || jobs[2].ID != "a" {
		t.Errorf("order = [%s %s %s], want [c b a]", jobs[0].ID, jobs[1].ID, jobs[2].ID)
	}
}
