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

package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "leaderboard.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func entry(modelID string, global float64, ts time.Time) *Entry {
	return &Entry{
		ModelID:  modelID,
		EvalSpec: "standard",
		Metrics: Metrics{
			GlobalScore:    global,
			WinRate:        global,
			ReasoningScore: 0.5,
		},
		Timestamp: ts,
	}
}

func TestSQLiteStore_PublishAndTop(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, e := range []*Entry{
		entry("model-a", 0.40, base),
		entry("model-a", 0.60, base.Add(time.Hour)), // supersedes the first
		entry("model-b", 0.75, base),
		entry("model-c", 0.20, base),
	} {
		if err := store.Publish(ctx, e); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	top, err := store.Top(ctx, "standard", 2)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("len = %d, want 2", len(top))
	}
	if top[0].ModelID != "model-b" || top[1].ModelID != "model-a" {
		t.Errorf("order = [%s %s], want [model-b model-a]", top[0].ModelID, top[1].ModelID)
	}
	// The latest entry per model wins, not the best.
	if top[1].Metrics.GlobalScore != 0.60 {
		t.Errorf("model-a GlobalScore = %v, want latest 0.60", top[1].Metrics.GlobalScore)
	}
}

func TestSQLiteStore_TopFiltersSpec(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	e := entry("model-a", 0.5, time.Now())
	if err := store.Publish(ctx, e); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	top, err := store.Top(ctx, "other-spec", 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(top) != 0 {
		t.Errorf("len = %d, want 0 for unmatched spec", len(top))
	}
}

func TestSQLiteStore_History(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		e := entry("model-a", float64(i)/10, base.Add(time.Duration(i)*time.Hour))
		e.StatisticalSignificance = "p=0.04 vs previous run"
		if err := store.Publish(ctx, e); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	if err := store.Publish(ctx, entry("model-b", 0.9, base)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	history, err := store.History(ctx, "model-a", "standard")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len = %d, want 3", len(history))
	}
	if !history[0].Timestamp.After(history[2].Timestamp) {
		t.Error("history not newest first")
	}
	if history[0].StatisticalSignificance == "" {
		t.Error("StatisticalSignificance not persisted")
	}
}

func TestSQLiteStore_PublishValidation(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Publish(ctx, nil); err == nil {
		t.Error("nil entry accepted")
	}
	if err := store.Publish(ctx, &Entry{ModelID: "m"}); err == nil {
		t.Error("entry without eval_spec accepted")
	}
}

func TestExport_JSONShape(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	e := entry("model-a", 0.5, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	e.PromptVariant = "cot-v2"
	e.HiddenSplit = true
	if err := store.Publish(ctx, e); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	var buf bytes.Buffer
	if err := Export(ctx, store, "standard", 10, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("len = %d, want 1", len(decoded))
	}
	got := decoded[0]
	for _, key := range []string{"model_id", "eval_spec", "prompt_variant", "hidden_split", "timestamp", "metrics", "statistical_significance"} {
		if _, ok := got[key]; !ok {
			t.Errorf("export entry missing %q", key)
		}
	}
	metrics, ok := got["metrics"].(map[string]any)
	if !ok {
		t.Fatalf("metrics is %T", got["metrics"])
	}
	for _, key := range []string{"ms_s_score", "ms_i_score", "global_score", "win_rate", "accuracy", "coverage", "reasoning_score"} {
		if _, ok := metrics[key]; !ok {
			t.Errorf("metrics block missing %q", key)
		}
	}
	if got["hidden_split"] != true {
		t.Errorf("hidden_split = %v", got["hidden_split"])
	}
}

func TestExport_EmptyStandings(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	var buf bytes.Buffer
	if err := Export(ctx, store, "standard", 10, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	var decoded []any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("len = %d, want 0", len(decoded))
	}
}
