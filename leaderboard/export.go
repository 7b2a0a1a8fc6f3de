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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Export writes the current standings for a spec as a JSON array of entries.
func Export(ctx context.Context, store Store, evalSpec string, limit int, w io.Writer) error {
	entries, err := store.Top(ctx, evalSpec, limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("leaderboard: encode export: %w", err)
	}
	return nil
}

// ExportFile writes the standings to a file.
func ExportFile(ctx context.Context, store Store, evalSpec string, limit int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("leaderboard: create export file: %w", err)
	}
	defer f.Close()
	return Export(ctx, store, evalSpec, limit, f)
}
