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
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore is a Store backed by a SQLite database file.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at path and migrates the entry
// table.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("leaderboard: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("leaderboard: migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Publish(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.ModelID == "" || entry.EvalSpec == "" {
		return fmt.Errorf("leaderboard: entry needs model_id and eval_spec")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("leaderboard: publish: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Top(ctx context.Context, evalSpec string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	// Latest entry per model, then ranked by global score.
	var entries []*Entry
	err := s.db.WithContext(ctx).
		Where("eval_spec = ?", evalSpec).
		Where("id IN (?)", s.db.Model(&Entry{}).
			Select("MAX(id)").
			Where("eval_spec = ?", evalSpec).
			Group("model_id")).
		Order("metric_global_score DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("leaderboard: top: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) History(ctx context.Context, modelID, evalSpec string) ([]*Entry, error) {
	var entries []*Entry
	err := s.db.WithContext(ctx).
		Where("model_id = ? AND eval_spec = ?", modelID, evalSpec).
		Order("timestamp DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("leaderboard: history: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
