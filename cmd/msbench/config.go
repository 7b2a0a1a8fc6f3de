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
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	benchmark "github.com/oschlofredrik/minesweeper-ai-benchmark-sub001"
)

// Duration wraps time.Duration so run configs can say "30s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("msbench: invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// JudgeConfig controls reasoning judgment during a run.
type JudgeConfig struct {
	Enabled bool `yaml:"enabled"`

	// Model is the judge model name. Empty means the player model.
	Model string `yaml:"model"`

	Parallelism int `yaml:"parallelism"`
	CacheSize   int `yaml:"cache_size"`
}

// LeaderboardConfig controls leaderboard publication after a run.
type LeaderboardConfig struct {
	// Database is the sqlite file path. Empty disables publication.
	Database string `yaml:"database"`

	// Export optionally writes the post-publish standings to this file.
	Export string `yaml:"export"`
}

// RunConfig is the YAML file behind `msbench run --config`.
type RunConfig struct {
	// RunID names the run. Empty means a fresh UUID.
	RunID string `yaml:"run_id"`

	// Model is the player model name, e.g. "gemini-2.5-flash".
	Model string `yaml:"model"`

	// EvalSpec identifies the task set and scoring profile, e.g. "ms-v1".
	EvalSpec      string `yaml:"eval_spec"`
	PromptVariant string `yaml:"prompt_variant"`
	HiddenSplit   bool   `yaml:"hidden_split"`

	// Tasks is the path of a JSON file holding the task list.
	Tasks string `yaml:"tasks"`

	// OutputDir receives transcripts, episode logs, and the batch result.
	OutputDir string `yaml:"output_dir"`

	MaxMoves    int      `yaml:"max_moves"`
	MoveTimeout Duration `yaml:"move_timeout"`
	Parallelism int      `yaml:"parallelism"`
	BoardFormat string   `yaml:"board_format"`

	Judge       JudgeConfig       `yaml:"judge"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

const (
	defaultMaxMoves    = 50
	defaultMoveTimeout = 30 * time.Second
	defaultParallelism = 4
	defaultOutputDir   = "runs"
)

// LoadRunConfig reads and validates a run config. Unknown keys are errors so
// typos fail loudly instead of silently running with defaults.
func LoadRunConfig(path string) (*RunConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("msbench: open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var cfg RunConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("msbench: parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *RunConfig) applyDefaults() {
	if c.MaxMoves == 0 {
		c.MaxMoves = defaultMaxMoves
	}
	if c.MoveTimeout == 0 {
		c.MoveTimeout = Duration(defaultMoveTimeout)
	}
	if c.Parallelism == 0 {
		c.Parallelism = defaultParallelism
	}
	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir
	}
	if c.BoardFormat == "" {
		c.BoardFormat = string(benchmark.BoardFormatASCII)
	}
}

// Validate reports the first configuration problem.
func (c *RunConfig) Validate() error {
	var problems []string
	if c.Model == "" {
		problems = append(problems, "model is required")
	}
	if c.EvalSpec == "" {
		problems = append(problems, "eval_spec is required")
	}
	if c.Tasks == "" {
		problems = append(problems, "tasks is required")
	}
	if c.MaxMoves < 0 {
		problems = append(problems, "max_moves must be positive")
	}
	if c.MoveTimeout < 0 {
		problems = append(problems, "move_timeout must be positive")
	}
	switch benchmark.BoardFormat(c.BoardFormat) {
	case benchmark.BoardFormatASCII, benchmark.BoardFormatCoordinate:
	default:
		problems = append(problems, fmt.Sprintf("unknown board_format %q", c.BoardFormat))
	}
	if len(problems) > 0 {
		return fmt.Errorf("msbench: invalid run config: %s", strings.Join(problems, "; "))
	}
	return nil
}
