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

package benchmark

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrGameFinished reports a contract violation: a move was requested
	// after the game reached a terminal state. It is always surfaced, never
	// retried.
	ErrGameFinished = errors.New("benchmark: move requested after terminal state")

	// ErrUnknownGame reports a task referencing a game no factory was
	// registered for.
	ErrUnknownGame = errors.New("benchmark: unknown game")
)

// InvalidResponseError reports a model response no parser could turn into an
// action. The runner recovers locally: it records a failed move and counts the
// consecutive failure.
type InvalidResponseError struct {
	Raw    string
	Reason string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("benchmark: unparsable model response: %s", e.Reason)
}

// TimeoutError reports a single move exceeding its deadline. The runner seals
// only the affected episode as TIMEOUT.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("benchmark: move exceeded %s deadline", e.Limit)
}

// APIError reports a provider-side failure surfaced by a Model collaborator
// after its own bounded retries. The runner treats it like an invalid move.
type APIError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("benchmark: %s API failure after %d attempts: %v", e.Provider, e.Attempts, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }
