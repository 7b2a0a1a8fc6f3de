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
	"fmt"
	"sort"
	"sync"
	"time"
)

// JobState is the lifecycle state of an asynchronous evaluation job.
type JobState string

const (
	JobPending   JobState = "PENDING"
	JobRunning   JobState = "RUNNING"
	JobCompleted JobState = "COMPLETED"
	JobFailed    JobState = "FAILED"
)

// validJobTransitions encodes the job lifecycle. Terminal states have no
// successors.
var validJobTransitions = map[JobState][]JobState{
	JobPending: {JobRunning, JobFailed},
	JobRunning: {JobCompleted, JobFailed},
}

// Job tracks one asynchronous evaluation run.
type Job struct {
	ID        string    `json:"job_id"`
	State     JobState  `json:"state"`
	ModelID   string    `json:"model_id"`
	EvalSpec  string    `json:"eval_spec"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ResultRunID points at the BatchResult once the job completes.
	ResultRunID string `json:"result_run_id,omitempty"`
}

// JobStore tracks evaluation jobs by id. Implementations own their storage
// and concurrency semantics; this core only calls the interface.
type JobStore interface {
	// Create registers a new job in the PENDING state.
	Create(ctx context.Context, job *Job) error

	// Get returns the job or an error if the id is unknown.
	Get(ctx context.Context, id string) (*Job, error)

	// Transition moves a job to the next state. Illegal transitions fail.
	Transition(ctx context.Context, id string, to JobState, detail string) error

	// List returns all jobs, newest first.
	List(ctx context.Context) ([]*Job, error)
}

// MemoryJobStore is an in-memory JobStore suitable for a single process.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemoryJobStore creates an empty in-memory job store.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]*Job)}
}

func (s *MemoryJobStore) Create(ctx context.Context, job *Job) error {
	if job.ID == "" {
		return fmt.Errorf("evaluation: job id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("evaluation: job %s already exists", job.ID)
	}
	stored := *job
	stored.State = JobPending
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.jobs[job.ID] = &stored
	return nil
}

func (s *MemoryJobStore) Get(ctx context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("evaluation: job %s not found", id)
	}
	copied := *job
	return &copied, nil
}

func (s *MemoryJobStore) Transition(ctx context.Context, id string, to JobState, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("evaluation: job %s not found", id)
	}
	if !transitionAllowed(job.State, to) {
		return fmt.Errorf("evaluation: job %s cannot move %s -> %s", id, job.State, to)
	}
	job.State = to
	job.UpdatedAt = time.Now()
	switch to {
	case JobFailed:
		job.Error = detail
	case JobCompleted:
		job.ResultRunID = detail
	}
	return nil
}

func (s *MemoryJobStore) List(ctx context.Context) ([]*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		copied := *job
		jobs = append(jobs, &copied)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

func transitionAllowed(from, to JobState) bool {
	for _, next := range validJobTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
