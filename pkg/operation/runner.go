// Copyright 2025 the packager authors
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

package operation

import (
	"context"

	"github.com/packager-dev/packager/pkg/config"
	"github.com/packager-dev/packager/pkg/log"
	"github.com/rs/zerolog"
)

// 🚦 RunStatus is the orchestrator's state machine
type RunStatus int

const (
	StatusNotStarted RunStatus = iota
	StatusRunning
	StatusCompleted
	StatusAborted
)

func (s RunStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "not started"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// 📋 ExecutionResult records one task's outcome
type ExecutionResult struct {
	Index int    // position in the declared task list
	Task  string // human-readable description
	Err   error  // nil on success, *TaskError on failure
}

// 📊 Report accumulates per-task results for a run
type Report struct {
	Status      RunStatus
	Results     []ExecutionResult
	FailedIndex int // index of the failing task, -1 otherwise
}

// Err returns the failing task's error, or nil for a completed run.
func (r *Report) Err() error {
	if r.FailedIndex < 0 {
		return nil
	}
	return r.Results[r.FailedIndex].Err
}

// 🏃 Runner executes the task list strictly in declaration order, one task
// at a time. The failure policy is fail-fast: the first task reporting a
// failure aborts the run and later tasks are never attempted.
type Runner struct {
	opts    Options
	console *log.Logger
}

// 🏗️ NewRunner creates a new runner
func NewRunner(opts Options, console *log.Logger) *Runner {
	return &Runner{
		opts:    opts,
		console: console,
	}
}

// 🏃 Run executes the tasks. Completed effects of earlier tasks stand even
// when a later task fails; there is no retry and no rollback.
func (r *Runner) Run(ctx context.Context, tasks []config.Task) *Report {
	logger := zerolog.Ctx(ctx)

	report := &Report{Status: StatusRunning, FailedIndex: -1}

	for i := range tasks {
		task := &tasks[i]
		op := New(task, r.opts)

		logger.Info().Int("task", i).Str("kind", string(task.Kind())).Msg(op.Describe())

		err := op.Execute(ctx)
		report.Results = append(report.Results, ExecutionResult{
			Index: i,
			Task:  op.Describe(),
			Err:   err,
		})

		if err != nil {
			r.console.LogTaskOperation(ctx, log.TaskOperation{
				Index:  i,
				Kind:   string(task.Kind()),
				Detail: op.Describe(),
				Status: err.Error(),
				Failed: true,
			})
			report.Status = StatusAborted
			report.FailedIndex = i
			return report
		}

		r.console.LogTaskOperation(ctx, log.TaskOperation{
			Index:  i,
			Kind:   string(task.Kind()),
			Detail: op.Describe(),
			Status: "done",
		})
	}

	report.Status = StatusCompleted
	return report
}
