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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	taskIndent  = 4  // spaces to indent task entries
	kindWidth   = 10 // width for the task kind
	detailWidth = 45 // width for the task description
)

// 🎯 TaskOperation represents a task execution for logging
type TaskOperation struct {
	Index  int    // position in the task list
	Kind   string // copy / replace / run
	Detail string // short task description
	Status string // outcome text
	Failed bool   // whether the task failed
}

// 📊 RunSummary represents a whole run for the end-of-run report
type RunSummary struct {
	Status      string // completed / aborted
	Total       int    // declared tasks
	Executed    int    // tasks attempted
	FailedIndex int    // failing task index, -1 when completed
	Err         string // failing task error text
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 📝 formatTaskOperation formats a task operation for display
func (l *Logger) formatTaskOperation(op TaskOperation) string {
	var symbol string
	if op.Failed {
		symbol = color.New(color.FgRed).Sprint("✗")
	} else {
		symbol = color.New(color.FgGreen).Sprint("✓")
	}

	var kindColor color.Attribute
	switch op.Kind {
	case "copy":
		kindColor = color.FgCyan
	case "replace":
		kindColor = color.FgBlue
	default:
		kindColor = color.FgMagenta
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", taskIndent, ""),
		symbol,
		color.New(kindColor).Sprint(fmt.Sprintf("%-*s", kindWidth, op.Kind)),
		fmt.Sprintf("%-*s", detailWidth, op.Detail),
		op.Status)
}

// 📝 LogTaskOperation logs a task execution
func (l *Logger) LogTaskOperation(ctx context.Context, op TaskOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatTaskOperation(op))

	l.zlog.Info().
		Int("task", op.Index).
		Str("kind", op.Kind).
		Str("detail", op.Detail).
		Str("status", op.Status).
		Bool("failed", op.Failed).
		Msg("task executed")
}

// 📝 Header logs a run header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("packager")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📊 Summary prints the end-of-run report
func (l *Logger) Summary(s RunSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console)
	if s.FailedIndex < 0 {
		pterm.Success.WithWriter(l.console).Printfln("%d task(s) completed", s.Total)
	} else {
		pterm.Error.WithWriter(l.console).Printfln(
			"run aborted at task %d (%d of %d executed): %s",
			s.FailedIndex, s.Executed, s.Total, s.Err)
	}

	l.zlog.Info().
		Str("status", s.Status).
		Int("total", s.Total).
		Int("executed", s.Executed).
		Int("failed_index", s.FailedIndex).
		Msg("run finished")
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}
