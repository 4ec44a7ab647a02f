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

// Package operation provides the task executors (copy, replace, run), the
// relative-path resolver, and the fail-fast runner that ties them together.
package operation

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/packager-dev/packager/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// 📍 Context is the base directory used for relative-path resolution.
// Exactly one is computed per run and shared read-only by all tasks.
type Context struct {
	BaseDir string
}

// 🏭 NewContext computes the run's base directory: the explicit working
// directory if given, otherwise the directory containing the config file.
func NewContext(workdir, configPath string) (*Context, error) {
	base := workdir
	if base == "" {
		base = filepath.Dir(configPath)
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, errors.Errorf("resolving base directory: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Errorf("base directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("base directory %s is not a directory", abs)
	}

	return &Context{BaseDir: abs}, nil
}

// 🗺️ Resolve turns a task-declared path into an absolute one. Absolute
// paths pass through unchanged; relative paths are joined to the base
// directory. Traversal outside the base directory via .. is permitted:
// packaging tasks legitimately reference sibling directories.
func (c *Context) Resolve(declared string) (string, error) {
	if declared == "" {
		return "", fail(InvalidPath, "empty path")
	}
	if filepath.IsAbs(declared) {
		return filepath.Clean(declared), nil
	}
	return filepath.Join(c.BaseDir, declared), nil
}

// 🎯 Operation is one executable unit of work
type Operation interface {
	// 📝 Describe returns a short human-readable description
	Describe() string

	// 🏃 Execute runs the operation; failures are *TaskError values
	Execute(ctx context.Context) error
}

// 🔧 Options contains what every executor needs
type Options struct {
	// Context is the run's resolved base directory
	Context *Context
	// Stdin, Stdout, Stderr are the streams run tasks inherit;
	// nil means the process's own streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (o Options) stdin() io.Reader {
	if o.Stdin != nil {
		return o.Stdin
	}
	return os.Stdin
}

func (o Options) stdout() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}
	return os.Stdout
}

func (o Options) stderr() io.Writer {
	if o.Stderr != nil {
		return o.Stderr
	}
	return os.Stderr
}

// 🏭 New builds the executor for a task, dispatching on its kind
func New(task *config.Task, opts Options) Operation {
	switch task.Kind() {
	case config.KindCopy:
		return &copyOperation{task: task.Copy, opts: opts}
	case config.KindReplace:
		return &replaceOperation{task: task.Replace, opts: opts}
	default:
		return &runOperation{task: task.Run, opts: opts}
	}
}
