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

// Package config loads the ordered packaging task list from a YAML or HCL
// document. Declaration order in the document is execution order.
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🏷️ Kind discriminates the three task variants
type Kind string

const (
	KindCopy    Kind = "copy"
	KindReplace Kind = "replace"
	KindRun     Kind = "run"
)

// 📂 CopyTask mirrors a filtered file tree into a destination directory
type CopyTask struct {
	Source       string `yaml:"source" hcl:"source"`
	Destination  string `yaml:"destination" hcl:"destination"`
	Gitignore    string `yaml:"gitignore,omitempty" hcl:"gitignore,optional"`         // explicit ignore-file path; default <source>/.gitignore
	UseGitignore *bool  `yaml:"use_gitignore,omitempty" hcl:"use_gitignore,optional"` // default true
}

// FilterEnabled reports whether ignore-file filtering applies to this copy.
func (t *CopyTask) FilterEnabled() bool {
	return t.UseGitignore == nil || *t.UseGitignore
}

// 🔄 ReplaceTask applies a regex substitution to a target file
type ReplaceTask struct {
	Target      string `yaml:"target" hcl:"target"`
	Pattern     string `yaml:"pattern" hcl:"pattern"`
	Replacement string `yaml:"replacement" hcl:"replacement,optional"`
}

// 🏃 RunTask invokes an external command through the platform interpreter
type RunTask struct {
	Command string   `yaml:"command" hcl:"command"`
	Args    []string `yaml:"args,omitempty" hcl:"args,optional"`
}

// 📦 Task is the tagged union over the three task variants. Exactly one
// field is non-nil. A Task is immutable once loaded and carries no
// execution state.
type Task struct {
	Copy    *CopyTask
	Replace *ReplaceTask
	Run     *RunTask
}

// 🏷️ Kind returns the task's discriminator
func (t *Task) Kind() Kind {
	switch {
	case t.Copy != nil:
		return KindCopy
	case t.Replace != nil:
		return KindReplace
	default:
		return KindRun
	}
}

// 🔍 Validate checks that the task has exactly one variant with its
// required fields set
func (t *Task) Validate() error {
	set := 0
	if t.Copy != nil {
		set++
	}
	if t.Replace != nil {
		set++
	}
	if t.Run != nil {
		set++
	}
	if set != 1 {
		return errors.Errorf("task must declare exactly one of copy, replace, or run")
	}

	switch {
	case t.Copy != nil:
		if t.Copy.Source == "" {
			return errors.Errorf("copy: source is required")
		}
		if t.Copy.Destination == "" {
			return errors.Errorf("copy: destination is required")
		}
	case t.Replace != nil:
		if t.Replace.Target == "" {
			return errors.Errorf("replace: target is required")
		}
		if t.Replace.Pattern == "" {
			return errors.Errorf("replace: pattern is required")
		}
	case t.Run != nil:
		if t.Run.Command == "" {
			return errors.Errorf("run: command is required")
		}
	}
	return nil
}

// 📝 String returns a short human-readable description of the task
func (t *Task) String() string {
	switch {
	case t.Copy != nil:
		return fmt.Sprintf("copy %s -> %s", t.Copy.Source, t.Copy.Destination)
	case t.Replace != nil:
		return fmt.Sprintf("replace %q in %s", t.Replace.Pattern, t.Replace.Target)
	case t.Run != nil:
		return fmt.Sprintf("run %s", t.Run.Command)
	default:
		return "invalid task"
	}
}

// 📚 Config is the complete configuration: an ordered task list
type Config struct {
	Tasks []Task `yaml:"tasks"`
}

// 🔍 Validate checks every task in declaration order
func (cfg *Config) Validate() error {
	if len(cfg.Tasks) == 0 {
		return errors.Errorf("config declares no tasks")
	}
	for i := range cfg.Tasks {
		if err := cfg.Tasks[i].Validate(); err != nil {
			return errors.Errorf("task %d: %w", i, err)
		}
	}
	return nil
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}
