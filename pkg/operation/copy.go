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
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/packager-dev/packager/pkg/config"
	"github.com/packager-dev/packager/pkg/ignore"
	"github.com/rs/zerolog"
)

// ignoreFileName is the ignore file discovered at a copy source root when no
// explicit path is configured.
const ignoreFileName = ".gitignore"

// 📂 copyOperation mirrors the included subset of a source tree into a
// destination directory
type copyOperation struct {
	task *config.CopyTask
	opts Options
}

func (op *copyOperation) Describe() string {
	return "copy " + op.task.Source + " -> " + op.task.Destination
}

// 🏃 Execute walks the source tree in lexicographic order and copies every
// included regular file, preserving permission bits and overwriting any
// pre-existing destination file.
func (op *copyOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	src, err := op.opts.Context.Resolve(op.task.Source)
	if err != nil {
		return err
	}
	dst, err := op.opts.Context.Resolve(op.task.Destination)
	if err != nil {
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return failErr(SourceNotFound, src, err)
		}
		return failErr(IO, src, err)
	}
	if !info.IsDir() {
		return fail(SourceNotFound, src+" is not a directory")
	}

	rules, ignorePath, err := op.loadRules(ctx, src)
	if err != nil {
		return err
	}

	logger.Debug().
		Str("source", src).
		Str("destination", dst).
		Int("ignore_rules", len(rules.Rules())).
		Msg("copying file tree")

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return failErr(IO, path, walkErr)
		}
		if path == src {
			return nil
		}
		if path == ignorePath {
			// the consumed ignore file is not part of the mirrored tree
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return failErr(IO, path, err)
		}

		if !rules.Included(filepath.ToSlash(rel), d.IsDir()) {
			logger.Debug().Str("path", rel).Msg("excluded by ignore rule")
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			// symlinks and other special files are not followed
			logger.Debug().Str("path", rel).Msg("skipping non-regular file")
			return nil
		}

		if err := copyFile(path, filepath.Join(dst, rel)); err != nil {
			return failErr(IO, rel, err)
		}
		logger.Debug().Str("path", rel).Msg("copied")
		return nil
	})
}

// loadRules builds the ignore rule set for this copy's source tree and
// returns the ignore file path it consumed. The set lives for the duration
// of the task only.
func (op *copyOperation) loadRules(ctx context.Context, src string) (*ignore.RuleSet, string, error) {
	if !op.task.FilterEnabled() {
		return ignore.Compile(ctx, ""), "", nil
	}

	ignorePath := filepath.Join(src, ignoreFileName)
	if op.task.Gitignore != "" {
		resolved, err := op.opts.Context.Resolve(op.task.Gitignore)
		if err != nil {
			return nil, "", err
		}
		ignorePath = resolved
	}

	rules, err := ignore.Load(ctx, ignorePath)
	if err != nil {
		return nil, "", failErr(IO, ignorePath, err)
	}
	return rules, ignorePath, nil
}

// copyFile copies file bytes and permission bits, creating parent
// directories as needed. The destination is truncated if it exists.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// O_CREATE honors the umask; chmod to the exact source bits
	return os.Chmod(dst, info.Mode().Perm())
}
