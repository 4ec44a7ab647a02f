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
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/packager-dev/packager/pkg/config"
	"github.com/rs/zerolog"
)

// 🔄 replaceOperation applies a regex substitution to target files
type replaceOperation struct {
	task *config.ReplaceTask
	opts Options
}

func (op *replaceOperation) Describe() string {
	return "replace " + op.task.Pattern + " in " + op.task.Target
}

// 🏃 Execute resolves the target, compiles the pattern, and rewrites each
// target file in one pass. A target containing glob metacharacters is
// expanded over the filesystem; a literal target must name an existing
// regular file.
func (op *replaceOperation) Execute(ctx context.Context) error {
	target, err := op.opts.Context.Resolve(op.task.Target)
	if err != nil {
		return err
	}

	files, err := op.expandTarget(target)
	if err != nil {
		return err
	}

	re, err := regexp.Compile(op.task.Pattern)
	if err != nil {
		return failErr(Pattern, op.task.Pattern, err)
	}

	for _, file := range files {
		if err := op.replaceInFile(ctx, file, re); err != nil {
			return err
		}
	}
	return nil
}

// expandTarget lists the files the replacement applies to.
func (op *replaceOperation) expandTarget(target string) ([]string, error) {
	if !strings.ContainsAny(target, "*?[{") {
		info, err := os.Stat(target)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, failErr(TargetNotFound, target, err)
			}
			return nil, failErr(IO, target, err)
		}
		if !info.Mode().IsRegular() {
			return nil, fail(TargetNotFound, target+" is not a regular file")
		}
		return []string{target}, nil
	}

	matches, err := doublestar.FilepathGlob(target)
	if err != nil {
		return nil, failErr(Pattern, target, err)
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, failErr(IO, m, err)
		}
		if info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fail(TargetNotFound, "no files match "+target)
	}
	return files, nil
}

// replaceInFile rewrites one file. Zero matches is a no-op, not an error;
// the file is left byte-identical. A rewrite is all-or-nothing: the new
// content lands via rename, so the original survives any mid-write failure.
func (op *replaceOperation) replaceInFile(ctx context.Context, path string, re *regexp.Regexp) error {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return failErr(IO, path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return failErr(IO, path, err)
	}
	if !utf8.Valid(data) {
		return fail(Encoding, path+" is not valid UTF-8")
	}

	content := string(data)
	matches := len(re.FindAllStringIndex(content, -1))
	if matches == 0 {
		logger.Debug().Str("path", path).Str("pattern", re.String()).Msg("pattern matched nothing, leaving file untouched")
		return nil
	}

	replaced := re.ReplaceAllString(content, op.task.Replacement)
	logger.Debug().Str("path", path).Int("matches", matches).Msg("replacing matches")

	if err := writeFileAtomic(path, []byte(replaced), info.Mode().Perm()); err != nil {
		return failErr(IO, path, err)
	}
	return nil
}

// writeFileAtomic writes content to a temp file in the target's directory
// and renames it into place.
func writeFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
