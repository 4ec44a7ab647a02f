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

// Package ignore compiles gitignore-style pattern files into an inclusion
// predicate for directory trees. It implements the subset of gitignore
// semantics needed for filtering copy sources: negation, directory-only
// rules, root anchoring, and * / ** globbing.
package ignore

import (
	"context"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Rule is a single compiled ignore pattern.
type Rule struct {
	Pattern  string // glob pattern, stripped of markers
	Negated  bool   // leading ! — re-includes a previously excluded path
	DirOnly  bool   // trailing / — matches directories only
	Anchored bool   // leading / — matches relative to the tree root only
}

// RuleSet is an ordered list of rules. Evaluation is last-match-wins in
// file order; a path no rule matches is included.
type RuleSet struct {
	rules []Rule
}

// Empty reports whether the set contains no rules.
func (rs *RuleSet) Empty() bool {
	return len(rs.rules) == 0
}

// Rules returns the compiled rules in file order.
func (rs *RuleSet) Rules() []Rule {
	return rs.rules
}

// Compile parses ignore-file contents into a RuleSet. Blank lines and
// comment lines are skipped. Patterns doublestar cannot parse are dropped,
// matching git's treatment of unusable patterns.
func Compile(ctx context.Context, contents string) *RuleSet {
	logger := zerolog.Ctx(ctx)

	rs := &RuleSet{}
	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		r := Rule{}
		if strings.HasPrefix(line, "!") {
			r.Negated = true
			line = line[1:]
		}
		// \# and \! escape the comment and negation markers
		if strings.HasPrefix(line, `\#`) || strings.HasPrefix(line, `\!`) {
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			r.DirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		if strings.HasPrefix(line, "/") {
			r.Anchored = true
			line = strings.TrimPrefix(line, "/")
		}
		if line == "" {
			continue
		}
		r.Pattern = line

		if !doublestar.ValidatePattern(r.Pattern) {
			logger.Debug().Str("pattern", r.Pattern).Msg("skipping unparseable ignore pattern")
			continue
		}

		rs.rules = append(rs.rules, r)
	}
	return rs
}

// Load reads and compiles the ignore file at path. A missing file yields an
// empty (always-include) set; any other read error is returned.
func Load(ctx context.Context, path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &RuleSet{}, nil
		}
		return nil, errors.Errorf("reading ignore file %s: %w", path, err)
	}
	return Compile(ctx, string(data)), nil
}

// Included reports whether relPath (slash-separated, relative to the tree
// root) survives the rule set. An excluded ancestor directory excludes every
// descendant, regardless of later negation rules naming the descendant.
func (rs *RuleSet) Included(relPath string, isDir bool) bool {
	if len(rs.rules) == 0 {
		return true
	}
	relPath = strings.Trim(relPath, "/")
	if relPath == "" || relPath == "." {
		return true
	}

	segments := strings.Split(relPath, "/")
	for i := 1; i < len(segments); i++ {
		if rs.excluded(strings.Join(segments[:i], "/"), true) {
			return false
		}
	}
	return !rs.excluded(relPath, isDir)
}

// excluded folds the rules in file order over a single path; the last
// matching rule decides.
func (rs *RuleSet) excluded(path string, isDir bool) bool {
	result := false
	for _, r := range rs.rules {
		if !r.matches(path, isDir) {
			continue
		}
		result = !r.Negated
	}
	return result
}

func (r *Rule) matches(path string, isDir bool) bool {
	if r.DirOnly && !isDir {
		return false
	}
	pattern := r.Pattern
	if !r.Anchored {
		// unanchored patterns match at any depth
		pattern = "**/" + pattern
	}
	ok, err := doublestar.Match(pattern, path)
	if err != nil {
		// patterns were validated at compile time
		return false
	}
	return ok
}
