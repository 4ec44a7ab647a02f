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

package config

import (
	"context"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// UnmarshalYAML decodes one task declaration: a single-key mapping whose key
// is the discriminator (copy, replace, or run).
func (t *Task) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return errors.Errorf("line %d: task must be a mapping with a single copy, replace, or run key", node.Line)
	}
	key := node.Content[0].Value
	body := node.Content[1]

	switch Kind(key) {
	case KindCopy:
		if err := checkFields(body, "source", "destination", "gitignore", "use_gitignore"); err != nil {
			return errors.Errorf("copy task: %w", err)
		}
		t.Copy = &CopyTask{}
		return body.Decode(t.Copy)
	case KindReplace:
		if err := checkFields(body, "target", "pattern", "replacement"); err != nil {
			return errors.Errorf("replace task: %w", err)
		}
		t.Replace = &ReplaceTask{}
		return body.Decode(t.Replace)
	case KindRun:
		if err := checkFields(body, "command", "args"); err != nil {
			return errors.Errorf("run task: %w", err)
		}
		t.Run = &RunTask{}
		return body.Decode(t.Run)
	default:
		return errors.Errorf("line %d: unknown task kind %q", node.Line, key)
	}
}

// checkFields rejects unknown task fields. node.Decode has no KnownFields
// equivalent, so the keys are checked by hand.
func checkFields(node *yaml.Node, allowed ...string) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: task body must be a mapping", node.Line)
	}
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !slices.Contains(allowed, key) {
			return errors.Errorf("line %d: unknown field %q", node.Content[i].Line, key)
		}
	}
	return nil
}
