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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// Parse decodes copy/replace/run blocks. gohcl decodes each block type into
// its own slice, which loses the interleaved declaration order — and here
// declaration order is execution order — so blocks are walked in source
// order off the raw syntax body instead.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	body, ok := hclFile.Body.(*hclsyntax.Body)
	if !ok {
		return nil, errors.Errorf("unexpected HCL body type")
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg Config
	for _, block := range body.Blocks {
		if len(block.Labels) > 0 {
			return nil, errors.Errorf("%s: %s blocks take no labels", block.DefRange().String(), block.Type)
		}

		var task Task
		switch Kind(block.Type) {
		case KindCopy:
			task.Copy = &CopyTask{}
			diags = gohcl.DecodeBody(block.Body, evalCtx, task.Copy)
		case KindReplace:
			task.Replace = &ReplaceTask{}
			diags = gohcl.DecodeBody(block.Body, evalCtx, task.Replace)
		case KindRun:
			task.Run = &RunTask{}
			diags = gohcl.DecodeBody(block.Body, evalCtx, task.Run)
		default:
			return nil, errors.Errorf("%s: unknown block type %q", block.DefRange().String(), block.Type)
		}
		if diags.HasErrors() {
			return nil, errors.Errorf("decoding %s block: %s", block.Type, diags.Error())
		}

		cfg.Tasks = append(cfg.Tasks, task)
	}

	for name, attr := range body.Attributes {
		return nil, errors.Errorf("%s: unexpected top-level attribute %q", attr.SrcRange.String(), name)
	}

	return &cfg, nil
}
