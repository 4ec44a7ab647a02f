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

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/packager-dev/packager/pkg/operation"
)

// Exit codes. Aborted runs distinguish plain task failures from
// filesystem-level ones; anything before the first task is a
// configuration problem.
const (
	exitOK         = 0
	exitTaskFailed = 1
	exitBadConfig  = 2
	exitIOFailed   = 3
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "packager: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var taskErr *operation.TaskError
	if errors.As(err, &taskErr) {
		switch taskErr.Kind {
		case operation.IO, operation.SourceNotFound, operation.TargetNotFound:
			return exitIOFailed
		default:
			return exitTaskFailed
		}
	}
	return exitBadConfig
}
