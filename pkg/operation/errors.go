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

import "fmt"

// 🏷️ FailureKind classifies executor failures
type FailureKind string

const (
	InvalidPath    FailureKind = "invalid_path"
	SourceNotFound FailureKind = "source_not_found"
	TargetNotFound FailureKind = "target_not_found"
	Encoding       FailureKind = "encoding"
	Pattern        FailureKind = "pattern"
	IO             FailureKind = "io"
	Process        FailureKind = "process"
)

// ❌ TaskError is the structured failure value every executor error is
// turned into at the task boundary. Detail carries the path or command
// needed to diagnose the failure.
type TaskError struct {
	Kind   FailureKind
	Detail string
	cause  error
}

func (e *TaskError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *TaskError) Unwrap() error {
	return e.cause
}

// fail builds a TaskError without an underlying cause
func fail(kind FailureKind, detail string) *TaskError {
	return &TaskError{Kind: kind, Detail: detail}
}

// failErr builds a TaskError wrapping an underlying cause
func failErr(kind FailureKind, detail string, cause error) *TaskError {
	return &TaskError{Kind: kind, Detail: detail, cause: cause}
}
