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
	stderrors "errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/packager-dev/packager/pkg/config"
	"github.com/rs/zerolog"
)

// 🏃 runOperation invokes an external command through the platform's native
// command interpreter and forwards its exit status
type runOperation struct {
	task *config.RunTask
	opts Options
}

func (op *runOperation) Describe() string {
	return "run " + op.task.Command
}

// 🏃 Execute blocks until the spawned process terminates. The process
// inherits the run's base directory as its working directory and the
// engine's standard streams; output is not captured. No timeout is imposed:
// a hung command blocks the whole run until the operator kills it.
func (op *runOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	cmd := spawnPlatformCommand(ctx, op.task.Command, op.task.Args, op.opts.Context.BaseDir)
	cmd.Stdin = op.opts.stdin()
	cmd.Stdout = op.opts.stdout()
	cmd.Stderr = op.opts.stderr()

	logger.Debug().
		Str("command", op.task.Command).
		Strs("args", op.task.Args).
		Str("dir", cmd.Dir).
		Msg("spawning command")

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return failErr(Process, fmt.Sprintf("%s: exit code %d", op.task.Command, exitErr.ExitCode()), err)
		}
		return failErr(Process, op.task.Command+": failed to spawn", err)
	}
	return nil
}

// spawnPlatformCommand is the single seam where the host interpreter is
// chosen: cmd /C on Windows, sh -c elsewhere. args are passed as literal
// additional arguments to the spawned process, never interpolated into
// command.
func spawnPlatformCommand(ctx context.Context, command string, args []string, dir string) *exec.Cmd {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", append([]string{"/C", command}, args...)...)
	} else {
		cmd = exec.CommandContext(ctx, "sh", append([]string{"-c", command}, args...)...)
	}
	cmd.Dir = dir
	return cmd
}
