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
	"fmt"
	"runtime"
	rdebug "runtime/debug"
)

// buildVersion resolves the module version stamped into the binary, falling
// back to "dev" for local builds.
func buildVersion() string {
	if info, ok := rdebug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// versionDetails renders the long-form output of the version subcommand from
// the VCS stamps embedded at build time.
func versionDetails() string {
	revision := "unknown"
	built := "unknown"
	modified := ""
	if info, ok := rdebug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.time":
				built = setting.Value
			case "vcs.modified":
				if setting.Value == "true" {
					modified = " (modified)"
				}
			}
		}
	}

	return fmt.Sprintf(`packager %s
Revision:  %s%s
Built:     %s
Go:        %s
Platform:  %s/%s
`, buildVersion(), revision, modified, built, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
