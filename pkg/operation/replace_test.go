package operation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/packager-dev/packager/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runReplace(t *testing.T, base string, task *config.ReplaceTask) error {
	t.Helper()
	op := &replaceOperation{task: task, opts: Options{Context: testContext(t, base)}}
	return op.Execute(context.Background())
}

func kindOf(t *testing.T, err error) FailureKind {
	t.Helper()
	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	return taskErr.Kind
}

func TestReplaceOperation_Execute(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		pattern     string
		replacement string
		want        string
	}{
		{
			name:        "version_bump",
			content:     "version=1.0.0",
			pattern:     `version=\d+\.\d+\.\d+`,
			replacement: "version=2.0.0",
			want:        "version=2.0.0",
		},
		{
			name:        "all_non_overlapping_matches_replaced",
			content:     "foo foo foo",
			pattern:     "foo",
			replacement: "bar",
			want:        "bar bar bar",
		},
		{
			name:        "capture_group_references",
			content:     "name: world",
			pattern:     `name: (\w+)`,
			replacement: "hello $1",
			want:        "hello world",
		},
		{
			name:        "whole_match_reference",
			content:     "item",
			pattern:     `item`,
			replacement: "<$0>",
			want:        "<item>",
		},
		{
			name:        "zero_matches_is_a_noop",
			content:     "unchanged",
			pattern:     "absent",
			replacement: "x",
			want:        "unchanged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			target := filepath.Join(base, "file.txt")
			require.NoError(t, os.WriteFile(target, []byte(tt.content), 0o644))

			err := runReplace(t, base, &config.ReplaceTask{
				Target:      "file.txt",
				Pattern:     tt.pattern,
				Replacement: tt.replacement,
			})
			require.NoError(t, err)

			data, err := os.ReadFile(target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestReplaceOperation_IsIdempotentAtFixedPoint(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "file.txt")
	require.NoError(t, os.WriteFile(target, []byte("foo and foo"), 0o644))

	task := &config.ReplaceTask{Target: "file.txt", Pattern: "foo", Replacement: "bar"}

	require.NoError(t, runReplace(t, base, task))
	require.NoError(t, runReplace(t, base, task)) // second pass finds zero matches

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "bar and bar", string(data))
}

func TestReplaceOperation_ZeroMatchesLeavesBytesUntouched(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "file.txt")
	content := []byte("nothing to see here")
	require.NoError(t, os.WriteFile(target, content, 0o644))
	before, err := os.Stat(target)
	require.NoError(t, err)

	err = runReplace(t, base, &config.ReplaceTask{Target: "file.txt", Pattern: "absent", Replacement: "x"})
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, content, data)

	after, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestReplaceOperation_PreservesFileMode(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "run.sh")
	require.NoError(t, os.WriteFile(target, []byte("foo"), 0o755))

	require.NoError(t, runReplace(t, base, &config.ReplaceTask{Target: "run.sh", Pattern: "foo", Replacement: "bar"}))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestReplaceOperation_GlobTarget(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{
		"a/one.txt":  "foo",
		"b/two.txt":  "foo",
		"b/three.md": "foo",
	})

	err := runReplace(t, base, &config.ReplaceTask{
		Target:      filepath.Join(base, "**/*.txt"),
		Pattern:     "foo",
		Replacement: "bar",
	})
	require.NoError(t, err)

	for rel, want := range map[string]string{
		"a/one.txt":  "bar",
		"b/two.txt":  "bar",
		"b/three.md": "foo",
	} {
		data, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.Equal(t, want, string(data), rel)
	}
}

func TestReplaceOperation_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, base string)
		task     config.ReplaceTask
		wantKind FailureKind
	}{
		{
			name:     "target_missing",
			setup:    func(t *testing.T, base string) {},
			task:     config.ReplaceTask{Target: "missing.txt", Pattern: "x", Replacement: "y"},
			wantKind: TargetNotFound,
		},
		{
			name: "target_is_a_directory",
			setup: func(t *testing.T, base string) {
				require.NoError(t, os.Mkdir(filepath.Join(base, "dir"), 0o755))
			},
			task:     config.ReplaceTask{Target: "dir", Pattern: "x", Replacement: "y"},
			wantKind: TargetNotFound,
		},
		{
			name: "glob_matches_nothing",
			setup: func(t *testing.T, base string) {
				require.NoError(t, os.Mkdir(filepath.Join(base, "empty"), 0o755))
			},
			task:     config.ReplaceTask{Target: "empty/*.txt", Pattern: "x", Replacement: "y"},
			wantKind: TargetNotFound,
		},
		{
			name: "invalid_pattern",
			setup: func(t *testing.T, base string) {
				require.NoError(t, os.WriteFile(filepath.Join(base, "f.txt"), []byte("x"), 0o644))
			},
			task:     config.ReplaceTask{Target: "f.txt", Pattern: "(unclosed", Replacement: "y"},
			wantKind: Pattern,
		},
		{
			name: "invalid_utf8_content",
			setup: func(t *testing.T, base string) {
				require.NoError(t, os.WriteFile(filepath.Join(base, "bin.dat"), []byte{0xff, 0xfe, 0x00, 0x80}, 0o644))
			},
			task:     config.ReplaceTask{Target: "bin.dat", Pattern: "x", Replacement: "y"},
			wantKind: Encoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			tt.setup(t, base)

			err := runReplace(t, base, &tt.task)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, kindOf(t, err))
		})
	}
}
