package operation

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/packager-dev/packager/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files under root from a map of relative path -> content.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// listTree returns the sorted relative paths of all regular files under root.
func listTree(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		require.NoError(t, err)
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(root, path)
			require.NoError(t, err)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func runCopy(t *testing.T, base string, task *config.CopyTask) error {
	t.Helper()
	op := &copyOperation{task: task, opts: Options{Context: testContext(t, base)}}
	return op.Execute(context.Background())
}

func TestCopyOperation_FiltersWithIgnoreFile(t *testing.T) {
	// end-to-end: {a.txt, b.log, sub/c.txt} with ignore file "*.log"
	base := t.TempDir()
	writeTree(t, filepath.Join(base, "src"), map[string]string{
		"a.txt":      "a",
		"b.log":      "b",
		"sub/c.txt":  "c",
		".gitignore": "*.log\n",
	})

	err := runCopy(t, base, &config.CopyTask{Source: "src", Destination: "dst"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "sub/c.txt"}, listTree(t, filepath.Join(base, "dst")))
}

func TestCopyOperation_IsIdempotent(t *testing.T) {
	base := t.TempDir()
	writeTree(t, filepath.Join(base, "src"), map[string]string{
		"a.txt":     "a",
		"sub/c.txt": "c",
	})
	task := &config.CopyTask{Source: "src", Destination: "dst"}

	require.NoError(t, runCopy(t, base, task))
	first := listTree(t, filepath.Join(base, "dst"))

	require.NoError(t, runCopy(t, base, task))
	second := listTree(t, filepath.Join(base, "dst"))

	assert.Equal(t, first, second)
	data, err := os.ReadFile(filepath.Join(base, "dst", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestCopyOperation_OverwritesExistingFiles(t *testing.T) {
	base := t.TempDir()
	writeTree(t, filepath.Join(base, "src"), map[string]string{"a.txt": "new"})
	writeTree(t, filepath.Join(base, "dst"), map[string]string{"a.txt": "old"})

	require.NoError(t, runCopy(t, base, &config.CopyTask{Source: "src", Destination: "dst"}))

	data, err := os.ReadFile(filepath.Join(base, "dst", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestCopyOperation_PreservesPermissionBits(t *testing.T) {
	base := t.TempDir()
	writeTree(t, filepath.Join(base, "src"), map[string]string{"tool.sh": "#!/bin/sh\n"})
	require.NoError(t, os.Chmod(filepath.Join(base, "src", "tool.sh"), 0o755))

	require.NoError(t, runCopy(t, base, &config.CopyTask{Source: "src", Destination: "dst"}))

	info, err := os.Stat(filepath.Join(base, "dst", "tool.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCopyOperation_ExcludedDirectorySubtreeSkipped(t *testing.T) {
	base := t.TempDir()
	writeTree(t, filepath.Join(base, "src"), map[string]string{
		"keep.txt":           "k",
		"vendor/a.go":        "a",
		"vendor/deep/b.go":   "b",
		"vendor/deep/c.json": "c",
		".gitignore":         "vendor/\n",
	})

	require.NoError(t, runCopy(t, base, &config.CopyTask{Source: "src", Destination: "dst"}))

	assert.Equal(t, []string{"keep.txt"}, listTree(t, filepath.Join(base, "dst")))
}

func TestCopyOperation_NegationReincludesFile(t *testing.T) {
	base := t.TempDir()
	writeTree(t, filepath.Join(base, "src"), map[string]string{
		"keep.log":   "keep",
		"drop.log":   "drop",
		".gitignore": "*.log\n!keep.log\n",
	})

	require.NoError(t, runCopy(t, base, &config.CopyTask{Source: "src", Destination: "dst"}))

	assert.Equal(t, []string{"keep.log"}, listTree(t, filepath.Join(base, "dst")))
}

func TestCopyOperation_UseGitignoreFalseCopiesEverything(t *testing.T) {
	base := t.TempDir()
	writeTree(t, filepath.Join(base, "src"), map[string]string{
		"a.txt":      "a",
		"b.log":      "b",
		".gitignore": "*.log\n",
	})
	off := false

	err := runCopy(t, base, &config.CopyTask{Source: "src", Destination: "dst", UseGitignore: &off})
	require.NoError(t, err)

	assert.Equal(t, []string{".gitignore", "a.txt", "b.log"}, listTree(t, filepath.Join(base, "dst")))
}

func TestCopyOperation_ExplicitIgnoreFile(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{"rules.ignore": "*.log\n"})
	writeTree(t, filepath.Join(base, "src"), map[string]string{
		"a.txt": "a",
		"b.log": "b",
	})

	err := runCopy(t, base, &config.CopyTask{
		Source:      "src",
		Destination: "dst",
		Gitignore:   "rules.ignore",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt"}, listTree(t, filepath.Join(base, "dst")))
}

func TestCopyOperation_SourceNotFound(t *testing.T) {
	base := t.TempDir()

	err := runCopy(t, base, &config.CopyTask{Source: "missing", Destination: "dst"})
	require.Error(t, err)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, SourceNotFound, taskErr.Kind)
}

func TestCopyOperation_SourceMustBeDirectory(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{"file.txt": "x"})

	err := runCopy(t, base, &config.CopyTask{Source: "file.txt", Destination: "dst"})
	require.Error(t, err)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, SourceNotFound, taskErr.Kind)
	assert.Contains(t, taskErr.Detail, "not a directory")
}

func TestCopyOperation_UnreadableFileAbortsWithIOError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root bypasses file permissions")
	}

	base := t.TempDir()
	writeTree(t, filepath.Join(base, "src"), map[string]string{
		"a.txt":      "a",
		"secret.txt": "s",
	})
	require.NoError(t, os.Chmod(filepath.Join(base, "src", "secret.txt"), 0o000))

	err := runCopy(t, base, &config.CopyTask{Source: "src", Destination: "dst"})
	require.Error(t, err)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, IO, taskErr.Kind)
	assert.Contains(t, taskErr.Detail, "secret.txt")
}

func TestCopyOperation_SymlinksAreSkipped(t *testing.T) {
	base := t.TempDir()
	writeTree(t, filepath.Join(base, "src"), map[string]string{"a.txt": "a"})
	require.NoError(t, os.Symlink(
		filepath.Join(base, "src", "a.txt"),
		filepath.Join(base, "src", "link.txt"),
	))

	require.NoError(t, runCopy(t, base, &config.CopyTask{Source: "src", Destination: "dst"}))

	assert.Equal(t, []string{"a.txt"}, listTree(t, filepath.Join(base, "dst")))
}
