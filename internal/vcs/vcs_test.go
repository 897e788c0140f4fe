package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecov/cli/internal/resolver"
)

// initRepo creates a git repository with one commit in a temp dir and
// chdirs into it for the duration of the test.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	git := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	git("init", "-b", "main")
	git("config", "user.name", "Test User")
	git("config", "user.email", "test@example.com")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))
	git("add", ".")
	git("commit", "-m", "initial")
	return dir
}

func TestGitProbe(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := initRepo(t)
	ctx := context.Background()

	probe, err := NewGitProbe(ctx)
	require.NoError(t, err)

	t.Run("NetworkRoot", func(t *testing.T) {
		root := probe.NetworkRoot(ctx)
		require.NotEmpty(t, root)
		expected, _ := filepath.EvalSymlinks(dir)
		got, _ := filepath.EvalSymlinks(root)
		assert.Equal(t, expected, got)
	})

	t.Run("HeadCommit", func(t *testing.T) {
		sha := probe.HeadCommit(ctx)
		assert.Len(t, sha, 40)
		assert.NoError(t, resolver.ValidateSHA(sha))
	})

	t.Run("Branch", func(t *testing.T) {
		assert.Equal(t, "main", probe.Get(ctx, resolver.FieldBranch))
	})

	t.Run("ListTracked", func(t *testing.T) {
		files, err := probe.ListTracked(ctx, probe.NetworkRoot(ctx))
		require.NoError(t, err)
		assert.Equal(t, []string{"main.go"}, files)
	})

	t.Run("SlugFromRemote", func(t *testing.T) {
		cmd := exec.Command("git", "remote", "add", "origin", "git@github.com:owner/repo.git")
		cmd.Dir = dir
		require.NoError(t, cmd.Run())
		assert.Equal(t, "owner/repo", probe.Get(ctx, resolver.FieldSlug))
		assert.Equal(t, "github", probe.Get(ctx, resolver.FieldGitService))
	})

	t.Run("NoParentsOnRootCommit", func(t *testing.T) {
		assert.Empty(t, probe.HeadParents(ctx))
	})
}

func TestHeadCommitPicksSecondParentOfMerge(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := initRepo(t)
	ctx := context.Background()

	git := func(args ...string) string {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
		return string(out)
	}
	git("checkout", "-b", "feature")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feature.go"), []byte("package main\n"), 0o644))
	git("add", ".")
	git("commit", "-m", "feature work")

	probe, err := NewGitProbe(ctx)
	require.NoError(t, err)
	featureSHA := probe.HeadCommit(ctx)

	git("checkout", "main")
	git("merge", "--no-ff", "feature", "-m", "merge feature")

	assert.Equal(t, featureSHA, probe.HeadCommit(ctx),
		"a merge commit should resolve to the merged branch head")
}

func TestNoGitProbe(t *testing.T) {
	probe := NoGitProbe{}
	ctx := context.Background()

	wd, _ := os.Getwd()
	assert.Equal(t, wd, probe.NetworkRoot(ctx))
	assert.Empty(t, probe.HeadCommit(ctx))
	files, err := probe.ListTracked(ctx, ".")
	assert.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, probe.Get(ctx, resolver.FieldSlug))
}
