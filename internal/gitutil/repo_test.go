package gitutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/logger"
)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	wt   *git.Worktree
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &testRepo{t: t, dir: dir, repo: repo, wt: wt}
}

func (r *testRepo) write(name, content string) {
	r.t.Helper()
	path := filepath.Join(r.dir, name)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.t, os.WriteFile(path, []byte(content), 0o600))
}

func (r *testRepo) stage(name string) {
	r.t.Helper()
	_, err := r.wt.Add(name)
	require.NoError(r.t, err)
}

func (r *testRepo) commit(msg string) {
	r.t.Helper()
	_, err := r.wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Reviewer", Email: "reviewer@example.com", When: time.Now()},
	})
	require.NoError(r.t, err)
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func TestGetDiff_NotARepository(t *testing.T) {
	c := NewClient(logger.Discard())
	for _, kind := range core.DiffKinds {
		diff, err := c.GetDiff(context.Background(), kind, t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, diff, kind)
	}
}

func TestGetDiff_LastCommit(t *testing.T) {
	r := newTestRepo(t)
	r.write("app.py", "print('hello')\n")
	r.stage("app.py")
	r.commit("initial")

	c := NewClient(logger.Discard())

	diff, err := c.GetDiff(context.Background(), core.DiffLastCommit, r.dir)
	require.NoError(t, err)
	assert.Empty(t, diff, "a single commit has nothing to compare against")

	r.write("app.py", "print('hello')\nprint('debug')\n")
	r.stage("app.py")
	r.commit("add debug output")

	diff, err = c.GetDiff(context.Background(), core.DiffLastCommit, r.dir)
	require.NoError(t, err)
	assert.Contains(t, diff, "diff --git a/app.py b/app.py")
	assert.Contains(t, diff, "+print('debug')")
	assert.Equal(t, 1, CountFiles(diff))
}

func TestGetDiff_NoCommits(t *testing.T) {
	r := newTestRepo(t)
	c := NewClient(logger.Discard())

	for _, kind := range []core.DiffKind{core.DiffUncommitted, core.DiffLastCommit} {
		diff, err := c.GetDiff(context.Background(), kind, r.dir)
		require.NoError(t, err)
		assert.Empty(t, diff, kind)
	}
}

func TestGetDiff_StagedAndUncommitted(t *testing.T) {
	requireGit(t)

	r := newTestRepo(t)
	r.write("main.go", "package main\n")
	r.stage("main.go")
	r.commit("initial")

	c := NewClient(logger.Discard())
	ctx := context.Background()

	diff, err := c.GetDiff(ctx, core.DiffStaged, r.dir)
	require.NoError(t, err)
	assert.Empty(t, diff)

	r.write("main.go", "package main\n\nfunc main() {}\n")
	diff, err = c.GetDiff(ctx, core.DiffStaged, r.dir)
	require.NoError(t, err)
	assert.Empty(t, diff, "unstaged edits are not part of the staged diff")

	diff, err = c.GetDiff(ctx, core.DiffUncommitted, r.dir)
	require.NoError(t, err)
	assert.Contains(t, diff, "+func main() {}")

	r.stage("main.go")
	diff, err = c.GetDiff(ctx, core.DiffStaged, filepath.Join(r.dir))
	require.NoError(t, err)
	assert.Contains(t, diff, "+func main() {}")
}

func TestGetDiff_FromSubdirectory(t *testing.T) {
	requireGit(t)

	r := newTestRepo(t)
	r.write("pkg/util.go", "package pkg\n")
	r.stage("pkg/util.go")

	c := NewClient(logger.Discard())
	diff, err := c.GetDiff(context.Background(), core.DiffStaged, filepath.Join(r.dir, "pkg"))
	require.NoError(t, err)
	assert.Contains(t, diff, "pkg/util.go")
}
