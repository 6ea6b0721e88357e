// Package gitutil reads change-sets from local Git repositories.
package gitutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/sevigo/code-reviewer/internal/core"
)

// Client implements core.DiffSource on top of go-git and the git CLI.
// go-git has no index-vs-tree diff, so staged and uncommitted changes come
// from the CLI while the last commit is diffed in-process.
type Client struct {
	Logger *slog.Logger
}

var _ core.DiffSource = (*Client)(nil)

// NewClient returns a new Client instance.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{Logger: logger}
}

// GetDiff returns the unified diff of kind for the repository containing
// repoPath. It returns "" when there is no repository, nothing changed, or
// the repository has no history to compare against.
func (c *Client) GetDiff(ctx context.Context, kind core.DiffKind, repoPath string) (string, error) {
	repo, root, err := c.open(repoPath)
	if err != nil {
		return "", err
	}
	if repo == nil {
		c.Logger.DebugContext(ctx, "not a git repository", "path", repoPath)
		return "", nil
	}

	head, err := repo.Head()
	hasHead := err == nil
	if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", fmt.Errorf("%w: failed to resolve HEAD: %w", core.ErrDiffUnavailable, err)
	}

	var diff string
	switch kind {
	case core.DiffStaged:
		diff, err = c.runGit(ctx, root, "diff", "--cached")
	case core.DiffUncommitted:
		if !hasHead {
			return "", nil
		}
		diff, err = c.runGit(ctx, root, "diff", "HEAD")
	case core.DiffLastCommit:
		if !hasHead {
			return "", nil
		}
		diff, err = c.lastCommitDiff(ctx, repo, head.Hash())
	default:
		return "", fmt.Errorf("unknown diff kind %q", kind)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(diff) == "" {
		return "", nil
	}
	return diff, nil
}

// open returns a nil repository when path is not inside a working tree.
func (c *Client) open(path string) (*git.Repository, string, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("%w: failed to open repository at %s: %w", core.ErrDiffUnavailable, path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, "", fmt.Errorf("%w: repository at %s has no worktree: %w", core.ErrDiffUnavailable, path, err)
	}
	return repo, wt.Filesystem.Root(), nil
}

func (c *Client) lastCommitDiff(ctx context.Context, repo *git.Repository, hash plumbing.Hash) (string, error) {
	commit, err := repo.CommitObject(hash)
	if err != nil {
		return "", fmt.Errorf("%w: failed to get commit object for %s: %w", core.ErrDiffUnavailable, hash, err)
	}
	if commit.NumParents() == 0 {
		return "", nil
	}
	parent, err := commit.Parent(0)
	if err != nil {
		return "", fmt.Errorf("%w: failed to get parent of %s: %w", core.ErrDiffUnavailable, hash, err)
	}
	patch, err := parent.PatchContext(ctx, commit)
	if err != nil {
		return "", fmt.Errorf("%w: failed to diff %s against its parent: %w", core.ErrDiffUnavailable, hash, err)
	}
	return patch.String(), nil
}

func (c *Client) runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: git %s failed: %s: %w", core.ErrDiffUnavailable, strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)), err)
		}
		return "", fmt.Errorf("%w: git %s failed: %w", core.ErrDiffUnavailable, strings.Join(args, " "), err)
	}
	return string(out), nil
}
