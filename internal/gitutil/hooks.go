package gitutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when a path is not inside a Git working tree.
var ErrNotRepository = errors.New("not a git repository")

// ErrForeignHook is returned when a hook exists that this tool did not install.
var ErrForeignHook = errors.New("hook was not installed by code-reviewer")

// HookMarker identifies hooks written by InstallHook.
const HookMarker = "# installed by code-reviewer"

// WorktreeRoot returns the root of the working tree containing path.
func WorktreeRoot(path string) (string, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%w: %s", ErrNotRepository, path)
		}
		return "", fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("%w: %s has no worktree", ErrNotRepository, path)
	}
	return wt.Filesystem.Root(), nil
}

func hookPath(repoPath, name string) (string, error) {
	root, err := WorktreeRoot(repoPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, ".git", "hooks", name), nil
}

// InstallHook writes an executable hook script. An existing hook is only
// replaced when it carries HookMarker, unless force is set.
func InstallHook(repoPath, name, body string, force bool) (string, error) {
	path, err := hookPath(repoPath, name)
	if err != nil {
		return "", err
	}
	if existing, err := os.ReadFile(path); err == nil {
		if !force && !strings.Contains(string(existing), HookMarker) {
			return "", fmt.Errorf("%w: %s", ErrForeignHook, path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create hooks directory: %w", err)
	}
	script := "#!/bin/sh\n" + HookMarker + "\n" + body
	if !strings.HasSuffix(script, "\n") {
		script += "\n"
	}
	//nolint:gosec // hooks must be executable
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		return "", fmt.Errorf("failed to write hook %s: %w", path, err)
	}
	return path, nil
}

// UninstallHook removes a hook written by InstallHook. A missing hook is not an error.
func UninstallHook(repoPath, name string) (string, error) {
	path, err := hookPath(repoPath, name)
	if err != nil {
		return "", err
	}
	existing, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return path, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read hook %s: %w", path, err)
	}
	if !strings.Contains(string(existing), HookMarker) {
		return "", fmt.Errorf("%w: %s", ErrForeignHook, path)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to remove hook %s: %w", path, err)
	}
	return path, nil
}
