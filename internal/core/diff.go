package core

import (
	"context"
	"fmt"
	"strings"
)

// DiffKind selects which change-set is collected from version control.
type DiffKind string

const (
	DiffStaged      DiffKind = "staged"
	DiffUncommitted DiffKind = "uncommitted"
	DiffLastCommit  DiffKind = "last-commit"
)

// DiffKinds lists the supported kinds in the order they are shown to users.
var DiffKinds = []DiffKind{DiffStaged, DiffUncommitted, DiffLastCommit}

// ParseDiffKind converts user input into a DiffKind.
func ParseDiffKind(s string) (DiffKind, error) {
	switch DiffKind(strings.ToLower(strings.TrimSpace(s))) {
	case DiffStaged:
		return DiffStaged, nil
	case DiffUncommitted:
		return DiffUncommitted, nil
	case DiffLastCommit:
		return DiffLastCommit, nil
	default:
		return "", fmt.Errorf("invalid diff type '%s' (expected staged, uncommitted or last-commit)", s)
	}
}

func (k DiffKind) String() string {
	return string(k)
}

// DiffSource acquires a unified diff from a repository.
//
// An empty string with a nil error means there is nothing to review: the path is
// not a repository, the change-set is empty, or (for last-commit) the history
// has fewer than two commits.
type DiffSource interface {
	GetDiff(ctx context.Context, kind DiffKind, repoPath string) (string, error)
}

// OutputFormat selects how a finished review is presented.
type OutputFormat string

const (
	OutputTerminal OutputFormat = "terminal"
	OutputMarkdown OutputFormat = "markdown"
	OutputJSON     OutputFormat = "json"
)

// ParseOutputFormat converts user input into an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case OutputTerminal:
		return OutputTerminal, nil
	case OutputMarkdown:
		return OutputMarkdown, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("invalid output format '%s' (expected terminal, markdown or json)", s)
	}
}

// ResponseFormat is the convention the model is asked to answer in.
type ResponseFormat string

const (
	ResponseMarkdown ResponseFormat = "markdown"
	ResponseJSON     ResponseFormat = "json"
)
