package gitutil

import (
	"strings"
)

const fileHeader = "diff --git "

// FileDiff is the section of a unified diff that belongs to one file.
type FileDiff struct {
	Path string
	Text string
}

// SplitDiff cuts a unified diff at its "diff --git" headers. Text before the
// first header is dropped. A diff without headers yields nil.
func SplitDiff(diff string) []FileDiff {
	var files []FileDiff
	var current *FileDiff
	var b strings.Builder

	flush := func() {
		if current != nil {
			current.Text = b.String()
			files = append(files, *current)
			b.Reset()
		}
	}

	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, fileHeader) {
			flush()
			current = &FileDiff{Path: pathFromHeader(line)}
		}
		if current != nil {
			b.WriteString(line)
		}
	}
	flush()
	return files
}

// pathFromHeader returns the post-image path of "diff --git a/x b/y".
func pathFromHeader(line string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(line, fileHeader))
	if i := strings.LastIndex(rest, " b/"); i >= 0 {
		return rest[i+3:]
	}
	return strings.TrimPrefix(rest, "a/")
}

// CountFiles returns the number of files touched by diff.
func CountFiles(diff string) int {
	n := 0
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, fileHeader) {
			n++
		}
	}
	return n
}

// FilterDiff keeps the file sections whose path satisfies keep, in order, up
// to maxFiles of them (zero means no limit). It also returns how many files
// were dropped. A diff without file headers is returned unchanged.
func FilterDiff(diff string, keep func(path string) bool, maxFiles int) (string, int) {
	files := SplitDiff(diff)
	if len(files) == 0 {
		return diff, 0
	}

	var b strings.Builder
	kept := 0
	for _, f := range files {
		if keep != nil && !keep(f.Path) {
			continue
		}
		if maxFiles > 0 && kept >= maxFiles {
			continue
		}
		b.WriteString(f.Text)
		kept++
	}
	return b.String(), len(files) - kept
}

// ChangedPaths lists the post-image paths touched by diff.
func ChangedPaths(diff string) []string {
	files := SplitDiff(diff)
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}
