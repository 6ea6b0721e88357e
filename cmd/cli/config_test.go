package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/code-reviewer/internal/core"
)

func TestPrintRepoConfig(t *testing.T) {
	cfg := core.NewReviewConfig("gemini-2.5-pro", 0.2, nil, []string{"vendor/**"}, []string{"**/*.go", "**/*.py"})

	var buf bytes.Buffer
	printRepoConfig(&buf, cfg, "gemini-2.5-pro")

	out := buf.String()
	assert.Contains(t, out, "gemini-2.5-pro")
	assert.Contains(t, out, "vendor/**")
	assert.Contains(t, out, "**/*.go, **/*.py")
}

func TestPatternList_Empty(t *testing.T) {
	assert.Equal(t, "(none)", patternList(nil))
}
