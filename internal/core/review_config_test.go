package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldReviewFile(t *testing.T) {
	cfg := NewReviewConfig("", 0, nil, []string{"**/vendor/**", "*.lock", "docs/*.md"}, nil)

	tests := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"internal/vendor/lib/a.go", false},
		{"go.lock", false},
		{"docs/readme.md", false},
		{"docs/api/readme.md", true},
		{"golock", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.ShouldReviewFile(tt.path))
		})
	}
}

func TestShouldReviewFile_IncludePatterns(t *testing.T) {
	cfg := NewReviewConfig("", 0, nil, []string{"*_test.go"}, []string{"*.go"})

	assert.True(t, cfg.ShouldReviewFile("cmd/main.go"))
	assert.False(t, cfg.ShouldReviewFile("cmd/main_test.go"))
	assert.False(t, cfg.ShouldReviewFile("README.md"))
}

func TestReviewConfig_IsSnapshot(t *testing.T) {
	rules := []CustomRule{{Pattern: "TODO", Message: "todo", Severity: "info"}}
	cfg := NewReviewConfig("", DefaultTemperature, rules, nil, nil)

	rules[0].Pattern = "changed"
	got := cfg.CustomRules()
	got[0].Message = "changed"

	assert.Equal(t, "TODO", cfg.CustomRules()[0].Pattern)
	assert.Equal(t, "todo", cfg.CustomRules()[0].Message)
	assert.Equal(t, DefaultModelName, cfg.ModelName)
}

func TestParseDiffKind(t *testing.T) {
	kind, err := ParseDiffKind(" Last-Commit ")
	assert.NoError(t, err)
	assert.Equal(t, DiffLastCommit, kind)

	_, err = ParseDiffKind("head")
	assert.Error(t, err)
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, SeverityCritical, ParseSeverity("CRITICAL"))
	assert.Equal(t, SeverityWarning, ParseSeverity("warning"))
	assert.Equal(t, SeverityInfo, ParseSeverity("whatever"))
}
