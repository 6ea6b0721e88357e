package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-reviewer/internal/core"
)

func TestDetectLanguage(t *testing.T) {
	tests := map[string]string{
		"src/app.py":     "python",
		"web/App.TSX":    "javascript",
		"Main.java":      "java",
		"cmd/main.go":    "go",
		"src/lib.rs":     "rust",
		"README.md":      "unknown",
		"Makefile":       "unknown",
		"scripts/run.js": "javascript",
	}
	for path, want := range tests {
		assert.Equal(t, want, DetectLanguage(path), path)
	}
}

func TestLanguageRules(t *testing.T) {
	assert.NotEmpty(t, LanguageRules("Python"))
	assert.Nil(t, LanguageRules("cobol"))
	for _, name := range []string{"python", "javascript", "java", "go", "rust"} {
		assert.NoError(t, ValidateRules(LanguageRules(name)), name)
	}
}

const mixedDiff = `diff --git a/app.py b/app.py
--- a/app.py
+++ b/app.py
@@ -1 +1,2 @@
+print("debug")
+result = eval(user_input)
diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1 +1,2 @@
+	fmt.Println("hi")
`

func TestRuleFindings_LanguageRulesDisabled(t *testing.T) {
	cfg := core.NewReviewConfig("", 0.3, []core.CustomRule{{Pattern: `eval\(`, Message: "eval", Severity: "critical"}}, nil, nil)
	findings := RuleFindings(cfg, mixedDiff)
	require.Len(t, findings, 1)
	assert.Equal(t, "eval", findings[0].Message)
}

func TestRuleFindings_LanguageRulesScopedToFiles(t *testing.T) {
	cfg := core.NewReviewConfig("", 0.3, nil, nil, nil)
	cfg.LanguageRules = true

	findings := RuleFindings(cfg, mixedDiff)

	var messages []string
	for _, f := range findings {
		messages = append(messages, f.Message)
	}
	assert.Equal(t, []string{
		"Avoid eval() - security risk",
		"Debug print statement",
		"Consider using structured logging",
	}, messages)
}
