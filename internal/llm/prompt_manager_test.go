package llm

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-reviewer/internal/core"
)

func TestPromptManager_RenderReview(t *testing.T) {
	pm, err := NewPromptManager()
	require.NoError(t, err)

	out, err := pm.Render(CodeReviewPrompt, "gemini", ReviewPromptData{Diff: "+ fmt.Println(x)", Language: "Go"})
	require.NoError(t, err)

	assert.Contains(t, out, "## 🔴 Critical Issues")
	assert.Contains(t, out, "## 🟡 Warnings")
	assert.Contains(t, out, "## 🟢 Suggestions")
	assert.Contains(t, out, "## ✅ Positive Notes")
	assert.Contains(t, out, "## 🔍 Summary")
	assert.Contains(t, out, "written in Go")
	assert.Contains(t, out, "```diff\n+ fmt.Println(x)\n```")
}

func TestPromptManager_RenderJSON(t *testing.T) {
	pm, err := NewPromptManager()
	require.NoError(t, err)

	out, err := pm.Render(PromptKeyFor(core.ResponseJSON), DefaultProvider, ReviewPromptData{Diff: "+x"})
	require.NoError(t, err)
	assert.Contains(t, out, `"critical"`)
	assert.NotContains(t, out, "written in")
}

func TestPromptManager_UnknownKey(t *testing.T) {
	pm, err := NewPromptManager()
	require.NoError(t, err)

	_, err = pm.Render("missing", DefaultProvider, ReviewPromptData{})
	assert.Error(t, err)
}

func TestParsePromptName(t *testing.T) {
	id, err := parsePromptName("code_review_json_default.prompt")
	require.NoError(t, err)
	assert.Equal(t, CodeReviewJSONPrompt, id.key)
	assert.Equal(t, DefaultProvider, id.provider)

	for _, bad := range []string{"review.prompt", "_default.prompt", "code_review_.prompt"} {
		_, err := parsePromptName(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadPrompts_ProviderOverride(t *testing.T) {
	fsys := fstest.MapFS{
		"p/code_review_default.prompt": {Data: []byte("default {{.Diff}}")},
		"p/code_review_ollama.prompt":  {Data: []byte("ollama {{.Diff}}")},
		"p/README.md":                  {Data: []byte("ignored")},
	}
	pm, err := loadPrompts(fsys, "p")
	require.NoError(t, err)

	out, err := pm.Render(CodeReviewPrompt, "ollama", ReviewPromptData{Diff: "+x"})
	require.NoError(t, err)
	assert.Equal(t, "ollama +x", out)

	out, err = pm.Render(CodeReviewPrompt, "openai", ReviewPromptData{Diff: "+x"})
	require.NoError(t, err)
	assert.Equal(t, "default +x", out)
}
