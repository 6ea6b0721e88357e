package review

import (
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-reviewer/internal/core"
)

func completed() *Outcome {
	r := core.NewReviewRecord()
	r.DiffKind = "staged"
	r.Model = "gemini-2.5-flash"
	r.FileCount = 2
	r.Critical = []string{"leak"}
	r.Positive = []string{"tidy"}
	r.Summary = "Looks fine."
	return &Outcome{Status: StatusCompleted, Kind: "staged", Record: r}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := Render(completed(), core.OutputMarkdown)
	require.NoError(t, err)

	md := string(out)
	assert.Contains(t, md, "# Code Review: staged changes")
	assert.Contains(t, md, "## 🔴 Critical Issues\n\n- leak\n")
	assert.Contains(t, md, "## 🟡 Warnings\n\n_None_")
	assert.Contains(t, md, "## 🔍 Summary\n\nLooks fine.")

	// the parser reads back what the renderer writes
	back := ParseMarkdown(md)
	assert.Equal(t, []string{"leak"}, back.Critical)
	assert.Equal(t, []string{"tidy"}, back.Positive)
}

func TestRenderTerminal(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	out, err := Render(completed(), core.OutputTerminal)
	require.NoError(t, err)
	assert.Contains(t, string(out), "🔴 Critical Issues (1)\n  • leak\n")
	assert.Contains(t, string(out), "🟡 Warnings (0)")
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(completed(), core.OutputJSON)
	require.NoError(t, err)

	var decoded struct {
		DiffType string            `json:"diff_type"`
		Status   string            `json:"status"`
		Review   core.ReviewRecord `json:"review"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "staged", decoded.DiffType)
	assert.Equal(t, "completed", decoded.Status)
	assert.Equal(t, []string{"leak"}, decoded.Review.Critical)
}

func TestRender_NoChanges(t *testing.T) {
	o := &Outcome{Status: StatusNoChanges, Kind: "staged", Message: NoChangesMessage("staged")}

	out, err := Render(o, core.OutputTerminal)
	require.NoError(t, err)
	assert.Equal(t, "No staged changes found to review.\n", string(out))

	out, err = Render(o, core.OutputJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"diff_type":"staged","status":"no_changes","message":"No staged changes found to review."}`, string(out))
}
