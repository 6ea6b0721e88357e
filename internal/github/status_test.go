package github

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/mocks"
)

func sampleRecord() *core.ReviewRecord {
	r := core.NewReviewRecord()
	r.Model = "gemini-2.5-flash"
	r.FileCount = 3
	r.DurationSeconds = 4.2
	r.Summary = "Mostly fine."
	r.Critical = []string{"SQL injection in lookup"}
	r.Suggestions = []string{"Add tests"}
	r.Positive = []string{"Good naming"}
	return r
}

func TestFormatReviewComment(t *testing.T) {
	got := FormatReviewComment(sampleRecord())

	assert.Contains(t, got, "### 🤖 AI Code Review")
	assert.Contains(t, got, "Mostly fine.")
	assert.Contains(t, got, "| 🔴 Critical | 1 |")
	assert.Contains(t, got, "#### 🔴 Critical Issues\n\n- SQL injection in lookup")
	assert.Contains(t, got, "<details><summary>🟢 Suggestions (1)</summary>")
	assert.NotContains(t, got, "Warnings")
	assert.Contains(t, got, "Model: gemini-2.5-flash · Files reviewed: 3 · 4.2s")
}

func TestFormatReviewComment_NoIssues(t *testing.T) {
	r := core.NewReviewRecord()
	r.Cached = true

	got := FormatReviewComment(r)
	assert.NotContains(t, got, "| Severity |")
	assert.Contains(t, got, "· cached")
}

func TestFormatReviewComment_ParseError(t *testing.T) {
	r := core.NewReviewRecord()
	r.ParseError = "model response could not be parsed: EOF"
	r.RawText = "garbage"

	got := FormatReviewComment(r)
	assert.Contains(t, got, "> [!WARNING]")
	assert.Contains(t, got, "```\ngarbage\n```")
}

func TestConclusionAndTitle(t *testing.T) {
	r := sampleRecord()
	assert.Equal(t, ConclusionFailure, Conclusion(r))
	assert.Equal(t, "1 critical, 0 warnings, 1 suggestions", CheckRunTitle(r))

	clean := core.NewReviewRecord()
	assert.Equal(t, ConclusionSuccess, Conclusion(clean))
	assert.Equal(t, "No issues found", CheckRunTitle(clean))
}

func TestStatusUpdater(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	event := &core.GitHubEvent{RepoOwner: "octo", RepoName: "api", PRNumber: 7, HeadSHA: "abc123"}

	client.EXPECT().CreateCheckRun(gomock.Any(), "octo", "api", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, opts github.CreateCheckRunOptions) (*github.CheckRun, error) {
			assert.Equal(t, CheckRunName, opts.Name)
			assert.Equal(t, "abc123", opts.HeadSHA)
			assert.Equal(t, "in_progress", opts.GetStatus())
			return &github.CheckRun{ID: github.Ptr(int64(99))}, nil
		})
	client.EXPECT().UpdateCheckRun(gomock.Any(), "octo", "api", int64(99), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int64, opts github.UpdateCheckRunOptions) (*github.CheckRun, error) {
			assert.Equal(t, "completed", opts.GetStatus())
			assert.Equal(t, ConclusionFailure, opts.GetConclusion())
			return &github.CheckRun{}, nil
		})
	client.EXPECT().CreateComment(gomock.Any(), "octo", "api", 7, gomock.Any()).Return(nil)

	s := &statusUpdater{client: client, now: func() time.Time { return time.Unix(0, 0) }}
	ctx := context.Background()

	id, err := s.InProgress(ctx, event, "Reviewing", "started")
	require.NoError(t, err)
	assert.Equal(t, int64(99), id)
	require.NoError(t, s.Completed(ctx, event, id, ConclusionFailure, "t", "s"))
	require.NoError(t, s.PostReview(ctx, event, sampleRecord()))
}
