package jobs

import (
	"context"
	"fmt"
	"testing"

	gh "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/github"
	"github.com/sevigo/code-reviewer/internal/logger"
	"github.com/sevigo/code-reviewer/internal/review"
	"github.com/sevigo/code-reviewer/mocks"
)

type fakeReviewer struct {
	got     review.DiffRequest
	outcome *review.Outcome
	err     error
}

func (f *fakeReviewer) ReviewDiff(_ context.Context, req review.DiffRequest) (*review.Outcome, error) {
	f.got = req
	return f.outcome, f.err
}

func testEvent() *core.GitHubEvent {
	return &core.GitHubEvent{
		RepoOwner:      "octo",
		RepoName:       "api",
		RepoFullName:   "octo/api",
		Language:       "Go",
		PRNumber:       12,
		Trigger:        "comment",
		InstallationID: 5,
	}
}

func newTestJob(client github.Client, reviewer Reviewer) *ReviewJob {
	factory := func(_ context.Context, id int64) (github.Client, error) {
		if id != 5 {
			return nil, fmt.Errorf("unexpected installation %d", id)
		}
		return client, nil
	}
	return NewReviewJob(factory, reviewer, logger.Discard())
}

func expectPullRequest(client *mocks.MockClient) {
	client.EXPECT().GetPullRequest(gomock.Any(), "octo", "api", 12).
		Return(&gh.PullRequest{Head: &gh.PullRequestBranch{SHA: gh.Ptr("deadbeef")}}, nil)
	client.EXPECT().CreateCheckRun(gomock.Any(), "octo", "api", gomock.Any()).
		Return(&gh.CheckRun{ID: gh.Ptr(int64(77))}, nil)
}

func TestReviewJob_PostsReview(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	record := core.NewReviewRecord()
	record.Critical = []string{"Hardcoded secret"}
	record.Summary = "Needs work."
	reviewer := &fakeReviewer{outcome: &review.Outcome{Status: review.StatusCompleted, Record: record}}

	expectPullRequest(client)
	client.EXPECT().GetPullRequestDiff(gomock.Any(), "octo", "api", 12).Return("diff --git a/x.go b/x.go\n", nil)
	client.EXPECT().CreateComment(gomock.Any(), "octo", "api", 12, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, body string) error {
			assert.Contains(t, body, "Hardcoded secret")
			return nil
		})
	client.EXPECT().UpdateCheckRun(gomock.Any(), "octo", "api", int64(77), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int64, opts gh.UpdateCheckRunOptions) (*gh.CheckRun, error) {
			assert.Equal(t, github.ConclusionFailure, opts.GetConclusion())
			assert.Equal(t, "Needs work.", opts.GetOutput().GetSummary())
			return &gh.CheckRun{}, nil
		})

	event := testEvent()
	require.NoError(t, newTestJob(client, reviewer).Run(context.Background(), event))

	assert.Equal(t, "deadbeef", event.HeadSHA)
	assert.Equal(t, "pr#12", reviewer.got.Label)
	assert.Equal(t, "go", reviewer.got.Language)
	assert.True(t, reviewer.got.UseCache)
}

func TestReviewJob_NoChanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	reviewer := &fakeReviewer{outcome: &review.Outcome{Status: review.StatusNoChanges, Message: "No pr#12 changes found to review."}}

	expectPullRequest(client)
	client.EXPECT().GetPullRequestDiff(gomock.Any(), "octo", "api", 12).Return("", nil)
	client.EXPECT().UpdateCheckRun(gomock.Any(), "octo", "api", int64(77), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int64, opts gh.UpdateCheckRunOptions) (*gh.CheckRun, error) {
			assert.Equal(t, github.ConclusionNeutral, opts.GetConclusion())
			return &gh.CheckRun{}, nil
		})

	require.NoError(t, newTestJob(client, reviewer).Run(context.Background(), testEvent()))
}

func TestReviewJob_ReviewFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	reviewer := &fakeReviewer{err: fmt.Errorf("%w: quota", core.ErrRateLimited)}

	expectPullRequest(client)
	client.EXPECT().GetPullRequestDiff(gomock.Any(), "octo", "api", 12).Return("diff --git a/x.go b/x.go\n", nil)
	client.EXPECT().UpdateCheckRun(gomock.Any(), "octo", "api", int64(77), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int64, opts gh.UpdateCheckRunOptions) (*gh.CheckRun, error) {
			assert.Equal(t, github.ConclusionFailure, opts.GetConclusion())
			assert.Equal(t, "The model provider rate limit was exceeded", opts.GetOutput().GetSummary())
			return &gh.CheckRun{}, nil
		})

	err := newTestJob(client, reviewer).Run(context.Background(), testEvent())
	assert.ErrorIs(t, err, core.ErrRateLimited)
}

func TestReviewJob_InvalidEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	event := testEvent()
	event.InstallationID = 0

	err := newTestJob(mocks.NewMockClient(ctrl), &fakeReviewer{}).Run(context.Background(), event)
	assert.ErrorContains(t, err, "input validation failed")
}
