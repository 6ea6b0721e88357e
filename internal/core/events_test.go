package core

import (
	"errors"
	"testing"

	"github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepo() *github.Repository {
	return &github.Repository{
		Name:     github.Ptr("code-reviewer"),
		FullName: github.Ptr("sevigo/code-reviewer"),
		Language: github.Ptr("Go"),
		Owner:    &github.User{Login: github.Ptr("sevigo")},
	}
}

func TestEventFromPullRequest(t *testing.T) {
	tests := []struct {
		name       string
		action     string
		install    int64
		wantErr    bool
		wantIgnore bool
	}{
		{name: "opened", action: "opened", install: 7},
		{name: "synchronize", action: "synchronize", install: 7},
		{name: "closed is ignored", action: "closed", install: 7, wantErr: true, wantIgnore: true},
		{name: "missing installation", action: "opened", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &github.PullRequestEvent{
				Action: github.Ptr(tt.action),
				PullRequest: &github.PullRequest{
					Number: github.Ptr(42),
					Title:  github.Ptr("Add cache"),
					Head:   &github.PullRequestBranch{SHA: github.Ptr("abc123")},
				},
				Repo: testRepo(),
			}
			if tt.install != 0 {
				event.Installation = &github.Installation{ID: github.Ptr(tt.install)}
			}

			got, err := EventFromPullRequest(event)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantIgnore, errors.Is(err, ErrEventIgnored))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "sevigo", got.RepoOwner)
			assert.Equal(t, 42, got.PRNumber)
			assert.Equal(t, "abc123", got.HeadSHA)
			assert.Equal(t, tt.action, got.Trigger)
		})
	}
}

func TestEventFromIssueComment(t *testing.T) {
	newEvent := func(body string, pr bool) *github.IssueCommentEvent {
		issue := &github.Issue{Number: github.Ptr(3)}
		if pr {
			issue.PullRequestLinks = &github.PullRequestLinks{URL: github.Ptr("https://api.github.com/pulls/3")}
		}
		return &github.IssueCommentEvent{
			Issue:        issue,
			Comment:      &github.IssueComment{Body: github.Ptr(body)},
			Repo:         testRepo(),
			Installation: &github.Installation{ID: github.Ptr(int64(9))},
		}
	}

	got, err := EventFromIssueComment(newEvent(" /REVIEW ", true))
	require.NoError(t, err)
	assert.Equal(t, 3, got.PRNumber)
	assert.Equal(t, "comment", got.Trigger)

	_, err = EventFromIssueComment(newEvent("looks good", true))
	assert.ErrorIs(t, err, ErrEventIgnored)

	_, err = EventFromIssueComment(newEvent("/review", false))
	assert.ErrorIs(t, err, ErrEventIgnored)
}
