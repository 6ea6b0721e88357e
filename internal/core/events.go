// Package core holds the types and interfaces shared by the review pipeline,
// its storage, and the servers and commands that drive it.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
)

// ErrEventIgnored is returned for webhook payloads that do not request a review.
var ErrEventIgnored = errors.New("event ignored")

// GitHubEvent is the subset of a webhook payload needed to review a pull request.
type GitHubEvent struct {
	RepoOwner    string
	RepoName     string
	RepoFullName string
	Language     string

	PRNumber int
	PRTitle  string
	HeadSHA  string

	// Trigger is the webhook action or command that produced the event.
	Trigger        string
	InstallationID int64
}

// EventFromPullRequest accepts opened, reopened and synchronize actions.
func EventFromPullRequest(event *github.PullRequestEvent) (*GitHubEvent, error) {
	action := event.GetAction()
	switch action {
	case "opened", "synchronize", "reopened":
	default:
		return nil, fmt.Errorf("%w: pull request action %q", ErrEventIgnored, action)
	}

	pr := event.GetPullRequest()
	if pr == nil || pr.GetNumber() <= 0 {
		return nil, fmt.Errorf("pull request information is missing from the event")
	}

	repo := event.GetRepo()
	if err := validateRepo(repo); err != nil {
		return nil, err
	}
	if event.GetInstallation().GetID() == 0 {
		return nil, fmt.Errorf("installation ID is missing from the event")
	}

	return &GitHubEvent{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		Language:       repo.GetLanguage(),
		PRNumber:       pr.GetNumber(),
		PRTitle:        pr.GetTitle(),
		HeadSHA:        pr.GetHead().GetSHA(),
		Trigger:        action,
		InstallationID: event.GetInstallation().GetID(),
	}, nil
}

// EventFromIssueComment accepts a "/review" comment on a pull request.
func EventFromIssueComment(event *github.IssueCommentEvent) (*GitHubEvent, error) {
	if !event.GetIssue().IsPullRequest() {
		return nil, fmt.Errorf("%w: comment is not on a pull request", ErrEventIgnored)
	}
	if !strings.EqualFold(strings.TrimSpace(event.GetComment().GetBody()), "/review") {
		return nil, fmt.Errorf("%w: comment is not a review command", ErrEventIgnored)
	}

	repo := event.GetRepo()
	if err := validateRepo(repo); err != nil {
		return nil, err
	}

	prNumber := event.GetIssue().GetNumber()
	if prNumber <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", prNumber)
	}
	if event.GetInstallation().GetID() == 0 {
		return nil, fmt.Errorf("installation ID is missing from the event")
	}

	return &GitHubEvent{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		Language:       repo.GetLanguage(),
		PRNumber:       prNumber,
		PRTitle:        event.GetIssue().GetTitle(),
		Trigger:        "comment",
		InstallationID: event.GetInstallation().GetID(),
	}, nil
}

func validateRepo(repo *github.Repository) error {
	if repo == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return fmt.Errorf("repository or owner information is missing from the event")
	}
	return nil
}
