package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/github"
	"github.com/sevigo/code-reviewer/internal/review"
)

// Reviewer reviews a diff that was fetched from GitHub.
type Reviewer interface {
	ReviewDiff(ctx context.Context, req review.DiffRequest) (*review.Outcome, error)
}

// ReviewJob fetches a pull request diff, reviews it and reports back on the pull request.
type ReviewJob struct {
	clients       github.ClientFactory
	reviewer      Reviewer
	statusUpdater func(github.Client) github.StatusUpdater
	logger        *slog.Logger
}

// NewReviewJob creates a ReviewJob.
func NewReviewJob(clients github.ClientFactory, reviewer Reviewer, logger *slog.Logger) *ReviewJob {
	return &ReviewJob{
		clients:       clients,
		reviewer:      reviewer,
		statusUpdater: github.NewStatusUpdater,
		logger:        logger,
	}
}

// Run executes the code review job for a given GitHub event.
func (j *ReviewJob) Run(ctx context.Context, event *core.GitHubEvent) error {
	if err := ValidateEvent(event); err != nil {
		return fmt.Errorf("input validation failed: %w", err)
	}
	log := j.logger.With("repo", event.RepoFullName, "pr", event.PRNumber)
	log.Info("starting review job", "trigger", event.Trigger)

	ghClient, err := j.clients(ctx, event.InstallationID)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	// Comment triggers carry no head SHA, so it is always read from the pull request.
	pr, err := ghClient.GetPullRequest(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return fmt.Errorf("failed to get PR details: %w", err)
	}
	if pr.GetHead().GetSHA() == "" {
		return fmt.Errorf("PR %d has no valid head SHA", event.PRNumber)
	}
	event.HeadSHA = pr.GetHead().GetSHA()

	status := j.statusUpdater(ghClient)
	checkRunID, err := status.InProgress(ctx, event, "Code Review", "AI analysis in progress...")
	if err != nil {
		return fmt.Errorf("failed to set in-progress status: %w", err)
	}

	diff, err := ghClient.GetPullRequestDiff(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		j.updateStatusOnError(ctx, status, event, checkRunID, "Failed to fetch the pull request diff")
		return fmt.Errorf("failed to get PR diff: %w", err)
	}

	outcome, err := j.reviewer.ReviewDiff(ctx, review.DiffRequest{
		Label:    fmt.Sprintf("pr#%d", event.PRNumber),
		Diff:     diff,
		Language: strings.ToLower(event.Language),
		UseCache: true,
	})
	if err != nil {
		j.updateStatusOnError(ctx, status, event, checkRunID, failureMessage(err))
		return fmt.Errorf("failed to generate review: %w", err)
	}

	if outcome.Status == review.StatusNoChanges {
		log.Info("pull request has nothing to review")
		return status.Completed(ctx, event, checkRunID, github.ConclusionNeutral, "Nothing to review", outcome.Message)
	}

	record := outcome.Record
	if err := status.PostReview(ctx, event, record); err != nil {
		j.updateStatusOnError(ctx, status, event, checkRunID, "Failed to post review comment")
		return fmt.Errorf("failed to post review comment: %w", err)
	}

	summary := record.Summary
	if summary == "" {
		summary = "AI analysis finished successfully"
	}
	if err := status.Completed(ctx, event, checkRunID, github.Conclusion(record), github.CheckRunTitle(record), summary); err != nil {
		return fmt.Errorf("failed to update completion status: %w", err)
	}

	log.Info("review job completed", "issues", record.IssueCount(), "cached", record.Cached)
	return nil
}

// failureMessage turns a pipeline error into a short check run summary.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrPreconditionFailed):
		return "The review service is missing its model credentials"
	case errors.Is(err, core.ErrRateLimited):
		return "The model provider rate limit was exceeded"
	case errors.Is(err, core.ErrTimedOut):
		return "The model provider timed out"
	default:
		return "Failed to generate review"
	}
}

// updateStatusOnError sends a failure status to GitHub Check Runs.
func (j *ReviewJob) updateStatusOnError(ctx context.Context, status github.StatusUpdater, event *core.GitHubEvent, checkRunID int64, message string) {
	if err := status.Completed(ctx, event, checkRunID, github.ConclusionFailure, "Review Failed", message); err != nil {
		j.logger.Error("failed to update failure status", "error", err)
	}
}
