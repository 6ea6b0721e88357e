package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/code-reviewer/internal/core"
)

// CheckRunName is the name shown on the pull request's checks tab.
const CheckRunName = "AI Code Review"

// Check run conclusions.
const (
	ConclusionSuccess = "success"
	ConclusionFailure = "failure"
	ConclusionNeutral = "neutral"
)

// StatusUpdater reports review progress on a pull request.
type StatusUpdater interface {
	InProgress(ctx context.Context, event *core.GitHubEvent, title, summary string) (int64, error)
	Completed(ctx context.Context, event *core.GitHubEvent, checkRunID int64, conclusion, title, summary string) error
	PostReview(ctx context.Context, event *core.GitHubEvent, record *core.ReviewRecord) error
	PostSimpleComment(ctx context.Context, event *core.GitHubEvent, body string) error
}

type statusUpdater struct {
	client Client
	now    func() time.Time
}

// NewStatusUpdater creates and returns a new instance of a statusUpdater.
func NewStatusUpdater(client Client) StatusUpdater {
	return &statusUpdater{client: client, now: time.Now}
}

// PostSimpleComment posts a single, general comment on the pull request.
func (s *statusUpdater) PostSimpleComment(ctx context.Context, event *core.GitHubEvent, body string) error {
	return s.client.CreateComment(ctx, event.RepoOwner, event.RepoName, event.PRNumber, body)
}

// PostReview posts the formatted review as a pull request comment.
func (s *statusUpdater) PostReview(ctx context.Context, event *core.GitHubEvent, record *core.ReviewRecord) error {
	return s.client.CreateComment(ctx, event.RepoOwner, event.RepoName, event.PRNumber, FormatReviewComment(record))
}

// InProgress creates a new GitHub Check Run with an "in_progress" status.
func (s *statusUpdater) InProgress(ctx context.Context, event *core.GitHubEvent, title, summary string) (int64, error) {
	opts := github.CreateCheckRunOptions{
		Name:    CheckRunName,
		HeadSHA: event.HeadSHA,
		Status:  github.Ptr("in_progress"),
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	checkRun, err := s.client.CreateCheckRun(ctx, event.RepoOwner, event.RepoName, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to create check run: %w", err)
	}
	return checkRun.GetID(), nil
}

// Completed updates an existing GitHub Check Run to a "completed" status.
func (s *statusUpdater) Completed(ctx context.Context, event *core.GitHubEvent, checkRunID int64, conclusion, title, summary string) error {
	opts := github.UpdateCheckRunOptions{
		Status:      github.Ptr("completed"),
		Conclusion:  &conclusion,
		CompletedAt: &github.Timestamp{Time: s.now()},
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	_, err := s.client.UpdateCheckRun(ctx, event.RepoOwner, event.RepoName, checkRunID, opts)
	return err
}

// Conclusion maps a review to a check run conclusion: critical issues fail the check.
func Conclusion(record *core.ReviewRecord) string {
	if len(record.Critical) > 0 {
		return ConclusionFailure
	}
	return ConclusionSuccess
}

// CheckRunTitle summarizes the issue counts in one line.
func CheckRunTitle(record *core.ReviewRecord) string {
	if record.IssueCount() == 0 {
		return "No issues found"
	}
	return fmt.Sprintf("%d critical, %d warnings, %d suggestions",
		len(record.Critical), len(record.Warnings), len(record.Suggestions))
}

// FormatReviewComment renders a review as a pull request comment.
func FormatReviewComment(record *core.ReviewRecord) string {
	var sb strings.Builder

	sb.WriteString("### 🤖 AI Code Review\n\n")
	if record.Summary != "" {
		sb.WriteString(record.Summary)
		sb.WriteString("\n\n")
	}

	if record.IssueCount() > 0 {
		sb.WriteString("| Severity | Count |\n")
		sb.WriteString("|----------|-------|\n")
		fmt.Fprintf(&sb, "| 🔴 Critical | %d |\n", len(record.Critical))
		fmt.Fprintf(&sb, "| 🟡 Warning | %d |\n", len(record.Warnings))
		fmt.Fprintf(&sb, "| 🟢 Suggestion | %d |\n\n", len(record.Suggestions))
	}

	writeList(&sb, "🔴 Critical Issues", record.Critical, true)
	writeList(&sb, "🟡 Warnings", record.Warnings, true)
	writeList(&sb, "🟢 Suggestions", record.Suggestions, false)
	writeList(&sb, "✅ Positive Notes", record.Positive, false)

	if record.ParseError != "" {
		sb.WriteString("> [!WARNING]\n> The model response could not be parsed. Raw output follows.\n\n")
		sb.WriteString("<details><summary>Raw response</summary>\n\n```\n")
		sb.WriteString(record.RawText)
		sb.WriteString("\n```\n\n</details>\n\n")
	}

	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "<sub>Model: %s · Files reviewed: %d · %.1fs", record.Model, record.FileCount, record.DurationSeconds)
	if record.Cached {
		sb.WriteString(" · cached")
	}
	sb.WriteString("</sub>\n")
	return sb.String()
}

// writeList writes a section. Sections that are not open are collapsed.
func writeList(sb *strings.Builder, title string, items []string, open bool) {
	if len(items) == 0 {
		return
	}
	if open {
		fmt.Fprintf(sb, "#### %s\n\n", title)
	} else {
		fmt.Fprintf(sb, "<details><summary>%s (%d)</summary>\n\n", title, len(items))
	}
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	if open {
		sb.WriteString("\n")
	} else {
		sb.WriteString("\n</details>\n\n")
	}
}
