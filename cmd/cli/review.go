package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-reviewer/internal/app"
	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/github"
	"github.com/sevigo/code-reviewer/internal/gitutil"
	"github.com/sevigo/code-reviewer/internal/review"
	"github.com/sevigo/code-reviewer/internal/wire"
)

var reviewFlags struct {
	diffType string
	format   string
	repo     string
	noCache  bool
	pr       string
	failOn   string
	output   string
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review staged, uncommitted or last-commit changes",
	Long: `Review a change-set of the current repository, or a GitHub pull request with --pr.

Examples:
  code-reviewer review
  code-reviewer review --diff-type last-commit --format markdown
  code-reviewer review --format json --no-cache
  code-reviewer review --pr https://github.com/owner/repo/pull/123
  code-reviewer review --fail-on critical`,
	Args: cobra.NoArgs,
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	f := reviewCmd.Flags()
	f.StringVarP(&reviewFlags.diffType, "diff-type", "d", string(core.DiffStaged), "Changes to review: staged, uncommitted, last-commit")
	f.StringVarP(&reviewFlags.format, "format", "f", string(core.OutputTerminal), "Output format: terminal, markdown, json")
	f.StringVar(&reviewFlags.repo, "repo", ".", "Path inside the repository to review")
	f.BoolVar(&reviewFlags.noCache, "no-cache", false, "Bypass the response cache")
	f.StringVar(&reviewFlags.pr, "pr", "", "Review a GitHub pull request (URL or owner/repo#number)")
	f.StringVar(&reviewFlags.failOn, "fail-on", "none", "Exit non-zero when issues of this severity are found: none, critical, warning")
	f.StringVarP(&reviewFlags.output, "output", "o", "", "Markdown file to write (default review-<diff-type>.md)")
	rootCmd.AddCommand(reviewCmd)
}

// failOnError signals that the review found issues at or above the --fail-on threshold.
// The findings have already been printed, so main only sets the exit code.
type failOnError struct {
	severity core.Severity
	count    int
}

func (e *failOnError) Error() string {
	return fmt.Sprintf("review found %d issue(s) at or above %s", e.count, e.severity)
}

func parseFailOn(s string) (core.Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return "", nil
	case string(core.SeverityCritical):
		return core.SeverityCritical, nil
	case string(core.SeverityWarning):
		return core.SeverityWarning, nil
	default:
		return "", fmt.Errorf("invalid --fail-on value '%s' (expected none, critical or warning)", s)
	}
}

// checkFailOn returns a failOnError when the record crosses threshold.
func checkFailOn(outcome *review.Outcome, threshold core.Severity) error {
	if threshold == "" || outcome.Status != review.StatusCompleted {
		return nil
	}
	count := len(outcome.Record.Critical)
	if threshold == core.SeverityWarning {
		count += len(outcome.Record.Warnings)
	}
	if count == 0 {
		return nil
	}
	return &failOnError{severity: threshold, count: count}
}

func runReview(cmd *cobra.Command, _ []string) error {
	kind, err := core.ParseDiffKind(reviewFlags.diffType)
	if err != nil {
		return err
	}
	format, err := core.ParseOutputFormat(reviewFlags.format)
	if err != nil {
		return err
	}
	threshold, err := parseFailOn(reviewFlags.failOn)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	ctx := cmd.Context()
	start := time.Now()

	pipeline, cleanup, err := newPipeline(ctx, cfg, reviewFlags.repo, log)
	if err != nil {
		return err
	}
	defer cleanup()

	var outcome *review.Outcome
	if reviewFlags.pr != "" {
		outcome, err = reviewPullRequest(ctx, cfg, pipeline, log)
	} else {
		if format == core.OutputTerminal {
			printStart(cmd.ErrOrStderr(), kind.String())
		}
		outcome, err = pipeline.Orchestrator.Run(ctx, review.RunRequest{
			Kind:     kind,
			RepoPath: reviewFlags.repo,
			UseCache: !reviewFlags.noCache,
		})
	}
	if err != nil {
		return err
	}

	if err := writeOutcome(cmd.OutOrStdout(), outcome, format, reviewFlags.output); err != nil {
		return err
	}
	if verbose {
		dimColor.Fprintf(cmd.ErrOrStderr(), "Finished in %s\n", time.Since(start).Round(time.Millisecond))
	}
	return checkFailOn(outcome, threshold)
}

// newPipeline loads .codereview.yaml from the repository root and builds the pipeline.
func newPipeline(ctx context.Context, cfg *config.Config, repoPath string, log *slog.Logger) (*app.Pipeline, func(), error) {
	reviewCfg, err := loadRepoConfig(repoPath, log)
	if err != nil {
		return nil, nil, err
	}
	return wire.InitializePipeline(ctx, cfg, reviewCfg, log)
}

func loadRepoConfig(repoPath string, log *slog.Logger) (core.ReviewConfig, error) {
	root := repoPath
	if r, err := gitutil.WorktreeRoot(repoPath); err == nil {
		root = r
	}
	return wire.LoadReviewConfig(root, log)
}

func reviewPullRequest(ctx context.Context, cfg *config.Config, pipeline *app.Pipeline, log *slog.Logger) (*review.Outcome, error) {
	ref, err := gitutil.ParsePullRequestURL(reviewFlags.pr)
	if err != nil {
		return nil, fmt.Errorf("invalid PR reference: %w", err)
	}
	if cfg.GitHub.Token == "" {
		log.Warn("GITHUB_TOKEN is not set; only public repositories can be reviewed")
	}
	client := github.NewPATClient(ctx, cfg.GitHub.Token, log)

	pr, err := client.GetPullRequest(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ref, err)
	}
	diff, err := client.GetPullRequestDiff(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch diff of %s: %w", ref, err)
	}
	log.Info("reviewing pull request", "pr", ref.String(), "title", pr.GetTitle())

	return pipeline.Orchestrator.ReviewDiff(ctx, review.DiffRequest{
		Label:    fmt.Sprintf("pr#%d", ref.Number),
		Diff:     diff,
		Language: strings.ToLower(pr.GetBase().GetRepo().GetLanguage()),
		UseCache: !reviewFlags.noCache,
	})
}

// markdownFileName is review-<kind>.md with characters unsafe in file names replaced.
func markdownFileName(kind string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '#', '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, kind)
	return "review-" + safe + ".md"
}

func writeOutcome(w io.Writer, outcome *review.Outcome, format core.OutputFormat, output string) error {
	switch format {
	case core.OutputJSON:
		out, err := review.RenderJSON(outcome)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case core.OutputMarkdown:
		out, err := review.Render(outcome, core.OutputMarkdown)
		if err != nil {
			return err
		}
		path := output
		if path == "" {
			path = markdownFileName(outcome.Kind)
		}
		if err := os.WriteFile(path, out, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		successColor.Fprintf(w, "✓ Review saved to %s\n", path)
		return nil
	default:
		return printTerminal(w, outcome)
	}
}
