package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/gitutil"
	"github.com/sevigo/code-reviewer/internal/llm"
	"github.com/sevigo/code-reviewer/internal/logger"
)

// Analyzer produces review text for a diff. *llm.Client implements it.
type Analyzer interface {
	Analyze(ctx context.Context, req llm.Request) (*llm.Analysis, error)
	Model() string
	ResponseFormat() core.ResponseFormat
}

// Status is the terminal state of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	// StatusNoChanges means there was nothing to review. It is not a failure.
	StatusNoChanges Status = "no_changes"
)

// Outcome is the result of a run. Record is nil unless Status is StatusCompleted.
type Outcome struct {
	Status  Status
	Kind    string
	Record  *core.ReviewRecord
	Message string
}

// RunRequest selects the local change-set to review.
type RunRequest struct {
	Kind     core.DiffKind
	RepoPath string
	UseCache bool
}

// DiffRequest reviews a diff obtained elsewhere, such as an API body or a pull request.
type DiffRequest struct {
	// Label is recorded as the review's diff type.
	Label    string
	Diff     string
	Language string
	UseCache bool
}

// Orchestrator runs acquire, analyze, parse, apply rules and persist, in that order.
type Orchestrator struct {
	source   core.DiffSource
	analyzer Analyzer
	store    core.ReviewStore
	cfg      core.ReviewConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrchestrator wires a pipeline. store may be nil, in which case nothing is persisted.
func NewOrchestrator(source core.DiffSource, analyzer Analyzer, store core.ReviewStore, cfg core.ReviewConfig, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		source:   source,
		analyzer: analyzer,
		store:    store,
		cfg:      cfg,
		logger:   logger.OrDefault(log),
		now:      time.Now,
	}
}

// NoChangesMessage is shown when a change-set is empty.
func NoChangesMessage(kind string) string {
	return fmt.Sprintf("No %s changes found to review.", kind)
}

// Run reviews the change-set of req.Kind in req.RepoPath.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (*Outcome, error) {
	start := o.now()
	log := o.logger.With("diff_kind", req.Kind)

	diff, err := o.source.GetDiff(ctx, req.Kind, req.RepoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s diff: %w", req.Kind, err)
	}
	if diff == "" {
		log.InfoContext(ctx, "no changes to review")
		return noChanges(req.Kind.String()), nil
	}

	return o.review(ctx, start, DiffRequest{Label: req.Kind.String(), Diff: diff, UseCache: req.UseCache})
}

// ReviewDiff reviews a diff that did not come from the DiffSource.
func (o *Orchestrator) ReviewDiff(ctx context.Context, req DiffRequest) (*Outcome, error) {
	start := o.now()
	if strings.TrimSpace(req.Diff) == "" {
		return noChanges(req.Label), nil
	}
	return o.review(ctx, start, req)
}

func noChanges(kind string) *Outcome {
	return &Outcome{Status: StatusNoChanges, Kind: kind, Message: NoChangesMessage(kind)}
}

func (o *Orchestrator) review(ctx context.Context, start time.Time, req DiffRequest) (*Outcome, error) {
	log := o.logger.With("diff_kind", req.Label)

	diff, dropped := gitutil.FilterDiff(req.Diff, o.cfg.ShouldReviewFile, o.cfg.MaxDiffFiles)
	if strings.TrimSpace(diff) == "" {
		log.InfoContext(ctx, "every changed file is excluded by the review config", "excluded_files", dropped)
		return noChanges(req.Label), nil
	}
	if dropped > 0 {
		log.InfoContext(ctx, "excluded files from review", "excluded_files", dropped, "max_files", o.cfg.MaxDiffFiles)
	}

	analysis, err := o.analyzer.Analyze(ctx, llm.Request{Diff: diff, Language: req.Language, UseCache: req.UseCache})
	if err != nil {
		if !errors.Is(err, core.ErrReviewFailed) {
			err = fmt.Errorf("%w: %w", core.ErrReviewFailed, err)
		}
		return nil, err
	}

	record := Parse(analysis.Text, o.analyzer.ResponseFormat())
	if record.ParseError != "" {
		log.WarnContext(ctx, "model response could not be parsed", "error", record.ParseError)
	}
	record.DiffKind = req.Label
	record.Model = analysis.Model
	record.Cached = analysis.Cached
	record.FileCount = max(gitutil.CountFiles(diff), 1)

	MergeFindings(record, RuleFindings(o.cfg, diff))

	record.CreatedAt = start.UTC()
	record.DurationSeconds = o.now().Sub(start).Seconds()

	if o.store != nil {
		id, err := o.store.Save(ctx, record)
		if err != nil {
			log.ErrorContext(ctx, "failed to save review", "error", err)
		} else {
			record.ID = id
		}
	}

	log.InfoContext(ctx, "review completed",
		"critical", len(record.Critical),
		"warnings", len(record.Warnings),
		"suggestions", len(record.Suggestions),
		"cached", record.Cached,
		"duration_seconds", record.DurationSeconds,
	)
	return &Outcome{Status: StatusCompleted, Kind: req.Label, Record: record}, nil
}
