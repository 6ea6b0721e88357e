package core

import (
	"context"
	"strings"
	"time"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
	SeverityInfo       Severity = "info"
)

// ParseSeverity normalizes a configured severity. Unknown values become info.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityWarning:
		return SeverityWarning
	case SeveritySuggestion:
		return SeveritySuggestion
	default:
		return SeverityInfo
	}
}

// CustomRule is a regex check declared in .codereview.yaml.
type CustomRule struct {
	Pattern  string `yaml:"pattern" json:"pattern"`
	Message  string `yaml:"message" json:"message"`
	Severity string `yaml:"severity" json:"severity"`
}

// Finding is one rule hit, summarizing every occurrence of the rule in the diff.
type Finding struct {
	Severity        Severity
	Message         string
	OccurrenceCount int
}

// ReviewRecord is the structured result of one review.
// The four lists are never nil and keep the order in which items appeared.
type ReviewRecord struct {
	ID          string   `json:"id,omitempty"`
	DiffKind    string   `json:"diff_type"`
	Model       string   `json:"model,omitempty"`
	Critical    []string `json:"critical"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
	Positive    []string `json:"positive"`
	Summary     string   `json:"summary"`

	// RawText is the unmodified model response.
	RawText string `json:"raw_text,omitempty"`
	// ParseError is set when a JSON response could not be decoded.
	ParseError string `json:"parse_error,omitempty"`

	FileCount       int       `json:"file_count"`
	DurationSeconds float64   `json:"duration_seconds"`
	Cached          bool      `json:"cached"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewReviewRecord returns a record with all lists initialized.
func NewReviewRecord() *ReviewRecord {
	return &ReviewRecord{
		Critical:    []string{},
		Warnings:    []string{},
		Suggestions: []string{},
		Positive:    []string{},
	}
}

// IssueCount is the number of critical issues, warnings and suggestions.
func (r *ReviewRecord) IssueCount() int {
	return len(r.Critical) + len(r.Warnings) + len(r.Suggestions)
}

// ReviewSummary is a persisted review as listed by history queries.
type ReviewSummary struct {
	ID              string    `db:"id" json:"id"`
	CreatedAt       time.Time `db:"created_at" json:"timestamp"`
	DiffType        string    `db:"diff_type" json:"diff_type"`
	Model           string    `db:"model" json:"model"`
	FileCount       int       `db:"file_count" json:"file_count"`
	CriticalCount   int       `db:"critical_count" json:"critical_count"`
	WarningCount    int       `db:"warning_count" json:"warning_count"`
	SuggestionCount int       `db:"suggestion_count" json:"suggestion_count"`
	PositiveCount   int       `db:"positive_count" json:"positive_count"`
	Summary         string    `db:"summary" json:"summary"`
	ReviewText      string    `db:"review_text" json:"review_text"`
	DurationSeconds float64   `db:"duration_seconds" json:"duration_seconds"`
}

// ReviewStats aggregates every stored review.
type ReviewStats struct {
	TotalReviews     int     `db:"total_reviews" json:"total_reviews"`
	TotalCritical    int     `db:"total_critical" json:"total_critical"`
	TotalWarnings    int     `db:"total_warnings" json:"total_warnings"`
	TotalSuggestions int     `db:"total_suggestions" json:"total_suggestions"`
	AvgDuration      float64 `db:"avg_duration" json:"avg_duration"`
}

// ReviewStore persists completed reviews.
//
//go:generate mockgen -destination=../../mocks/mock_review_store.go -package=mocks . ReviewStore
type ReviewStore interface {
	// Save stores the record and returns its identifier.
	Save(ctx context.Context, record *ReviewRecord) (string, error)
	// Recent returns up to n reviews, newest first.
	Recent(ctx context.Context, n int) ([]ReviewSummary, error)
	AggregateStats(ctx context.Context) (*ReviewStats, error)
}
