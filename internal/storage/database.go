// Package storage persists completed reviews.
package storage

import (
	"context"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"
	"github.com/rs/xid"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/review"
)

type postgresStore struct {
	db *sqlx.DB
}

// NewStore returns a ReviewStore backed by the reviews and issues tables.
func NewStore(db *sqlx.DB) core.ReviewStore {
	return &postgresStore{db: db}
}

type issueRow struct {
	ReviewID string `db:"review_id"`
	Severity string `db:"severity"`
	Message  string `db:"message"`
}

// Save inserts the review and one issue row per critical issue, warning and
// suggestion in a single transaction.
func (s *postgresStore) Save(ctx context.Context, record *core.ReviewRecord) (string, error) {
	row := summarize(record)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO reviews (id, created_at, diff_type, model, file_count, critical_count, warning_count,
			suggestion_count, positive_count, summary, review_text, duration_seconds)
		VALUES (:id, :created_at, :diff_type, :model, :file_count, :critical_count, :warning_count,
			:suggestion_count, :positive_count, :summary, :review_text, :duration_seconds)`
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		return "", fmt.Errorf("failed to insert review: %w", err)
	}

	if issues := issueRows(row.ID, record); len(issues) > 0 {
		query := `INSERT INTO issues (review_id, severity, message) VALUES (:review_id, :severity, :message)`
		if _, err := tx.NamedExecContext(ctx, query, issues); err != nil {
			return "", fmt.Errorf("failed to insert issues: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit review: %w", err)
	}
	return row.ID, nil
}

// Recent returns up to n reviews, newest first.
func (s *postgresStore) Recent(ctx context.Context, n int) ([]core.ReviewSummary, error) {
	query := `
		SELECT id, created_at, diff_type, model, file_count, critical_count, warning_count,
			suggestion_count, positive_count, summary, review_text, duration_seconds
		FROM reviews
		ORDER BY created_at DESC
		LIMIT $1`

	reviews := []core.ReviewSummary{}
	if err := s.db.SelectContext(ctx, &reviews, query, normalizeLimit(n)); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *postgresStore) AggregateStats(ctx context.Context) (*core.ReviewStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_reviews,
			COALESCE(SUM(critical_count), 0) AS total_critical,
			COALESCE(SUM(warning_count), 0) AS total_warnings,
			COALESCE(SUM(suggestion_count), 0) AS total_suggestions,
			COALESCE(AVG(duration_seconds), 0) AS avg_duration
		FROM reviews`

	var stats core.ReviewStats
	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to aggregate review stats: %w", err)
	}
	stats.AvgDuration = round2(stats.AvgDuration)
	return &stats, nil
}

// summarize flattens a record into its stored row, assigning an ID if needed.
// The stored text is the rendered final record, so it agrees with the counts
// once custom-rule findings have been merged in.
func summarize(record *core.ReviewRecord) core.ReviewSummary {
	id := record.ID
	if id == "" {
		id = xid.New().String()
	}
	return core.ReviewSummary{
		ID:              id,
		CreatedAt:       record.CreatedAt,
		DiffType:        record.DiffKind,
		Model:           record.Model,
		FileCount:       record.FileCount,
		CriticalCount:   len(record.Critical),
		WarningCount:    len(record.Warnings),
		SuggestionCount: len(record.Suggestions),
		PositiveCount:   len(record.Positive),
		Summary:         record.Summary,
		ReviewText:      review.RenderMarkdown(record),
		DurationSeconds: record.DurationSeconds,
	}
}

func issueRows(reviewID string, record *core.ReviewRecord) []issueRow {
	var rows []issueRow
	add := func(severity core.Severity, items []string) {
		for _, msg := range items {
			rows = append(rows, issueRow{ReviewID: reviewID, Severity: string(severity), Message: msg})
		}
	}
	add(core.SeverityCritical, record.Critical)
	add(core.SeverityWarning, record.Warnings)
	add(core.SeveritySuggestion, record.Suggestions)
	return rows
}

// DefaultRecentLimit is used when a caller asks for a non-positive number of reviews.
const DefaultRecentLimit = 10

func normalizeLimit(n int) int {
	if n <= 0 {
		return DefaultRecentLimit
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
