package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/storage"
	"github.com/sevigo/code-reviewer/internal/wire"
)

var (
	historyLimit int
	historyJSON  bool
	statsJSON    bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent reviews stored in the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		reviews, err := store.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}

		out := cmd.OutOrStdout()
		if historyJSON {
			if reviews == nil {
				reviews = []core.ReviewSummary{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(reviews)
		}
		if len(reviews) == 0 {
			warnColor.Fprintln(out, "No reviews have been stored yet.")
			return nil
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
			Headers("ID", "DATE", "DIFF", "MODEL", "FILES", "CRITICAL", "WARNINGS", "SUGGESTIONS")
		for _, r := range reviews {
			t.Row(
				r.ID,
				r.CreatedAt.Local().Format(time.DateTime),
				r.DiffType,
				r.Model,
				strconv.Itoa(r.FileCount),
				strconv.Itoa(r.CriticalCount),
				strconv.Itoa(r.WarningCount),
				strconv.Itoa(r.SuggestionCount),
			)
		}
		_, err = fmt.Fprintln(out, t.String())
		return err
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals across all stored reviews",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		stats, err := store.AggregateStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to aggregate stats: %w", err)
		}

		out := cmd.OutOrStdout()
		if statsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}
		titleColor.Fprintln(out, "📊 Review statistics")
		fmt.Fprintf(out, "  Reviews:      %d\n", stats.TotalReviews)
		fmt.Fprintf(out, "  Critical:     %d\n", stats.TotalCritical)
		fmt.Fprintf(out, "  Warnings:     %d\n", stats.TotalWarnings)
		fmt.Fprintf(out, "  Suggestions:  %d\n", stats.TotalSuggestions)
		fmt.Fprintf(out, "  Avg duration: %.2fs\n", stats.AvgDuration)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", storage.DefaultRecentLimit, "Number of reviews to list")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output reviews as JSON")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output stats as JSON")
	rootCmd.AddCommand(historyCmd, statsCmd)
}

// openStore requires a database, since an in-memory store would always be empty here.
func openStore() (core.ReviewStore, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Database.Enabled() {
		return nil, nil, fmt.Errorf("no database configured: set database.host in config.yaml or CR_DATABASE_HOST")
	}
	store, cleanup := wire.ProvideStore(cfg, newLogger(cfg))
	if _, ok := store.(*storage.MemoryStore); ok {
		cleanup()
		return nil, nil, fmt.Errorf("database at %s is unavailable", cfg.Database.Host)
	}
	return store, cleanup, nil
}
