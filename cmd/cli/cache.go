package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-reviewer/internal/cache"
)

var (
	cacheJSON   bool
	sweepMaxAge time.Duration
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clean the response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number, size and age of cached responses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		stats, err := c.Stats()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if cacheJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}
		titleColor.Fprintf(out, "Cache: %s\n", c.Dir())
		fmt.Fprintf(out, "  Entries:     %d\n", stats.Count)
		fmt.Fprintf(out, "  Total size:  %s\n", humanBytes(stats.TotalSizeBytes))
		fmt.Fprintf(out, "  Oldest:      %s\n", (time.Duration(stats.OldestAgeSeconds) * time.Second).Round(time.Second))
		return nil
	},
}

var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired responses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		removed, err := c.Sweep(sweepMaxAge)
		if err != nil {
			return err
		}
		successColor.Fprintf(cmd.OutOrStdout(), "✓ Removed %d expired entries\n", removed)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached response",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		removed, err := c.Clear()
		if err != nil {
			return err
		}
		successColor.Fprintf(cmd.OutOrStdout(), "✓ Removed %d entries\n", removed)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	cacheStatsCmd.Flags().BoolVar(&cacheJSON, "json", false, "Output stats as JSON")
	cacheSweepCmd.Flags().DurationVar(&sweepMaxAge, "max-age", 0, "Remove entries older than this instead of the configured TTL")
	cacheCmd.AddCommand(cacheStatsCmd, cacheSweepCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (*cache.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.New(cfg.Cache.Dir, cfg.Cache.TTL, newLogger(cfg))
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
