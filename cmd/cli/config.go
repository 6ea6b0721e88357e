package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-reviewer/internal/core"
)

var configRepo string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		titleColor.Fprintln(out, "AI")
		fmt.Fprintf(out, "  Provider:        %s\n", cfg.AI.Provider)
		fmt.Fprintf(out, "  Model:           %s\n", cfg.AI.Model)
		fmt.Fprintf(out, "  Response format: %s\n", cfg.AI.ResponseFormat)
		fmt.Fprintf(out, "  Timeout:         %s\n", cfg.AI.Timeout)
		if cfg.AI.RequiresAPIKey() {
			if cfg.AI.APIKey() == "" {
				warnColor.Fprintf(out, "  API key:         not set (export %s)\n", cfg.AI.APIKeyEnv())
			} else {
				fmt.Fprintf(out, "  API key:         %s\n", mask(cfg.AI.APIKey()))
			}
		} else {
			fmt.Fprintf(out, "  Ollama host:     %s\n", cfg.AI.OllamaHost)
		}

		titleColor.Fprintln(out, "Cache")
		fmt.Fprintf(out, "  Enabled:         %t\n", cfg.Cache.Enabled)
		fmt.Fprintf(out, "  Directory:       %s\n", cfg.Cache.Dir)
		fmt.Fprintf(out, "  TTL:             %s\n", cfg.Cache.TTL)

		titleColor.Fprintln(out, "Database")
		if cfg.Database.Enabled() {
			fmt.Fprintf(out, "  Host:            %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
		} else {
			fmt.Fprintln(out, "  Not configured (reviews are not persisted)")
		}

		reviewCfg, err := loadRepoConfig(configRepo, newLogger(cfg))
		if err != nil {
			return err
		}
		printRepoConfig(out, reviewCfg, cfg.AI.ResolveModel(reviewCfg))
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	configCmd.Flags().StringVar(&configRepo, "repo", ".", "Repository whose .codereview.yaml is shown")
	rootCmd.AddCommand(configCmd)
}

func printRepoConfig(out io.Writer, reviewCfg core.ReviewConfig, model string) {
	titleColor.Fprintln(out, "Repository")
	fmt.Fprintf(out, "  Model:           %s\n", model)
	fmt.Fprintf(out, "  Temperature:     %.2f\n", reviewCfg.Temperature)
	fmt.Fprintf(out, "  Custom rules:    %d\n", len(reviewCfg.CustomRules()))
	fmt.Fprintf(out, "  Ignore:          %s\n", patternList(reviewCfg.IgnorePatterns()))
	fmt.Fprintf(out, "  Include:         %s\n", patternList(reviewCfg.IncludePatterns()))
	if reviewCfg.MaxDiffFiles > 0 {
		fmt.Fprintf(out, "  Max files:       %d\n", reviewCfg.MaxDiffFiles)
	}
}

func patternList(patterns []string) string {
	if len(patterns) == 0 {
		return "(none)"
	}
	return strings.Join(patterns, ", ")
}

// mask keeps the last four characters of a secret.
func mask(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
